// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

/*
Package comment implements discussion threads under posts: top-level
comments plus one level of replies.

A reply is a comment whose ParentID points at its parent. Creation and
deletion keep the denormalized counters consistent transactionally: the
post's comment count covers every nesting level, the parent's reply count
covers its direct replies.
*/
package comment

import "time"

// Author is the read-side projection of the comment owner, joined from
// users.account by the storage layer.
type Author struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// Comment is one discussion entry. ParentID is nil for top-level comments.
type Comment struct {
	ID       string  `json:"id"`
	PostID   string  `json:"post_id"`
	ParentID *string `json:"parent_id,omitempty"`
	AuthorID string  `json:"-"`
	Body     string  `json:"body"`

	// Denormalized engagement counters.
	LikeCount    int `json:"likes"`
	DislikeCount int `json:"dislikes"`
	ReplyCount   int `json:"replies"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Author is populated on read paths only.
	Author *Author `json:"author,omitempty"`
}

// # Field Identifiers

const (
	FieldPostID    = "postID"
	FieldCommentID = "commentID"
	FieldReplyID   = "replyID"
	FieldBody      = "body"
)
