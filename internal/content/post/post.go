// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

/*
Package post implements the blog post domain: rich-content articles with
typed blocks, header anchors, normalized tags, and denormalized engagement
counters.

Architecture:

  - post.go: Domain entities and block typing rules.
  - store.go / store_postgres.go: Storage contracts and pgx implementation.
  - service.go: Use cases (create, read, list, update, cascade delete).
  - http.go: REST endpoints mounted under /api/v1/posts.

Counter columns (likecount, dislikecount, commentcount) are never written by
this package directly; the vote and comment packages adjust them inside
their own transactions.
*/
package post

import "time"

// # Content Blocks

// BlockType identifies the rendering type of one content block.
type BlockType string

const (
	BlockText   BlockType = "text"
	BlockHeader BlockType = "header"
	BlockImage  BlockType = "image"
	BlockCode   BlockType = "code"
)

// IsValid reports whether the block type is one of the closed set.
func (t BlockType) IsValid() bool {
	switch t {
	case BlockText, BlockHeader, BlockImage, BlockCode:
		return true
	}
	return false
}

// ContentBlock is one ordered element of a post body. The sequence is
// persisted as a single JSONB document.
//
// Language is required when Type is [BlockCode] and must be empty otherwise.
type ContentBlock struct {
	Type     BlockType `json:"type"`
	Value    string    `json:"value"`
	Language string    `json:"language,omitempty"`
}

// # Entities

// Author is the read-side projection of the post author, joined from
// users.account by the storage layer. List responses carry FullName only;
// the detail view adds ProfileImage.
type Author struct {
	ID           string `json:"id"`
	FullName     string `json:"fullname"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// Post is the article aggregate.
type Post struct {
	ID       string `json:"id"`
	AuthorID string `json:"-"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`

	// Blocks is the ordered rich content (JSONB column).
	Blocks []ContentBlock `json:"blocks"`

	// Anchors lists the in-page navigation targets, one per header block.
	Anchors []string `json:"anchors,omitempty"`

	CoverImage string   `json:"cover_image,omitempty"`
	Tags       []string `json:"tags,omitempty"`

	// Denormalized engagement counters, maintained transactionally by the
	// vote and comment packages.
	LikeCount    int `json:"likes"`
	DislikeCount int `json:"dislikes"`
	CommentCount int `json:"comment_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Author is populated on read paths only.
	Author *Author `json:"author,omitempty"`
}

// # Field Identifiers

const (
	FieldPostID     = "postID"
	FieldTitle      = "title"
	FieldSubtitle   = "subtitle"
	FieldBlocks     = "blocks"
	FieldAnchors    = "anchors"
	FieldCoverImage = "cover_image"
	FieldTags       = "tags"
	FieldSearch     = "search"
)
