// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

/*
Package vote implements like/dislike voting on posts and comments.

The voting protocol keeps the vote record and the target's denormalized
counters consistent inside a single database transaction:

 1. Resolve the target; unknown targets are a 404.
 2. Look up the caller's existing vote on that target.
 3. Same polarity again is a 409 — counters never move.
 4. Opposite polarity flips the stored vote and shifts one count from
    the vacated side to the new side.
 5. No existing vote creates one and increments the new side only.

At most one vote row exists per (user, post, comment-or-null) key; the
comment reference is part of the key so a post vote and a comment vote by
the same user coexist.
*/
package vote

import (
	"net/http"
	"time"

	requestutil "github.com/inkpost/inkpost/internal/platform/request"
	"github.com/inkpost/inkpost/internal/platform/validate"
)

// Vote records one user's like or dislike on a post or a comment.
// A nil CommentID means the vote targets the post itself.
type Vote struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PostID    string    `json:"post_id"`
	CommentID *string   `json:"comment_id,omitempty"`
	IsLiked   bool      `json:"is_liked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tally is the target's counter pair after a vote lands.
type Tally struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// # Request Payload

const (
	FieldAction = "action"

	ActionLike    = "like"
	ActionDislike = "dislike"
)

type actionRequest struct {
	Action string `json:"action"`
}

// DecodeAction parses the vote action from the request body and returns
// the polarity (true for a like).
func DecodeAction(request *http.Request) (bool, error) {
	var input actionRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		return false, validate.ErrInvalidJSON
	}

	validator := &validate.Validator{}
	validator.Required(FieldAction, input.Action).
		OneOf(FieldAction, input.Action, ActionLike, ActionDislike)
	if err := validator.Err(); err != nil {
		return false, err
	}

	return input.Action == ActionLike, nil
}
