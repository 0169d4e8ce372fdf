// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package comment

import (
	"context"

	"github.com/inkpost/inkpost/pkg/pagination"
)

/*
Repository defines the persistence contract for comments.

Description: Create and Delete are transactional: they move the post's
comment count (and the parent's reply count for replies) together with the
comment row, so a partially applied mutation is never observable.

Operations:
  - Create: Inserts the comment and bumps the affected counters.
  - FindByID: Single comment with its author projection.
  - ListTopLevel: Cursor page of a post's direct comments.
  - ListReplies: Cursor page of one comment's replies.
  - UpdateBody: Rewrites the body text.
  - Delete: Removes the comment, its replies, and every like on them,
    decrementing the counters accordingly.
*/
type Repository interface {
	Create(ctx context.Context, comment *Comment) error
	FindByID(ctx context.Context, id string) (*Comment, error)
	ListTopLevel(ctx context.Context, postID string, params pagination.Params) ([]*Comment, error)
	ListReplies(ctx context.Context, parentID string, params pagination.Params) ([]*Comment, error)
	UpdateBody(ctx context.Context, id, body string) error
	Delete(ctx context.Context, comment *Comment) error
}
