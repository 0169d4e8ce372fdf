// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package post

import (
	"context"

	"github.com/inkpost/inkpost/pkg/pagination"
)

// ListFilter narrows a post listing. Zero values mean "no filter".
type ListFilter struct {
	// Search matches title and subtitle case-insensitively.
	Search string
	// Tags selects posts whose tag set overlaps the given (normalized) set.
	Tags []string
}

/*
Repository defines the persistence contract for posts.

Description: The implementation owns the read-side author join and the
delete cascade. Counter columns are written only by the vote and comment
repositories.

Operations:
  - Create: Persists a new post.
  - FindByID: Detail read with full author projection.
  - List: Cursor-paginated feed with search/tag filters and author name join.
  - Update: Rewrites the editable columns of one post.
  - Delete: Removes the post plus every comment and like referencing it,
    as one transaction.
*/
type Repository interface {
	Create(ctx context.Context, post *Post) error
	FindByID(ctx context.Context, id string) (*Post, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]*Post, error)
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id string) error
}
