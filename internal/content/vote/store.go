// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package vote

import "context"

/*
Repository opens vote units of work.

Description: Every vote mutation spans two tables (the vote row and the
target's counters), so the store exposes an explicit unit-of-work object
rather than independent operations. The service drives the protocol and
decides commit or abort.
*/
type Repository interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

/*
UnitOfWork scopes one vote transaction.

Description: All reads and writes happen against the same database
transaction. Rollback after Commit is a no-op, so callers defer Rollback
unconditionally.

Operations:
  - PostExists / CommentExists: Target resolution.
  - Find: The caller's existing vote on the target, nil when absent.
  - Create / Flip: Vote row mutation.
  - AdjustPost / AdjustComment: Counter deltas, returning the new tally.
*/
type UnitOfWork interface {
	PostExists(ctx context.Context, postID string) (bool, error)
	CommentExists(ctx context.Context, postID, commentID string) (bool, error)

	Find(ctx context.Context, userID, postID string, commentID *string) (*Vote, error)
	Create(ctx context.Context, vote *Vote) error
	Flip(ctx context.Context, voteID string, isLiked bool) error

	AdjustPost(ctx context.Context, postID string, likeDelta, dislikeDelta int) (Tally, error)
	AdjustComment(ctx context.Context, commentID string, likeDelta, dislikeDelta int) (Tally, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
