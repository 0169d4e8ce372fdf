// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package vote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkpost/inkpost/internal/platform/apperr"
	"github.com/inkpost/inkpost/internal/platform/database/schema"
	"github.com/inkpost/inkpost/internal/platform/dberr"
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the vote Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Begin opens a database transaction wrapped as a [UnitOfWork].

Parameters:
  - context: context.Context

Returns:
  - UnitOfWork: Transaction-scoped vote operations
  - error: Connection or begin failures
*/
func (repository *PostgresRepository) Begin(context context.Context) (UnitOfWork, error) {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return nil, fmt.Errorf("postgres_vote_repo_begin_failed: %w", err)
	}
	return &postgresUnitOfWork{tx: transaction}, nil
}

// postgresUnitOfWork executes every operation on one pgx transaction.
type postgresUnitOfWork struct {
	tx pgx.Tx
}

// PostExists reports whether the post id resolves to a row.
func (unit *postgresUnitOfWork) PostExists(context context.Context, postID string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)",
		schema.ContentPost.Table, schema.ContentPost.ID)

	var exists bool
	if err := unit.tx.QueryRow(context, query, postID).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_vote_repo_post_exists_failed: %w", err)
	}
	return exists, nil
}

// CommentExists reports whether the comment id resolves to a row belonging
// to the given post.
func (unit *postgresUnitOfWork) CommentExists(context context.Context, postID, commentID string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)",
		schema.ContentComment.Table, schema.ContentComment.ID, schema.ContentComment.PostID)

	var exists bool
	if err := unit.tx.QueryRow(context, query, commentID, postID).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_vote_repo_comment_exists_failed: %w", err)
	}
	return exists, nil
}

/*
Find retrieves the caller's existing vote on the target.

Description: The row is locked FOR UPDATE so a concurrent same-key vote
serializes behind this transaction instead of racing the polarity check.
Absence is a normal protocol branch and is reported as (nil, nil).

Parameters:
  - context: context.Context
  - userID: string
  - postID: string
  - commentID: *string (nil targets the post itself)

Returns:
  - *Vote: Existing vote or nil
  - error: Execution errors
*/
func (unit *postgresUnitOfWork) Find(context context.Context, userID, postID string, commentID *string) (*Vote, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = $2 AND %s IS NOT DISTINCT FROM $3
		FOR UPDATE`,
		schema.ContentLike.ID, schema.ContentLike.UserID, schema.ContentLike.PostID,
		schema.ContentLike.CommentID, schema.ContentLike.IsLiked,
		schema.ContentLike.CreatedAt, schema.ContentLike.UpdatedAt,
		schema.ContentLike.Table,
		schema.ContentLike.UserID, schema.ContentLike.PostID, schema.ContentLike.CommentID,
	)

	vote := &Vote{}
	err := unit.tx.QueryRow(context, query, userID, postID, commentID).Scan(
		&vote.ID,
		&vote.UserID,
		&vote.PostID,
		&vote.CommentID,
		&vote.IsLiked,
		&vote.CreatedAt,
		&vote.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres_vote_repo_find_failed: %w", err)
	}

	return vote, nil
}

/*
Create inserts a new vote row.

Description: The unique index on (userid, postid, commentid) is the final
authority against the double-vote race; a concurrent insert that slips past
the Find check surfaces here as a Conflict and aborts the transaction.

Parameters:
  - context: context.Context
  - vote: *Vote

Returns:
  - error: apperr.Conflict on a racing duplicate, or insert failures
*/
func (unit *postgresUnitOfWork) Create(context context.Context, vote *Vote) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		schema.ContentLike.Table,
		schema.ContentLike.ID, schema.ContentLike.UserID, schema.ContentLike.PostID,
		schema.ContentLike.CommentID, schema.ContentLike.IsLiked,
		schema.ContentLike.CreatedAt, schema.ContentLike.UpdatedAt,
	)

	now := time.Now()
	vote.CreatedAt = now
	vote.UpdatedAt = now

	_, err := unit.tx.Exec(context, query,
		vote.ID,
		vote.UserID,
		vote.PostID,
		vote.CommentID,
		vote.IsLiked,
		vote.CreatedAt,
		vote.UpdatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Vote already recorded")
		}
		return fmt.Errorf("postgres_vote_repo_create_failed: %w", err)
	}

	return nil
}

// Flip reverses the polarity of an existing vote in place.
func (unit *postgresUnitOfWork) Flip(context context.Context, voteID string, isLiked bool) error {
	query := fmt.Sprintf("UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1",
		schema.ContentLike.Table, schema.ContentLike.IsLiked, schema.ContentLike.UpdatedAt,
		schema.ContentLike.ID)

	_, err := unit.tx.Exec(context, query, voteID, isLiked, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_vote_repo_flip_failed: %w", err)
	}
	return nil
}

// AdjustPost applies counter deltas to a post and returns the new tally.
func (unit *postgresUnitOfWork) AdjustPost(context context.Context, postID string, likeDelta, dislikeDelta int) (Tally, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s + $2, %s = %s + $3
		WHERE %s = $1
		RETURNING %s, %s`,
		schema.ContentPost.Table,
		schema.ContentPost.LikeCount, schema.ContentPost.LikeCount,
		schema.ContentPost.DislikeCount, schema.ContentPost.DislikeCount,
		schema.ContentPost.ID,
		schema.ContentPost.LikeCount, schema.ContentPost.DislikeCount,
	)

	var tally Tally
	err := unit.tx.QueryRow(context, query, postID, likeDelta, dislikeDelta).Scan(&tally.Likes, &tally.Dislikes)
	if err != nil {
		return Tally{}, fmt.Errorf("postgres_vote_repo_adjust_post_failed: %w", err)
	}
	return tally, nil
}

// AdjustComment applies counter deltas to a comment and returns the new tally.
func (unit *postgresUnitOfWork) AdjustComment(context context.Context, commentID string, likeDelta, dislikeDelta int) (Tally, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s + $2, %s = %s + $3
		WHERE %s = $1
		RETURNING %s, %s`,
		schema.ContentComment.Table,
		schema.ContentComment.LikeCount, schema.ContentComment.LikeCount,
		schema.ContentComment.DislikeCount, schema.ContentComment.DislikeCount,
		schema.ContentComment.ID,
		schema.ContentComment.LikeCount, schema.ContentComment.DislikeCount,
	)

	var tally Tally
	err := unit.tx.QueryRow(context, query, commentID, likeDelta, dislikeDelta).Scan(&tally.Likes, &tally.Dislikes)
	if err != nil {
		return Tally{}, fmt.Errorf("postgres_vote_repo_adjust_comment_failed: %w", err)
	}
	return tally, nil
}

// Commit finalizes the transaction.
func (unit *postgresUnitOfWork) Commit(context context.Context) error {
	if err := unit.tx.Commit(context); err != nil {
		return fmt.Errorf("postgres_vote_repo_commit_failed: %w", err)
	}
	return nil
}

// Rollback aborts the transaction. Calling it after Commit is a no-op.
func (unit *postgresUnitOfWork) Rollback(context context.Context) error {
	err := unit.tx.Rollback(context)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("postgres_vote_repo_rollback_failed: %w", err)
	}
	return nil
}
