// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package comment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkpost/inkpost/internal/platform/apperr"
	"github.com/inkpost/inkpost/internal/platform/database/schema"
	"github.com/inkpost/inkpost/pkg/pagination"
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the comment Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Create inserts a comment and bumps the affected counters in one transaction.

Description: The post's comment count is incremented via a guarded UPDATE
whose zero-rows result doubles as the post existence check. For a reply the
parent's reply count is incremented the same way, guarded to the same post
and to a top-level parent, so a reply can neither attach across posts nor
nest below the single permitted reply level.

Parameters:
  - context: context.Context
  - comment: *Comment (ParentID nil for a top-level comment)

Returns:
  - error: apperr.NotFound for a missing post or parent,
    apperr.ValidationError for a reply-to-reply attempt, or transaction failures
*/
func (repository *PostgresRepository) Create(context context.Context, comment *Comment) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_comment_repo_create_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	bumpPost := fmt.Sprintf("UPDATE %s SET %s = %s + 1 WHERE %s = $1",
		schema.ContentPost.Table,
		schema.ContentPost.CommentCount, schema.ContentPost.CommentCount,
		schema.ContentPost.ID)
	result, err := transaction.Exec(context, bumpPost, comment.PostID)
	if err != nil {
		return fmt.Errorf("postgres_comment_repo_bump_post_failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("Post")
	}

	if comment.ParentID != nil {
		bumpParent := fmt.Sprintf("UPDATE %s SET %s = %s + 1 WHERE %s = $1 AND %s = $2 AND %s IS NULL",
			schema.ContentComment.Table,
			schema.ContentComment.ReplyCount, schema.ContentComment.ReplyCount,
			schema.ContentComment.ID, schema.ContentComment.PostID,
			schema.ContentComment.ParentID)
		result, err := transaction.Exec(context, bumpParent, *comment.ParentID, comment.PostID)
		if err != nil {
			return fmt.Errorf("postgres_comment_repo_bump_parent_failed: %w", err)
		}
		if result.RowsAffected() == 0 {
			// Distinguish a missing parent from a reply-to-reply attempt.
			lookupParent := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 AND %s = $2",
				schema.ContentComment.ParentID, schema.ContentComment.Table,
				schema.ContentComment.ID, schema.ContentComment.PostID)
			var parentOfParent *string
			err := transaction.QueryRow(context, lookupParent, *comment.ParentID, comment.PostID).Scan(&parentOfParent)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperr.NotFound("Comment")
				}
				return fmt.Errorf("postgres_comment_repo_parent_lookup_failed: %w", err)
			}
			return apperr.ValidationError("Replies cannot be nested")
		}
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		schema.ContentComment.Table,
		schema.ContentComment.ID, schema.ContentComment.PostID, schema.ContentComment.ParentID,
		schema.ContentComment.AuthorID, schema.ContentComment.Body,
		schema.ContentComment.CreatedAt, schema.ContentComment.UpdatedAt,
	)

	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	_, err = transaction.Exec(context, insert,
		comment.ID,
		comment.PostID,
		comment.ParentID,
		comment.AuthorID,
		comment.Body,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_comment_repo_insert_failed: %w", err)
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_comment_repo_create_commit_failed: %w", err)
	}

	return nil
}

// commentProjection is the SELECT column list shared by the read paths,
// including the author join columns.
func commentProjection() string {
	return fmt.Sprintf(`
		c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s,
		a.%s, a.%s`,
		schema.ContentComment.ID, schema.ContentComment.PostID, schema.ContentComment.ParentID,
		schema.ContentComment.AuthorID, schema.ContentComment.Body,
		schema.ContentComment.LikeCount, schema.ContentComment.DislikeCount, schema.ContentComment.ReplyCount,
		schema.ContentComment.CreatedAt, schema.ContentComment.UpdatedAt,
		schema.UserAccount.Username, schema.UserAccount.ProfileImage,
	)
}

// scanComment hydrates one comment row, including the author projection.
func scanComment(row pgx.Row) (*Comment, error) {
	comment := &Comment{Author: &Author{}}
	err := row.Scan(
		&comment.ID,
		&comment.PostID,
		&comment.ParentID,
		&comment.AuthorID,
		&comment.Body,
		&comment.LikeCount,
		&comment.DislikeCount,
		&comment.ReplyCount,
		&comment.CreatedAt,
		&comment.UpdatedAt,
		&comment.Author.Username,
		&comment.Author.ProfileImage,
	)
	if err != nil {
		return nil, err
	}
	comment.Author.ID = comment.AuthorID
	return comment, nil
}

/*
FindByID retrieves one comment with its author projection.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Comment: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Comment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s c
		JOIN %s a ON a.%s = c.%s
		WHERE c.%s = $1`,
		commentProjection(),
		schema.ContentComment.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.ContentComment.AuthorID,
		schema.ContentComment.ID,
	)

	comment, err := scanComment(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Comment")
		}
		return nil, fmt.Errorf("postgres_comment_repo_find_failed: %w", err)
	}

	return comment, nil
}

// ListTopLevel returns one cursor page of a post's direct comments.
func (repository *PostgresRepository) ListTopLevel(context context.Context, postID string, params pagination.Params) ([]*Comment, error) {
	condition := fmt.Sprintf("c.%s = $1 AND c.%s IS NULL",
		schema.ContentComment.PostID, schema.ContentComment.ParentID)
	return repository.listPage(context, condition, []interface{}{postID}, params)
}

// ListReplies returns one cursor page of a comment's direct replies.
func (repository *PostgresRepository) ListReplies(context context.Context, parentID string, params pagination.Params) ([]*Comment, error) {
	condition := fmt.Sprintf("c.%s = $1", schema.ContentComment.ParentID)
	return repository.listPage(context, condition, []interface{}{parentID}, params)
}

/*
listPage assembles and runs one cursor-paginated comment query.

Description: Shares the sort and cursor mechanics between the top-level and
reply listings. As with posts, the "top" sort resolves the cursor row's
like count first and rejects a cursor that no longer exists.

Parameters:
  - context: context.Context
  - condition: string (Scope predicate, already numbered from $1)
  - args: []interface{} (Arguments backing the scope predicate)
  - params: pagination.Params

Returns:
  - []*Comment: Page of comments with author username projected
  - error: Invalid-cursor validation error or execution errors
*/
func (repository *PostgresRepository) listPage(context context.Context, condition string, args []interface{}, params pagination.Params) ([]*Comment, error) {
	conditions := []string{condition}
	argID := len(args) + 1

	var orderBy string
	switch params.Sort {
	case pagination.SortOldest:
		orderBy = fmt.Sprintf("c.%s ASC", schema.ContentComment.ID)
		if params.Cursor != "" {
			conditions = append(conditions, fmt.Sprintf("c.%s > $%d", schema.ContentComment.ID, argID))
			args = append(args, params.Cursor)
			argID++
		}

	case pagination.SortTop:
		orderBy = fmt.Sprintf("c.%s DESC, c.%s DESC", schema.ContentComment.LikeCount, schema.ContentComment.ID)
		if params.Cursor != "" {
			cursorLikes, err := repository.likesAt(context, params.Cursor)
			if err != nil {
				return nil, err
			}
			conditions = append(conditions, fmt.Sprintf("(c.%s < $%d OR (c.%s = $%d AND c.%s < $%d))",
				schema.ContentComment.LikeCount, argID, schema.ContentComment.LikeCount, argID, schema.ContentComment.ID, argID+1))
			args = append(args, cursorLikes, params.Cursor)
			argID += 2
		}

	default: // newest
		orderBy = fmt.Sprintf("c.%s DESC", schema.ContentComment.ID)
		if params.Cursor != "" {
			conditions = append(conditions, fmt.Sprintf("c.%s < $%d", schema.ContentComment.ID, argID))
			args = append(args, params.Cursor)
			argID++
		}
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s c
		JOIN %s a ON a.%s = c.%s
		WHERE %s
		ORDER BY %s
		LIMIT $%d`,
		commentProjection(),
		schema.ContentComment.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.ContentComment.AuthorID,
		strings.Join(conditions, " AND "),
		orderBy,
		argID,
	)
	args = append(args, params.Limit)

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres_comment_repo_list_failed: %w", err)
	}
	defer rows.Close()

	comments := []*Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_comment_repo_list_scan_failed: %w", err)
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_comment_repo_list_rows_failed: %w", err)
	}

	return comments, nil
}

// likesAt resolves the like count of the cursor row for the "top" sort.
func (repository *PostgresRepository) likesAt(context context.Context, cursor string) (int, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		schema.ContentComment.LikeCount, schema.ContentComment.Table, schema.ContentComment.ID)

	var likes int
	err := repository.pool.QueryRow(context, query, cursor).Scan(&likes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperr.ValidationError("Invalid pagination cursor")
		}
		return 0, fmt.Errorf("postgres_comment_repo_cursor_lookup_failed: %w", err)
	}

	return likes, nil
}

/*
UpdateBody rewrites the body text of one comment.

Parameters:
  - context: context.Context
  - id: string
  - body: string (Sanitized text)

Returns:
  - error: apperr.NotFound when the row vanished, or execution errors
*/
func (repository *PostgresRepository) UpdateBody(context context.Context, id, body string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1",
		schema.ContentComment.Table,
		schema.ContentComment.Body, schema.ContentComment.UpdatedAt,
		schema.ContentComment.ID)

	result, err := repository.pool.Exec(context, query, id, body, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_comment_repo_update_failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("Comment")
	}

	return nil
}

/*
Delete removes a comment together with its replies and likes.

Description: One transaction deletes the likes on the replies, the replies
themselves, the likes on the comment, and the comment row, then settles the
counters: the post loses the comment plus every deleted reply, and a
reply's parent loses one from its reply count.

Parameters:
  - context: context.Context
  - comment: *Comment (Entity resolved by the service for the ownership check)

Returns:
  - error: apperr.NotFound when the row is already gone, or transaction failures
*/
func (repository *PostgresRepository) Delete(context context.Context, comment *Comment) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_comment_repo_delete_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	deleteReplyLikes := fmt.Sprintf(`
		DELETE FROM %s
		WHERE %s IN (SELECT %s FROM %s WHERE %s = $1)`,
		schema.ContentLike.Table, schema.ContentLike.CommentID,
		schema.ContentComment.ID, schema.ContentComment.Table, schema.ContentComment.ParentID,
	)
	if _, err := transaction.Exec(context, deleteReplyLikes, comment.ID); err != nil {
		return fmt.Errorf("postgres_comment_repo_delete_reply_likes_failed: %w", err)
	}

	deleteReplies := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		schema.ContentComment.Table, schema.ContentComment.ParentID)
	replies, err := transaction.Exec(context, deleteReplies, comment.ID)
	if err != nil {
		return fmt.Errorf("postgres_comment_repo_delete_replies_failed: %w", err)
	}

	deleteLikes := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		schema.ContentLike.Table, schema.ContentLike.CommentID)
	if _, err := transaction.Exec(context, deleteLikes, comment.ID); err != nil {
		return fmt.Errorf("postgres_comment_repo_delete_likes_failed: %w", err)
	}

	deleteComment := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		schema.ContentComment.Table, schema.ContentComment.ID)
	result, err := transaction.Exec(context, deleteComment, comment.ID)
	if err != nil {
		return fmt.Errorf("postgres_comment_repo_delete_failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("Comment")
	}

	// The post loses this comment plus every reply removed with it
	settlePost := fmt.Sprintf("UPDATE %s SET %s = %s - $2 WHERE %s = $1",
		schema.ContentPost.Table,
		schema.ContentPost.CommentCount, schema.ContentPost.CommentCount,
		schema.ContentPost.ID)
	removed := 1 + replies.RowsAffected()
	if _, err := transaction.Exec(context, settlePost, comment.PostID, removed); err != nil {
		return fmt.Errorf("postgres_comment_repo_settle_post_failed: %w", err)
	}

	if comment.ParentID != nil {
		settleParent := fmt.Sprintf("UPDATE %s SET %s = %s - 1 WHERE %s = $1",
			schema.ContentComment.Table,
			schema.ContentComment.ReplyCount, schema.ContentComment.ReplyCount,
			schema.ContentComment.ID)
		if _, err := transaction.Exec(context, settleParent, *comment.ParentID); err != nil {
			return fmt.Errorf("postgres_comment_repo_settle_parent_failed: %w", err)
		}
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_comment_repo_delete_commit_failed: %w", err)
	}

	return nil
}
