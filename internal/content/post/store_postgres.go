// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package post

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

// NewRepository creates a new PostgreSQL implementation of the post Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Create persists a new post record into the content.post table.

Description: Counters start at zero; the blocks sequence is stored as one
JSONB document, anchors and tags as text arrays.

Parameters:
  - context: context.Context
  - post: *Post (Entity to persist)

Returns:
  - error: Insert failures
*/
func (repository *PostgresRepository) Create(context context.Context, post *Post) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		schema.ContentPost.Table,
		schema.ContentPost.ID, schema.ContentPost.AuthorID, schema.ContentPost.Title, schema.ContentPost.Subtitle,
		schema.ContentPost.Blocks, schema.ContentPost.Anchors, schema.ContentPost.CoverImage, schema.ContentPost.Tags,
		schema.ContentPost.CreatedAt, schema.ContentPost.UpdatedAt,
	)

	now := time.Now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		post.ID,
		post.AuthorID,
		post.Title,
		post.Subtitle,
		post.Blocks,
		post.Anchors,
		post.CoverImage,
		post.Tags,
		post.CreatedAt,
		post.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_post_repo_create_failed: %w", err)
	}

	return nil
}

// postProjection is the SELECT column list shared by the read paths,
// including the author join columns.
func postProjection() string {
	return fmt.Sprintf(`
		p.%s, p.%s, p.%s, p.%s, p.%s, p.%s, p.%s, p.%s,
		p.%s, p.%s, p.%s, p.%s, p.%s,
		a.%s, a.%s`,
		schema.ContentPost.ID, schema.ContentPost.AuthorID, schema.ContentPost.Title, schema.ContentPost.Subtitle,
		schema.ContentPost.Blocks, schema.ContentPost.Anchors, schema.ContentPost.CoverImage, schema.ContentPost.Tags,
		schema.ContentPost.LikeCount, schema.ContentPost.DislikeCount, schema.ContentPost.CommentCount,
		schema.ContentPost.CreatedAt, schema.ContentPost.UpdatedAt,
		schema.UserAccount.FullName, schema.UserAccount.ProfileImage,
	)
}

// scanPost hydrates one post row, including the author projection.
func scanPost(row pgx.Row) (*Post, error) {
	post := &Post{Author: &Author{}}
	err := row.Scan(
		&post.ID,
		&post.AuthorID,
		&post.Title,
		&post.Subtitle,
		&post.Blocks,
		&post.Anchors,
		&post.CoverImage,
		&post.Tags,
		&post.LikeCount,
		&post.DislikeCount,
		&post.CommentCount,
		&post.CreatedAt,
		&post.UpdatedAt,
		&post.Author.FullName,
		&post.Author.ProfileImage,
	)
	if err != nil {
		return nil, err
	}
	post.Author.ID = post.AuthorID
	return post, nil
}

/*
FindByID retrieves one post with its full author projection.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *Post: Hydrated entity with author fullname and profile image
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Post, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s p
		JOIN %s a ON a.%s = p.%s
		WHERE p.%s = $1`,
		postProjection(),
		schema.ContentPost.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.ContentPost.AuthorID,
		schema.ContentPost.ID,
	)

	post, err := scanPost(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Post")
		}
		return nil, fmt.Errorf("postgres_post_repo_find_failed: %w", err)
	}

	return post, nil
}

/*
List returns one cursor page of the post feed.

Description: Builds the WHERE clause dynamically from the search and tag
filters plus the cursor condition for the requested sort. The "top" sort
needs the cursor row's own like count for its compound condition, so the
cursor must resolve to an existing post or the request is rejected as a
validation error rather than treated as an empty feed.

Parameters:
  - context: context.Context
  - filter: ListFilter (search text, normalized tag set)
  - params: pagination.Params (cursor, limit, sort)

Returns:
  - []*Post: Page of posts with author fullname projected
  - error: Invalid-cursor validation error or execution errors
*/
func (repository *PostgresRepository) List(context context.Context, filter ListFilter, params pagination.Params) ([]*Post, error) {
	var conditions []string
	var args []interface{}
	argID := 1

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(p.%s ILIKE $%d OR p.%s ILIKE $%d)",
			schema.ContentPost.Title, argID, schema.ContentPost.Subtitle, argID))
		args = append(args, "%"+filter.Search+"%")
		argID++
	}

	if len(filter.Tags) > 0 {
		conditions = append(conditions, fmt.Sprintf("p.%s && $%d", schema.ContentPost.Tags, argID))
		args = append(args, filter.Tags)
		argID++
	}

	var orderBy string
	switch params.Sort {
	case pagination.SortOldest:
		orderBy = fmt.Sprintf("p.%s ASC", schema.ContentPost.ID)
		if params.Cursor != "" {
			conditions = append(conditions, fmt.Sprintf("p.%s > $%d", schema.ContentPost.ID, argID))
			args = append(args, params.Cursor)
			argID++
		}

	case pagination.SortTop:
		orderBy = fmt.Sprintf("p.%s DESC, p.%s DESC", schema.ContentPost.LikeCount, schema.ContentPost.ID)
		if params.Cursor != "" {
			cursorLikes, err := repository.likesAt(context, params.Cursor)
			if err != nil {
				return nil, err
			}
			conditions = append(conditions, fmt.Sprintf("(p.%s < $%d OR (p.%s = $%d AND p.%s < $%d))",
				schema.ContentPost.LikeCount, argID, schema.ContentPost.LikeCount, argID, schema.ContentPost.ID, argID+1))
			args = append(args, cursorLikes, params.Cursor)
			argID += 2
		}

	default: // newest
		orderBy = fmt.Sprintf("p.%s DESC", schema.ContentPost.ID)
		if params.Cursor != "" {
			conditions = append(conditions, fmt.Sprintf("p.%s < $%d", schema.ContentPost.ID, argID))
			args = append(args, params.Cursor)
			argID++
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s p
		JOIN %s a ON a.%s = p.%s
		%s
		ORDER BY %s
		LIMIT $%d`,
		postProjection(),
		schema.ContentPost.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.ContentPost.AuthorID,
		whereClause,
		orderBy,
		argID,
	)
	args = append(args, params.Limit)

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres_post_repo_list_failed: %w", err)
	}
	defer rows.Close()

	posts := []*Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_post_repo_list_scan_failed: %w", err)
		}
		// List projection carries the author name only
		post.Author.ProfileImage = ""
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_post_repo_list_rows_failed: %w", err)
	}

	return posts, nil
}

// likesAt resolves the like count of the cursor row for the "top" sort.
// A cursor pointing at a missing post is a client error, not an empty page.
func (repository *PostgresRepository) likesAt(context context.Context, cursor string) (int, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		schema.ContentPost.LikeCount, schema.ContentPost.Table, schema.ContentPost.ID)

	var likes int
	err := repository.pool.QueryRow(context, query, cursor).Scan(&likes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperr.ValidationError("Invalid pagination cursor")
		}
		return 0, fmt.Errorf("postgres_post_repo_cursor_lookup_failed: %w", err)
	}

	return likes, nil
}

/*
Update rewrites the editable columns of one post.

Description: The service layer loads the entity, applies the partial input,
and hands back the full row; counters and authorship are deliberately
excluded from the SET list.

Parameters:
  - context: context.Context
  - post: *Post (Entity carrying the new column values)

Returns:
  - error: apperr.NotFound when the row vanished, or execution errors
*/
func (repository *PostgresRepository) Update(context context.Context, post *Post) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8
		WHERE %s = $1`,
		schema.ContentPost.Table,
		schema.ContentPost.Title, schema.ContentPost.Subtitle, schema.ContentPost.Blocks,
		schema.ContentPost.Anchors, schema.ContentPost.CoverImage, schema.ContentPost.Tags,
		schema.ContentPost.UpdatedAt,
		schema.ContentPost.ID,
	)

	post.UpdatedAt = time.Now()

	result, err := repository.pool.Exec(context, query,
		post.ID,
		post.Title,
		post.Subtitle,
		post.Blocks,
		post.Anchors,
		post.CoverImage,
		post.Tags,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_post_repo_update_failed: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("Post")
	}

	return nil
}

/*
Delete removes a post together with everything referencing it.

Description: One transaction deletes the post's likes (both post-level votes
and votes on its comments), all of its comments across nesting levels, and
finally the post row itself. Partial deletion is never observable.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound for an unknown post, or transaction failures
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_post_repo_delete_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	deleteLikes := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		schema.ContentLike.Table, schema.ContentLike.PostID)
	if _, err := transaction.Exec(context, deleteLikes, id); err != nil {
		return fmt.Errorf("postgres_post_repo_delete_likes_failed: %w", err)
	}

	deleteComments := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		schema.ContentComment.Table, schema.ContentComment.PostID)
	if _, err := transaction.Exec(context, deleteComments, id); err != nil {
		return fmt.Errorf("postgres_post_repo_delete_comments_failed: %w", err)
	}

	deletePost := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		schema.ContentPost.Table, schema.ContentPost.ID)
	result, err := transaction.Exec(context, deletePost, id)
	if err != nil {
		return fmt.Errorf("postgres_post_repo_delete_failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("Post")
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_post_repo_delete_commit_failed: %w", err)
	}

	return nil
}
