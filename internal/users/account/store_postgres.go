// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package account

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
	"github.com/inkpost/inkpost/internal/platform/sec"
	"github.com/inkpost/inkpost/pkg/pagination"
)

// PostgresRepository implements the account Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the account Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const profileColumns = "id, fullname, username, email, profileimage, role, isactive, createdat, updatedat"

// scanProfile hydrates one profile row.
func scanProfile(row pgx.Row) (*Profile, error) {
	profile := &Profile{}
	err := row.Scan(
		&profile.ID,
		&profile.FullName,
		&profile.Username,
		&profile.Email,
		&profile.ProfileImage,
		&profile.Role,
		&profile.IsActive,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

/*
FindByID retrieves a profile by its unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *Profile: Hydrated projection
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Profile, error) {
	query := fmt.Sprintf("SELECT %s FROM users.account WHERE id = $1", profileColumns)

	profile, err := scanProfile(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_account_repo_find_by_id_failed: %w", err)
	}

	return profile, nil
}

/*
List returns a cursor-paginated page of profiles, newest first.

Description: UUIDv7 IDs are time-ordered, so "id < cursor DESC" walks the
member list from newest to oldest without a timestamp index.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*Profile: Page of profiles
  - error: Retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, params pagination.Params) ([]*Profile, error) {
	query := fmt.Sprintf("SELECT %s FROM users.account", profileColumns)
	args := []any{}

	if params.Cursor != "" {
		query += " WHERE id < $1"
		args = append(args, params.Cursor)
	}

	query += fmt.Sprintf(" ORDER BY id DESC LIMIT %d", params.Limit)

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres_account_repo_list_failed: %w", err)
	}
	defer rows.Close()

	profiles := make([]*Profile, 0, params.Limit)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_account_repo_list_scan_failed: %w", err)
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_account_repo_list_rows_failed: %w", err)
	}

	return profiles, nil
}

/*
UpdateProfile persists changes to the mutable profile fields.

Parameters:
  - context: context.Context
  - profile: *Profile

Returns:
  - error: apperr.Conflict on username collisions, update failures
*/
func (repository *PostgresRepository) UpdateProfile(context context.Context, profile *Profile) error {
	const query = `
		UPDATE users.account
		SET fullname = $2, username = $3, profileimage = $4, updatedat = $5
		WHERE id = $1`

	profile.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		profile.ID,
		profile.FullName,
		profile.Username,
		profile.ProfileImage,
		profile.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Username is already taken")
		}
		return fmt.Errorf("postgres_account_repo_update_failed: %w", err)
	}

	return nil
}

/*
UpdateRole replaces the account's role.

Parameters:
  - context: context.Context
  - userID: string
  - role: sec.UserRole

Returns:
  - error: Execution errors
*/
func (repository *PostgresRepository) UpdateRole(context context.Context, userID string, role sec.UserRole) error {
	const query = "UPDATE users.account SET role = $2, updatedat = $3 WHERE id = $1"

	_, err := repository.pool.Exec(context, query, userID, role, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_account_repo_update_role_failed: %w", err)
	}

	return nil
}

/*
Delete permanently removes the account and everything it owns, settling the
denormalized counters on surviving content in the same transaction.

Description: Runs in three phases. First the user's posts disappear with
everything attached to them — no counters survive there. Then the user's
comments (and the replies under them, whoever wrote those) are removed from
other members' posts, after decrementing each affected post's comment count
and each surviving parent's reply count by exactly the rows being taken.
Finally the user's remaining votes are backed out of the like/dislike
tallies they once incremented, and the account row itself goes. Stored
refresh tokens cascade with the row.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound for an unknown account, or transaction failures
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_account_repo_delete_begin_failed: %w", err)
	}
	defer transaction.Rollback(context)

	for _, statement := range purgeStatements() {
		if _, err := transaction.Exec(context, statement, id); err != nil {
			return fmt.Errorf("postgres_account_repo_purge_failed: %w", err)
		}
	}

	result, err := transaction.Exec(context, "DELETE FROM users.account WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("postgres_account_repo_delete_failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_account_repo_delete_commit_failed: %w", err)
	}

	return nil
}

// purgeStatements returns the ordered content-removal statements executed
// before the account row delete. Each takes the user ID as $1. The order
// matters: the user's own posts go first so the later settlement phases
// only ever see the user's footprint on other members' content.
func purgeStatements() []string {
	post := schema.ContentPost
	comment := schema.ContentComment
	like := schema.ContentLike

	ownPosts := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		post.ID, post.Table, post.AuthorID)

	// Comments being removed in phase two: authored by the user, plus every
	// reply sitting under one of them.
	doomedComments := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 OR %s IN (SELECT %s FROM %s WHERE %s = $1)",
		comment.ID, comment.Table, comment.AuthorID,
		comment.ParentID, comment.ID, comment.Table, comment.AuthorID)

	return []string{
		// Phase one: the user's posts and everything attached to them.
		fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)",
			like.Table, like.PostID, ownPosts),
		fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)",
			comment.Table, comment.PostID, ownPosts),
		fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
			post.Table, post.AuthorID),

		// Phase two: the user's comments on surviving posts. Settle the
		// surviving parents' reply counts and the posts' comment counts
		// before removing the rows those numbers describe.
		fmt.Sprintf(`
			UPDATE %s AS parent
			SET %s = parent.%s - removed.total, %s = NOW()
			FROM (
				SELECT %s AS parentid, COUNT(*) AS total
				FROM %s
				WHERE %s = $1 AND %s IS NOT NULL
				GROUP BY %s
			) AS removed
			WHERE parent.%s = removed.parentid AND parent.%s <> $1`,
			comment.Table,
			comment.ReplyCount, comment.ReplyCount, comment.UpdatedAt,
			comment.ParentID,
			comment.Table,
			comment.AuthorID, comment.ParentID,
			comment.ParentID,
			comment.ID, comment.AuthorID),
		fmt.Sprintf(`
			UPDATE %s AS target
			SET %s = target.%s - removed.total, %s = NOW()
			FROM (
				SELECT %s AS postid, COUNT(*) AS total
				FROM (%s) AS doomed
				JOIN %s AS c ON c.%s = doomed.%s
				GROUP BY c.%s
			) AS removed
			WHERE target.%s = removed.postid`,
			post.Table,
			post.CommentCount, post.CommentCount, post.UpdatedAt,
			"c."+comment.PostID, doomedComments,
			comment.Table, comment.ID, comment.ID,
			comment.PostID,
			post.ID),
		fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)",
			like.Table, like.CommentID, doomedComments),
		fmt.Sprintf("DELETE FROM %s WHERE %s IN (SELECT %s FROM %s WHERE %s = $1)",
			comment.Table, comment.ParentID, comment.ID, comment.Table, comment.AuthorID),
		fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
			comment.Table, comment.AuthorID),

		// Phase three: back the user's remaining votes out of the tallies.
		fmt.Sprintf(`
			UPDATE %s AS target
			SET %s = target.%s - removed.likes, %s = target.%s - removed.dislikes
			FROM (
				SELECT %s,
				       COUNT(*) FILTER (WHERE %s) AS likes,
				       COUNT(*) FILTER (WHERE NOT %s) AS dislikes
				FROM %s
				WHERE %s = $1 AND %s IS NULL
				GROUP BY %s
			) AS removed
			WHERE target.%s = removed.%s`,
			post.Table,
			post.LikeCount, post.LikeCount, post.DislikeCount, post.DislikeCount,
			like.PostID,
			like.IsLiked, like.IsLiked,
			like.Table,
			like.UserID, like.CommentID,
			like.PostID,
			post.ID, like.PostID),
		fmt.Sprintf(`
			UPDATE %s AS target
			SET %s = target.%s - removed.likes, %s = target.%s - removed.dislikes
			FROM (
				SELECT %s,
				       COUNT(*) FILTER (WHERE %s) AS likes,
				       COUNT(*) FILTER (WHERE NOT %s) AS dislikes
				FROM %s
				WHERE %s = $1 AND %s IS NOT NULL
				GROUP BY %s
			) AS removed
			WHERE target.%s = removed.%s`,
			comment.Table,
			comment.LikeCount, comment.LikeCount, comment.DislikeCount, comment.DislikeCount,
			like.CommentID,
			like.IsLiked, like.IsLiked,
			like.Table,
			like.UserID, like.CommentID,
			like.CommentID,
			comment.ID, like.CommentID),
		fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
			like.Table, like.UserID),
	}
}
