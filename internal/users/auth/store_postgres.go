// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

// PostgreSQL implementations of the auth storage contracts.
//
// # err Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
package auth

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
	"github.com/inkpost/inkpost/internal/platform/dberr"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
Create persists a new user record into the users.account table.

Description: Deep-persists account metadata, ensuring timestamps are initialized
if not provided. The unique indexes on email and username are the final
authority on identity collisions: a concurrent double-signup that slips past
the service-level pre-check surfaces here as a client-safe Conflict.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.Conflict on duplicate identity, connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, fullname, username, email, passwordhash, profileimage, role, isactive, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.FullName,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.ProfileImage,
		user.Role,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Email or username is already registered")
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByEmail retrieves a user record by their unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `
		SELECT id, fullname, username, email, passwordhash, profileimage, role, isactive, createdat, updatedat
		FROM users.account
		WHERE email = $1`

	user := &User{}
	err := repository.pool.QueryRow(context, query, email).Scan(
		&user.ID,
		&user.FullName,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.ProfileImage,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User not found with this email")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

/*
FindByUsername retrieves a user record by their unique username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	const query = `
		SELECT id, fullname, username, email, passwordhash, profileimage, role, isactive, createdat, updatedat
		FROM users.account
		WHERE username = $1`

	user := &User{}
	err := repository.pool.QueryRow(context, query, username).Scan(
		&user.ID,
		&user.FullName,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.ProfileImage,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User not found with this username")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_username_failed: %w", err)
	}

	return user, nil
}

/*
FindByID retrieves a user record by their unique ID.

Description: Primary key resolution for user accounts. The session machine
uses this for a fresh snapshot on every renewal, so role changes and profile
edits propagate into newly minted access tokens.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: Not found or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `
		SELECT id, fullname, username, email, passwordhash, profileimage, role, isactive, createdat, updatedat
		FROM users.account
		WHERE id = $1`

	user := &User{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&user.ID,
		&user.FullName,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.ProfileImage,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
UpdatePassword updates only the password hash for a specific user.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}

	return nil
}

/*
Activate flips the user's status to isactive = true.

Description: Post-activation cleanup to unlock login for the account.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Database errors
*/
func (repository *PostgresUserRepository) Activate(context context.Context, userID string) error {
	const query = "UPDATE users.account SET isactive = TRUE, updatedat = $2 WHERE id = $1"
	_, err := repository.pool.Exec(context, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_activate_failed: %w", err)
	}
	return nil
}

// # Refresh Token Repository

// PostgresRefreshTokenRepository implements the RefreshTokenRepository interface.
type PostgresRefreshTokenRepository struct {
	pool *pgxpool.Pool
}

// NewRefreshTokenRepository creates a new PostgreSQL implementation of RefreshTokenRepository.
func NewRefreshTokenRepository(pool *pgxpool.Pool) *PostgresRefreshTokenRepository {
	return &PostgresRefreshTokenRepository{pool: pool}
}

/*
Create persists a new refresh token row into the users.refreshtoken table.

Parameters:
  - context: context.Context
  - token: *RefreshToken

Returns:
  - error: Storage failures
*/
func (repository *PostgresRefreshTokenRepository) Create(context context.Context, token *RefreshToken) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s
		) VALUES ($1, $2, $3, $4, $5)`,
		schema.UserRefreshToken.Table,
		strings.Join(schema.UserRefreshToken.Columns(), ", "),
	)

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.ExpiresAt,
		token.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_refresh_token_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByTokenHash retrieves a stored refresh token by its unique hash.

Description: Securely resolves a presented refresh token into its stored row.
The row itself is returned even if past ExpiresAt — the service layer owns
the expiry verdict so it can prune the row and report the precise outcome.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - *RefreshToken: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresRefreshTokenRepository) FindByTokenHash(context context.Context, tokenHash string) (*RefreshToken, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		strings.Join(schema.UserRefreshToken.Columns(), ", "),
		schema.UserRefreshToken.Table,
		schema.UserRefreshToken.TokenHash,
	)

	token := &RefreshToken{}
	err := repository.pool.QueryRow(context, query, tokenHash).Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Refresh token")
		}
		return nil, fmt.Errorf("postgres_refresh_token_repo_find_failed: %w", err)
	}

	return token, nil
}

/*
DeleteByTokenHash removes one stored refresh token.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - error: Deletion failures
*/
func (repository *PostgresRefreshTokenRepository) DeleteByTokenHash(context context.Context, tokenHash string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		schema.UserRefreshToken.Table, schema.UserRefreshToken.TokenHash)
	_, err := repository.pool.Exec(context, query, tokenHash)
	if err != nil {
		return fmt.Errorf("postgres_refresh_token_repo_delete_failed: %w", err)
	}
	return nil
}

/*
DeleteAllForUser removes every stored refresh token belonging to the user.

Description: Security nuking of all devices after a password reset or
account deletion.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Batch deletion failures
*/
func (repository *PostgresRefreshTokenRepository) DeleteAllForUser(context context.Context, userID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		schema.UserRefreshToken.Table, schema.UserRefreshToken.UserID)
	_, err := repository.pool.Exec(context, query, userID)
	if err != nil {
		return fmt.Errorf("postgres_refresh_token_repo_delete_all_failed: %w", err)
	}
	return nil
}

/*
DeleteExpired permanently removes all tokens that have passed their expiration.

Description: Cleanup task to reclaim storage from stale sessions.

Parameters:
  - context: context.Context

Returns:
  - error: Cleanup failures
*/
func (repository *PostgresRefreshTokenRepository) DeleteExpired(context context.Context) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s <= NOW()",
		schema.UserRefreshToken.Table, schema.UserRefreshToken.ExpiresAt)
	_, err := repository.pool.Exec(context, query)
	if err != nil {
		return fmt.Errorf("postgres_refresh_token_repo_delete_expired_failed: %w", err)
	}
	return nil
}
