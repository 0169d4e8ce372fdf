// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: apperr.Conflict on unique violations, other persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error

	/*
		Activate flips the account to isactive = true.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	Activate(context context.Context, userID string) error
}

// # Refresh Token Data Access

// RefreshTokenRepository defines the data access contract for stored refresh tokens.
type RefreshTokenRepository interface {

	/*
		Create persists a new refresh token row for an authenticated login.

		Parameters:
		  - context: context.Context
		  - token: *RefreshToken

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, token *RefreshToken) error

	/*
		FindByTokenHash returns the stored token matching the given hash.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - *RefreshToken: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByTokenHash(context context.Context, tokenHash string) (*RefreshToken, error)

	/*
		DeleteByTokenHash removes one stored token (logout, expiry pruning).

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - error: Persistence failures
	*/
	DeleteByTokenHash(context context.Context, tokenHash string) error

	/*
		DeleteAllForUser removes every stored token belonging to the user,
		logging them out of all devices.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	DeleteAllForUser(context context.Context, userID string) error

	/*
		DeleteExpired physically removes tokens whose ExpiresAt is in the past.

		Parameters:
		  - context: context.Context

		Returns:
		  - error: Persistence failures
	*/
	DeleteExpired(context context.Context) error
}

// # Volatile Data Access

// OpaqueTokenRepository is the contract for single-use tokens held in volatile
// storage. Implementations must distinguish an expired token (apperr.Expired)
// from one that never existed (apperr.NotFound).
type OpaqueTokenRepository interface {

	/*
		Set stores a token associated with a userID for a limited duration.

		Parameters:
		  - context: context.Context
		  - token: string
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, token string, userID string, ttl time.Duration) error

	/*
		Get retrieves the userID associated with a given token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - string: UserID
		  - error: apperr.Expired, apperr.NotFound, or retrieval failures
	*/
	Get(context context.Context, token string) (string, error)

	/*
		Delete removes a token after successful use.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, token string) error
}

// ActivationTokenRepository stores volatile account activation tokens.
type ActivationTokenRepository interface {
	OpaqueTokenRepository
}

// ResetTokenRepository stores volatile password reset tokens.
type ResetTokenRepository interface {
	OpaqueTokenRepository
}
