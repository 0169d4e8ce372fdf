// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package account

import (
	"context"

	"github.com/inkpost/inkpost/internal/platform/sec"
	"github.com/inkpost/inkpost/pkg/pagination"
)

// Repository defines the data access contract for account profiles.
type Repository interface {

	/*
		FindByID returns the profile with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Profile: Hydrated projection
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByID(context context.Context, id string) (*Profile, error)

	/*
		List returns a cursor-paginated page of profiles, newest first.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params

		Returns:
		  - []*Profile: Page of profiles
		  - error: Retrieval failures
	*/
	List(context context.Context, params pagination.Params) ([]*Profile, error)

	/*
		UpdateProfile persists changes to the mutable profile fields.

		Parameters:
		  - context: context.Context
		  - profile: *Profile

		Returns:
		  - error: apperr.Conflict on username collisions, persistence failures
	*/
	UpdateProfile(context context.Context, profile *Profile) error

	/*
		UpdateRole replaces the account's role.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - role: sec.UserRole

		Returns:
		  - error: Persistence failures
	*/
	UpdateRole(context context.Context, userID string, role sec.UserRole) error

	/*
		Delete permanently removes the account together with its posts,
		comments, and votes, settling the comment and like/dislike counters
		on surviving content in the same transaction.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: apperr.NotFound for an unknown account, persistence failures
	*/
	Delete(context context.Context, id string) error
}
