// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package account

import (
	"context"
	"fmt"

	"github.com/inkpost/inkpost/internal/platform/apperr"
	"github.com/inkpost/inkpost/internal/platform/sanitize"
	"github.com/inkpost/inkpost/internal/platform/sec"
	"github.com/inkpost/inkpost/pkg/pagination"
)

// Service implements account management use cases.
type Service struct {
	repository Repository
}

// NewService constructs a new account [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

/*
GetProfile returns the caller's full profile.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Profile: Full projection including email and role
  - err: apperr.NotFound or retrieval failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*Profile, error) {
	return service.repository.FindByID(context, userID)
}

/*
GetPublicProfile returns another member's reduced profile.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *PublicProfile: Reduced projection
  - err: apperr.NotFound or retrieval failures
*/
func (service *Service) GetPublicProfile(context context.Context, userID string) (*PublicProfile, error) {
	profile, err := service.repository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return profile.Public(), nil
}

// UpdateProfileInput holds the self-service editable fields. Nil pointers
// leave the current value untouched.
type UpdateProfileInput struct {
	FullName     *string
	Username     *string
	ProfileImage *string
}

/*
UpdateProfile applies a partial update to the caller's own profile.

Description: Only provided fields change. Text fields pass through HTML
sanitization before persistence.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *Profile: Updated projection
  - err: Conflict on username collisions, NotFound, or update failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*Profile, error) {
	profile, err := service.repository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		profile.FullName = sanitize.Text(*input.FullName)
	}
	if input.Username != nil {
		profile.Username = sanitize.Text(*input.Username)
	}
	if input.ProfileImage != nil {
		profile.ProfileImage = sanitize.Text(*input.ProfileImage)
	}

	if err := service.repository.UpdateProfile(context, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

/*
DeleteAccount permanently removes the caller's account.

Description: A hard delete. The user's posts, comments, and votes are
removed in the same transaction, with the denormalized counters on other
members' content settled down by exactly what the user contributed; stored
refresh tokens go with the account row.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - err: Deletion failures
*/
func (service *Service) DeleteAccount(context context.Context, userID string) error {
	// Confirm existence so a repeat delete reports 404 instead of silently succeeding
	if _, err := service.repository.FindByID(context, userID); err != nil {
		return err
	}

	if err := service.repository.Delete(context, userID); err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	return nil
}

/*
List returns a cursor-paginated page of member profiles.

Description: Privileged operation (moderator and above), enforced at the
routing layer.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*Profile: Page of profiles
  - pagination.Meta: Cursor metadata
  - err: Retrieval failures
*/
func (service *Service) List(context context.Context, params pagination.Params) ([]*Profile, pagination.Meta, error) {
	profiles, err := service.repository.List(context, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	lastID := ""
	if len(profiles) > 0 {
		lastID = profiles[len(profiles)-1].ID
	}

	return profiles, pagination.NewMeta(lastID, len(profiles), params), nil
}

/*
ChangeRole assigns a new role to the target account.

Description: Admin-only operation. Assigning the role the account already
holds is rejected with Conflict so accidental repeats are visible to the
caller.

Parameters:
  - context: context.Context
  - targetUserID: string
  - role: sec.UserRole

Returns:
  - *Profile: Updated projection
  - err: ValidationError, Conflict, NotFound, or update failures
*/
func (service *Service) ChangeRole(context context.Context, targetUserID string, role sec.UserRole) (*Profile, error) {
	if !role.IsValid() {
		return nil, apperr.ValidationError("Unknown role", apperr.FieldError{
			Field:   FieldRole,
			Message: "must be one of: user, moderator, admin",
		})
	}

	profile, err := service.repository.FindByID(context, targetUserID)
	if err != nil {
		return nil, err
	}

	if profile.Role == role {
		return nil, apperr.Conflict("User already holds this role")
	}

	if err := service.repository.UpdateRole(context, targetUserID, role); err != nil {
		return nil, err
	}

	profile.Role = role
	return profile, nil
}
