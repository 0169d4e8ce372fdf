// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

/*
Package account implements user profile management and administration.

It covers the self-service surface (viewing, editing, and deleting one's own
profile) and the privileged surface (listing members, changing roles).

# Separation from auth

The auth package owns credentials and sessions; this package owns everything
about the account that is visible after login. Both operate on the same
users.account table through their own repositories.
*/
package account

import (
	"time"

	"github.com/inkpost/inkpost/internal/platform/sec"
)

// Profile is the account projection exposed over the API. It never carries
// credential material.
type Profile struct {
	ID           string       `json:"id"`
	FullName     string       `json:"fullname"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	ProfileImage string       `json:"profile_image,omitempty"`
	Role         sec.UserRole `json:"role"`
	IsActive     bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// PublicProfile is the reduced projection shown to other members.
type PublicProfile struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullname"`
	Username     string    `json:"username"`
	ProfileImage string    `json:"profile_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public strips the private fields from a profile.
func (profile *Profile) Public() *PublicProfile {
	return &PublicProfile{
		ID:           profile.ID,
		FullName:     profile.FullName,
		Username:     profile.Username,
		ProfileImage: profile.ProfileImage,
		CreatedAt:    profile.CreatedAt,
	}
}

// # Field Identifiers

const (
	FieldFullName     = "fullname"
	FieldUsername     = "username"
	FieldProfileImage = "profile_image"
	FieldRole         = "role"
	FieldUserID       = "userID"
	FieldMessage      = "message"
)
