// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

/*
Package auth implements the user identity and session management layer.

It defines the core domain entities (User, RefreshToken) and logic for
authentication, authorization, and account lifecycle.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import (
	"time"

	"github.com/inkpost/inkpost/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the Inkpost platform.
type User struct {
	ID           string       `json:"id"`
	FullName     string       `json:"fullname"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	ProfileImage string       `json:"profile_image,omitempty"`
	Role         sec.UserRole `json:"role"`
	// IsActive is false until the activation token is redeemed. Inactive
	// accounts cannot log in.
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RefreshToken represents one stored long-lived credential. A user holds one
// row per device; presenting the matching token (resolved by SHA-256 hash)
// lets the session middleware mint fresh access tokens.
type RefreshToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"` // Hashed value of the refresh token. Omitted for security.
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldFullName    = "fullname"
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldLogin       = "login"
	FieldToken       = "token"
	FieldNewPassword = "new_password"
	FieldAccessToken = "access_token"
	FieldTokenType   = "token_type"
	FieldExpiresIn   = "expires_in"
	FieldUser        = "user"
	FieldMessage     = "message"
)
