// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	// We keep it short (15m) to minimize the impact of a leaked token.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the duration a stored refresh token remains valid.
	// Long-lived (7 days) to provide a good user experience.
	RefreshTokenTTL = 7 * 24 * time.Hour

	// ActivationTokenTTL is the duration an account activation token remains valid.
	// Long-lived (24 hours) as users might not check email immediately.
	ActivationTokenTTL = 24 * time.Hour

	// ActivationTokenLength is the byte length of the random activation token.
	ActivationTokenLength = 32

	// ResetTokenTTL is the duration a password reset token remains valid.
	// Short-lived (1 hour) for security.
	ResetTokenTTL = 1 * time.Hour

	// ResetTokenLength is the byte length of the random password reset token.
	ResetTokenLength = 32

	// opaqueTokenGrace is how much longer than its logical TTL a token row
	// survives in Redis. The window lets the store tell "expired" apart from
	// "never existed" instead of both collapsing into a missing key.
	opaqueTokenGrace = 24 * time.Hour
)
