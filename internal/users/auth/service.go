// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

/*
Package auth implements the core identity and access management (IAM) system.

It handles everything from user registration and secure password hashing to
session lifecycle management via short-lived access tokens and stored refresh
tokens, plus single-use activation and password-reset tokens held in Redis.

Architecture:

  - Service: Orchestrates business logic (Signup, Login, Renew).
  - Repository: Abstracted interfaces for Postgres (Users, Refresh Tokens)
    and Redis (Activation/Reset Tokens).
  - Security: Leverages bcrypt hashing and HS256-signed JWTs.

The package ensures that identity data remains consistent and secure throughout
the platform's lifecycle.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inkpost/inkpost/internal/platform/apperr"
	"github.com/inkpost/inkpost/internal/platform/mail"
	"github.com/inkpost/inkpost/internal/platform/sec"
	"github.com/inkpost/inkpost/pkg/uuidv7"
)

// # Contracts & Types

// TokenProvider defines the contract for generating and verifying security tokens.
type TokenProvider interface {
	// GenerateToken creates a signed JWT carrying the identity snapshot.
	//
	// # Parameters
	//   - snapshot: The identity to embed.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateToken(snapshot sec.AuthClaims, timeToLive time.Duration) (string, error)

	// VerifyToken checks a JWT string, distinguishing expiry (sec.ErrTokenExpired)
	// from tampering (sec.ErrTokenInvalid).
	VerifyToken(tokenString string) (*sec.AuthClaims, error)
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.
type Service struct {
	userRepository            UserRepository
	refreshTokenRepository    RefreshTokenRepository
	activationTokenRepository ActivationTokenRepository
	resetTokenRepository      ResetTokenRepository
	tokenProvider             TokenProvider
	mailer                    mail.Mailer
	logger                    *slog.Logger
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	refreshRepo RefreshTokenRepository,
	activationRepo ActivationTokenRepository,
	resetRepo ResetTokenRepository,
	tokenProv TokenProvider,
	mailer mail.Mailer,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository:            userRepo,
		refreshTokenRepository:    refreshRepo,
		activationTokenRepository: activationRepo,
		resetTokenRepository:      resetRepo,
		tokenProvider:             tokenProv,
		mailer:                    mailer,
		logger:                    logger,
	}
}

// claimsFor builds the identity snapshot embedded into minted tokens.
func claimsFor(user *User) sec.AuthClaims {
	return sec.AuthClaims{
		UserID:       user.ID,
		FullName:     user.FullName,
		Username:     user.Username,
		Email:        user.Email,
		ProfileImage: user.ProfileImage,
		Role:         user.Role,
	}
}

// # Registration Flow

// SignupInput holds the data required to enroll a new member.
type SignupInput struct {
	FullName string
	Username string
	Email    string
	Password string
}

/*
Signup validates, hashes, and persists a brand new user account.

Description: Deep-enrollment of a new member. The account starts inactive;
an activation token is stored in Redis and mailed to the user. The account
becomes usable only after [Activate].

Parameters:
  - context: context.Context
  - input: SignupInput

Returns:
  - *User: Created entity
  - err: Conflict (if identity exists) or storage errors
*/
func (service *Service) Signup(context context.Context, input SignupInput) (*User, error) {

	// Verify email uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Verify username uniqueness. Return a client-safe Conflict err.
	_, err = service.userRepository.FindByUsername(context, input.Username)
	if err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuidv7.New(),
		FullName:     input.FullName,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         sec.RoleUser,
		IsActive:     false,
	}

	// Persist the user. The unique index still guards against the race where
	// two identical signups pass the pre-checks concurrently.
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	// Hand the activation token to the user's inbox
	if err := service.issueActivationToken(context, user); err != nil {
		// The account exists; a fresh token can be requested later.
		service.logger.Error("activation_token_issue_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	return user, nil
}

// issueActivationToken stores a fresh activation token and mails the link.
func (service *Service) issueActivationToken(context context.Context, user *User) error {
	token, err := sec.GenerateSecureToken(ActivationTokenLength)
	if err != nil {
		return fmt.Errorf("auth_service_generate_activation_token_failed: %w", err)
	}

	if err := service.activationTokenRepository.Set(context, token, user.ID, ActivationTokenTTL); err != nil {
		return fmt.Errorf("auth_service_save_activation_token_failed: %w", err)
	}

	// Email delivery is fire-and-forget; the stored token is the source of truth.
	go func() {
		if err := service.mailer.SendActivation(user.Email, user.FullName, token); err != nil {
			service.logger.Error("activation_email_failed",
				slog.String("user_id", user.ID),
				slog.Any("error", err),
			)
		}
	}()

	return nil
}

/*
Activate confirms an account using its single-use activation token.

Description: Resolves the token, flips the account to active, and burns the
token. An expired token reports EXPIRED (400) so clients can offer a resend,
distinct from an unknown token (404).

Parameters:
  - context: context.Context
  - token: string

Returns:
  - err: apperr.Expired, apperr.NotFound, or update failures
*/
func (service *Service) Activate(context context.Context, token string) error {

	// Resolve the userID behind the token
	userID, err := service.activationTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	// Unlock login for the account
	if err := service.userRepository.Activate(context, userID); err != nil {
		return fmt.Errorf("auth_service_activate_failed: %w", err)
	}

	// Burn the used token
	_ = service.activationTokenRepository.Delete(context, token)

	return nil
}

/*
ResendActivation issues a fresh activation token for a pending account.

Description: Replaces a lost or expired activation link. Already-active
accounts are rejected with Conflict. Unknown emails receive the same generic
success as known ones to prevent user enumeration.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - err: Conflict for active accounts, generation failures
*/
func (service *Service) ResendActivation(context context.Context, email string) error {
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		// Enumeration-safe: report success without doing anything.
		return nil
	}

	if user.IsActive {
		return apperr.Conflict("Account is already activated")
	}

	return service.issueActivationToken(context, user)
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login    string // Can be Username or Email
	Password string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login validates user credentials and issues security tokens.

Description: Verifies identity, performs constant-time password comparison,
and establishes a session: a short-lived access JWT for the client to hold
and a long-lived refresh JWT persisted by hash for the cookie fallback.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session identifiers
  - err: Unauthorized, Forbidden (inactive account), or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	var user *User
	var err error
	// Flexible login: look up by Email or Username
	user, err = service.userRepository.FindByEmail(context, input.Login)
	if err != nil {
		user, err = service.userRepository.FindByUsername(context, input.Login)
	}

	// If (err != nil) the user does not exist. Generic message to prevent enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Verify password hash using constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Pending accounts cannot establish sessions until activated
	if !user.IsActive {
		return nil, apperr.Forbidden("Account is not activated. Please check your email.")
	}

	return service.establishSession(context, user)
}

// establishSession mints the access/refresh token pair and persists the
// refresh token by hash.
func (service *Service) establishSession(context context.Context, user *User) (*LoginSession, error) {
	snapshot := claimsFor(user)

	// Generate short-lived Access Token
	accessToken, err := service.tokenProvider.GenerateToken(snapshot, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	// Generate long-lived Refresh Token. It is itself a JWT: the stored row
	// proves possession, the signature proves authenticity and carries expiry.
	refreshToken, err := service.tokenProvider.GenerateToken(snapshot, RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	// Persist the hashed token for the cookie fallback lookups
	expiresAt := time.Now().Add(RefreshTokenTTL)
	stored := &RefreshToken{
		ID:        uuidv7.New(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(refreshToken),
		ExpiresAt: expiresAt,
	}

	if err := service.refreshTokenRepository.Create(context, stored); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}

/*
Logout permanently removes the user's stored refresh token.

Description: Ensures that a tracked refresh token can never be used again.
Idempotent: logging out with an already-gone token still succeeds.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - err: Revocation failures
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {

	// Hash the refresh token and drop the matching row
	tokenHash := sec.HashToken(refreshToken)

	if err := service.refreshTokenRepository.DeleteByTokenHash(context, tokenHash); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// # Session Renewal

/*
Renew exchanges a refresh token for a fresh access token.

Description: The fallback path of the session state machine. The presented
token must (1) exist in storage — resolved by SHA-256 hash — and (2) carry a
valid, unexpired signature. An expired signature prunes the stored row; a
forged token leaves storage untouched. On success the user is re-read from
the database so the new access token reflects current role and profile state.
The refresh token itself is NOT rotated: it stays valid until expiry or logout.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *sec.AuthClaims: Fresh identity snapshot
  - string: Newly minted access token
  - err: Unauthorized or storage failures
*/
func (service *Service) Renew(context context.Context, refreshToken string) (*sec.AuthClaims, string, error) {

	// Possession check: the hash must match a stored row
	tokenHash := sec.HashToken(refreshToken)
	stored, err := service.refreshTokenRepository.FindByTokenHash(context, tokenHash)
	if err != nil {
		return nil, "", apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Authenticity check: the JWT signature and lifetime must hold
	if _, err := service.tokenProvider.VerifyToken(refreshToken); err != nil {
		if errors.Is(err, sec.ErrTokenExpired) {
			// The credential has aged out; prune the dead row.
			_ = service.refreshTokenRepository.DeleteByTokenHash(context, tokenHash)
		}
		return nil, "", apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Fresh snapshot: a role change or profile edit since login must land in
	// the minted token, so never trust the stale claims inside the refresh JWT.
	user, err := service.userRepository.FindByID(context, stored.UserID)
	if err != nil {
		return nil, "", apperr.Unauthorized("User not found or suspended")
	}

	snapshot := claimsFor(user)
	accessToken, err := service.tokenProvider.GenerateToken(snapshot, AccessTokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("auth_service_renew_access_token_failed: %w", err)
	}

	return &snapshot, accessToken, nil
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Generates a secure token, saves it to Redis, and mails the
reset link.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - err: Generation errors
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) error {
	// Look up user.
	// NOTE: We don't return NOT_FOUND if the email doesn't exist to prevent user enumeration.
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return nil
	}

	// Generate reset token
	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	// Save to Redis
	if err := service.resetTokenRepository.Set(context, token, user.ID, ResetTokenTTL); err != nil {
		return fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	// Email delivery is fire-and-forget
	go func() {
		if err := service.mailer.SendPasswordReset(user.Email, token); err != nil {
			service.logger.Error("reset_email_failed",
				slog.String("user_id", user.ID),
				slog.Any("error", err),
			)
		}
	}()

	return nil
}

/*
ValidateResetToken checks whether a reset token is still redeemable.

Description: Lets the frontend verify the link before showing the new-password
form, with the same Expired/NotFound distinction as redemption.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - err: apperr.Expired, apperr.NotFound, or retrieval failures
*/
func (service *Service) ValidateResetToken(context context.Context, token string) error {
	_, err := service.resetTokenRepository.Get(context, token)
	return err
}

/*
UpdatePassword completes the forgot-password flow.

Description: Verifies the token, hashes the new password, updates the DB,
and deletes every stored refresh token for security cleanup — all existing
sessions on all devices are forced to log in again.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - err: Validation or update failures
*/
func (service *Service) UpdatePassword(context context.Context, token, newPassword string) error {

	// Retrieve the userID associated with the reset token from Redis
	userID, err := service.resetTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	// Hash the new password securely
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	// Update the user's password in persistent storage
	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	// Security Cleanup: drop EVERY stored refresh token for this user
	_ = service.refreshTokenRepository.DeleteAllForUser(context, userID)

	// Delete the used token from Redis
	_ = service.resetTokenRepository.Delete(context, token)

	return nil
}

// VerifyToken exposes access-token verification for the authentication
// middleware. It satisfies the middleware's TokenVerifier contract.
func (service *Service) VerifyToken(tokenString string) (*sec.AuthClaims, error) {
	return service.tokenProvider.VerifyToken(tokenString)
}
