// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package auth

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpost/inkpost/internal/platform/apperr"
	"github.com/inkpost/inkpost/internal/platform/sec"
	"github.com/inkpost/inkpost/pkg/uuidv7"
)

// # In-Memory Fakes

type fakeUserRepository struct {
	mu    sync.Mutex
	users map[string]*User // keyed by ID
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*User)}
}

func (repository *fakeUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if user, ok := repository.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, apperr.NotFound("User")
}

func (repository *fakeUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	for _, user := range repository.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repository *fakeUserRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	for _, user := range repository.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repository *fakeUserRepository) Create(_ context.Context, user *User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	for _, existing := range repository.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return apperr.Conflict("Email or username is already registered")
		}
	}
	clone := *user
	repository.users[user.ID] = &clone
	return nil
}

func (repository *fakeUserRepository) UpdatePassword(_ context.Context, userID, newHash string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if user, ok := repository.users[userID]; ok {
		user.PasswordHash = newHash
	}
	return nil
}

func (repository *fakeUserRepository) Activate(_ context.Context, userID string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if user, ok := repository.users[userID]; ok {
		user.IsActive = true
	}
	return nil
}

func (repository *fakeUserRepository) setRole(userID string, role sec.UserRole) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if user, ok := repository.users[userID]; ok {
		user.Role = role
	}
}

type fakeRefreshTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]*RefreshToken // keyed by token hash
}

func newFakeRefreshTokenRepository() *fakeRefreshTokenRepository {
	return &fakeRefreshTokenRepository{tokens: make(map[string]*RefreshToken)}
}

func (repository *fakeRefreshTokenRepository) Create(_ context.Context, token *RefreshToken) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	clone := *token
	repository.tokens[token.TokenHash] = &clone
	return nil
}

func (repository *fakeRefreshTokenRepository) FindByTokenHash(_ context.Context, tokenHash string) (*RefreshToken, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if token, ok := repository.tokens[tokenHash]; ok {
		clone := *token
		return &clone, nil
	}
	return nil, apperr.NotFound("Refresh token")
}

func (repository *fakeRefreshTokenRepository) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	delete(repository.tokens, tokenHash)
	return nil
}

func (repository *fakeRefreshTokenRepository) DeleteAllForUser(_ context.Context, userID string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	for hash, token := range repository.tokens {
		if token.UserID == userID {
			delete(repository.tokens, hash)
		}
	}
	return nil
}

func (repository *fakeRefreshTokenRepository) DeleteExpired(_ context.Context) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	for hash, token := range repository.tokens {
		if token.ExpiresAt.Before(time.Now()) {
			delete(repository.tokens, hash)
		}
	}
	return nil
}

func (repository *fakeRefreshTokenRepository) count() int {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	return len(repository.tokens)
}

type fakeOpaqueTokenRepository struct {
	mu      sync.Mutex
	entries map[string]struct {
		userID    string
		expiresAt time.Time
	}
}

func newFakeOpaqueTokenRepository() *fakeOpaqueTokenRepository {
	return &fakeOpaqueTokenRepository{entries: make(map[string]struct {
		userID    string
		expiresAt time.Time
	})}
}

func (repository *fakeOpaqueTokenRepository) Set(_ context.Context, token, userID string, ttl time.Duration) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.entries[token] = struct {
		userID    string
		expiresAt time.Time
	}{userID: userID, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (repository *fakeOpaqueTokenRepository) Get(_ context.Context, token string) (string, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	entry, ok := repository.entries[token]
	if !ok {
		return "", apperr.NotFound("Token")
	}
	if time.Now().After(entry.expiresAt) {
		delete(repository.entries, token)
		return "", apperr.Expired("Token has expired, please request a new one")
	}
	return entry.userID, nil
}

func (repository *fakeOpaqueTokenRepository) Delete(_ context.Context, token string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	delete(repository.entries, token)
	return nil
}

func (repository *fakeOpaqueTokenRepository) lastToken() string {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	for token := range repository.entries {
		return token
	}
	return ""
}

type fakeMailer struct {
	mu          sync.Mutex
	activations int
	resets      int
}

func (mailer *fakeMailer) SendActivation(_, _, _ string) error {
	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	mailer.activations++
	return nil
}

func (mailer *fakeMailer) SendPasswordReset(_, _ string) error {
	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	mailer.resets++
	return nil
}

// # Test Harness

type serviceHarness struct {
	service          *Service
	users            *fakeUserRepository
	refreshTokens    *fakeRefreshTokenRepository
	activationTokens *fakeOpaqueTokenRepository
	resetTokens      *fakeOpaqueTokenRepository
	tokenService     *sec.TokenService
}

func newServiceHarness(t *testing.T) *serviceHarness {
	t.Helper()

	tokenService, err := sec.NewTokenService("test-secret-at-least-long-enough", "inkpost.test")
	require.NoError(t, err)

	users := newFakeUserRepository()
	refreshTokens := newFakeRefreshTokenRepository()
	activationTokens := newFakeOpaqueTokenRepository()
	resetTokens := newFakeOpaqueTokenRepository()

	service := NewService(
		users,
		refreshTokens,
		activationTokens,
		resetTokens,
		tokenService,
		&fakeMailer{},
		slog.Default(),
	)

	return &serviceHarness{
		service:          service,
		users:            users,
		refreshTokens:    refreshTokens,
		activationTokens: activationTokens,
		resetTokens:      resetTokens,
		tokenService:     tokenService,
	}
}

// signupAndActivate provisions a ready-to-login account.
func (harness *serviceHarness) signupAndActivate(t *testing.T, username, email, password string) *User {
	t.Helper()

	user, err := harness.service.Signup(context.Background(), SignupInput{
		FullName: "Test Person",
		Username: username,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	require.NoError(t, harness.users.Activate(context.Background(), user.ID))
	return user
}

// # Signup

func TestSignup_CreatesInactiveAccount(t *testing.T) {
	harness := newServiceHarness(t)

	user, err := harness.service.Signup(context.Background(), SignupInput{
		FullName: "Ada Lovelace",
		Username: "ada",
		Email:    "ada@example.com",
		Password: "correct-horse",
	})

	require.NoError(t, err)
	assert.False(t, user.IsActive)
	assert.Equal(t, sec.RoleUser, user.Role)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	// An activation token must be waiting for redemption
	assert.NotEmpty(t, harness.activationTokens.lastToken())
}

func TestSignup_DuplicateEmailConflicts(t *testing.T) {
	harness := newServiceHarness(t)
	harness.signupAndActivate(t, "first", "taken@example.com", "password-123")

	_, err := harness.service.Signup(context.Background(), SignupInput{
		FullName: "Second",
		Username: "second",
		Email:    "taken@example.com",
		Password: "password-123",
	})

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)
}

func TestSignup_DuplicateUsernameConflicts(t *testing.T) {
	harness := newServiceHarness(t)
	harness.signupAndActivate(t, "taken", "first@example.com", "password-123")

	_, err := harness.service.Signup(context.Background(), SignupInput{
		FullName: "Second",
		Username: "taken",
		Email:    "second@example.com",
		Password: "password-123",
	})

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)
}

// # Activation

func TestActivate_UnlocksLogin(t *testing.T) {
	harness := newServiceHarness(t)

	user, err := harness.service.Signup(context.Background(), SignupInput{
		FullName: "Pending Person",
		Username: "pending",
		Email:    "pending@example.com",
		Password: "password-123",
	})
	require.NoError(t, err)

	// Login is blocked while pending
	_, err = harness.service.Login(context.Background(), LoginInput{
		Login:    "pending@example.com",
		Password: "password-123",
	})
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "FORBIDDEN", appError.Code)

	// Redeem the activation token
	token := harness.activationTokens.lastToken()
	require.NotEmpty(t, token)
	require.NoError(t, harness.service.Activate(context.Background(), token))

	// The token is single-use
	err = harness.service.Activate(context.Background(), token)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	// Login now succeeds
	session, err := harness.service.Login(context.Background(), LoginInput{
		Login:    "pending@example.com",
		Password: "password-123",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.User.ID)
}

func TestActivate_ExpiredTokenReportsExpired(t *testing.T) {
	harness := newServiceHarness(t)
	userID := uuidv7.New()

	require.NoError(t, harness.activationTokens.Set(context.Background(), "stale-token", userID, -time.Minute))

	err := harness.service.Activate(context.Background(), "stale-token")

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "EXPIRED", appError.Code)
}

func TestResendActivation_ActiveAccountConflicts(t *testing.T) {
	harness := newServiceHarness(t)
	harness.signupAndActivate(t, "active", "active@example.com", "password-123")

	err := harness.service.ResendActivation(context.Background(), "active@example.com")

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)
}

func TestResendActivation_UnknownEmailIsSilent(t *testing.T) {
	harness := newServiceHarness(t)

	assert.NoError(t, harness.service.ResendActivation(context.Background(), "ghost@example.com"))
}

// # Login & Logout

func TestLogin_WrongPasswordRejected(t *testing.T) {
	harness := newServiceHarness(t)
	harness.signupAndActivate(t, "victim", "victim@example.com", "password-123")

	_, err := harness.service.Login(context.Background(), LoginInput{
		Login:    "victim@example.com",
		Password: "wrong-password",
	})

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "UNAUTHORIZED", appError.Code)
}

func TestLogin_ByUsernameOrEmail(t *testing.T) {
	harness := newServiceHarness(t)
	harness.signupAndActivate(t, "flexible", "flexible@example.com", "password-123")

	byEmail, err := harness.service.Login(context.Background(), LoginInput{
		Login:    "flexible@example.com",
		Password: "password-123",
	})
	require.NoError(t, err)

	byUsername, err := harness.service.Login(context.Background(), LoginInput{
		Login:    "flexible",
		Password: "password-123",
	})
	require.NoError(t, err)

	assert.Equal(t, byEmail.User.ID, byUsername.User.ID)
}

func TestLogin_StoresHashedRefreshToken(t *testing.T) {
	harness := newServiceHarness(t)
	harness.signupAndActivate(t, "holder", "holder@example.com", "password-123")

	session, err := harness.service.Login(context.Background(), LoginInput{
		Login:    "holder@example.com",
		Password: "password-123",
	})
	require.NoError(t, err)

	stored, err := harness.refreshTokens.FindByTokenHash(context.Background(), sec.HashToken(session.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, stored.UserID)
	assert.NotEqual(t, session.RefreshToken, stored.TokenHash)
}

func TestLogout_IsIdempotent(t *testing.T) {
	harness := newServiceHarness(t)
	harness.signupAndActivate(t, "leaver", "leaver@example.com", "password-123")

	session, err := harness.service.Login(context.Background(), LoginInput{
		Login:    "leaver@example.com",
		Password: "password-123",
	})
	require.NoError(t, err)

	require.NoError(t, harness.service.Logout(context.Background(), session.RefreshToken))
	assert.Equal(t, 0, harness.refreshTokens.count())

	// Logging out again with the same (now unknown) token still succeeds
	assert.NoError(t, harness.service.Logout(context.Background(), session.RefreshToken))
}

// # Session Renewal

func TestRenew_MintsFreshAccessToken(t *testing.T) {
	harness := newServiceHarness(t)
	user := harness.signupAndActivate(t, "renewer", "renewer@example.com", "password-123")

	session, err := harness.service.Login(context.Background(), LoginInput{
		Login:    "renewer@example.com",
		Password: "password-123",
	})
	require.NoError(t, err)

	claims, accessToken, err := harness.service.Renew(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// The minted token verifies and carries the same identity
	verified, err := harness.tokenService.VerifyToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.UserID)

	// No rotation: the refresh token row is untouched
	_, err = harness.refreshTokens.FindByTokenHash(context.Background(), sec.HashToken(session.RefreshToken))
	assert.NoError(t, err)
}

func TestRenew_PicksUpRoleChanges(t *testing.T) {
	harness := newServiceHarness(t)
	user := harness.signupAndActivate(t, "promoted", "promoted@example.com", "password-123")

	session, err := harness.service.Login(context.Background(), LoginInput{
		Login:    "promoted@example.com",
		Password: "password-123",
	})
	require.NoError(t, err)

	// Promote the user after login
	harness.users.setRole(user.ID, sec.RoleModerator)

	claims, _, err := harness.service.Renew(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleModerator, claims.Role)
}

func TestRenew_ExpiredTokenPrunesStoredRow(t *testing.T) {
	harness := newServiceHarness(t)
	user := harness.signupAndActivate(t, "expired", "expired@example.com", "password-123")

	// Forge a session whose refresh JWT is already past its lifetime
	expiredToken, err := harness.tokenService.GenerateToken(claimsFor(user), -time.Minute)
	require.NoError(t, err)
	require.NoError(t, harness.refreshTokens.Create(context.Background(), &RefreshToken{
		ID:        uuidv7.New(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(expiredToken),
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	_, _, err = harness.service.Renew(context.Background(), expiredToken)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	// The dead row was pruned
	assert.Equal(t, 0, harness.refreshTokens.count())
}

func TestRenew_ForgedTokenLeavesStorageUntouched(t *testing.T) {
	harness := newServiceHarness(t)
	harness.signupAndActivate(t, "target", "target@example.com", "password-123")

	session, err := harness.service.Login(context.Background(), LoginInput{
		Login:    "target@example.com",
		Password: "password-123",
	})
	require.NoError(t, err)
	require.Equal(t, 1, harness.refreshTokens.count())

	// An unknown token fails on the possession check
	_, _, err = harness.service.Renew(context.Background(), "completely-made-up")
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	// The legitimate session survives
	_, err = harness.refreshTokens.FindByTokenHash(context.Background(), sec.HashToken(session.RefreshToken))
	assert.NoError(t, err)
}

// # Password Recovery

func TestUpdatePassword_RevokesAllSessions(t *testing.T) {
	harness := newServiceHarness(t)
	harness.signupAndActivate(t, "forgetful", "forgetful@example.com", "old-password-1")

	// Two devices logged in
	for i := 0; i < 2; i++ {
		_, err := harness.service.Login(context.Background(), LoginInput{
			Login:    "forgetful@example.com",
			Password: "old-password-1",
		})
		require.NoError(t, err)
	}
	require.Equal(t, 2, harness.refreshTokens.count())

	// Request and redeem a reset
	require.NoError(t, harness.service.RequestPasswordReset(context.Background(), "forgetful@example.com"))
	token := harness.resetTokens.lastToken()
	require.NotEmpty(t, token)

	require.NoError(t, harness.service.UpdatePassword(context.Background(), token, "new-password-1"))

	// Every device was logged out
	assert.Equal(t, 0, harness.refreshTokens.count())

	// Old password no longer works, new one does
	_, err := harness.service.Login(context.Background(), LoginInput{
		Login:    "forgetful@example.com",
		Password: "old-password-1",
	})
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	_, err = harness.service.Login(context.Background(), LoginInput{
		Login:    "forgetful@example.com",
		Password: "new-password-1",
	})
	assert.NoError(t, err)
}

func TestRequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	harness := newServiceHarness(t)

	assert.NoError(t, harness.service.RequestPasswordReset(context.Background(), "nobody@example.com"))
	assert.Empty(t, harness.resetTokens.lastToken())
}

func TestValidateResetToken(t *testing.T) {
	harness := newServiceHarness(t)
	harness.signupAndActivate(t, "validator", "validator@example.com", "password-123")

	require.NoError(t, harness.service.RequestPasswordReset(context.Background(), "validator@example.com"))
	token := harness.resetTokens.lastToken()

	assert.NoError(t, harness.service.ValidateResetToken(context.Background(), token))
	assert.Equal(t, "NOT_FOUND", apperr.As(harness.service.ValidateResetToken(context.Background(), "unknown")).Code)
}
