// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpost/inkpost/internal/platform/sec"
)

func newTokenService(t *testing.T) *sec.TokenService {
	t.Helper()

	service, err := sec.NewTokenService("test-secret-at-least-32-characters", "inkpost.test")
	require.NoError(t, err)
	return service
}

func sampleClaims() sec.AuthClaims {
	return sec.AuthClaims{
		UserID:       "0190d1a2-0000-7000-8000-000000000001",
		FullName:     "Ada Lovelace",
		Username:     "ada",
		Email:        "ada@example.com",
		ProfileImage: "https://cdn.example.com/ada.png",
		Role:         sec.RoleModerator,
	}
}

func TestNewTokenService_RejectsEmptySecret(t *testing.T) {
	_, err := sec.NewTokenService("", "inkpost.test")
	assert.Error(t, err)
}

/*
TestTokenService_RoundTrip verifies that every field of the identity snapshot
survives signing and verification unchanged.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTokenService(t)
	snapshot := sampleClaims()

	signed, err := service.GenerateToken(snapshot, time.Hour)
	require.NoError(t, err)

	claims, err := service.VerifyToken(signed)
	require.NoError(t, err)

	assert.Equal(t, snapshot.UserID, claims.UserID)
	assert.Equal(t, snapshot.FullName, claims.FullName)
	assert.Equal(t, snapshot.Username, claims.Username)
	assert.Equal(t, snapshot.Email, claims.Email)
	assert.Equal(t, snapshot.ProfileImage, claims.ProfileImage)
	assert.Equal(t, snapshot.Role, claims.Role)
	assert.Equal(t, snapshot.UserID, claims.Subject)
	assert.Equal(t, "inkpost.test", claims.Issuer)
}

/*
TestTokenService_ExpiredToken verifies that a well-signed but elapsed token
yields the expiry sentinel, not the tamper sentinel. The distinction matters:
stored refresh tokens are pruned only on expiry.
*/
func TestTokenService_ExpiredToken(t *testing.T) {
	service := newTokenService(t)

	signed, err := service.GenerateToken(sampleClaims(), -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(signed)
	assert.ErrorIs(t, err, sec.ErrTokenExpired)
}

func TestTokenService_MalformedToken(t *testing.T) {
	service := newTokenService(t)

	_, err := service.VerifyToken("not.a.jwt")
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
}

/*
TestTokenService_ForeignSignature verifies that a token signed with a
different secret is rejected as invalid rather than expired.
*/
func TestTokenService_ForeignSignature(t *testing.T) {
	foreign, err := sec.NewTokenService("another-secret-entirely-unrelated!!", "inkpost.test")
	require.NoError(t, err)

	signed, err := foreign.GenerateToken(sampleClaims(), time.Hour)
	require.NoError(t, err)

	service := newTokenService(t)
	_, err = service.VerifyToken(signed)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
}

func TestTokenService_TamperedPayload(t *testing.T) {
	service := newTokenService(t)

	signed, err := service.GenerateToken(sampleClaims(), time.Hour)
	require.NoError(t, err)

	// Flip a character inside the payload segment.
	tampered := []byte(signed)
	middle := len(tampered) / 2
	if tampered[middle] == 'A' {
		tampered[middle] = 'B'
	} else {
		tampered[middle] = 'A'
	}

	_, err = service.VerifyToken(string(tampered))
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
}
