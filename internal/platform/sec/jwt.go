// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small interfaces.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Token Verification Outcomes

var (
	// ErrTokenExpired marks a structurally valid, correctly signed token whose
	// lifetime has elapsed. The session machine prunes stored refresh tokens
	// only on this outcome — never on tampering.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenInvalid marks a malformed or forged token.
	ErrTokenInvalid = errors.New("sec: token invalid")
)

// AuthClaims represents the identity snapshot embedded inside a JWT.
//
// # Why a full snapshot?
//
// By embedding the profile fields directly inside the JWT, the
// authentication middleware can reconstruct the active user context
// WITHOUT querying the database on every single API request.
type AuthClaims struct {
	jwt.RegisteredClaims

	UserID       string   `json:"uid"`
	FullName     string   `json:"nam"`
	Username     string   `json:"unm"`
	Email        string   `json:"eml"`
	ProfileImage string   `json:"img,omitempty"`
	Role         UserRole `json:"rol"`
}

// TokenService handles generation and verification of JWT tokens using HS256.
//
// Both access and refresh tokens are signed with the same server secret;
// they differ only in TTL. Verification is stateless — persistence of
// refresh tokens is the caller's concern.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a new TokenService signing with the given secret.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: token secret must not be empty")
	}

	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
	}, nil
}

// GenerateToken creates a signed JWT carrying the identity snapshot.
//
// # Parameters
//   - snapshot: The identity to embed (registered claims are overwritten).
//   - timeToLive: The duration before the token expires.
func (service *TokenService) GenerateToken(snapshot AuthClaims, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	snapshot.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   snapshot.UserID,
		Issuer:    service.issuer,
		IssuedAt:  jwt.NewNumericDate(currentTime),
		ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, snapshot)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature and validity of a JWT string.
//
// # Returns
//   - The embedded claims on success.
//   - [ErrTokenExpired] when the signature is good but the TTL has elapsed.
//   - [ErrTokenInvalid] for malformed or forged tokens.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
