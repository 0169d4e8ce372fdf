// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

// Package middleware provides the HTTP middleware chain for the Inkpost API server.
//
// # Architecture
//
// Middleware intercepts incoming HTTP requests to apply global policies
// before they reach the domain handlers. This includes cross-cutting concerns
// like Logging, AuthZ/AuthN, Rate Limiting, and CORS.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/inkpost/inkpost/internal/platform/apperr"
	"github.com/inkpost/inkpost/internal/platform/constants"
	"github.com/inkpost/inkpost/internal/platform/ctxkey"
	"github.com/inkpost/inkpost/internal/platform/ctxutil"
	"github.com/inkpost/inkpost/internal/platform/respond"
	"github.com/inkpost/inkpost/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the `auth` service
// implementation, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// SessionRenewer exchanges a refresh token for a fresh access token. It is the
// fallback path of the session state machine: when a request arrives with an
// expired (or missing) access token but carries the refresh cookie, the
// middleware silently mints a new access token and the request proceeds as
// authenticated.
type SessionRenewer interface {
	Renew(ctx context.Context, refreshToken string) (*sec.AuthClaims, string, error)
}

// Authenticate resolves the caller's identity from the Authorization header,
// falling back to the refresh cookie for silent session renewal.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If present and valid, inject [*sec.AuthClaims] into the context (fast path).
//  3. If the token is expired, or no header was sent, look for the refresh
//     cookie and attempt renewal via [SessionRenewer]. On success the new
//     access token is stashed in the context so the response layer can surface
//     it to the client.
//  4. A malformed or forged token aborts with 401. A failed renewal clears the
//     stale cookie; the request then proceeds as anonymous (an expired bearer
//     with no usable refresh token still aborts with 401).
func Authenticate(verifier TokenVerifier, renewer SessionRenewer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Access Token Fast Path ─────────────────────────────────────
			if authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
					respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
					return
				}

				claims, err := verifier.VerifyToken(parts[1])
				if err == nil {
					ctx := context.WithValue(request.Context(), ctxkey.KeyUser, claims)
					next.ServeHTTP(writer, request.WithContext(ctx))
					return
				}

				// Only an expired signature earns the fallback; anything else
				// is a forged or corrupted token.
				if !errors.Is(err, sec.ErrTokenExpired) {
					respond.Error(writer, request, apperr.Unauthorized("Invalid token"))
					return
				}

				if !renewFromCookie(writer, request, renewer, next) {
					respond.Error(writer, request, apperr.Unauthorized("Session expired, please log in again"))
				}
				return
			}

			// ── 2. Refresh Cookie Fallback ────────────────────────────────────
			if renewFromCookie(writer, request, renewer, next) {
				return
			}

			// ── 3. Anonymous Access ───────────────────────────────────────────
			next.ServeHTTP(writer, request)
		})
	}
}

// renewFromCookie attempts the silent-renewal path. It reports whether the
// request was handled (i.e. a cookie existed and renewal succeeded, and the
// downstream handler has run).
func renewFromCookie(writer http.ResponseWriter, request *http.Request, renewer SessionRenewer, next http.Handler) bool {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	claims, accessToken, err := renewer.Renew(request.Context(), cookie.Value)
	if err != nil {
		// The refresh token is gone or expired server-side. Clear the stale
		// cookie so the client stops retrying with it.
		clearRefreshCookie(writer)
		return false
	}

	ctx := context.WithValue(request.Context(), ctxkey.KeyUser, claims)
	ctx = ctxutil.WithRenewedToken(ctx, accessToken)
	next.ServeHTTP(writer, request.WithContext(ctx))
	return true
}

func clearRefreshCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
//
// # Flow
//  1. Check if [*sec.AuthClaims] exists in context.
//  2. If missing, abort with HTTP 401 Unauthorized.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := GetUser(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests if the authenticated user doesn't have the required role.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It automatically implies
// [RequireAuth] so you don't need to mount both.
//
// # Flow
//  1. Check if [*sec.AuthClaims] exists in context (implies AuthN).
//  2. Check if the user's role meets or exceeds the target role using [sec.UserRole.AtLeast].
//  3. If insufficient, abort with HTTP 403 Forbidden.
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := GetUser(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !claims.Role.AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// RequireAction blocks requests whose authenticated user may not perform the
// given privileged action, as decided by the [sec.UserRole.Can] gate.
func RequireAction(action sec.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := GetUser(request.Context())

			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			if !claims.Role.Can(action) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// GetUser retrieves the [*sec.AuthClaims] from the [context.Context].
//
// # Returns
//   - A pointer to [*sec.AuthClaims] if the user is authenticated.
//   - nil if the user is anonymous.
func GetUser(ctx context.Context) *sec.AuthClaims {
	claims, ok := ctx.Value(ctxkey.KeyUser).(*sec.AuthClaims)
	if !ok {
		return nil
	}
	return claims
}
