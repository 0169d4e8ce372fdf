// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

/*
HTTP delivery layer for user identity management.

It implements the gateway for the authentication lifecycle — from account
creation and activation to session management and password recovery.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Security: Handles JWT orchestration and refresh token cookie injection.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inkpost/inkpost/internal/platform/apperr"
	"github.com/inkpost/inkpost/internal/platform/constants"
	requestutil "github.com/inkpost/inkpost/internal/platform/request"
	"github.com/inkpost/inkpost/internal/platform/respond"
	"github.com/inkpost/inkpost/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages everything related to the user lifecycle entry points
// (Registration, Activation, Login, Password Reset callbacks).
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register                    : Creates a new (inactive) account.
//   - POST /login                       : Authenticates and returns a JWT.
//   - POST /logout                      : Removes the refresh token.
//   - POST /refresh-token               : Exchanges the cookie for a new access token.
//   - POST /account-activation          : Resends the activation email.
//   - GET  /account-activation/{token}  : Redeems the activation token.
//   - POST /password-reset              : Starts the forgot-password flow.
//   - GET  /password-reset/{token}      : Validates a reset token for the frontend.
//   - PUT  /password-update             : Completes the reset with a new password.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)
	router.Post("/refresh-token", handler.refreshToken)

	router.Post("/account-activation", handler.resendActivation)
	router.Get("/account-activation/{token}", handler.activate)

	router.Post("/password-reset", handler.requestPasswordReset)
	router.Get("/password-reset/{token}", handler.validateResetToken)
	router.Put("/password-update", handler.updatePassword)

	return router
}

// # Request Payloads

type registerRequest struct {
	FullName string `json:"fullname"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type resendActivationRequest struct {
	Email string `json:"email"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type passwordUpdateRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/auth/register

Description: Validates input, checks for identity conflicts, persists a new
inactive profile, and mails the activation link.

Request:
  - Body: registerRequest (FullName, Username, Email, Password)

Response:
  - 201: User: Created user profile (inactive)
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Username or Email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldFullName, input.FullName).
		Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, 3).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Signup(request.Context(), SignupInput{
		FullName: input.FullName,
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, request, user)
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/auth/login

Description: Verifies credentials, generates a JWT access token, and injects
a secure refresh token cookie into the response.

Request:
  - Body: loginRequest (Login, Password)

Response:
  - 200: Session: Access token and User profile
  - 401: ErrUnauthorized: Invalid credentials
  - 403: ErrForbidden: Account not activated yet
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldLogin, input.Login)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Login:    input.Login,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session.RefreshToken, session.RefreshTokenExpiresAt)

	respond.OK(writer, request, map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldUser:        session.User,
	})
}

/*
Logout terminates the current user session.

POST /api/v1/auth/logout

Description: Removes the stored refresh token (if present) and clears the
security cookie from the client. Idempotent: a missing or unknown cookie
still results in a clean logout.

Response:
  - 204: No Content: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)

	if err == nil && cookie != nil && cookie.Value != "" {
		_ = handler.authService.Logout(request.Context(), cookie.Value)
	}

	expireRefreshCookie(writer)

	respond.NoContent(writer, request)
}

/*
RefreshToken issues a new access token using a valid refresh token.

POST /api/v1/auth/refresh-token

Description: Validates the refresh token cookie and issues a fresh access
token. The refresh token is not rotated; the same cookie stays valid until
logout or expiry.

Response:
  - 200: RefreshResponse: New access token credentials
  - 401: ErrUnauthorized: Missing or invalid refresh token
*/
func (handler *Handler) refreshToken(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token in cookies"))
		return
	}

	_, accessToken, err := handler.authService.Renew(request.Context(), cookie.Value)
	if err != nil {
		// Clear the dead cookie so the client stops retrying with it
		expireRefreshCookie(writer)
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, map[string]any{
		FieldAccessToken: accessToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   AccessTokenTTL / time.Second,
	})
}

/*
Activate redeems an account activation token.

POST /api/v1/auth/account-activation/{token}

Description: Flips the account to active so login becomes possible.

Response:
  - 200: Success: Account activated
  - 400: Expired: Token lifetime elapsed — request a new one
  - 404: ErrNotFound: Unknown token
*/
func (handler *Handler) activate(writer http.ResponseWriter, request *http.Request) {
	token := requestutil.Param(request, "token")
	if token == "" {
		respond.Error(writer, request, validate.RequiredError(FieldToken, "is required"))
		return
	}

	if err := handler.authService.Activate(request.Context(), token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, map[string]string{
		FieldMessage: "Account activated successfully",
	})
}

/*
ResendActivation mails a fresh activation link.

POST /api/v1/auth/account-activation

Description: Replaces a lost or expired activation link for a pending
account. The response is identical whether or not the email exists.

Request:
  - Body: resendActivationRequest (Email)

Response:
  - 200: Success: Generic acknowledgement
  - 409: ErrConflict: Account already activated
*/
func (handler *Handler) resendActivation(writer http.ResponseWriter, request *http.Request) {
	var input resendActivationRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResendActivation(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, map[string]string{
		FieldMessage: "If this email is registered, an activation link has been sent.",
	})
}

/*
RequestPasswordReset initiates the password recovery flow.

POST /api/v1/auth/password-reset

Description: Sends a password reset link to the provided email if the account exists.

Request:
  - Body: passwordResetRequest (Email)

Response:
  - 200: Success: Reset link sent (or generic security message)
  - 400: ErrInvalidJSON: Invalid email format
*/
func (handler *Handler) requestPasswordReset(writer http.ResponseWriter, request *http.Request) {
	var input passwordResetRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestPasswordReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, map[string]string{
		FieldMessage: "If this email is registered, a reset link has been sent.",
	})
}

/*
ValidateResetToken checks a reset token before the frontend shows the form.

GET /api/v1/auth/password-reset/{token}

Response:
  - 200: Success: Token is redeemable
  - 400: Expired: Token lifetime elapsed
  - 404: ErrNotFound: Unknown token
*/
func (handler *Handler) validateResetToken(writer http.ResponseWriter, request *http.Request) {
	token := requestutil.Param(request, "token")
	if token == "" {
		respond.Error(writer, request, validate.RequiredError(FieldToken, "is required"))
		return
	}

	if err := handler.authService.ValidateResetToken(request.Context(), token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, map[string]string{
		FieldMessage: "Token is valid",
	})
}

/*
UpdatePassword completes the password recovery flow.

POST /api/v1/auth/password-update

Description: Validates the reset token and updates the user's password.
All stored refresh tokens for the account are removed, logging the user
out everywhere.

Request:
  - Body: passwordUpdateRequest (Token, NewPassword)

Response:
  - 200: Success: Password updated
  - 400: ErrInvalidJSON / Expired: Bad token or weak password
  - 404: ErrNotFound: Unknown token
*/
func (handler *Handler) updatePassword(writer http.ResponseWriter, request *http.Request) {
	var input passwordUpdateRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldToken, input.Token).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, 8)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.UpdatePassword(request.Context(), input.Token, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, map[string]string{
		FieldMessage: "Password updated successfully",
	})
}

// # Cookie Helpers

// setRefreshCookie installs the long-lived refresh token cookie.
func setRefreshCookie(writer http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    token,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  expiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}

// expireRefreshCookie clears the refresh token cookie on the client.
func expireRefreshCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}
