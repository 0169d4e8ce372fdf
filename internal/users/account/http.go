// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkpost/inkpost/internal/platform/middleware"
	requestutil "github.com/inkpost/inkpost/internal/platform/request"
	"github.com/inkpost/inkpost/internal/platform/respond"
	"github.com/inkpost/inkpost/internal/platform/sec"
	"github.com/inkpost/inkpost/internal/platform/validate"
	"github.com/inkpost/inkpost/pkg/pagination"
)

// Handler implements account-related HTTP endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with account routes.
//
// # Endpoints
//   - GET    /me             : Caller's own profile.
//   - PATCH  /me             : Partial profile update.
//   - DELETE /me             : Hard-deletes the account and its content.
//   - GET    /{userID}       : Another member's public profile.
//   - GET    /               : Member list (moderator+).
//   - POST   /{userID}/role  : Role assignment (admin).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.getMe)
		r.Patch("/me", handler.updateMe)
		r.Delete("/me", handler.deleteMe)
	})

	router.Get("/{userID}", handler.getPublicProfile)

	router.With(middleware.RequireAction(sec.ActionUserList)).
		Get("/", handler.list)
	router.With(middleware.RequireAction(sec.ActionRoleChange)).
		Post("/{userID}/role", handler.changeRole)

	return router
}

// # Request Payloads

type updateProfileRequest struct {
	FullName     *string `json:"fullname"`
	Username     *string `json:"username"`
	ProfileImage *string `json:"profile_image"`
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

/*
GetMe returns the authenticated user's own profile.

GET /api/v1/users/me

Response:
  - 200: Profile: Full projection including email and role
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, profile)
}

/*
UpdateMe applies a partial update to the caller's profile.

PATCH /api/v1/users/me

Request:
  - Body: updateProfileRequest (any subset of fullname, username, profile_image)

Response:
  - 200: Profile: Updated projection
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Username already taken
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if input.FullName != nil {
		validator.Required(FieldFullName, *input.FullName)
	}
	if input.Username != nil {
		validator.Required(FieldUsername, *input.Username).
			MinLen(FieldUsername, *input.Username, 3)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		FullName:     input.FullName,
		Username:     input.Username,
		ProfileImage: input.ProfileImage,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, profile)
}

/*
DeleteMe permanently removes the caller's account and everything it owns.

DELETE /api/v1/users/me

Response:
  - 204: No Content: Account deleted
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) deleteMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.DeleteAccount(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer, request)
}

/*
GetPublicProfile returns another member's reduced profile.

GET /api/v1/users/{userID}

Response:
  - 200: PublicProfile: Reduced projection
  - 404: ErrNotFound: Unknown user
*/
func (handler *Handler) getPublicProfile(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Param(request, FieldUserID)

	validator := &validate.Validator{}
	validator.UUID(FieldUserID, userID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetPublicProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, profile)
}

/*
List returns a cursor-paginated page of member profiles.

GET /api/v1/users?cursor=&limit=

Description: Moderator-and-above operation.

Response:
  - 200: []Profile + Meta: Page of members, newest first
  - 403: ErrForbidden: Insufficient permissions
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	profiles, meta, err := handler.accountService.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, request, profiles, meta)
}

/*
ChangeRole assigns a new role to the target account.

POST /api/v1/users/{userID}/role

Description: Admin-only operation. Re-assigning the current role is a 409.

Request:
  - Body: changeRoleRequest (Role)

Response:
  - 200: Profile: Updated projection
  - 404: ErrNotFound: Unknown user
  - 409: ErrConflict: User already holds this role
*/
func (handler *Handler) changeRole(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Param(request, FieldUserID)

	var input changeRoleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.UUID(FieldUserID, userID).
		Required(FieldRole, input.Role)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.ChangeRole(request.Context(), userID, sec.UserRole(input.Role))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, profile)
}
