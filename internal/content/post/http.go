// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkpost/inkpost/internal/content/vote"
	"github.com/inkpost/inkpost/internal/platform/middleware"
	requestutil "github.com/inkpost/inkpost/internal/platform/request"
	"github.com/inkpost/inkpost/internal/platform/respond"
	"github.com/inkpost/inkpost/internal/platform/sec"
	"github.com/inkpost/inkpost/internal/platform/validate"
	"github.com/inkpost/inkpost/pkg/pagination"
	"github.com/inkpost/inkpost/pkg/query"
)

// Handler implements post-related HTTP endpoints.
type Handler struct {
	postService *Service
	voteService *vote.Service
}

// NewHandler constructs a new [Handler] with its service dependencies.
func NewHandler(postService *Service, voteService *vote.Service) *Handler {
	return &Handler{postService: postService, voteService: voteService}
}

// Routes returns a [chi.Router] configured with post routes. The comments
// subrouter is mounted under /{postID}/comments so the nested endpoints
// share the resolved post parameter.
//
// # Endpoints
//   - GET    /               : Cursor-paginated feed (public).
//   - GET    /{postID}       : Detail view (public).
//   - POST   /               : Publish (moderator+).
//   - PATCH  /{postID}       : Partial update (moderator+).
//   - DELETE /{postID}       : Cascade delete (moderator+).
//   - POST   /{postID}/like  : Vote (authenticated).
func (handler *Handler) Routes(comments chi.Router) chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Get("/{postID}", handler.get)

	router.With(middleware.RequireAction(sec.ActionPostCreate)).
		Post("/", handler.create)
	router.With(middleware.RequireAction(sec.ActionPostUpdate)).
		Patch("/{postID}", handler.update)
	router.With(middleware.RequireAction(sec.ActionPostDelete)).
		Delete("/{postID}", handler.delete)

	router.With(middleware.RequireAuth).
		Post("/{postID}/like", handler.votePost)

	router.Mount("/{postID}/comments", comments)

	return router
}

// # Request Payloads

type createPostRequest struct {
	Title      string         `json:"title"`
	Subtitle   string         `json:"subtitle"`
	Blocks     []ContentBlock `json:"blocks"`
	Anchors    []string       `json:"anchors"`
	CoverImage string         `json:"cover_image"`
	Tags       []string       `json:"tags"`
}

type updatePostRequest struct {
	Title      *string        `json:"title"`
	Subtitle   *string        `json:"subtitle"`
	Blocks     []ContentBlock `json:"blocks"`
	Anchors    []string       `json:"anchors"`
	CoverImage *string        `json:"cover_image"`
	Tags       []string       `json:"tags"`
}

/*
List returns a cursor-paginated page of the post feed.

GET /api/v1/posts?limit=&cursor=&sort=&search=&tags=

Response:
  - 200: []Post + Meta: Page of posts, author fullname projected
  - 400: ErrValidation: Invalid "top" cursor
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	filter := ListFilter{
		Search: request.URL.Query().Get(FieldSearch),
		Tags:   query.StringSlice(request.URL.Query().Get(FieldTags)),
	}

	posts, meta, err := handler.postService.List(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, request, posts, meta)
}

/*
Get returns one post's detail view.

GET /api/v1/posts/{postID}

Response:
  - 200: Post: Full entity with author fullname and profile image
  - 404: ErrNotFound: Unknown post
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	postID := requestutil.Param(request, FieldPostID)

	validator := &validate.Validator{}
	validator.UUID(FieldPostID, postID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.postService.Get(request.Context(), postID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, post)
}

/*
Create publishes a new post.

POST /api/v1/posts

Description: Moderator-and-above operation.

Request:
  - Body: createPostRequest

Response:
  - 201: Post: Persisted entity
  - 400: ErrValidation: Missing title or malformed blocks
  - 403: ErrForbidden: Insufficient permissions
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createPostRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).
		MaxLen(FieldTitle, input.Title, 200).
		MaxLen(FieldSubtitle, input.Subtitle, 500)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.postService.Create(request.Context(), userID, CreateInput{
		Title:      input.Title,
		Subtitle:   input.Subtitle,
		Blocks:     input.Blocks,
		Anchors:    input.Anchors,
		CoverImage: input.CoverImage,
		Tags:       input.Tags,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, request, post)
}

/*
Update applies a partial update to a post.

PATCH /api/v1/posts/{postID}

Request:
  - Body: updatePostRequest (any subset of the editable fields)

Response:
  - 200: Post: Updated entity
  - 400: ErrValidation: Malformed blocks
  - 404: ErrNotFound: Unknown post
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	postID := requestutil.Param(request, FieldPostID)

	var input updatePostRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.UUID(FieldPostID, postID)
	if input.Title != nil {
		validator.Required(FieldTitle, *input.Title).
			MaxLen(FieldTitle, *input.Title, 200)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.postService.Update(request.Context(), postID, UpdateInput{
		Title:      input.Title,
		Subtitle:   input.Subtitle,
		Blocks:     input.Blocks,
		Anchors:    input.Anchors,
		CoverImage: input.CoverImage,
		Tags:       input.Tags,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, post)
}

/*
Delete removes a post together with its comments and likes.

DELETE /api/v1/posts/{postID}

Response:
  - 204: No Content: Post and dependents deleted
  - 404: ErrNotFound: Unknown post
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	postID := requestutil.Param(request, FieldPostID)

	validator := &validate.Validator{}
	validator.UUID(FieldPostID, postID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.postService.Delete(request.Context(), postID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer, request)
}

/*
VotePost records or flips the caller's vote on a post.

POST /api/v1/posts/{postID}/like

Request:
  - Body: vote.ActionRequest ("like" or "dislike")

Response:
  - 200: vote.Tally: Updated like/dislike counters
  - 404: ErrNotFound: Unknown post
  - 409: ErrConflict: Same-polarity repeat vote
*/
func (handler *Handler) votePost(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	postID := requestutil.Param(request, FieldPostID)

	isLiked, err := vote.DecodeAction(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tally, err := handler.voteService.VotePost(request.Context(), userID, postID, isLiked)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, tally)
}
