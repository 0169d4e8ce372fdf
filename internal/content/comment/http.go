// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package comment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkpost/inkpost/internal/content/vote"
	"github.com/inkpost/inkpost/internal/platform/middleware"
	requestutil "github.com/inkpost/inkpost/internal/platform/request"
	"github.com/inkpost/inkpost/internal/platform/respond"
	"github.com/inkpost/inkpost/internal/platform/validate"
	"github.com/inkpost/inkpost/pkg/pagination"
)

// Handler implements comment-related HTTP endpoints. The router is mounted
// under /posts/{postID}/comments so every handler sees the post parameter.
type Handler struct {
	commentService *Service
	voteService    *vote.Service
}

// NewHandler constructs a new [Handler] with its service dependencies.
func NewHandler(commentService *Service, voteService *vote.Service) *Handler {
	return &Handler{commentService: commentService, voteService: voteService}
}

// Routes returns a [chi.Router] with the comment and reply endpoints.
//
// # Endpoints
//   - GET    /                                    : Top-level comments (public).
//   - POST   /                                    : New comment (authenticated).
//   - PATCH  /{commentID}                         : Edit own comment.
//   - DELETE /{commentID}                         : Delete (owner or moderator).
//   - POST   /{commentID}/like                    : Vote on a comment.
//   - GET    /{commentID}/replies                 : Replies (public).
//   - POST   /{commentID}/replies                 : New reply.
//   - PATCH  /{commentID}/replies/{replyID}       : Edit own reply.
//   - DELETE /{commentID}/replies/{replyID}       : Delete a reply.
//   - POST   /{commentID}/replies/{replyID}/like  : Vote on a reply.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Get("/{commentID}/replies", handler.listReplies)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Post("/", handler.create)
		r.Patch("/{commentID}", handler.update)
		r.Delete("/{commentID}", handler.delete)
		r.Post("/{commentID}/like", handler.voteComment)

		r.Post("/{commentID}/replies", handler.createReply)
		r.Patch("/{commentID}/replies/{replyID}", handler.updateReply)
		r.Delete("/{commentID}/replies/{replyID}", handler.deleteReply)
		r.Post("/{commentID}/replies/{replyID}/like", handler.voteReply)
	})

	return router
}

// # Request Payloads

type commentRequest struct {
	Body string `json:"body"`
}

/*
List returns a cursor-paginated page of a post's top-level comments.

GET /api/v1/posts/{postID}/comments?limit=&cursor=&sort=

Response:
  - 200: []Comment + Meta: Page of comments
  - 400: ErrValidation: Invalid "top" cursor
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	postID := requestutil.Param(request, FieldPostID)

	validator := &validate.Validator{}
	validator.UUID(FieldPostID, postID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comments, meta, err := handler.commentService.ListForPost(request.Context(), postID, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, request, comments, meta)
}

/*
ListReplies returns a cursor-paginated page of one comment's replies.

GET /api/v1/posts/{postID}/comments/{commentID}/replies

Response:
  - 200: []Comment + Meta: Page of replies
  - 404: ErrNotFound: Unknown comment
*/
func (handler *Handler) listReplies(writer http.ResponseWriter, request *http.Request) {
	postID := requestutil.Param(request, FieldPostID)
	commentID := requestutil.Param(request, FieldCommentID)

	validator := &validate.Validator{}
	validator.UUID(FieldPostID, postID).
		UUID(FieldCommentID, commentID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	replies, meta, err := handler.commentService.ListReplies(request.Context(), postID, commentID, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, request, replies, meta)
}

/*
Create posts a new top-level comment.

POST /api/v1/posts/{postID}/comments

Request:
  - Body: commentRequest

Response:
  - 201: Comment: Persisted entity
  - 404: ErrNotFound: Unknown post
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	handler.createComment(writer, request, nil)
}

/*
CreateReply posts a new reply under a comment.

POST /api/v1/posts/{postID}/comments/{commentID}/replies

Response:
  - 201: Comment: Persisted reply
  - 404: ErrNotFound: Unknown post or parent comment
*/
func (handler *Handler) createReply(writer http.ResponseWriter, request *http.Request) {
	parentID := requestutil.Param(request, FieldCommentID)

	validator := &validate.Validator{}
	validator.UUID(FieldCommentID, parentID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.createComment(writer, request, &parentID)
}

// createComment is the shared creation path for comments and replies.
func (handler *Handler) createComment(writer http.ResponseWriter, request *http.Request, parentID *string) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	postID := requestutil.Param(request, FieldPostID)

	var input commentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.UUID(FieldPostID, postID).
		Required(FieldBody, input.Body).
		MaxLen(FieldBody, input.Body, 5000)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.commentService.Create(request.Context(), userID, postID, parentID, input.Body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, request, comment)
}

/*
Update rewrites the body of the caller's own comment.

PATCH /api/v1/posts/{postID}/comments/{commentID}

Response:
  - 200: Comment: Updated entity
  - 403: ErrForbidden: Not the owner
  - 404: ErrNotFound: Unknown comment
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	handler.updateComment(writer, request, FieldCommentID)
}

// UpdateReply is the reply variant of Update.
//
// PATCH /api/v1/posts/{postID}/comments/{commentID}/replies/{replyID}
func (handler *Handler) updateReply(writer http.ResponseWriter, request *http.Request) {
	handler.updateComment(writer, request, FieldReplyID)
}

// updateComment is the shared edit path; param names the route parameter
// carrying the target comment id.
func (handler *Handler) updateComment(writer http.ResponseWriter, request *http.Request, param string) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	postID := requestutil.Param(request, FieldPostID)
	commentID := requestutil.Param(request, param)

	var input commentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.UUID(FieldPostID, postID).
		UUID(param, commentID).
		Required(FieldBody, input.Body).
		MaxLen(FieldBody, input.Body, 5000)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.commentService.Update(request.Context(), userID, postID, commentID, input.Body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, comment)
}

/*
Delete removes a comment with its replies and likes.

DELETE /api/v1/posts/{postID}/comments/{commentID}

Response:
  - 204: No Content: Comment and dependents deleted
  - 403: ErrForbidden: Neither owner nor moderator
  - 404: ErrNotFound: Unknown comment
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	handler.deleteComment(writer, request, FieldCommentID)
}

// DeleteReply is the reply variant of Delete.
//
// DELETE /api/v1/posts/{postID}/comments/{commentID}/replies/{replyID}
func (handler *Handler) deleteReply(writer http.ResponseWriter, request *http.Request) {
	handler.deleteComment(writer, request, FieldReplyID)
}

// deleteComment is the shared deletion path.
func (handler *Handler) deleteComment(writer http.ResponseWriter, request *http.Request, param string) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	postID := requestutil.Param(request, FieldPostID)
	commentID := requestutil.Param(request, param)

	validator := &validate.Validator{}
	validator.UUID(FieldPostID, postID).
		UUID(param, commentID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.commentService.Delete(request.Context(), claims.UserID, claims.Role, postID, commentID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer, request)
}

/*
VoteComment records or flips the caller's vote on a comment.

POST /api/v1/posts/{postID}/comments/{commentID}/like

Response:
  - 200: vote.Tally: Updated like/dislike counters
  - 404: ErrNotFound: Unknown comment
  - 409: ErrConflict: Same-polarity repeat vote
*/
func (handler *Handler) voteComment(writer http.ResponseWriter, request *http.Request) {
	handler.vote(writer, request, FieldCommentID)
}

// VoteReply is the reply variant of VoteComment.
//
// POST /api/v1/posts/{postID}/comments/{commentID}/replies/{replyID}/like
func (handler *Handler) voteReply(writer http.ResponseWriter, request *http.Request) {
	handler.vote(writer, request, FieldReplyID)
}

// vote is the shared voting path for comments and replies.
func (handler *Handler) vote(writer http.ResponseWriter, request *http.Request, param string) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	postID := requestutil.Param(request, FieldPostID)
	commentID := requestutil.Param(request, param)

	isLiked, err := vote.DecodeAction(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tally, err := handler.voteService.VoteComment(request.Context(), userID, postID, commentID, isLiked)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, tally)
}
