// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package comment

import (
	"context"
	"fmt"

	"github.com/inkpost/inkpost/internal/platform/apperr"
	"github.com/inkpost/inkpost/internal/platform/sanitize"
	"github.com/inkpost/inkpost/internal/platform/sec"
	"github.com/inkpost/inkpost/pkg/pagination"
	"github.com/inkpost/inkpost/pkg/uuidv7"
)

// Service implements comment and reply use cases.
type Service struct {
	repository Repository
}

// NewService constructs a new comment [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

/*
Create posts a new comment or reply.

Description: A nil parentID makes a top-level comment; otherwise the new
comment attaches as a reply under the given parent within the same post.
Threads are one level deep: a reply cannot itself receive replies. The
body passes through HTML sanitization.

Parameters:
  - context: context.Context
  - authorID: string (Resolved identity of the caller)
  - postID: string
  - parentID: *string (nil for a top-level comment)
  - body: string

Returns:
  - *Comment: Persisted entity
  - err: NotFound for a missing post or parent, or storage failures
*/
func (service *Service) Create(context context.Context, authorID, postID string, parentID *string, body string) (*Comment, error) {
	comment := &Comment{
		ID:       uuidv7.New(),
		PostID:   postID,
		ParentID: parentID,
		AuthorID: authorID,
		Body:     sanitize.Text(body),
	}

	if err := service.repository.Create(context, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

/*
ListForPost returns one cursor page of a post's top-level comments.

Parameters:
  - context: context.Context
  - postID: string
  - params: pagination.Params

Returns:
  - []*Comment: Page of comments with author username projected
  - pagination.Meta: Cursor metadata
  - err: Invalid-cursor validation error or retrieval failures
*/
func (service *Service) ListForPost(context context.Context, postID string, params pagination.Params) ([]*Comment, pagination.Meta, error) {
	comments, err := service.repository.ListTopLevel(context, postID, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return comments, metaFor(comments, params), nil
}

/*
ListReplies returns one cursor page of a comment's replies.

Description: The parent must belong to the given post; a mismatched pair
reports the parent as unknown rather than leaking another post's thread.

Parameters:
  - context: context.Context
  - postID: string
  - parentID: string
  - params: pagination.Params

Returns:
  - []*Comment: Page of replies
  - pagination.Meta: Cursor metadata
  - err: NotFound, invalid-cursor validation error, or retrieval failures
*/
func (service *Service) ListReplies(context context.Context, postID, parentID string, params pagination.Params) ([]*Comment, pagination.Meta, error) {
	parent, err := service.repository.FindByID(context, parentID)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	if parent.PostID != postID {
		return nil, pagination.Meta{}, apperr.NotFound("Comment")
	}

	replies, err := service.repository.ListReplies(context, parentID, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return replies, metaFor(replies, params), nil
}

/*
Update rewrites the body of the caller's own comment.

Description: Editing is owner-only; moderators moderate by deletion, not by
rewriting other people's words.

Parameters:
  - context: context.Context
  - userID: string (Caller identity)
  - postID: string
  - commentID: string
  - body: string

Returns:
  - *Comment: Updated entity
  - err: NotFound, Forbidden for non-owners, or storage failures
*/
func (service *Service) Update(context context.Context, userID, postID, commentID, body string) (*Comment, error) {
	comment, err := service.resolve(context, postID, commentID)
	if err != nil {
		return nil, err
	}

	if comment.AuthorID != userID {
		return nil, apperr.Forbidden("You can only edit your own comments")
	}

	comment.Body = sanitize.Text(body)
	if err := service.repository.UpdateBody(context, comment.ID, comment.Body); err != nil {
		return nil, err
	}

	return comment, nil
}

/*
Delete removes a comment or reply and everything hanging off it.

Description: The owner may always delete their own comment; any other
caller needs moderation permission. The cascade and counter settlement run
in the storage transaction.

Parameters:
  - context: context.Context
  - userID: string (Caller identity)
  - role: sec.UserRole (Caller role for the moderation gate)
  - postID: string
  - commentID: string

Returns:
  - err: NotFound, Forbidden, or deletion failures
*/
func (service *Service) Delete(context context.Context, userID string, role sec.UserRole, postID, commentID string) error {
	comment, err := service.resolve(context, postID, commentID)
	if err != nil {
		return err
	}

	if comment.AuthorID != userID && !role.Can(sec.ActionCommentModerate) {
		return apperr.Forbidden("You can only delete your own comments")
	}

	if err := service.repository.Delete(context, comment); err != nil {
		return fmt.Errorf("comment_service_delete_failed: %w", err)
	}

	return nil
}

// resolve loads a comment and verifies it belongs to the routed post.
func (service *Service) resolve(context context.Context, postID, commentID string) (*Comment, error) {
	comment, err := service.repository.FindByID(context, commentID)
	if err != nil {
		return nil, err
	}
	if comment.PostID != postID {
		return nil, apperr.NotFound("Comment")
	}
	return comment, nil
}

// metaFor derives the cursor metadata for one page.
func metaFor(comments []*Comment, params pagination.Params) pagination.Meta {
	lastID := ""
	if len(comments) > 0 {
		lastID = comments[len(comments)-1].ID
	}
	return pagination.NewMeta(lastID, len(comments), params)
}
