// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package vote

import (
	"context"
	"fmt"

	"github.com/inkpost/inkpost/internal/platform/apperr"
	"github.com/inkpost/inkpost/pkg/uuidv7"
)

// Service drives the voting protocol for both target kinds.
type Service struct {
	repository Repository
}

// NewService constructs a new vote [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

/*
VotePost records or flips the caller's vote on a post.

Parameters:
  - context: context.Context
  - userID: string
  - postID: string
  - isLiked: bool (true for a like, false for a dislike)

Returns:
  - *Tally: Post counters after the vote landed
  - err: NotFound for an unknown post, Conflict on a same-polarity repeat,
    or transaction failures
*/
func (service *Service) VotePost(context context.Context, userID, postID string, isLiked bool) (*Tally, error) {
	unit, err := service.repository.Begin(context)
	if err != nil {
		return nil, err
	}
	defer unit.Rollback(context)

	exists, err := unit.PostExists(context, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("Post")
	}

	likeDelta, dislikeDelta, err := service.applyVote(context, unit, userID, postID, nil, isLiked, "post")
	if err != nil {
		return nil, err
	}

	tally, err := unit.AdjustPost(context, postID, likeDelta, dislikeDelta)
	if err != nil {
		return nil, err
	}

	if err := unit.Commit(context); err != nil {
		return nil, err
	}

	return &tally, nil
}

/*
VoteComment records or flips the caller's vote on a comment.

Parameters:
  - context: context.Context
  - userID: string
  - postID: string (The post the comment must belong to)
  - commentID: string
  - isLiked: bool

Returns:
  - *Tally: Comment counters after the vote landed
  - err: NotFound for an unknown comment, Conflict on a same-polarity
    repeat, or transaction failures
*/
func (service *Service) VoteComment(context context.Context, userID, postID, commentID string, isLiked bool) (*Tally, error) {
	unit, err := service.repository.Begin(context)
	if err != nil {
		return nil, err
	}
	defer unit.Rollback(context)

	exists, err := unit.CommentExists(context, postID, commentID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("Comment")
	}

	likeDelta, dislikeDelta, err := service.applyVote(context, unit, userID, postID, &commentID, isLiked, "comment")
	if err != nil {
		return nil, err
	}

	tally, err := unit.AdjustComment(context, commentID, likeDelta, dislikeDelta)
	if err != nil {
		return nil, err
	}

	if err := unit.Commit(context); err != nil {
		return nil, err
	}

	return &tally, nil
}

/*
applyVote runs the shared vote-row part of the protocol and returns the
counter deltas the caller must apply to its target.

Description: A same-polarity repeat aborts with Conflict and moves no
counters. An opposite-polarity vote flips the stored row and yields a
(+1, -1) pair. A first vote creates the row and yields +1 on one side.

Parameters:
  - context: context.Context
  - unit: UnitOfWork (Open transaction)
  - userID, postID: string
  - commentID: *string (nil targets the post)
  - isLiked: bool
  - target: string (Noun for the conflict message)

Returns:
  - int: Like-count delta
  - int: Dislike-count delta
  - err: Conflict or storage failures
*/
func (service *Service) applyVote(context context.Context, unit UnitOfWork, userID, postID string, commentID *string, isLiked bool, target string) (int, int, error) {
	existing, err := unit.Find(context, userID, postID, commentID)
	if err != nil {
		return 0, 0, err
	}

	if existing != nil {
		if existing.IsLiked == isLiked {
			return 0, 0, apperr.Conflict(conflictMessage(target, isLiked))
		}

		if err := unit.Flip(context, existing.ID, isLiked); err != nil {
			return 0, 0, err
		}
		if isLiked {
			return 1, -1, nil
		}
		return -1, 1, nil
	}

	newVote := &Vote{
		ID:        uuidv7.New(),
		UserID:    userID,
		PostID:    postID,
		CommentID: commentID,
		IsLiked:   isLiked,
	}
	if err := unit.Create(context, newVote); err != nil {
		return 0, 0, err
	}

	if isLiked {
		return 1, 0, nil
	}
	return 0, 1, nil
}

// conflictMessage names the rejected repeat for the client.
func conflictMessage(target string, isLiked bool) string {
	verb := "disliked"
	if isLiked {
		verb = "liked"
	}
	return fmt.Sprintf("You have already %s this %s", verb, target)
}
