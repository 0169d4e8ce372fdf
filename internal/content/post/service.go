// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package post

import (
	"context"
	"fmt"

	"github.com/inkpost/inkpost/internal/platform/apperr"
	"github.com/inkpost/inkpost/internal/platform/sanitize"
	"github.com/inkpost/inkpost/pkg/pagination"
	"github.com/inkpost/inkpost/pkg/tags"
	"github.com/inkpost/inkpost/pkg/uuidv7"
)

// Service implements post management use cases.
type Service struct {
	repository Repository
}

// NewService constructs a new post [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

// CreateInput holds the author-supplied fields for a new post.
type CreateInput struct {
	Title      string
	Subtitle   string
	Blocks     []ContentBlock
	Anchors    []string
	CoverImage string
	Tags       []string
}

// UpdateInput holds the editable fields for a partial post update.
// Nil pointers and nil slices leave the current value untouched.
type UpdateInput struct {
	Title      *string
	Subtitle   *string
	Blocks     []ContentBlock
	Anchors    []string
	CoverImage *string
	Tags       []string
}

/*
Create publishes a new post.

Description: Titles and prose block values pass through HTML sanitization,
tags through the normalizer (lowercase, diacritics stripped, deduplicated).
The block sequence must satisfy the typing rules: a known type, a non-empty
value, and a language on code blocks only.

Parameters:
  - context: context.Context
  - authorID: string (Resolved identity of the caller)
  - input: CreateInput

Returns:
  - *Post: Persisted entity
  - err: apperr.ValidationError on malformed blocks, or storage failures
*/
func (service *Service) Create(context context.Context, authorID string, input CreateInput) (*Post, error) {
	blocks, err := cleanBlocks(input.Blocks)
	if err != nil {
		return nil, err
	}

	post := &Post{
		ID:         uuidv7.New(),
		AuthorID:   authorID,
		Title:      sanitize.Text(input.Title),
		Subtitle:   sanitize.Text(input.Subtitle),
		Blocks:     blocks,
		Anchors:    sanitize.TextSlice(input.Anchors),
		CoverImage: sanitize.Text(input.CoverImage),
		Tags:       tags.NormalizeAll(input.Tags),
	}

	if err := service.repository.Create(context, post); err != nil {
		return nil, fmt.Errorf("post_service_create_failed: %w", err)
	}

	return post, nil
}

/*
Get returns one post with its full author projection.

Parameters:
  - context: context.Context
  - postID: string

Returns:
  - *Post: Detail view including author fullname and profile image
  - err: apperr.NotFound or retrieval failures
*/
func (service *Service) Get(context context.Context, postID string) (*Post, error) {
	return service.repository.FindByID(context, postID)
}

/*
List returns one cursor page of the post feed.

Description: Filter tags are run through the same normalizer as stored
tags so the overlap match compares like with like.

Parameters:
  - context: context.Context
  - filter: ListFilter
  - params: pagination.Params

Returns:
  - []*Post: Page of posts
  - pagination.Meta: Cursor metadata (next_cursor null on the final page)
  - err: Invalid-cursor validation error or retrieval failures
*/
func (service *Service) List(context context.Context, filter ListFilter, params pagination.Params) ([]*Post, pagination.Meta, error) {
	filter.Tags = tags.NormalizeAll(filter.Tags)

	posts, err := service.repository.List(context, filter, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	lastID := ""
	if len(posts) > 0 {
		lastID = posts[len(posts)-1].ID
	}

	return posts, pagination.NewMeta(lastID, len(posts), params), nil
}

/*
Update applies a partial update to an existing post.

Description: Only provided fields change. Counters and authorship are not
editable through this path.

Parameters:
  - context: context.Context
  - postID: string
  - input: UpdateInput

Returns:
  - *Post: Updated entity
  - err: NotFound, ValidationError on malformed blocks, or storage failures
*/
func (service *Service) Update(context context.Context, postID string, input UpdateInput) (*Post, error) {
	post, err := service.repository.FindByID(context, postID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		post.Title = sanitize.Text(*input.Title)
	}
	if input.Subtitle != nil {
		post.Subtitle = sanitize.Text(*input.Subtitle)
	}
	if input.CoverImage != nil {
		post.CoverImage = sanitize.Text(*input.CoverImage)
	}
	if input.Blocks != nil {
		blocks, err := cleanBlocks(input.Blocks)
		if err != nil {
			return nil, err
		}
		post.Blocks = blocks
	}
	if input.Anchors != nil {
		post.Anchors = sanitize.TextSlice(input.Anchors)
	}
	if input.Tags != nil {
		post.Tags = tags.NormalizeAll(input.Tags)
	}

	if err := service.repository.Update(context, post); err != nil {
		return nil, err
	}

	return post, nil
}

/*
Delete removes a post and cascades to its comments and likes.

Parameters:
  - context: context.Context
  - postID: string

Returns:
  - err: apperr.NotFound or deletion failures
*/
func (service *Service) Delete(context context.Context, postID string) error {
	return service.repository.Delete(context, postID)
}

// cleanBlocks validates the block sequence and sanitizes prose values.
// Image references and code listings are stored verbatim; rendering is
// responsible for escaping them.
func cleanBlocks(blocks []ContentBlock) ([]ContentBlock, error) {
	if len(blocks) == 0 {
		return nil, apperr.ValidationError("Post content is required", apperr.FieldError{
			Field:   FieldBlocks,
			Message: "at least one content block is required",
		})
	}

	cleaned := make([]ContentBlock, 0, len(blocks))
	for index, block := range blocks {
		if !block.Type.IsValid() {
			return nil, blockError(index, "unknown block type")
		}
		if block.Value == "" {
			return nil, blockError(index, "block value is required")
		}
		if block.Type == BlockCode && block.Language == "" {
			return nil, blockError(index, "code blocks require a language")
		}
		if block.Type != BlockCode && block.Language != "" {
			return nil, blockError(index, "language is only valid on code blocks")
		}

		if block.Type == BlockText || block.Type == BlockHeader {
			block.Value = sanitize.Text(block.Value)
		}
		cleaned = append(cleaned, block)
	}

	return cleaned, nil
}

// blockError builds a field-level validation error pointing at one block.
func blockError(index int, message string) error {
	return apperr.ValidationError("Invalid content block", apperr.FieldError{
		Field:   fmt.Sprintf("%s[%d]", FieldBlocks, index),
		Message: message,
	})
}
