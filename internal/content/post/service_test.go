// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package post

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpost/inkpost/internal/platform/apperr"
	"github.com/inkpost/inkpost/pkg/pagination"
	"github.com/inkpost/inkpost/pkg/pointer"
)

// fakeRepository is an in-memory post store for service tests. It records
// the last list filter so tests can assert what the service actually asked
// the storage layer for.
type fakeRepository struct {
	posts      map[string]*Post
	lastFilter ListFilter
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{posts: make(map[string]*Post)}
}

func (repository *fakeRepository) Create(_ context.Context, post *Post) error {
	clone := *post
	repository.posts[post.ID] = &clone
	return nil
}

func (repository *fakeRepository) FindByID(_ context.Context, id string) (*Post, error) {
	if post, ok := repository.posts[id]; ok {
		clone := *post
		return &clone, nil
	}
	return nil, apperr.NotFound("Post")
}

func (repository *fakeRepository) List(_ context.Context, filter ListFilter, params pagination.Params) ([]*Post, error) {
	repository.lastFilter = filter

	var all []*Post
	for _, post := range repository.posts {
		clone := *post
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	var page []*Post
	for _, post := range all {
		if params.Cursor != "" && post.ID >= params.Cursor {
			continue
		}
		page = append(page, post)
		if len(page) == params.Limit {
			break
		}
	}
	return page, nil
}

func (repository *fakeRepository) Update(_ context.Context, post *Post) error {
	if _, ok := repository.posts[post.ID]; !ok {
		return apperr.NotFound("Post")
	}
	clone := *post
	repository.posts[post.ID] = &clone
	return nil
}

func (repository *fakeRepository) Delete(_ context.Context, id string) error {
	if _, ok := repository.posts[id]; !ok {
		return apperr.NotFound("Post")
	}
	delete(repository.posts, id)
	return nil
}

func textBlocks() []ContentBlock {
	return []ContentBlock{
		{Type: BlockHeader, Value: "Introduction"},
		{Type: BlockText, Value: "Body copy."},
	}
}

// # Creation

func TestCreate_NormalizesTagsAndSanitizesTitle(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(repository)

	post, err := service.Create(context.Background(), "author-1", CreateInput{
		Title:  `<b>Go</b> Concurrency`,
		Blocks: textBlocks(),
		Tags:   []string{"Go", "  go  ", "Café Talk"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Go Concurrency", post.Title)
	// Normalizer lowercases, strips diacritics, and deduplicates
	assert.Equal(t, []string{"go", "cafe-talk"}, post.Tags)
	assert.NotEmpty(t, post.ID)
}

func TestCreate_CodeBlockRequiresLanguage(t *testing.T) {
	service := NewService(newFakeRepository())

	_, err := service.Create(context.Background(), "author-1", CreateInput{
		Title:  "Broken listing",
		Blocks: []ContentBlock{{Type: BlockCode, Value: "fmt.Println()"}},
	})

	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestCreate_LanguageOnlyValidOnCode(t *testing.T) {
	service := NewService(newFakeRepository())

	_, err := service.Create(context.Background(), "author-1", CreateInput{
		Title:  "Mislabelled",
		Blocks: []ContentBlock{{Type: BlockText, Value: "prose", Language: "go"}},
	})

	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestCreate_UnknownBlockTypeRejected(t *testing.T) {
	service := NewService(newFakeRepository())

	_, err := service.Create(context.Background(), "author-1", CreateInput{
		Title:  "Odd block",
		Blocks: []ContentBlock{{Type: "video", Value: "clip.mp4"}},
	})

	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestCreate_EmptyBlocksRejected(t *testing.T) {
	service := NewService(newFakeRepository())

	_, err := service.Create(context.Background(), "author-1", CreateInput{Title: "Hollow"})

	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

// # Updates

func TestUpdate_PartialUpdate(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(repository)

	created, err := service.Create(context.Background(), "author-1", CreateInput{
		Title:  "Original",
		Blocks: textBlocks(),
		Tags:   []string{"go"},
	})
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), created.ID, UpdateInput{
		Title: pointer.To("Revised"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Revised", updated.Title)
	// Untouched fields survive
	assert.Equal(t, created.Blocks, updated.Blocks)
	assert.Equal(t, []string{"go"}, updated.Tags)
}

func TestUpdate_UnknownPost(t *testing.T) {
	service := NewService(newFakeRepository())

	_, err := service.Update(context.Background(), "missing", UpdateInput{Title: pointer.To("New")})

	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

func TestUpdate_RevalidatesBlocks(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(repository)

	created, err := service.Create(context.Background(), "author-1", CreateInput{
		Title:  "Valid",
		Blocks: textBlocks(),
	})
	require.NoError(t, err)

	_, err = service.Update(context.Background(), created.ID, UpdateInput{
		Blocks: []ContentBlock{{Type: BlockCode, Value: "x"}},
	})

	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

// # Listing

func TestList_NormalizesFilterTags(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(repository)

	_, _, err := service.List(context.Background(), ListFilter{Tags: []string{"Café Talk", "GO"}}, pagination.Params{Limit: 10, Sort: pagination.SortNewest})

	require.NoError(t, err)
	assert.Equal(t, []string{"cafe-talk", "go"}, repository.lastFilter.Tags)
}

func TestList_EmitsCursorOnlyWhenFull(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(repository)
	for i := 0; i < 2; i++ {
		_, err := service.Create(context.Background(), "author-1", CreateInput{Title: "Entry", Blocks: textBlocks()})
		require.NoError(t, err)
	}

	page, meta, err := service.List(context.Background(), ListFilter{}, pagination.Params{Limit: 2, Sort: pagination.SortNewest})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotNil(t, meta.NextCursor)

	next, meta, err := service.List(context.Background(), ListFilter{}, pagination.Params{Limit: 2, Sort: pagination.SortNewest, Cursor: *meta.NextCursor})
	require.NoError(t, err)
	assert.Empty(t, next)
	assert.Nil(t, meta.NextCursor)
}
