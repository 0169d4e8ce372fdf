// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package comment

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpost/inkpost/internal/platform/apperr"
	"github.com/inkpost/inkpost/internal/platform/sec"
	"github.com/inkpost/inkpost/pkg/pagination"
	"github.com/inkpost/inkpost/pkg/uuidv7"
)

// fakeRepository is an in-memory comment store that mirrors the counter
// and cascade semantics of the Postgres implementation, so the tests can
// account for what a delete actually removed.
type fakeRepository struct {
	comments      map[string]*Comment
	postCounts    map[string]int
	likesByTarget map[string]int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		comments:      make(map[string]*Comment),
		postCounts:    make(map[string]int),
		likesByTarget: make(map[string]int),
	}
}

func (repository *fakeRepository) seedPost() string {
	id := uuidv7.New()
	repository.postCounts[id] = 0
	return id
}

func (repository *fakeRepository) seedLikes(commentID string, count int) {
	repository.likesByTarget[commentID] = count
}

func (repository *fakeRepository) Create(_ context.Context, comment *Comment) error {
	if _, ok := repository.postCounts[comment.PostID]; !ok {
		return apperr.NotFound("Post")
	}
	if comment.ParentID != nil {
		parent, ok := repository.comments[*comment.ParentID]
		if !ok || parent.PostID != comment.PostID {
			return apperr.NotFound("Comment")
		}
		if parent.ParentID != nil {
			return apperr.ValidationError("Replies cannot be nested")
		}
		parent.ReplyCount++
	}
	repository.postCounts[comment.PostID]++
	clone := *comment
	repository.comments[comment.ID] = &clone
	return nil
}

func (repository *fakeRepository) FindByID(_ context.Context, id string) (*Comment, error) {
	if comment, ok := repository.comments[id]; ok {
		clone := *comment
		return &clone, nil
	}
	return nil, apperr.NotFound("Comment")
}

func (repository *fakeRepository) ListTopLevel(_ context.Context, postID string, params pagination.Params) ([]*Comment, error) {
	return repository.page(params, func(comment *Comment) bool {
		return comment.PostID == postID && comment.ParentID == nil
	})
}

func (repository *fakeRepository) ListReplies(_ context.Context, parentID string, params pagination.Params) ([]*Comment, error) {
	return repository.page(params, func(comment *Comment) bool {
		return comment.ParentID != nil && *comment.ParentID == parentID
	})
}

// page applies newest-first ordering and the cursor window.
func (repository *fakeRepository) page(params pagination.Params, match func(*Comment) bool) ([]*Comment, error) {
	var all []*Comment
	for _, comment := range repository.comments {
		if match(comment) {
			clone := *comment
			all = append(all, &clone)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	var page []*Comment
	for _, comment := range all {
		if params.Cursor != "" && comment.ID >= params.Cursor {
			continue
		}
		page = append(page, comment)
		if len(page) == params.Limit {
			break
		}
	}
	return page, nil
}

func (repository *fakeRepository) UpdateBody(_ context.Context, id, body string) error {
	comment, ok := repository.comments[id]
	if !ok {
		return apperr.NotFound("Comment")
	}
	comment.Body = body
	return nil
}

func (repository *fakeRepository) Delete(_ context.Context, comment *Comment) error {
	if _, ok := repository.comments[comment.ID]; !ok {
		return apperr.NotFound("Comment")
	}

	removed := 1
	for id, candidate := range repository.comments {
		if candidate.ParentID != nil && *candidate.ParentID == comment.ID {
			delete(repository.comments, id)
			delete(repository.likesByTarget, id)
			removed++
		}
	}
	delete(repository.comments, comment.ID)
	delete(repository.likesByTarget, comment.ID)

	repository.postCounts[comment.PostID] -= removed
	if comment.ParentID != nil {
		if parent, ok := repository.comments[*comment.ParentID]; ok {
			parent.ReplyCount--
		}
	}
	return nil
}

// harness wires a service over the fake store and seeds one post.
func harness(t *testing.T) (*Service, *fakeRepository, string) {
	t.Helper()
	repository := newFakeRepository()
	return NewService(repository), repository, repository.seedPost()
}

// # Creation

func TestCreate_TopLevelBumpsPostCount(t *testing.T) {
	service, repository, postID := harness(t)

	comment, err := service.Create(context.Background(), "author-1", postID, nil, "First!")

	require.NoError(t, err)
	assert.Nil(t, comment.ParentID)
	assert.Equal(t, 1, repository.postCounts[postID])
}

func TestCreate_ReplyBumpsBothCounters(t *testing.T) {
	service, repository, postID := harness(t)

	parent, err := service.Create(context.Background(), "author-1", postID, nil, "Parent")
	require.NoError(t, err)

	reply, err := service.Create(context.Background(), "author-2", postID, &parent.ID, "Reply")
	require.NoError(t, err)

	assert.Equal(t, parent.ID, *reply.ParentID)
	assert.Equal(t, 2, repository.postCounts[postID])
	assert.Equal(t, 1, repository.comments[parent.ID].ReplyCount)
}

func TestCreate_ReplyToReplyRejected(t *testing.T) {
	service, repository, postID := harness(t)

	parent, err := service.Create(context.Background(), "author-1", postID, nil, "Parent")
	require.NoError(t, err)
	reply, err := service.Create(context.Background(), "author-2", postID, &parent.ID, "Reply")
	require.NoError(t, err)

	_, err = service.Create(context.Background(), "author-3", postID, &reply.ID, "Reply to reply")

	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	// The attempt leaves every counter untouched.
	assert.Equal(t, 2, repository.postCounts[postID])
	assert.Equal(t, 0, repository.comments[reply.ID].ReplyCount)
}

func TestCreate_UnknownPost(t *testing.T) {
	service, _, _ := harness(t)

	_, err := service.Create(context.Background(), "author-1", uuidv7.New(), nil, "Hello")

	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

func TestCreate_SanitizesBody(t *testing.T) {
	service, _, postID := harness(t)

	comment, err := service.Create(context.Background(), "author-1", postID, nil, `<script>alert(1)</script>Nice post`)

	require.NoError(t, err)
	assert.Equal(t, "Nice post", comment.Body)
}

// # Editing

func TestUpdate_OwnerEdits(t *testing.T) {
	service, _, postID := harness(t)
	comment, err := service.Create(context.Background(), "author-1", postID, nil, "Typo here")
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), "author-1", postID, comment.ID, "Fixed")

	require.NoError(t, err)
	assert.Equal(t, "Fixed", updated.Body)
}

func TestUpdate_NonOwnerForbidden(t *testing.T) {
	service, _, postID := harness(t)
	comment, err := service.Create(context.Background(), "author-1", postID, nil, "Mine")
	require.NoError(t, err)

	_, err = service.Update(context.Background(), "someone-else", postID, comment.ID, "Hijacked")

	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

func TestUpdate_WrongPostReportsNotFound(t *testing.T) {
	service, repository, postID := harness(t)
	otherPostID := repository.seedPost()
	comment, err := service.Create(context.Background(), "author-1", postID, nil, "Here")
	require.NoError(t, err)

	_, err = service.Update(context.Background(), "author-1", otherPostID, comment.ID, "There")

	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

// # Deletion

func TestDelete_OwnerAllowed(t *testing.T) {
	service, repository, postID := harness(t)
	comment, err := service.Create(context.Background(), "author-1", postID, nil, "Regret")
	require.NoError(t, err)

	err = service.Delete(context.Background(), "author-1", sec.RoleUser, postID, comment.ID)

	require.NoError(t, err)
	assert.Empty(t, repository.comments)
	assert.Equal(t, 0, repository.postCounts[postID])
}

func TestDelete_ModeratorAllowed(t *testing.T) {
	service, _, postID := harness(t)
	comment, err := service.Create(context.Background(), "author-1", postID, nil, "Spam")
	require.NoError(t, err)

	err = service.Delete(context.Background(), "mod-1", sec.RoleModerator, postID, comment.ID)

	require.NoError(t, err)
}

func TestDelete_StrangerForbidden(t *testing.T) {
	service, repository, postID := harness(t)
	comment, err := service.Create(context.Background(), "author-1", postID, nil, "Keep out")
	require.NoError(t, err)

	err = service.Delete(context.Background(), "stranger", sec.RoleUser, postID, comment.ID)

	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	assert.Len(t, repository.comments, 1)
}

func TestDelete_CascadeSettlesCounters(t *testing.T) {
	service, repository, postID := harness(t)

	parent, err := service.Create(context.Background(), "author-1", postID, nil, "Thread root")
	require.NoError(t, err)
	_, err = service.Create(context.Background(), "author-2", postID, &parent.ID, "Reply one")
	require.NoError(t, err)
	reply, err := service.Create(context.Background(), "author-3", postID, &parent.ID, "Reply two")
	require.NoError(t, err)
	repository.seedLikes(parent.ID, 2)
	repository.seedLikes(reply.ID, 1)

	err = service.Delete(context.Background(), "author-1", sec.RoleUser, postID, parent.ID)

	require.NoError(t, err)
	// Root plus both replies: the post loses three comments
	assert.Equal(t, 0, repository.postCounts[postID])
	assert.Empty(t, repository.comments)
	assert.Empty(t, repository.likesByTarget)
}

func TestDelete_ReplySettlesParent(t *testing.T) {
	service, repository, postID := harness(t)

	parent, err := service.Create(context.Background(), "author-1", postID, nil, "Root")
	require.NoError(t, err)
	reply, err := service.Create(context.Background(), "author-2", postID, &parent.ID, "Gone soon")
	require.NoError(t, err)

	err = service.Delete(context.Background(), "author-2", sec.RoleUser, postID, reply.ID)

	require.NoError(t, err)
	assert.Equal(t, 1, repository.postCounts[postID])
	assert.Equal(t, 0, repository.comments[parent.ID].ReplyCount)
}

// # Listing

func TestListForPost_EmitsCursorOnlyWhenFull(t *testing.T) {
	service, _, postID := harness(t)
	for i := 0; i < 3; i++ {
		_, err := service.Create(context.Background(), "author-1", postID, nil, "Entry")
		require.NoError(t, err)
	}

	page, meta, err := service.ListForPost(context.Background(), postID, pagination.Params{Limit: 3, Sort: pagination.SortNewest})
	require.NoError(t, err)
	require.Len(t, page, 3)
	require.NotNil(t, meta.NextCursor)

	next, meta, err := service.ListForPost(context.Background(), postID, pagination.Params{Limit: 3, Sort: pagination.SortNewest, Cursor: *meta.NextCursor})
	require.NoError(t, err)
	assert.Empty(t, next)
	assert.Nil(t, meta.NextCursor)
}

func TestListReplies_WrongPostRejected(t *testing.T) {
	service, repository, postID := harness(t)
	otherPostID := repository.seedPost()
	parent, err := service.Create(context.Background(), "author-1", postID, nil, "Root")
	require.NoError(t, err)

	_, _, err = service.ListReplies(context.Background(), otherPostID, parent.ID, pagination.Params{Limit: 10})

	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}
