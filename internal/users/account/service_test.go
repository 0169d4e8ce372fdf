// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpost/inkpost/internal/platform/apperr"
	"github.com/inkpost/inkpost/internal/platform/sec"
	"github.com/inkpost/inkpost/pkg/pagination"
	"github.com/inkpost/inkpost/pkg/pointer"
	"github.com/inkpost/inkpost/pkg/uuidv7"
)

// fakeRepository is an in-memory Repository for service tests. It carries a
// miniature content ledger so the delete tests can account for the counter
// settlement the Postgres implementation performs inside its transaction.
type fakeRepository struct {
	profiles map[string]*Profile
	posts    map[string]*fakePost
	comments map[string]*fakeComment
	likes    map[string]*fakeLike
}

type fakePost struct {
	ID           string
	AuthorID     string
	LikeCount    int
	DislikeCount int
	CommentCount int
}

type fakeComment struct {
	ID           string
	PostID       string
	ParentID     *string
	AuthorID     string
	LikeCount    int
	DislikeCount int
	ReplyCount   int
}

type fakeLike struct {
	ID        string
	UserID    string
	PostID    string
	CommentID *string
	IsLiked   bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		profiles: make(map[string]*Profile),
		posts:    make(map[string]*fakePost),
		comments: make(map[string]*fakeComment),
		likes:    make(map[string]*fakeLike),
	}
}

func (repository *fakeRepository) seedPost(authorID string) *fakePost {
	post := &fakePost{ID: uuidv7.New(), AuthorID: authorID}
	repository.posts[post.ID] = post
	return post
}

func (repository *fakeRepository) seedComment(authorID, postID string, parentID *string) *fakeComment {
	comment := &fakeComment{ID: uuidv7.New(), PostID: postID, ParentID: parentID, AuthorID: authorID}
	repository.comments[comment.ID] = comment
	repository.posts[postID].CommentCount++
	if parentID != nil {
		repository.comments[*parentID].ReplyCount++
	}
	return comment
}

func (repository *fakeRepository) seedVote(userID, postID string, commentID *string, isLiked bool) {
	like := &fakeLike{
		ID: uuidv7.New(), UserID: userID, PostID: postID, CommentID: commentID, IsLiked: isLiked,
	}
	repository.likes[like.ID] = like
	switch {
	case commentID != nil && isLiked:
		repository.comments[*commentID].LikeCount++
	case commentID != nil:
		repository.comments[*commentID].DislikeCount++
	case isLiked:
		repository.posts[postID].LikeCount++
	default:
		repository.posts[postID].DislikeCount++
	}
}

func (repository *fakeRepository) seed(role sec.UserRole, username string) *Profile {
	profile := &Profile{
		ID:        uuidv7.New(),
		FullName:  "Seeded " + username,
		Username:  username,
		Email:     username + "@example.com",
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	repository.profiles[profile.ID] = profile
	return profile
}

func (repository *fakeRepository) FindByID(_ context.Context, id string) (*Profile, error) {
	if profile, ok := repository.profiles[id]; ok {
		clone := *profile
		return &clone, nil
	}
	return nil, apperr.NotFound("User")
}

func (repository *fakeRepository) List(_ context.Context, params pagination.Params) ([]*Profile, error) {
	var page []*Profile
	for _, profile := range repository.profiles {
		if params.Cursor != "" && profile.ID >= params.Cursor {
			continue
		}
		clone := *profile
		page = append(page, &clone)
		if len(page) == params.Limit {
			break
		}
	}
	return page, nil
}

func (repository *fakeRepository) UpdateProfile(_ context.Context, profile *Profile) error {
	for id, existing := range repository.profiles {
		if id != profile.ID && existing.Username == profile.Username {
			return apperr.Conflict("Username is already taken")
		}
	}
	clone := *profile
	repository.profiles[profile.ID] = &clone
	return nil
}

func (repository *fakeRepository) UpdateRole(_ context.Context, userID string, role sec.UserRole) error {
	if profile, ok := repository.profiles[userID]; ok {
		profile.Role = role
	}
	return nil
}

// Delete mirrors the three-phase purge of the Postgres implementation:
// the user's posts with everything attached, then the user's comments on
// surviving posts (settling comment and reply counts), then the user's
// remaining votes (settling like/dislike tallies).
func (repository *fakeRepository) Delete(_ context.Context, id string) error {
	if _, ok := repository.profiles[id]; !ok {
		return apperr.NotFound("User")
	}

	// Phase one: the user's posts and everything on them.
	for postID, post := range repository.posts {
		if post.AuthorID != id {
			continue
		}
		for likeID, like := range repository.likes {
			if like.PostID == postID {
				delete(repository.likes, likeID)
			}
		}
		for commentID, comment := range repository.comments {
			if comment.PostID == postID {
				delete(repository.comments, commentID)
			}
		}
		delete(repository.posts, postID)
	}

	// Phase two: the user's comments elsewhere, plus replies under them.
	doomed := make(map[string]bool)
	for commentID, comment := range repository.comments {
		if comment.AuthorID == id {
			doomed[commentID] = true
		}
	}
	for commentID, comment := range repository.comments {
		if comment.ParentID != nil && doomed[*comment.ParentID] {
			doomed[commentID] = true
		}
	}
	for commentID := range doomed {
		comment := repository.comments[commentID]
		repository.posts[comment.PostID].CommentCount--
		if comment.ParentID != nil && !doomed[*comment.ParentID] {
			repository.comments[*comment.ParentID].ReplyCount--
		}
		for likeID, like := range repository.likes {
			if like.CommentID != nil && *like.CommentID == commentID {
				delete(repository.likes, likeID)
			}
		}
		delete(repository.comments, commentID)
	}

	// Phase three: back the user's remaining votes out of the tallies.
	for likeID, like := range repository.likes {
		if like.UserID != id {
			continue
		}
		switch {
		case like.CommentID != nil && like.IsLiked:
			repository.comments[*like.CommentID].LikeCount--
		case like.CommentID != nil:
			repository.comments[*like.CommentID].DislikeCount--
		case like.IsLiked:
			repository.posts[like.PostID].LikeCount--
		default:
			repository.posts[like.PostID].DislikeCount--
		}
		delete(repository.likes, likeID)
	}

	delete(repository.profiles, id)
	return nil
}

// # Profile Self-Service

func TestUpdateProfile_PartialUpdate(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(repository)
	seeded := repository.seed(sec.RoleUser, "original")

	updated, err := service.UpdateProfile(context.Background(), seeded.ID, UpdateProfileInput{
		FullName: pointer.To("New Name"),
	})

	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.FullName)
	// Untouched fields survive
	assert.Equal(t, "original", updated.Username)
}

func TestUpdateProfile_SanitizesMarkup(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(repository)
	seeded := repository.seed(sec.RoleUser, "markup")

	updated, err := service.UpdateProfile(context.Background(), seeded.ID, UpdateProfileInput{
		FullName: pointer.To(`<script>alert(1)</script>Eve`),
	})

	require.NoError(t, err)
	assert.Equal(t, "Eve", updated.FullName)
}

func TestUpdateProfile_UsernameCollision(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(repository)
	repository.seed(sec.RoleUser, "taken")
	seeded := repository.seed(sec.RoleUser, "renamer")

	_, err := service.UpdateProfile(context.Background(), seeded.ID, UpdateProfileInput{
		Username: pointer.To("taken"),
	})

	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

func TestDeleteAccount(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(repository)
	seeded := repository.seed(sec.RoleUser, "leaver")

	require.NoError(t, service.DeleteAccount(context.Background(), seeded.ID))

	// A second delete reports the account as gone
	err := service.DeleteAccount(context.Background(), seeded.ID)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestDeleteAccount_SettlesContentCounters verifies that removing an account
leaves every surviving counter equal to its live rows: the leaver's posts
vanish with everything attached, their comments (and replies under them)
come off the hosting posts' comment counts and parents' reply counts, and
their votes come back out of the like/dislike tallies.
*/
func TestDeleteAccount_SettlesContentCounters(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(repository)
	survivor := repository.seed(sec.RoleUser, "survivor")
	leaver := repository.seed(sec.RoleUser, "leaver")

	// The survivor's post carries the leaver's footprint.
	hostPost := repository.seedPost(survivor.ID)
	leaverComment := repository.seedComment(leaver.ID, hostPost.ID, nil)
	repository.seedComment(survivor.ID, hostPost.ID, &leaverComment.ID) // reply under the leaver
	survivorComment := repository.seedComment(survivor.ID, hostPost.ID, nil)
	repository.seedComment(leaver.ID, hostPost.ID, &survivorComment.ID) // leaver's reply
	repository.seedVote(leaver.ID, hostPost.ID, nil, true)
	repository.seedVote(leaver.ID, hostPost.ID, &survivorComment.ID, false)

	// The leaver's own post attracts the survivor's activity.
	leaverPost := repository.seedPost(leaver.ID)
	repository.seedComment(survivor.ID, leaverPost.ID, nil)
	repository.seedVote(survivor.ID, leaverPost.ID, nil, true)

	require.Equal(t, 4, hostPost.CommentCount)
	require.Equal(t, 1, survivorComment.ReplyCount)

	require.NoError(t, service.DeleteAccount(context.Background(), leaver.ID))

	// The leaver's post and everything on it is gone, survivor's vote included.
	assert.NotContains(t, repository.posts, leaverPost.ID)
	for _, like := range repository.likes {
		assert.NotEqual(t, leaverPost.ID, like.PostID)
	}

	// On the surviving post only the survivor's top-level comment remains:
	// the leaver's comment took the reply under it along.
	assert.NotContains(t, repository.comments, leaverComment.ID)
	assert.Contains(t, repository.comments, survivorComment.ID)
	assert.Equal(t, 1, hostPost.CommentCount)
	assert.Equal(t, 0, survivorComment.ReplyCount)

	// The leaver's votes are backed out of the tallies.
	assert.Equal(t, 0, hostPost.LikeCount)
	assert.Equal(t, 0, survivorComment.DislikeCount)

	assert.NotContains(t, repository.profiles, leaver.ID)
	assert.Contains(t, repository.profiles, survivor.ID)
}

// # Role Administration

func TestChangeRole_Promotes(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(repository)
	seeded := repository.seed(sec.RoleUser, "climber")

	updated, err := service.ChangeRole(context.Background(), seeded.ID, sec.RoleModerator)

	require.NoError(t, err)
	assert.Equal(t, sec.RoleModerator, updated.Role)
}

func TestChangeRole_SameRoleConflicts(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(repository)
	seeded := repository.seed(sec.RoleModerator, "static")

	_, err := service.ChangeRole(context.Background(), seeded.ID, sec.RoleModerator)

	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

func TestChangeRole_UnknownRoleRejected(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(repository)
	seeded := repository.seed(sec.RoleUser, "confused")

	_, err := service.ChangeRole(context.Background(), seeded.ID, sec.UserRole("superuser"))

	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestChangeRole_UnknownUser(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(repository)

	_, err := service.ChangeRole(context.Background(), uuidv7.New(), sec.RoleAdmin)

	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

// # Listing

func TestList_EmitsCursorOnlyWhenFull(t *testing.T) {
	repository := newFakeRepository()
	service := NewService(repository)
	for i := 0; i < 3; i++ {
		repository.seed(sec.RoleUser, "member"+string(rune('a'+i)))
	}

	profiles, meta, err := service.List(context.Background(), pagination.Params{Limit: 3, Sort: pagination.SortNewest})
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.NotNil(t, meta.NextCursor)

	profiles, meta, err = service.List(context.Background(), pagination.Params{Limit: 10, Sort: pagination.SortNewest})
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Nil(t, meta.NextCursor)
}
