// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpost/inkpost/internal/platform/apperr"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	server := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: server.Addr()})
}

func TestActivationTokenStore_RoundTrip(t *testing.T) {
	client := newTestRedis(t)
	repository := NewActivationTokenRepository(client)

	require.NoError(t, repository.Set(context.Background(), "token-abc", "user-1", time.Hour))

	userID, err := repository.Get(context.Background(), "token-abc")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	require.NoError(t, repository.Delete(context.Background(), "token-abc"))

	_, err = repository.Get(context.Background(), "token-abc")
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

func TestTokenStore_ExpiredIsDistinctFromMissing(t *testing.T) {
	client := newTestRedis(t)
	repository := NewResetTokenRepository(client)

	// Negative TTL: logically expired immediately, but the grace window keeps
	// the key alive so the store can report the precise outcome.
	require.NoError(t, repository.Set(context.Background(), "stale", "user-9", -time.Minute))

	_, err := repository.Get(context.Background(), "stale")
	require.Error(t, err)
	assert.Equal(t, "EXPIRED", apperr.As(err).Code)

	// The expired row was pruned on the spot; a second lookup is a plain miss
	_, err = repository.Get(context.Background(), "stale")
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	// A token that never existed is a miss from the start
	_, err = repository.Get(context.Background(), "never-was")
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

func TestTokenStore_PrefixesIsolateNamespaces(t *testing.T) {
	client := newTestRedis(t)
	activation := NewActivationTokenRepository(client)
	reset := NewResetTokenRepository(client)

	require.NoError(t, activation.Set(context.Background(), "shared", "user-1", time.Hour))

	// The same token string does not leak across repositories
	_, err := reset.Get(context.Background(), "shared")
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}
