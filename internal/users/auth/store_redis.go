// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inkpost/inkpost/internal/platform/apperr"
	"github.com/inkpost/inkpost/internal/platform/constants"
)

// # Opaque Token Storage
//
// Activation and reset tokens are single-use secrets with a logical lifetime.
// The stored value embeds the logical expiry ("userID|unixMilli") and the
// Redis key TTL is padded with a grace window: between logical expiry and key
// eviction, a lookup can still report "expired" (HTTP 400) instead of
// collapsing into "never existed" (HTTP 404). Expired rows are deleted lazily
// when encountered.

// redisTokenStore is the shared implementation behind both token repositories.
type redisTokenStore struct {
	client *redis.Client
	prefix string
	label  string
}

func (store *redisTokenStore) key(token string) string {
	return store.prefix + token
}

/*
Set stores a token with its associated userID and logical TTL.

Parameters:
  - context: context.Context
  - token: string
  - userID: string
  - ttl: time.Duration (logical lifetime; the Redis TTL adds a grace window)

Returns:
  - error: Execution errors
*/
func (store *redisTokenStore) Set(context context.Context, token string, userID string, ttl time.Duration) error {

	// Embed the logical expiry in the value
	expiresAt := time.Now().Add(ttl).UnixMilli()
	value := fmt.Sprintf("%s|%d", userID, expiresAt)

	// Key survives the logical expiry by the grace window
	if err := store.client.Set(context, store.key(token), value, ttl+opaqueTokenGrace).Err(); err != nil {
		return fmt.Errorf("redis_%s_token_set_failed: %w", store.label, err)
	}

	return nil
}

/*
Get retrieves the userID for a given token.

Description: Returns apperr.NotFound if the token is absent, apperr.Expired
if its logical lifetime has elapsed (the stale row is pruned on the spot).

Parameters:
  - context: context.Context
  - token: string

Returns:
  - string: Original UserID
  - error: apperr.NotFound, apperr.Expired, or connectivity errors
*/
func (store *redisTokenStore) Get(context context.Context, token string) (string, error) {
	value, err := store.client.Get(context, store.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Token")
		}
		return "", fmt.Errorf("redis_%s_token_get_failed: %w", store.label, err)
	}

	// Split off the embedded logical expiry
	userID, rawExpiry, found := strings.Cut(value, "|")
	if !found {
		return "", fmt.Errorf("redis_%s_token_malformed_value", store.label)
	}

	expiresAtMilli, err := strconv.ParseInt(rawExpiry, 10, 64)
	if err != nil {
		return "", fmt.Errorf("redis_%s_token_malformed_expiry: %w", store.label, err)
	}

	if time.Now().UnixMilli() > expiresAtMilli {
		// Lazy cleanup: the grace window served its purpose.
		_ = store.client.Del(context, store.key(token)).Err()
		return "", apperr.Expired("Token has expired, please request a new one")
	}

	return userID, nil
}

/*
Delete removes the token from Redis.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Deletion failures
*/
func (store *redisTokenStore) Delete(context context.Context, token string) error {
	if err := store.client.Del(context, store.key(token)).Err(); err != nil {
		return fmt.Errorf("redis_%s_token_delete_failed: %w", store.label, err)
	}
	return nil
}

// # Activation Token Repository

// RedisActivationTokenRepository implements ActivationTokenRepository using Redis.
type RedisActivationTokenRepository struct {
	redisTokenStore
}

// NewActivationTokenRepository creates a new Redis-backed ActivationTokenRepository.
func NewActivationTokenRepository(client *redis.Client) *RedisActivationTokenRepository {
	return &RedisActivationTokenRepository{redisTokenStore{
		client: client,
		prefix: constants.RedisPrefixActivationToken,
		label:  "activation",
	}}
}

// # Reset Token Repository

// RedisResetTokenRepository implements ResetTokenRepository using Redis.
type RedisResetTokenRepository struct {
	redisTokenStore
}

// NewResetTokenRepository creates a new Redis-backed ResetTokenRepository.
func NewResetTokenRepository(client *redis.Client) *RedisResetTokenRepository {
	return &RedisResetTokenRepository{redisTokenStore{
		client: client,
		prefix: constants.RedisPrefixResetToken,
		label:  "reset",
	}}
}
