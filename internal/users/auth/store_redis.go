// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Aischii/mangaWebsite/internal/platform/constants"
)

// # Session Repository

// RedisSessionRepository implements [SessionRepository] using Redis keys with a TTL.
type RedisSessionRepository struct {
	client redis.UniversalClient
}

// NewSessionRepository creates a new Redis-backed SessionRepository.
func NewSessionRepository(client redis.UniversalClient) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func sessionKey(sessionID string) string {
	return constants.RedisPrefixSession + sessionID
}

/*
Create stores the session with its owner and expiry.

Parameters:
  - context: context.Context
  - sessionID: string
  - userID: int64
  - ttl: time.Duration

Returns:
  - error: Storage failures
*/
func (repository *RedisSessionRepository) Create(context context.Context, sessionID string, userID int64, ttl time.Duration) error {
	value := strconv.FormatInt(userID, 10)
	if err := repository.client.Set(context, sessionKey(sessionID), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_create_failed: %w", err)
	}
	return nil
}

// Exists reports whether the session key is still present.
func (repository *RedisSessionRepository) Exists(context context.Context, sessionID string) (bool, error) {
	count, err := repository.client.Exists(context, sessionKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis_session_exists_failed: %w", err)
	}
	return count > 0, nil
}

// Delete removes the session key.
func (repository *RedisSessionRepository) Delete(context context.Context, sessionID string) error {
	if err := repository.client.Del(context, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}
