package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/gocatalog/internal/domain/repository"
)

const (
	// sessionKeyPrefix is the prefix for session keys in Redis.
	sessionKeyPrefix = "session:"
)

// RedisSessionStore implements repository.SessionStore using Redis as the backing store.
// Each session is a single key holding the user ID, expiring after its TTL.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a new Redis-backed session store.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
	}
}

// Create issues a new opaque token bound to userID.
func (s *RedisSessionStore) Create(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	token := uuid.NewString()

	if err := s.client.Set(ctx, s.buildKey(token), userID, ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set: %w", err)
	}

	return token, nil
}

// Get returns the user ID bound to token.
// Returns repository.ErrSessionNotFound for unknown or expired tokens.
func (s *RedisSessionStore) Get(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, repository.ErrSessionNotFound
	}

	raw, err := s.client.Get(ctx, s.buildKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, repository.ErrSessionNotFound
		}
		return 0, fmt.Errorf("redis get: %w", err)
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse session user ID: %w", err)
	}

	return userID, nil
}

// Delete removes a session. Deleting an unknown token is not an error.
func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.buildKey(token)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) buildKey(token string) string {
	return sessionKeyPrefix + token
}

// Compile-time verification that RedisSessionStore implements repository.SessionStore.
var _ repository.SessionStore = (*RedisSessionStore)(nil)
