package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/gocatalog/internal/infrastructure/metrics"
)

const (
	// lockKeyPrefix is the prefix for lock keys in Redis.
	lockKeyPrefix = "lock:"

	defaultPollInterval = 50 * time.Millisecond
)

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX PX and a token-checked release.
type RedisLocker struct {
	client       *redis.Client
	pollInterval time.Duration
}

// NewRedisLocker creates a new Redis-backed locker.
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		client:       client,
		pollInterval: defaultPollInterval,
	}
}

// Acquire polls until the lock is held or ctx is done.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	redisKey := lockKeyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	contended := false
	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, ttl).Result()
		if err != nil {
			metrics.LockOperationsTotal.WithLabelValues(metrics.LockOpAcquire, metrics.LockStatusError).Inc()
			return nil, fmt.Errorf("redis setnx: %w", err)
		}
		if ok {
			metrics.LockOperationsTotal.WithLabelValues(metrics.LockOpAcquire, metrics.LockStatusSuccess).Inc()
			return l.releaser(redisKey, token), nil
		}

		if !contended {
			contended = true
			metrics.LockOperationsTotal.WithLabelValues(metrics.LockOpAcquire, metrics.LockStatusContended).Inc()
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", ErrLockNotAcquired, key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) releaser(redisKey, token string) ReleaseFunc {
	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
			metrics.LockOperationsTotal.WithLabelValues(metrics.LockOpRelease, metrics.LockStatusError).Inc()
			return fmt.Errorf("redis release: %w", err)
		}
		metrics.LockOperationsTotal.WithLabelValues(metrics.LockOpRelease, metrics.LockStatusSuccess).Inc()
		return nil
	}
}

// Compile-time verification that RedisLocker implements Locker.
var _ Locker = (*RedisLocker)(nil)
