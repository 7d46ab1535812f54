// Package cache provides Redis-backed session storage and distributed locking.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrLockNotAcquired is returned when a lock is held by someone else
// and the caller gave up waiting.
var ErrLockNotAcquired = errors.New("lock not acquired")

// ReleaseFunc releases a held lock. Releasing a lock that expired
// or was taken over by another holder is a no-op.
type ReleaseFunc func(ctx context.Context) error

// Locker serializes work on a key across processes.
type Locker interface {
	// Acquire blocks until the lock on key is held or ctx is done.
	// The lock expires after ttl even if never released.
	Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error)
}
