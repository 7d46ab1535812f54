package repository

import (
	"context"
	"time"
)

// SessionStore keeps opaque session tokens for authenticated users.
type SessionStore interface {
	// Create issues a new token for userID valid for ttl.
	Create(ctx context.Context, userID int64, ttl time.Duration) (string, error)

	// Get resolves a token to its user ID.
	// Returns ErrSessionNotFound if the token is unknown or expired.
	Get(ctx context.Context, token string) (int64, error)

	// Delete revokes a token. Unknown tokens are not an error.
	Delete(ctx context.Context, token string) error
}
