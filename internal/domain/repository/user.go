package repository

import (
	"context"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create persists a new user and sets its generated ID.
	// Returns ErrDuplicateUsername if the username is taken.
	Create(ctx context.Context, user *model.User) error

	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id int64) (*model.User, error)

	// GetByUsername retrieves a user by username.
	// Returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// List retrieves all users ordered by ID.
	List(ctx context.Context) ([]*model.User, error)

	// Update persists username, password hash and avatar.
	// Returns ErrUserNotFound or ErrDuplicateUsername.
	Update(ctx context.Context, user *model.User) error

	// Delete removes a user.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id int64) error
}
