package repository

import (
	"context"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
)

// ItemRepository defines the interface for item persistence operations.
// Implementations should be provided by the infrastructure layer (e.g., PostgreSQL).
type ItemRepository interface {
	// Create persists a new item and sets its generated ID.
	Create(ctx context.Context, item *model.Item) error

	// GetByID retrieves an item without its media.
	// Returns ErrItemNotFound if the item does not exist.
	GetByID(ctx context.Context, id int64) (*model.Item, error)

	// List retrieves all items ordered by ID, without media.
	List(ctx context.Context) ([]*model.Item, error)

	// Update persists changes to name, description and price.
	// Returns ErrItemNotFound if the item does not exist.
	Update(ctx context.Context, item *model.Item) error

	// Delete removes an item. Its media records are removed by cascade.
	// Returns ErrItemNotFound if the item does not exist.
	Delete(ctx context.Context, id int64) error
}
