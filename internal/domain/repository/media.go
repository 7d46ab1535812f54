package repository

import (
	"context"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
)

// MediaRepository defines the interface for item media persistence operations.
type MediaRepository interface {
	// Create persists a new media record and sets its generated ID.
	Create(ctx context.Context, media *model.ItemMedia) error

	// GetByIDForItem retrieves a media record scoped to its owning item.
	// Returns ErrMediaNotFound if no record matches (id, itemID).
	GetByIDForItem(ctx context.Context, id, itemID int64) (*model.ItemMedia, error)

	// ListByItem retrieves all media for an item ordered by ID.
	ListByItem(ctx context.Context, itemID int64) ([]model.ItemMedia, error)

	// ListByItems retrieves media for several items, grouped by item ID.
	ListByItems(ctx context.Context, itemIDs []int64) (map[int64][]model.ItemMedia, error)

	// Delete removes a media record scoped to its owning item.
	// Returns ErrMediaNotFound if no record matches (id, itemID).
	Delete(ctx context.Context, id, itemID int64) error

	// ExistingIDs returns the subset of ids that still have a media record.
	ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error)
}
