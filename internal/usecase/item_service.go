package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/domain/repository"
)

// CreateItemInput contains the input parameters for creating an item.
type CreateItemInput struct {
	Name        string
	Description string
	Price       float64
}

// ItemService defines the interface for item business logic operations.
type ItemService interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*model.Item, error)

	// GetItem retrieves an item together with its media.
	GetItem(ctx context.Context, id int64) (*model.Item, error)

	// ListItems retrieves all items together with their media.
	ListItems(ctx context.Context) ([]*model.Item, error)

	UpdateItem(ctx context.Context, id int64, patch model.ItemPatch) (*model.Item, error)

	// DeleteItem removes the item, its media records and files, and evicts video thumbnails.
	DeleteItem(ctx context.Context, id int64) error
}

type itemService struct {
	items  repository.ItemRepository
	media  repository.MediaRepository
	files  repository.FileStore
	events *mediaEvents
}

// NewItemService creates a new ItemService instance.
// queue may be nil, in which case thumbnails are evicted inline.
func NewItemService(
	items repository.ItemRepository,
	media repository.MediaRepository,
	files repository.FileStore,
	thumbnails ThumbnailService,
	queue repository.MessageQueue,
) ItemService {
	return &itemService{
		items:  items,
		media:  media,
		files:  files,
		events: &mediaEvents{queue: queue, thumbnails: thumbnails},
	}
}

func (s *itemService) CreateItem(ctx context.Context, input CreateItemInput) (*model.Item, error) {
	item, err := model.NewItem(input.Name, input.Description, input.Price)
	if err != nil {
		return nil, err
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	item.Media = []model.ItemMedia{}
	return item, nil
}

func (s *itemService) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	if id <= 0 {
		return nil, ErrInvalidArgument
	}

	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	media, err := s.media.ListByItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	item.Media = media

	return item, nil
}

func (s *itemService) ListItems(ctx context.Context) ([]*model.Item, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	ids := lo.Map(items, func(it *model.Item, _ int) int64 { return it.ID })
	byItem, err := s.media.ListByItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}

	for _, it := range items {
		it.Media = byItem[it.ID]
		if it.Media == nil {
			it.Media = []model.ItemMedia{}
		}
	}

	return items, nil
}

func (s *itemService) UpdateItem(ctx context.Context, id int64, patch model.ItemPatch) (*model.Item, error) {
	if id <= 0 {
		return nil, ErrInvalidArgument
	}

	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := item.Apply(patch); err != nil {
		return nil, err
	}

	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}

	media, err := s.media.ListByItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	item.Media = media

	return item, nil
}

func (s *itemService) DeleteItem(ctx context.Context, id int64) error {
	// Media rows disappear with the item, so capture them first.
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}

	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}

	for _, m := range item.Media {
		if err := s.files.Remove(m.Filename); err != nil {
			slog.Warn("failed to remove media file",
				"item_id", id,
				"media_id", m.ID,
				"error", err,
			)
		}
	}
	for _, v := range item.Videos() {
		s.events.deleted(ctx, v)
	}

	return nil
}
