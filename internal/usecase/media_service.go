package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/domain/repository"
)

var (
	allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	allowedVideoTypes = []string{"video/mp4", "video/webm", "video/ogg"}
)

// mediaUploadDir is the uploads subdirectory holding item media.
const mediaUploadDir = "items"

// UploadMediaInput contains the input parameters for attaching a file to an item.
type UploadMediaInput struct {
	ItemID int64
	// Kind is the raw fileType form value, "image" or "video".
	Kind string
	File io.Reader
}

// MediaService defines the interface for item media operations.
type MediaService interface {
	// UploadMedia stores the file, records it and, for videos, schedules thumbnail warm-up.
	UploadMedia(ctx context.Context, input UploadMediaInput) (*model.ItemMedia, error)

	// DeleteMedia removes a media record owned by itemID, its file and its thumbnail.
	DeleteMedia(ctx context.Context, itemID, mediaID int64) error
}

type mediaService struct {
	items  repository.ItemRepository
	media  repository.MediaRepository
	files  repository.FileStore
	events *mediaEvents
	now    func() time.Time
}

// NewMediaService creates a new MediaService instance.
// queue may be nil, in which case thumbnails are evicted inline.
func NewMediaService(
	items repository.ItemRepository,
	media repository.MediaRepository,
	files repository.FileStore,
	thumbnails ThumbnailService,
	queue repository.MessageQueue,
) MediaService {
	return &mediaService{
		items:  items,
		media:  media,
		files:  files,
		events: &mediaEvents{queue: queue, thumbnails: thumbnails},
		now:    time.Now,
	}
}

func (s *mediaService) UploadMedia(ctx context.Context, input UploadMediaInput) (*model.ItemMedia, error) {
	if input.ItemID <= 0 {
		return nil, ErrInvalidArgument
	}

	kind, err := model.ParseMediaKind(input.Kind)
	if err != nil {
		return nil, err
	}

	if _, err := s.items.GetByID(ctx, input.ItemID); err != nil {
		return nil, err
	}

	detected, body, err := sniff(input.File)
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %v", ErrStorage, err)
	}

	allowed := allowedImageTypes
	if kind == model.MediaKindVideo {
		allowed = allowedVideoTypes
	}
	if _, ok := matchMIME(detected, allowed...); !ok {
		return nil, fmt.Errorf("%w: %s is not an allowed %s type", ErrUnsupportedFileType, detected.String(), kind)
	}

	name := model.MediaFilename(input.ItemID, s.now(), detected.Extension())
	publicPath, err := s.files.Save(ctx, mediaUploadDir, name, body)
	if err != nil {
		return nil, fmt.Errorf("%w: save upload: %v", ErrStorage, err)
	}

	media, err := model.NewItemMedia(input.ItemID, publicPath, kind)
	if err != nil {
		_ = s.files.Remove(publicPath)
		return nil, err
	}

	if err := s.media.Create(ctx, media); err != nil {
		_ = s.files.Remove(publicPath)
		return nil, fmt.Errorf("create media: %w", err)
	}

	s.events.uploaded(ctx, media)

	return media, nil
}

func (s *mediaService) DeleteMedia(ctx context.Context, itemID, mediaID int64) error {
	if itemID <= 0 || mediaID <= 0 {
		return ErrInvalidArgument
	}

	media, err := s.media.GetByIDForItem(ctx, mediaID, itemID)
	if err != nil {
		return err
	}

	if err := s.media.Delete(ctx, mediaID, itemID); err != nil {
		return err
	}

	if err := s.files.Remove(media.Filename); err != nil {
		slog.Warn("failed to remove media file",
			"item_id", itemID,
			"media_id", mediaID,
			"error", err,
		)
	}

	s.events.deleted(ctx, *media)

	return nil
}
