package usecase

import (
	"context"
	"log/slog"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/domain/repository"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/metrics"
)

// mediaEvents announces media lifecycle changes. With a queue the worker
// reacts asynchronously; without one (or when publishing fails) deletions
// are evicted inline and uploads are left to the first request.
type mediaEvents struct {
	queue      repository.MessageQueue // optional
	thumbnails ThumbnailService
}

func (e *mediaEvents) uploaded(ctx context.Context, m *model.ItemMedia) {
	if !m.IsVideo() || e.queue == nil {
		return
	}

	event := repository.MediaEvent{
		Type:    repository.MediaEventUploaded,
		MediaID: m.ID,
		ItemID:  m.ItemID,
		Kind:    m.Kind.String(),
	}
	if err := e.queue.PublishMediaEvent(ctx, event); err != nil {
		slog.Warn("failed to publish media upload event",
			"media_id", m.ID,
			"error", err,
		)
	}
}

func (e *mediaEvents) deleted(ctx context.Context, m model.ItemMedia) {
	if !m.IsVideo() {
		return
	}

	if e.queue != nil {
		event := repository.MediaEvent{
			Type:    repository.MediaEventDeleted,
			MediaID: m.ID,
			ItemID:  m.ItemID,
			Kind:    m.Kind.String(),
		}
		err := e.queue.PublishMediaEvent(ctx, event)
		if err == nil {
			return
		}
		slog.Warn("failed to publish media delete event, evicting inline",
			"media_id", m.ID,
			"error", err,
		)
	}

	if err := e.thumbnails.Evict(ctx, m.ID); err != nil {
		slog.Warn("failed to evict thumbnail",
			"media_id", m.ID,
			"error", err,
		)
	}
}

// MediaEventService handles media events consumed by the worker.
type MediaEventService interface {
	// HandleEvent warms thumbnails for uploaded videos and evicts them for deleted media.
	// Returns an error for failures worth retrying.
	HandleEvent(ctx context.Context, event repository.MediaEvent) error
}

type mediaEventService struct {
	thumbnails ThumbnailService
}

// NewMediaEventService creates a new MediaEventService instance.
func NewMediaEventService(thumbnails ThumbnailService) MediaEventService {
	return &mediaEventService{thumbnails: thumbnails}
}

func (s *mediaEventService) HandleEvent(ctx context.Context, event repository.MediaEvent) error {
	err := s.handle(ctx, event)

	status := metrics.EventStatusSuccess
	if err != nil {
		status = metrics.EventStatusError
	}
	metrics.MediaEventsTotal.WithLabelValues(string(event.Type), status).Inc()

	return err
}

func (s *mediaEventService) handle(ctx context.Context, event repository.MediaEvent) error {
	switch event.Type {
	case repository.MediaEventUploaded:
		if event.Kind != model.MediaKindVideo.String() {
			return nil
		}
		err := s.thumbnails.Warm(ctx, event.ItemID, event.MediaID)
		switch {
		case err == nil:
			return nil
		case isPermanent(err):
			// The media was deleted or changed since the event was published.
			slog.Info("skipping thumbnail warm-up",
				"media_id", event.MediaID,
				"reason", err,
			)
			return nil
		default:
			return err
		}

	case repository.MediaEventDeleted:
		return s.thumbnails.Evict(ctx, event.MediaID)

	default:
		slog.Warn("ignoring unknown media event", "type", event.Type, "media_id", event.MediaID)
		return nil
	}
}

func isPermanent(err error) bool {
	return errorsIsAny(err, repository.ErrMediaNotFound, ErrInvalidKind, ErrInvalidArgument)
}
