package repository

import (
	"context"
)

// MediaEventType identifies what happened to a media record.
type MediaEventType string

const (
	MediaEventUploaded MediaEventType = "uploaded"
	MediaEventDeleted  MediaEventType = "deleted"
)

// MediaEvent is published when media is uploaded or deleted so that
// thumbnails can be warmed or evicted out of the request path.
type MediaEvent struct {
	Type       MediaEventType `json:"type"`
	MediaID    int64          `json:"media_id"`
	ItemID     int64          `json:"item_id"`
	Kind       string         `json:"kind"`
	RetryCount int            `json:"retry_count"`
}

// MessageQueue defines the interface for message queue operations.
// Implementations should be provided by the infrastructure layer (e.g., RabbitMQ).
type MessageQueue interface {
	// PublishMediaEvent sends a media event to the queue.
	PublishMediaEvent(ctx context.Context, event MediaEvent) error

	// ConsumeMediaEvents starts consuming media events from the queue.
	// The handler function is called for each received event.
	// Blocks until ctx is cancelled or the delivery channel closes.
	ConsumeMediaEvents(ctx context.Context, handler func(event MediaEvent) error) error

	// Close gracefully closes the connection to the message queue.
	Close() error
}
