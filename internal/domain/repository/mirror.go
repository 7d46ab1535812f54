package repository

import (
	"context"
	"io"
	"time"
)

// MirrorObject describes a thumbnail copy held in the mirror.
type MirrorObject struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ThumbnailMirror keeps copies of cached thumbnails in object storage so they
// can be handed out as presigned URLs. Keys are relative to the mirror bucket.
type ThumbnailMirror interface {
	// PutThumbnail stores size bytes of JPEG data under key, replacing any previous copy.
	PutThumbnail(ctx context.Context, key string, r io.Reader, size int64) error

	// StatThumbnail returns ErrObjectNotFound when key is absent.
	StatThumbnail(ctx context.Context, key string) (MirrorObject, error)

	// RemoveThumbnail deletes key. Removing a missing key is not an error.
	RemoveThumbnail(ctx context.Context, key string) error

	// PresignThumbnail returns a URL valid for expiry.
	PresignThumbnail(ctx context.Context, key string, expiry time.Duration) (string, error)
}
