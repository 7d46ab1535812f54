package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MediaKind distinguishes the two kinds of files attached to an item.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

func (k MediaKind) IsValid() bool {
	switch k {
	case MediaKindImage, MediaKindVideo:
		return true
	default:
		return false
	}
}

func (k MediaKind) String() string {
	return string(k)
}

// ParseMediaKind converts a raw form value into a MediaKind.
func ParseMediaKind(raw string) (MediaKind, error) {
	kind := MediaKind(strings.TrimSpace(strings.ToLower(raw)))
	if !kind.IsValid() {
		return "", ErrInvalidMediaKind
	}
	return kind, nil
}

// ItemMedia is an uploaded image or video attached to an item.
// Filename is the public path of the file, e.g. /uploads/items/item-7-1700000000.mp4.
type ItemMedia struct {
	ID         int64
	ItemID     int64
	Filename   string
	Kind       MediaKind
	CreatedAt  time.Time
	ModifiedAt time.Time
}

var (
	ErrInvalidMediaKind = errors.New("media kind must be 'image' or 'video'")
	ErrInvalidItemID    = errors.New("item ID must be a positive integer")
	ErrEmptyFilename    = errors.New("media filename cannot be empty")
)

// NewItemMedia creates a media record for a file already stored at filename.
func NewItemMedia(itemID int64, filename string, kind MediaKind) (*ItemMedia, error) {
	if itemID <= 0 {
		return nil, ErrInvalidItemID
	}
	if filename == "" {
		return nil, ErrEmptyFilename
	}
	if !kind.IsValid() {
		return nil, ErrInvalidMediaKind
	}

	now := time.Now()
	return &ItemMedia{
		ItemID:     itemID,
		Filename:   filename,
		Kind:       kind,
		CreatedAt:  now,
		ModifiedAt: now,
	}, nil
}

// IsVideo returns true if the media is a video.
func (m *ItemMedia) IsVideo() bool {
	return m.Kind == MediaKindVideo
}

// ThumbnailFilename returns the deterministic cache file name for the media's thumbnail.
// Format: thumbnail-{id}.jpg
func ThumbnailFilename(mediaID int64) string {
	return fmt.Sprintf("thumbnail-%d.jpg", mediaID)
}

// MediaFilename builds the stored file name for an item upload.
// Format: item-{itemID}-{unixMillis}.{ext}
func MediaFilename(itemID int64, uploadedAt time.Time, ext string) string {
	return fmt.Sprintf("item-%d-%d%s", itemID, uploadedAt.UnixMilli(), normalizeExt(ext))
}

// AvatarFilename builds the stored file name for a user avatar.
// Format: user-{userID}-{unixMillis}.{ext}
func AvatarFilename(userID int64, uploadedAt time.Time, ext string) string {
	return fmt.Sprintf("user-%d-%d%s", userID, uploadedAt.UnixMilli(), normalizeExt(ext))
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	ext = strings.NewReplacer("/", "", "\\", "").Replace(ext)
	ext = strings.TrimLeft(ext, ".")
	if ext == "" {
		return ""
	}
	return "." + ext
}
