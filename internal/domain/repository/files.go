package repository

import (
	"context"
	"io"
)

// FileStore persists uploaded files under a public uploads tree.
// Public paths look like /uploads/items/item-7-1700000000.mp4.
type FileStore interface {
	// Save writes the reader to dir/name and returns the file's public path.
	Save(ctx context.Context, dir, name string, r io.Reader) (string, error)

	// Resolve maps a public path to an absolute filesystem path.
	// Paths escaping the uploads root are rejected.
	Resolve(publicPath string) (string, error)

	// Remove deletes the file behind a public path. Missing files are not an error.
	Remove(publicPath string) error
}
