// Package localfs stores uploaded files on local disk under a public uploads root.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hszk-dev/gocatalog/internal/domain/repository"
)

// PublicPrefix is the URL prefix under which the uploads root is served.
const PublicPrefix = "/uploads"

// ErrPathOutsideRoot is returned for public paths that do not map into the uploads root.
var ErrPathOutsideRoot = errors.New("path outside uploads root")

// Store implements repository.FileStore on the local filesystem.
type Store struct {
	root string
}

// NewStore creates a Store rooted at root, creating the directory if needed.
func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve uploads root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute uploads root.
func (s *Store) Root() string {
	return s.root
}

// Dir returns the absolute path of a subdirectory of the uploads root.
func (s *Store) Dir(sub string) string {
	return filepath.Join(s.root, filepath.FromSlash(sub))
}

// Save streams r into dir/name. The file is written under a temporary
// name and renamed into place so readers never observe a partial upload.
func (s *Store) Save(ctx context.Context, dir, name string, r io.Reader) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	publicPath := path.Join(PublicPrefix, dir, name)
	target, err := s.Resolve(publicPath)
	if err != nil {
		return "", err
	}

	targetDir := filepath.Dir(target)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	tmp, err := os.CreateTemp(targetDir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, contextReader{ctx: ctx, r: r}); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		return "", fmt.Errorf("move upload into place: %w", err)
	}

	return publicPath, nil
}

// Resolve maps a public path such as /uploads/items/a.mp4 to its absolute
// location on disk.
func (s *Store) Resolve(publicPath string) (string, error) {
	cleaned := path.Clean("/" + strings.TrimSpace(publicPath))
	rel, ok := strings.CutPrefix(cleaned, PublicPrefix+"/")
	if !ok || rel == "" {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, publicPath)
	}

	abs := filepath.Join(s.root, filepath.FromSlash(rel))
	within, err := filepath.Rel(s.root, abs)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, publicPath)
	}

	return abs, nil
}

// Remove deletes the file behind publicPath. A missing file is not an error.
func (s *Store) Remove(publicPath string) error {
	abs, err := s.Resolve(publicPath)
	if err != nil {
		return err
	}

	if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", publicPath, err)
	}
	return nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// Compile-time verification that Store implements repository.FileStore.
var _ repository.FileStore = (*Store)(nil)
