package usecase

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/domain/repository"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/cache"
)

// mockItemRepository provides a configurable mock for ItemRepository.
type mockItemRepository struct {
	createFn  func(ctx context.Context, item *model.Item) error
	getByIDFn func(ctx context.Context, id int64) (*model.Item, error)
	listFn    func(ctx context.Context) ([]*model.Item, error)
	updateFn  func(ctx context.Context, item *model.Item) error
	deleteFn  func(ctx context.Context, id int64) error
}

func (m *mockItemRepository) Create(ctx context.Context, item *model.Item) error {
	if m.createFn != nil {
		return m.createFn(ctx, item)
	}
	item.ID = 1
	return nil
}

func (m *mockItemRepository) GetByID(ctx context.Context, id int64) (*model.Item, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &model.Item{ID: id, Name: "Item", Description: "Desc", Price: 1}, nil
}

func (m *mockItemRepository) List(ctx context.Context) ([]*model.Item, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockItemRepository) Update(ctx context.Context, item *model.Item) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, item)
	}
	return nil
}

func (m *mockItemRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockMediaRepository provides a configurable mock for MediaRepository.
type mockMediaRepository struct {
	createFn         func(ctx context.Context, media *model.ItemMedia) error
	getByIDForItemFn func(ctx context.Context, id, itemID int64) (*model.ItemMedia, error)
	listByItemFn     func(ctx context.Context, itemID int64) ([]model.ItemMedia, error)
	listByItemsFn    func(ctx context.Context, itemIDs []int64) (map[int64][]model.ItemMedia, error)
	deleteFn         func(ctx context.Context, id, itemID int64) error
	existingIDsFn    func(ctx context.Context, ids []int64) (map[int64]bool, error)
}

func (m *mockMediaRepository) Create(ctx context.Context, media *model.ItemMedia) error {
	if m.createFn != nil {
		return m.createFn(ctx, media)
	}
	media.ID = 1
	return nil
}

func (m *mockMediaRepository) GetByIDForItem(ctx context.Context, id, itemID int64) (*model.ItemMedia, error) {
	if m.getByIDForItemFn != nil {
		return m.getByIDForItemFn(ctx, id, itemID)
	}
	return nil, repository.ErrMediaNotFound
}

func (m *mockMediaRepository) ListByItem(ctx context.Context, itemID int64) ([]model.ItemMedia, error) {
	if m.listByItemFn != nil {
		return m.listByItemFn(ctx, itemID)
	}
	return []model.ItemMedia{}, nil
}

func (m *mockMediaRepository) ListByItems(ctx context.Context, itemIDs []int64) (map[int64][]model.ItemMedia, error) {
	if m.listByItemsFn != nil {
		return m.listByItemsFn(ctx, itemIDs)
	}
	return map[int64][]model.ItemMedia{}, nil
}

func (m *mockMediaRepository) Delete(ctx context.Context, id, itemID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, itemID)
	}
	return nil
}

func (m *mockMediaRepository) ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	if m.existingIDsFn != nil {
		return m.existingIDsFn(ctx, ids)
	}
	return map[int64]bool{}, nil
}

// mockUserRepository provides a configurable mock for UserRepository.
type mockUserRepository struct {
	createFn        func(ctx context.Context, user *model.User) error
	getByIDFn       func(ctx context.Context, id int64) (*model.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*model.User, error)
	listFn          func(ctx context.Context) ([]*model.User, error)
	updateFn        func(ctx context.Context, user *model.User) error
	deleteFn        func(ctx context.Context, id int64) error
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	user.ID = 1
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) List(ctx context.Context) ([]*model.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *model.User) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockSessionStore provides a configurable mock for SessionStore.
type mockSessionStore struct {
	createFn func(ctx context.Context, userID int64, ttl time.Duration) (string, error)
	getFn    func(ctx context.Context, token string) (int64, error)
	deleteFn func(ctx context.Context, token string) error
}

func (m *mockSessionStore) Create(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, ttl)
	}
	return "token", nil
}

func (m *mockSessionStore) Get(ctx context.Context, token string) (int64, error) {
	if m.getFn != nil {
		return m.getFn(ctx, token)
	}
	return 0, repository.ErrSessionNotFound
}

func (m *mockSessionStore) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

// mockFileStore provides a configurable mock for FileStore.
// Without overrides it records saved and removed paths in memory.
type mockFileStore struct {
	saveFn    func(ctx context.Context, dir, name string, r io.Reader) (string, error)
	resolveFn func(publicPath string) (string, error)
	removeFn  func(publicPath string) error

	mu      sync.Mutex
	saved   map[string][]byte
	removed []string
}

func (m *mockFileStore) Save(ctx context.Context, dir, name string, r io.Reader) (string, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, dir, name, r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	p := "/uploads/" + strings.TrimPrefix(filepath.ToSlash(filepath.Join(dir, name)), "/")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	m.saved[p] = data
	return p, nil
}

func (m *mockFileStore) Resolve(publicPath string) (string, error) {
	if m.resolveFn != nil {
		return m.resolveFn(publicPath)
	}
	return filepath.FromSlash(publicPath), nil
}

func (m *mockFileStore) Remove(publicPath string) error {
	if m.removeFn != nil {
		return m.removeFn(publicPath)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, publicPath)
	return nil
}

func (m *mockFileStore) removedPaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.removed...)
}

// mockThumbnailMirror provides a configurable mock for ThumbnailMirror.
type mockThumbnailMirror struct {
	putFn     func(ctx context.Context, key string, r io.Reader, size int64) error
	statFn    func(ctx context.Context, key string) (repository.MirrorObject, error)
	removeFn  func(ctx context.Context, key string) error
	presignFn func(ctx context.Context, key string, expiry time.Duration) (string, error)
}

func (m *mockThumbnailMirror) PutThumbnail(ctx context.Context, key string, r io.Reader, size int64) error {
	if m.putFn != nil {
		return m.putFn(ctx, key, r, size)
	}
	return nil
}

func (m *mockThumbnailMirror) StatThumbnail(ctx context.Context, key string) (repository.MirrorObject, error) {
	if m.statFn != nil {
		return m.statFn(ctx, key)
	}
	return repository.MirrorObject{}, repository.ErrObjectNotFound
}

func (m *mockThumbnailMirror) RemoveThumbnail(ctx context.Context, key string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, key)
	}
	return nil
}

func (m *mockThumbnailMirror) PresignThumbnail(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if m.presignFn != nil {
		return m.presignFn(ctx, key, expiry)
	}
	return "http://minio:9000/bucket/" + key + "?signature=xyz", nil
}

// mockMessageQueue provides a configurable mock for MessageQueue.
type mockMessageQueue struct {
	publishFn func(ctx context.Context, event repository.MediaEvent) error
	consumeFn func(ctx context.Context, handler func(event repository.MediaEvent) error) error
	closeFn   func() error

	mu        sync.Mutex
	published []repository.MediaEvent
}

func (m *mockMessageQueue) PublishMediaEvent(ctx context.Context, event repository.MediaEvent) error {
	if m.publishFn != nil {
		return m.publishFn(ctx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, event)
	return nil
}

func (m *mockMessageQueue) ConsumeMediaEvents(ctx context.Context, handler func(event repository.MediaEvent) error) error {
	if m.consumeFn != nil {
		return m.consumeFn(ctx, handler)
	}
	return nil
}

func (m *mockMessageQueue) Close() error {
	if m.closeFn != nil {
		return m.closeFn()
	}
	return nil
}

func (m *mockMessageQueue) events() []repository.MediaEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]repository.MediaEvent(nil), m.published...)
}

// mockFrameExtractor provides a configurable mock for FrameExtractor.
// Without an override it writes a small fake JPEG to outputPath.
type mockFrameExtractor struct {
	extractFn func(ctx context.Context, inputPath, outputPath string) error
}

func (m *mockFrameExtractor) ExtractFrame(ctx context.Context, inputPath, outputPath string) error {
	if m.extractFn != nil {
		return m.extractFn(ctx, inputPath, outputPath)
	}
	return writeFakeJPEG(outputPath)
}

func writeFakeJPEG(path string) error {
	return os.WriteFile(path, fakeJPEG, 0o644)
}

var fakeJPEG = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0}, 60)...)

// mockLocker provides a configurable mock for cache.Locker.
type mockLocker struct {
	acquireFn func(ctx context.Context, key string, ttl time.Duration) (cache.ReleaseFunc, error)
}

func (m *mockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (cache.ReleaseFunc, error) {
	if m.acquireFn != nil {
		return m.acquireFn(ctx, key, ttl)
	}
	return func(context.Context) error { return nil }, nil
}

// mockThumbnailService provides a configurable mock for ThumbnailService.
type mockThumbnailService struct {
	getThumbnailFn func(ctx context.Context, itemID, mediaID int64) (string, error)
	warmFn         func(ctx context.Context, itemID, mediaID int64) error
	evictFn        func(ctx context.Context, mediaID int64) error
	pruneOrphansFn func(ctx context.Context) (int, error)

	mu      sync.Mutex
	evicted []int64
}

func (m *mockThumbnailService) GetThumbnail(ctx context.Context, itemID, mediaID int64) (string, error) {
	if m.getThumbnailFn != nil {
		return m.getThumbnailFn(ctx, itemID, mediaID)
	}
	return "/uploads/thumbnails/" + model.ThumbnailFilename(mediaID), nil
}

func (m *mockThumbnailService) Warm(ctx context.Context, itemID, mediaID int64) error {
	if m.warmFn != nil {
		return m.warmFn(ctx, itemID, mediaID)
	}
	return nil
}

func (m *mockThumbnailService) Evict(ctx context.Context, mediaID int64) error {
	m.mu.Lock()
	m.evicted = append(m.evicted, mediaID)
	m.mu.Unlock()
	if m.evictFn != nil {
		return m.evictFn(ctx, mediaID)
	}
	return nil
}

func (m *mockThumbnailService) PruneOrphans(ctx context.Context) (int, error) {
	if m.pruneOrphansFn != nil {
		return m.pruneOrphansFn(ctx)
	}
	return 0, nil
}

func (m *mockThumbnailService) evictedIDs() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.evicted...)
}
