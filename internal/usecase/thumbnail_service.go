package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/domain/repository"
	"github.com/hszk-dev/gocatalog/internal/extractor"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/cache"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/metrics"
)

// ThumbnailService produces and caches a still frame for each video media record.
type ThumbnailService interface {
	// GetThumbnail returns a reference to a fresh thumbnail for the video,
	// generating it when missing or not strictly newer than the source.
	GetThumbnail(ctx context.Context, itemID, mediaID int64) (string, error)

	// Warm generates the thumbnail ahead of the first request.
	Warm(ctx context.Context, itemID, mediaID int64) error

	// Evict removes the cached thumbnail. A missing file is a no-op.
	Evict(ctx context.Context, mediaID int64) error

	// PruneOrphans removes cached thumbnails whose media record no longer exists.
	PruneOrphans(ctx context.Context) (int, error)
}

// ThumbnailServiceConfig holds configuration for ThumbnailService.
type ThumbnailServiceConfig struct {
	// Dir is the absolute directory holding thumbnail-<id>.jpg files.
	Dir string
	// PublicPrefix is the URL path under which Dir is served.
	PublicPrefix string
	// Timeout bounds a single frame extraction.
	Timeout time.Duration
	// LockTTL is the expiry of the cross-instance generation lock.
	LockTTL time.Duration
	// MirrorPrefix is the object key prefix used when a mirror is configured.
	MirrorPrefix string
	// MirrorURLExpiry is the lifetime of presigned mirror URLs.
	MirrorURLExpiry time.Duration
}

// DefaultThumbnailServiceConfig returns the default configuration.
func DefaultThumbnailServiceConfig(dir string) ThumbnailServiceConfig {
	return ThumbnailServiceConfig{
		Dir:             dir,
		PublicPrefix:    "/uploads/thumbnails",
		Timeout:         30 * time.Second,
		LockTTL:         45 * time.Second,
		MirrorPrefix:    "thumbnails/",
		MirrorURLExpiry: time.Hour,
	}
}

type thumbnailService struct {
	media     repository.MediaRepository
	files     repository.FileStore
	extractor extractor.FrameExtractor
	locker    cache.Locker               // optional
	mirror    repository.ThumbnailMirror // optional
	sfGroup   singleflight.Group
	cacheMu   keyedMutex // guards each cache file between generation and eviction

	cfg ThumbnailServiceConfig
}

// ThumbnailOption configures optional collaborators of ThumbnailService.
type ThumbnailOption func(*thumbnailService)

// WithLocker serializes generation across instances sharing the thumbnails directory.
func WithLocker(l cache.Locker) ThumbnailOption {
	return func(s *thumbnailService) { s.locker = l }
}

// WithMirror uploads generated thumbnails to object storage and returns presigned URLs.
func WithMirror(m repository.ThumbnailMirror) ThumbnailOption {
	return func(s *thumbnailService) { s.mirror = m }
}

// NewThumbnailService creates a new ThumbnailService instance.
func NewThumbnailService(
	media repository.MediaRepository,
	files repository.FileStore,
	fx extractor.FrameExtractor,
	cfg ThumbnailServiceConfig,
	opts ...ThumbnailOption,
) ThumbnailService {
	s := &thumbnailService{
		media:     media,
		files:     files,
		extractor: fx,
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// flightResult is what the singleflight leader hands to every joiner.
type flightResult struct {
	generated bool
	mirrored  bool
}

func (s *thumbnailService) GetThumbnail(ctx context.Context, itemID, mediaID int64) (string, error) {
	if itemID <= 0 || mediaID <= 0 {
		return "", ErrInvalidArgument
	}

	media, err := s.media.GetByIDForItem(ctx, mediaID, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrMediaNotFound) {
			return "", err
		}
		return "", fmt.Errorf("get media: %w", err)
	}

	if !media.IsVideo() {
		return "", ErrInvalidKind
	}

	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create thumbnails directory: %v", ErrStorage, err)
	}

	source, err := s.files.Resolve(media.Filename)
	if err != nil {
		return "", fmt.Errorf("%w: resolve source: %v", ErrStorage, err)
	}

	// Joiners share the leader's outcome; the leader runs detached from any
	// single caller so a disconnecting client cannot fail the others.
	key := strconv.FormatInt(mediaID, 10)
	detached := context.WithoutCancel(ctx)
	v, err, shared := s.sfGroup.Do(key, func() (any, error) {
		return s.ensureFresh(detached, mediaID, source)
	})

	if shared {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightShared).Inc()
	} else {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightInitiated).Inc()
	}

	if err != nil {
		metrics.ThumbnailRequestsTotal.WithLabelValues(metrics.ThumbnailFailed).Inc()
		return "", err
	}

	res := v.(flightResult)
	if res.generated {
		metrics.ThumbnailRequestsTotal.WithLabelValues(metrics.ThumbnailGenerated).Inc()
	} else {
		metrics.ThumbnailRequestsTotal.WithLabelValues(metrics.ThumbnailHit).Inc()
	}

	return s.reference(ctx, mediaID, res.mirrored), nil
}

func (s *thumbnailService) Warm(ctx context.Context, itemID, mediaID int64) error {
	_, err := s.GetThumbnail(ctx, itemID, mediaID)
	return err
}

func (s *thumbnailService) Evict(ctx context.Context, mediaID int64) error {
	if mediaID <= 0 {
		return ErrInvalidArgument
	}

	// An in-flight generation would rename its result back into place.
	unlock := s.cacheMu.lock(mediaID)
	defer unlock()

	if err := os.Remove(s.cachePath(mediaID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove thumbnail: %v", ErrStorage, err)
	}

	if s.mirror != nil {
		if err := s.mirror.RemoveThumbnail(ctx, s.mirrorKey(mediaID)); err != nil {
			slog.Warn("failed to delete mirrored thumbnail",
				"media_id", mediaID,
				"error", err,
			)
		}
	}

	return nil
}

func (s *thumbnailService) PruneOrphans(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: read thumbnails directory: %v", ErrStorage, err)
	}

	var ids []int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if id, ok := parseThumbnailFilename(entry.Name()); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	existing, err := s.media.ExistingIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("check media ids: %w", err)
	}

	removed := 0
	for _, id := range ids {
		if existing[id] {
			continue
		}
		if err := s.Evict(ctx, id); err != nil {
			return removed, err
		}
		removed++
	}

	return removed, nil
}

// ensureFresh returns once the cache file is strictly newer than source,
// generating it when needed.
func (s *thumbnailService) ensureFresh(ctx context.Context, mediaID int64, source string) (flightResult, error) {
	unlock := s.cacheMu.lock(mediaID)
	defer unlock()

	target := s.cachePath(mediaID)

	fresh, err := isFresh(target, source)
	if err != nil {
		return flightResult{}, err
	}
	if fresh {
		return flightResult{mirrored: s.syncMirror(ctx, mediaID, target, false)}, nil
	}

	if s.locker != nil {
		release := s.acquireLock(ctx, mediaID)
		if release != nil {
			defer func() {
				if err := release(ctx); err != nil {
					slog.Warn("failed to release thumbnail lock", "media_id", mediaID, "error", err)
				}
			}()
		}

		// A peer may have finished while we waited.
		fresh, err := isFresh(target, source)
		if err != nil {
			return flightResult{}, err
		}
		if fresh {
			return flightResult{mirrored: s.syncMirror(ctx, mediaID, target, false)}, nil
		}
	}

	if err := s.generate(ctx, mediaID, source, target); err != nil {
		return flightResult{}, err
	}

	return flightResult{
		generated: true,
		mirrored:  s.syncMirror(ctx, mediaID, target, true),
	}, nil
}

// acquireLock waits up to the generation timeout for the cross-instance lock.
// Returns nil when the lock could not be taken; generation then proceeds
// unlocked and the last rename wins.
func (s *thumbnailService) acquireLock(ctx context.Context, mediaID int64) cache.ReleaseFunc {
	lockCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	release, err := s.locker.Acquire(lockCtx, "thumbnail:"+strconv.FormatInt(mediaID, 10), s.cfg.LockTTL)
	if err != nil {
		slog.Warn("thumbnail lock unavailable, generating without it",
			"media_id", mediaID,
			"error", err,
		)
		return nil
	}
	return release
}

// generate extracts a frame into a temporary file next to target and
// renames it into place, so target never holds a partial image.
func (s *thumbnailService) generate(ctx context.Context, mediaID int64, source, target string) error {
	tmp, err := os.CreateTemp(s.cfg.Dir, fmt.Sprintf("thumbnail-%d-*.jpg", mediaID))
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrStorage, err)
	}
	tmpName := tmp.Name()
	_ = tmp.Close()

	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmpName)
		}
	}()

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	err = s.extractor.ExtractFrame(genCtx, source, tmpName)
	metrics.ThumbnailGenerationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		slog.Error("thumbnail generation failed",
			"media_id", mediaID,
			"source", source,
			"error", err,
		)
		return fmt.Errorf("%w: %v", ErrThumbnailGenerationFailed, err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("%w: move thumbnail into place: %v", ErrStorage, err)
	}
	renamed = true

	slog.Info("thumbnail generated",
		"media_id", mediaID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// syncMirror makes sure the mirror holds the current thumbnail and reports
// whether a presigned reference can be handed out. A copy is current when it
// has the local size and was uploaded no earlier than the local write.
func (s *thumbnailService) syncMirror(ctx context.Context, mediaID int64, target string, generated bool) bool {
	if s.mirror == nil {
		return false
	}

	f, err := os.Open(target)
	if err != nil {
		slog.Warn("failed to open thumbnail for mirroring", "media_id", mediaID, "error", err)
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		slog.Warn("failed to stat thumbnail for mirroring", "media_id", mediaID, "error", err)
		return false
	}

	key := s.mirrorKey(mediaID)
	if !generated {
		obj, err := s.mirror.StatThumbnail(ctx, key)
		// Object stores keep second precision.
		if err == nil && obj.Size == info.Size() && !obj.LastModified.Before(info.ModTime().Truncate(time.Second)) {
			return true
		}
	}

	if err := s.mirror.PutThumbnail(ctx, key, f, info.Size()); err != nil {
		slog.Warn("failed to mirror thumbnail", "media_id", mediaID, "error", err)
		return false
	}
	return true
}

func (s *thumbnailService) reference(ctx context.Context, mediaID int64, mirrored bool) string {
	local := path.Join(s.cfg.PublicPrefix, model.ThumbnailFilename(mediaID))
	if !mirrored {
		return local
	}

	url, err := s.mirror.PresignThumbnail(ctx, s.mirrorKey(mediaID), s.cfg.MirrorURLExpiry)
	if err != nil {
		slog.Warn("failed to presign mirrored thumbnail, using local path",
			"media_id", mediaID,
			"error", err,
		)
		return local
	}
	return url
}

func (s *thumbnailService) cachePath(mediaID int64) string {
	return filepath.Join(s.cfg.Dir, model.ThumbnailFilename(mediaID))
}

func (s *thumbnailService) mirrorKey(mediaID int64) string {
	return s.cfg.MirrorPrefix + model.ThumbnailFilename(mediaID)
}

// isFresh reports whether target exists and is strictly newer than source.
// A missing source counts as stale so the extractor reports the failure.
func isFresh(target, source string) (bool, error) {
	ti, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: stat thumbnail: %v", ErrStorage, err)
	}

	si, err := os.Stat(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: stat source: %v", ErrStorage, err)
	}

	return ti.ModTime().After(si.ModTime()), nil
}

// keyedMutex hands out one mutex per media ID and drops it when unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(id int64) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[int64]*refMutex)
	}
	m, ok := k.locks[id]
	if !ok {
		m = &refMutex{}
		k.locks[id] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}

// parseThumbnailFilename extracts the media ID from thumbnail-<id>.jpg.
func parseThumbnailFilename(name string) (int64, bool) {
	rest, ok := strings.CutPrefix(name, "thumbnail-")
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutSuffix(rest, ".jpg")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
