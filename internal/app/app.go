// Package app wires configuration into infrastructure clients and services
// shared by the gocatalog binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/gocatalog/internal/config"
	"github.com/hszk-dev/gocatalog/internal/domain/repository"
	"github.com/hszk-dev/gocatalog/internal/extractor"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/cache"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/localfs"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/postgres"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/queue"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/storage"
	"github.com/hszk-dev/gocatalog/internal/usecase"
)

// thumbnailsSubdir is the uploads subdirectory holding cached thumbnails.
const thumbnailsSubdir = "thumbnails"

// NewLogger builds the JSON logger used by every binary and installs it as default.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	return logger
}

// Options selects which optional backends Open connects to.
type Options struct {
	Redis bool
	Queue bool
	// Extractor resolves ffmpeg and, with THUMBNAIL_REQUIRE_FFMPEG, fails when it is missing.
	Extractor bool
}

// Infra holds the connected infrastructure clients. Optional clients are nil
// when disabled by configuration or Options.
type Infra struct {
	cfg    *config.Config
	logger *slog.Logger

	Postgres  *postgres.Client
	Redis     *redis.Client
	Queue     *queue.Client
	Mirror    *storage.Client
	Files     *localfs.Store
	Extractor *extractor.FFmpegExtractor
}

// Open connects to the configured backends. Close must be called on success.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*Infra, error) {
	in := &Infra{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			in.Close()
		}
	}()

	files, err := localfs.NewStore(cfg.Uploads.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to open uploads root: %w", err)
	}
	in.Files = files

	pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	in.Postgres = pgClient
	logger.Info("connected to PostgreSQL")

	if opts.Redis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		in.Redis = client
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Info("connected to Redis")
	}

	if opts.Queue && cfg.RabbitMQ.Enabled {
		qcfg := queue.DefaultClientConfig(cfg.RabbitMQ.URL())
		qcfg.QueueName = cfg.RabbitMQ.Queue
		qcfg.RoutingKey = cfg.RabbitMQ.Queue
		qcfg.Prefetch = cfg.Worker.Prefetch
		qcfg.MaxRetries = cfg.Worker.MaxRetries

		client, err := queue.NewClient(ctx, qcfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		in.Queue = client
		logger.Info("connected to RabbitMQ", slog.String("queue", qcfg.QueueName))
	}

	if cfg.MinIO.Enabled {
		client, err := storage.NewClient(ctx, storage.ClientConfig{
			Endpoint:       cfg.MinIO.Endpoint,
			PublicEndpoint: cfg.MinIO.PublicURL,
			AccessKey:      cfg.MinIO.AccessKey,
			SecretKey:      cfg.MinIO.SecretKey,
			Bucket:         cfg.MinIO.Bucket,
			UseSSL:         cfg.MinIO.UseSSL,
			CreateBucket:   cfg.MinIO.CreateBucket,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MinIO: %w", err)
		}
		in.Mirror = client
		logger.Info("connected to MinIO", slog.String("bucket", cfg.MinIO.Bucket))
	}

	if opts.Extractor {
		fcfg := extractor.DefaultFFmpegConfig()
		fcfg.FFmpegPath = cfg.Thumbnail.FFmpegPath
		fx := extractor.NewFFmpegExtractor(fcfg)

		path, err := fx.CheckAvailable()
		switch {
		case err == nil:
			logger.Info("ffmpeg available", slog.String("path", path))
		case errors.Is(err, extractor.ErrFFmpegNotFound) && !cfg.Thumbnail.RequireFFmpeg:
			logger.Warn("ffmpeg not found, thumbnail generation will fail until it is installed",
				slog.String("ffmpeg_path", cfg.Thumbnail.FFmpegPath),
			)
		default:
			return nil, fmt.Errorf("thumbnail extractor unavailable: %w", err)
		}
		in.Extractor = fx
	}

	ok = true
	return in, nil
}

// Close releases every opened client.
func (in *Infra) Close() {
	if in.Queue != nil {
		if err := in.Queue.Close(); err != nil {
			in.logger.Warn("failed to close RabbitMQ client", slog.String("error", err.Error()))
		}
	}
	if in.Redis != nil {
		_ = in.Redis.Close()
	}
	if in.Postgres != nil {
		in.Postgres.Close()
	}
}

// MessageQueue returns the queue as an interface, nil when disabled.
func (in *Infra) MessageQueue() repository.MessageQueue {
	if in.Queue == nil {
		return nil
	}
	return in.Queue
}

// ItemRepository returns the Postgres-backed item repository.
func (in *Infra) ItemRepository() *postgres.ItemRepository {
	return postgres.NewItemRepository(in.Postgres.Pool())
}

// MediaRepository returns the Postgres-backed media repository.
func (in *Infra) MediaRepository() *postgres.MediaRepository {
	return postgres.NewMediaRepository(in.Postgres.Pool())
}

// UserRepository returns the Postgres-backed user repository.
func (in *Infra) UserRepository() *postgres.UserRepository {
	return postgres.NewUserRepository(in.Postgres.Pool())
}

// ThumbnailService builds the thumbnail cache with the optional lock and mirror.
func (in *Infra) ThumbnailService() usecase.ThumbnailService {
	tcfg := usecase.DefaultThumbnailServiceConfig(in.Files.Dir(thumbnailsSubdir))
	tcfg.PublicPrefix = localfs.PublicPrefix + "/" + thumbnailsSubdir
	tcfg.Timeout = in.cfg.Thumbnail.Timeout
	tcfg.LockTTL = in.cfg.Thumbnail.LockTTL
	tcfg.MirrorURLExpiry = in.cfg.Thumbnail.MirrorURLExpiry

	var opts []usecase.ThumbnailOption
	if in.Redis != nil && in.cfg.Thumbnail.DistributedLock {
		opts = append(opts, usecase.WithLocker(cache.NewRedisLocker(in.Redis)))
	}
	if in.Mirror != nil {
		opts = append(opts, usecase.WithMirror(in.Mirror))
	}

	var fx extractor.FrameExtractor = extractor.NewFFmpegExtractor(extractor.DefaultFFmpegConfig())
	if in.Extractor != nil {
		fx = in.Extractor
	}

	return usecase.NewThumbnailService(in.MediaRepository(), in.Files, fx, tcfg, opts...)
}
