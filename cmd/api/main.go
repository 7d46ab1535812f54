package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hszk-dev/gocatalog/internal/api/handler"
	"github.com/hszk-dev/gocatalog/internal/api/middleware"
	"github.com/hszk-dev/gocatalog/internal/app"
	"github.com/hszk-dev/gocatalog/internal/auth"
	"github.com/hszk-dev/gocatalog/internal/config"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/cache"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/localfs"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/postgres"
	"github.com/hszk-dev/gocatalog/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := app.NewLogger(cfg.Log)

	infra, err := app.Open(ctx, cfg, logger, app.Options{Redis: true, Queue: true, Extractor: true})
	if err != nil {
		return err
	}
	defer infra.Close()

	if cfg.Database.AutoMigrate {
		applied, err := postgres.Migrate(ctx, infra.Postgres.Pool())
		if err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		if len(applied) > 0 {
			logger.Info("applied migrations", slog.Any("versions", applied))
		}
	}

	limiter := auth.NewLoginLimiter(cfg.Auth.LoginPerMinute, cfg.Auth.LoginBurst)
	go pruneLimiter(ctx, limiter)

	r := setupRouter(logger, cfg, infra, limiter)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func setupRouter(logger *slog.Logger, cfg *config.Config, infra *app.Infra, limiter *auth.LoginLimiter) *chi.Mux {
	items := infra.ItemRepository()
	media := infra.MediaRepository()
	users := infra.UserRepository()
	sessions := cache.NewRedisSessionStore(infra.Redis)

	thumbnailSvc := infra.ThumbnailService()
	itemSvc := usecase.NewItemService(items, media, infra.Files, thumbnailSvc, infra.MessageQueue())
	mediaSvc := usecase.NewMediaService(items, media, infra.Files, thumbnailSvc, infra.MessageQueue())
	userSvc := usecase.NewUserService(users, infra.Files)
	authSvc := usecase.NewAuthService(users, sessions, limiter, usecase.AuthServiceConfig{
		SessionTTL: cfg.Auth.SessionTTL,
	})

	itemHandler := handler.NewItemHandler(itemSvc)
	mediaHandler := handler.NewMediaHandler(mediaSvc, thumbnailSvc, cfg.Server.MaxUploadBytes)
	userHandler := handler.NewUserHandler(userSvc)
	authHandler := handler.NewAuthHandler(authSvc, userSvc, cfg.Server.SecureCookies)

	checks := map[string]handler.HealthCheck{
		"postgres": infra.Postgres.Ping,
		"redis":    func(ctx context.Context) error { return infra.Redis.Ping(ctx).Err() },
	}
	if infra.Mirror != nil {
		checks["minio"] = infra.Mirror.Ping
	}
	healthHandler := handler.NewHealthHandler(checks)

	isUnauthorized := func(err error) bool { return errors.Is(err, usecase.ErrUnauthorized) }
	requireSession := middleware.RequireSession(authSvc, isUnauthorized)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	uploads := http.StripPrefix(localfs.PublicPrefix+"/", http.FileServer(http.Dir(infra.Files.Root())))
	r.Handle(localfs.PublicPrefix+"/*", uploads)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/public/items", itemHandler.List)
		r.Get("/public/items/{id}", itemHandler.Get)
		r.Get("/items/{id}/media/thumbnail", mediaHandler.Thumbnail)

		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(requireSession)

			r.Get("/auth/me", authHandler.Me)

			r.Get("/items", itemHandler.List)
			r.Post("/items", itemHandler.Create)
			r.Get("/items/{id}", itemHandler.Get)
			r.Put("/items/{id}", itemHandler.Update)
			r.Delete("/items/{id}", itemHandler.Delete)
			r.Post("/items/{id}/media", mediaHandler.Upload)
			r.Delete("/items/{id}/media", mediaHandler.Delete)

			r.Get("/users", userHandler.List)
			r.Post("/users", userHandler.Create)
			r.Get("/users/{id}", userHandler.Get)
			r.Put("/users/{id}", userHandler.Update)
			r.Delete("/users/{id}", userHandler.Delete)
			r.Post("/users/{id}/avatar", userHandler.UploadAvatar)
		})
	})

	return r
}

// pruneLimiter drops idle login buckets until ctx is done.
func pruneLimiter(ctx context.Context, limiter *auth.LoginLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Prune(10 * time.Minute); n > 0 {
				slog.Debug("pruned idle login limiters", slog.Int("count", n))
			}
		}
	}
}
