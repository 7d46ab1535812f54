package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/hszk-dev/gocatalog/internal/app"
	"github.com/hszk-dev/gocatalog/internal/config"
	"github.com/hszk-dev/gocatalog/internal/domain/repository"
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
	if !cfg.RabbitMQ.Enabled {
		return errors.New("worker requires RABBITMQ_ENABLED=true")
	}

	logger := app.NewLogger(cfg.Log)

	infra, err := app.Open(ctx, cfg, logger, app.Options{Redis: true, Queue: true, Extractor: true})
	if err != nil {
		return err
	}
	defer infra.Close()

	eventSvc := usecase.NewMediaEventService(infra.ThumbnailService())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Tracks in-flight events.
	var wg sync.WaitGroup

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting worker, consuming media events")
		err := infra.Queue.ConsumeMediaEvents(ctx, func(event repository.MediaEvent) error {
			wg.Add(1)
			defer wg.Done()

			log := logger.With(
				slog.String("event", string(event.Type)),
				slog.Int64("media_id", event.MediaID),
				slog.Int64("item_id", event.ItemID),
				slog.Int("retry_count", event.RetryCount),
			)
			log.Debug("processing media event")

			if err := eventSvc.HandleEvent(ctx, event); err != nil {
				log.Error("media event failed", slog.String("error", err.Error()))
				return err
			}

			log.Info("media event processed")
			return nil
		})
		if err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("consumer error: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down worker", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer shutdownCancel()

	// Stop consuming new messages.
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("all in-flight events completed")
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded, some events may not have completed")
	}

	logger.Info("worker stopped")
	return nil
}
