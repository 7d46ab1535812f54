package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hszk-dev/gocatalog/internal/app"
	"github.com/hszk-dev/gocatalog/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gocatalogctl",
		Short:         "Administrative tasks for the gocatalog service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Version = version

	cmd.AddCommand(
		newMigrateCmd(cfg),
		newSeedAdminCmd(cfg),
		newCreateUserCmd(cfg),
		newPruneThumbnailsCmd(cfg),
	)

	return cmd
}

// withInfra opens Postgres and the uploads store for the duration of fn.
// Diagnostics go to stderr so command output stays on stdout.
func withInfra(ctx context.Context, cfg *config.Config, fn func(*app.Infra) error) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))

	infra, err := app.Open(ctx, cfg, logger, app.Options{})
	if err != nil {
		return err
	}
	defer infra.Close()

	return fn(infra)
}

func requireExactlyArgs(count int, message string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != count {
			return errors.New(message)
		}
		return nil
	}
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}
