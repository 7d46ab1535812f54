package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hszk-dev/gocatalog/internal/app"
	"github.com/hszk-dev/gocatalog/internal/config"
)

func newPruneThumbnailsCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "prune-thumbnails",
		Short: "Remove cached thumbnails whose media record no longer exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withInfra(cmd.Context(), cfg, func(infra *app.Infra) error {
				removed, err := infra.ThumbnailService().PruneOrphans(cmd.Context())
				if err != nil {
					return fmt.Errorf("prune thumbnails: %w", err)
				}
				return writePlain("removed %d orphaned thumbnails\n", removed)
			})
		},
	}
}
