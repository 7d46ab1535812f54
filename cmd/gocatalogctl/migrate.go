package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hszk-dev/gocatalog/internal/app"
	"github.com/hszk-dev/gocatalog/internal/config"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/postgres"
)

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withInfra(cmd.Context(), cfg, func(infra *app.Infra) error {
				applied, err := postgres.Migrate(cmd.Context(), infra.Postgres.Pool())
				if err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				if len(applied) == 0 {
					return writePlain("No pending migrations.\n")
				}
				for _, v := range applied {
					if err := writePlain("applied %s\n", v); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
