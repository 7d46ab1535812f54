package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hszk-dev/gocatalog/internal/app"
	"github.com/hszk-dev/gocatalog/internal/config"
	"github.com/hszk-dev/gocatalog/internal/usecase"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
)

func newSeedAdminCmd(cfg *config.Config) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the initial admin user if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withInfra(cmd.Context(), cfg, func(infra *app.Infra) error {
				svc := usecase.NewUserService(infra.UserRepository(), infra.Files)
				created, err := svc.EnsureUser(cmd.Context(), usecase.CreateUserInput{
					Username: username,
					Password: password,
				})
				if err != nil {
					return fmt.Errorf("seed admin: %w", err)
				}
				if !created {
					return writePlain("user %s already exists\n", username)
				}
				return writePlain("created user %s\n", username)
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", defaultAdminUsername, "admin username")
	cmd.Flags().StringVar(&password, "password", defaultAdminPassword, "admin password")
	return cmd
}

func newCreateUserCmd(cfg *config.Config) *cobra.Command {
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "create-user <username>",
		Short: "Create one user, reading the password from stdin",
		Args:  requireExactlyArgs(1, "username is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !passwordStdin {
				return fmt.Errorf("--password-stdin is required")
			}

			raw, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}
			password := strings.TrimSpace(string(raw))

			return withInfra(cmd.Context(), cfg, func(infra *app.Infra) error {
				svc := usecase.NewUserService(infra.UserRepository(), infra.Files)
				user, err := svc.CreateUser(cmd.Context(), usecase.CreateUserInput{
					Username: args[0],
					Password: password,
				})
				if err != nil {
					return fmt.Errorf("create user: %w", err)
				}
				return writePlain("created user %s (%d)\n", user.Username, user.ID)
			})
		},
	}

	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read password from stdin")
	return cmd
}
