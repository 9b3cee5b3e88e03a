package main

import (
	"github.com/spf13/cobra"

	"github.com/iho/fundledger/internal/infrastructure/config"
	"github.com/iho/fundledger/internal/infrastructure/logger"
	"github.com/iho/fundledger/internal/infrastructure/postgres"
)

// migrateCmd applies schema migrations directly against DATABASE_URL.
func migrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations (uses DATABASE_URL and MIGRATIONS_PATH)",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Out: cmd.ErrOrStderr()})

			return postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log)
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Out: cmd.ErrOrStderr()})

			return postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath, log)
		},
	}

	migrateCmd.AddCommand(upCmd, downCmd)

	return migrateCmd
}
