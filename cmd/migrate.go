package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/pitch-tracker/config"
	"github.com/Dosada05/pitch-tracker/db"
	"github.com/spf13/cobra"
)

func newMigrateCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer dbConn.Close()

			if err := db.Migrate(dbConn); err != nil {
				return err
			}
			logger.Info("database migrations applied")
			return nil
		},
	}
}
