package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/pitch-tracker/config"
	"github.com/Dosada05/pitch-tracker/db"
	"github.com/Dosada05/pitch-tracker/models"
	"github.com/Dosada05/pitch-tracker/repositories"
	"github.com/Dosada05/pitch-tracker/services"
	"github.com/spf13/cobra"
)

// maintenancePrincipal - принципал консольных команд обслуживания.
var maintenancePrincipal = models.Principal{ID: "cli", Email: "cli", IsAdmin: true}

// Очистка не трогает файлы, поэтому хранилище здесь не нужно.
func newCleanupPlayersCmd(logger *slog.Logger) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "cleanup-players",
		Short: "Delete players that have no sessions",
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

			admin := services.NewAdminService(
				repositories.NewPostgresPlayerRepository(dbConn),
				repositories.NewPostgresDebugLogRepository(dbConn),
				logger,
			)

			out := cmd.OutOrStdout()
			if dryRun {
				players, err := admin.ListOrphanPlayers(cmd.Context(), maintenancePrincipal)
				if err != nil {
					return err
				}
				for _, p := range players {
					fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Team, p.UserEmail)
				}
				fmt.Fprintf(out, "%d player(s) without sessions\n", len(players))
				return nil
			}

			ids, err := admin.DeleteOrphanPlayers(cmd.Context(), maintenancePrincipal)
			if err != nil {
				return err
			}
			logger.Info("players without sessions deleted", slog.Int("count", len(ids)), slog.Any("player_ids", ids))
			fmt.Fprintf(out, "deleted %d player(s)\n", len(ids))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only list players that would be deleted")
	return cmd
}
