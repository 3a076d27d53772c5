package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var Version = "0.1.0"

func newRootCmd(logger *slog.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pitchtracker",
		Short: "Pitching biomechanics session tracker",
		Long: `pitchtracker stores pitching sessions (Kinovea CSV exports and videos)
per player and team, and serves them through a JSON API.

Commands:
  serve            run the HTTP API
  migrate          apply database migrations
  cleanup-players  delete players that have no sessions`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newServeCmd(logger),
		newMigrateCmd(logger),
		newCleanupPlayersCmd(logger),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "pitchtracker version %s\n", Version)
			},
		},
	)
	return rootCmd
}
