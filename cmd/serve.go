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

	"github.com/Dosada05/pitch-tracker/config"
	"github.com/Dosada05/pitch-tracker/db"
	"github.com/Dosada05/pitch-tracker/middleware"
	"github.com/Dosada05/pitch-tracker/routes"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
)

func newServeCmd(logger *slog.Logger) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := cfg.ValidateStorage(); err != nil {
				return fmt.Errorf("invalid storage configuration: %w", err)
			}
			logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("admin_player_match", cfg.AdminPlayerMatch))

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if migrate {
				if err := db.Migrate(a.db); err != nil {
					return err
				}
				logger.Info("database migrations applied")
			}

			return serve(a)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply database migrations before starting")
	return cmd
}

func serve(a *app) error {
	router := chi.NewRouter()
	routes.SetupRoutes(router, a.handler, middleware.Authenticate(a.tokens, a.auth), a.cfg.CORSAllowedOrigins)

	serverAddr := fmt.Sprintf(":%d", a.cfg.ServerPort)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(a.logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", slog.String("address", serverAddr))
		serverErrors <- server.ListenAndServe()
	}()

	// Graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-shutdown:
		a.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			a.logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				a.logger.Error("failed to close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		a.logger.Info("server stopped gracefully")
		return nil
	}
}
