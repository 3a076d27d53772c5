package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/pitch-tracker/config"
	"github.com/Dosada05/pitch-tracker/db"
	"github.com/Dosada05/pitch-tracker/handlers"
	"github.com/Dosada05/pitch-tracker/repositories"
	"github.com/Dosada05/pitch-tracker/routes"
	"github.com/Dosada05/pitch-tracker/services"
	"github.com/Dosada05/pitch-tracker/storage"
)

type app struct {
	cfg    *config.Config
	db     *sql.DB
	logger *slog.Logger

	tokens  services.TokenService
	auth    services.AuthService
	handler routes.Handlers
}

// newApp собирает зависимости: БД, хранилище, репозитории, сервисы и хендлеры.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("database connection established")

	blobs, err := storage.NewS3Store(ctx, storage.S3StoreConfig{
		Endpoint:        cfg.Storage.Endpoint,
		Region:          cfg.Storage.Region,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		PublicBaseURL:   cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("failed to initialize blob store: %w", err)
	}

	// --- Репозитории ---
	txManager := repositories.NewPostgresTxManager(dbConn)
	profileRepo := repositories.NewPostgresProfileRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	sessionRepo := repositories.NewPostgresSessionRepository(dbConn)
	debugLogRepo := repositories.NewPostgresDebugLogRepository(dbConn)

	// --- Сервисы ---
	markdown := services.NewNotesRenderer()
	tokens := services.NewTokenService(cfg.JWTSecretKey, cfg.TokenTTL)
	retry := services.RetryPolicy{
		MaxAttempts:    cfg.SignupRetry.MaxAttempts,
		InitialBackoff: cfg.SignupRetry.InitialBackoff,
		MaxBackoff:     cfg.SignupRetry.MaxBackoff,
	}
	authService := services.NewAuthService(profileRepo, tokens, cfg, retry, logger)
	uploadService := services.NewUploadService(txManager, playerRepo, sessionRepo, blobs, cfg.AdminPlayerMatch, logger)
	sessionService := services.NewSessionService(txManager, playerRepo, sessionRepo, debugLogRepo, blobs, markdown, logger)
	comparisonService := services.NewComparisonService(playerRepo, sessionRepo, debugLogRepo, blobs, markdown, logger)
	kinematicsService := services.NewKinematicsService(sessionRepo, blobs, &http.Client{Timeout: 30 * time.Second})
	playerService := services.NewPlayerService(playerRepo, sessionRepo, blobs, logger)
	adminService := services.NewAdminService(playerRepo, debugLogRepo, logger)

	return &app{
		cfg:    cfg,
		db:     dbConn,
		logger: logger,
		tokens: tokens,
		auth:   authService,
		handler: routes.Handlers{
			Auth:    handlers.NewAuthHandler(authService),
			Player:  handlers.NewPlayerHandler(playerService),
			Session: handlers.NewSessionHandler(sessionService, kinematicsService),
			Upload:  handlers.NewUploadHandler(uploadService, cfg.MaxUploadBytes),
			Compare: handlers.NewCompareHandler(comparisonService),
			Admin:   handlers.NewAdminHandler(adminService),
		},
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database connection", slog.Any("error", err))
	}
}
