package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/pitch-tracker/models"
	"github.com/Dosada05/pitch-tracker/repositories"
	"github.com/Dosada05/pitch-tracker/storage"
	"github.com/yuin/goldmark"
)

type SessionService interface {
	ListSessions(ctx context.Context, principal models.Principal, playerID *int) ([]models.Session, error)
	// ViewSession возвращает nil без ошибки для чужой или отсутствующей сессии.
	ViewSession(ctx context.Context, principal models.Principal, sessionID int) (*models.SessionView, error)
	DeleteSession(ctx context.Context, principal models.Principal, sessionID int) (*DeleteSessionResult, error)
}

type DeleteSessionResult struct {
	SessionID     int  `json:"session_id"`
	PlayerID      int  `json:"player_id"`
	PlayerDeleted bool `json:"player_deleted"`
}

type sessionService struct {
	txManager   repositories.TxManager
	playerRepo  repositories.PlayerRepository
	sessionRepo repositories.SessionRepository
	blobs       storage.BlobStore
	viewer      *sessionViewer
	logger      *slog.Logger
}

func NewSessionService(
	txManager repositories.TxManager,
	playerRepo repositories.PlayerRepository,
	sessionRepo repositories.SessionRepository,
	debugLogRepo repositories.DebugLogRepository,
	blobs storage.BlobStore,
	markdown goldmark.Markdown,
	logger *slog.Logger,
) SessionService {
	return &sessionService{
		txManager:   txManager,
		playerRepo:  playerRepo,
		sessionRepo: sessionRepo,
		blobs:       blobs,
		viewer: &sessionViewer{
			playerRepo:  playerRepo,
			sessionRepo: sessionRepo,
			debugLogs:   debugLogRepo,
			blobs:       blobs,
			markdown:    markdown,
			logger:      logger,
		},
		logger: logger,
	}
}

func (s *sessionService) ListSessions(ctx context.Context, principal models.Principal, playerID *int) ([]models.Session, error) {
	if !principal.CanRead(models.TableSessions) {
		return []models.Session{}, nil
	}
	sessions, err := s.sessionRepo.List(ctx, principal.Scope(), playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (s *sessionService) ViewSession(ctx context.Context, principal models.Principal, sessionID int) (*models.SessionView, error) {
	return s.viewer.view(ctx, principal, sessionID, nil)
}

// DeleteSession удаляет файл сессии (best-effort), затем строку сессии. Для администратора
// в той же транзакции удаляется игрок, у которого не осталось сессий.
func (s *sessionService) DeleteSession(ctx context.Context, principal models.Principal, sessionID int) (*DeleteSessionResult, error) {
	if !principal.CanWrite(models.TableSessions) {
		return nil, ErrSessionNotFound
	}
	scope := principal.Scope()

	session, err := s.sessionRepo.GetByID(ctx, scope, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session %d: %w", sessionID, err)
	}

	removeSessionBlobs(ctx, s.blobs, s.logger, *session)

	result := &DeleteSessionResult{SessionID: session.ID, PlayerID: session.PlayerID}

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.sessionRepo.Delete(ctx, exec, scope, session.ID); err != nil {
			return err
		}
		if !principal.IsAdmin {
			return nil
		}

		deleted, err := s.playerRepo.DeleteIfEmpty(ctx, exec, session.PlayerID)
		if err != nil {
			return fmt.Errorf("failed to delete empty player: %w", err)
		}
		result.PlayerDeleted = deleted
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "session deleted",
		slog.Int("session_id", session.ID),
		slog.Int("player_id", session.PlayerID),
		slog.Bool("player_deleted", result.PlayerDeleted),
		slog.String("by", principal.Email),
	)
	return result, nil
}
