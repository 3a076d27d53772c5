package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/pitch-tracker/models"
	"github.com/Dosada05/pitch-tracker/repositories"
	"github.com/Dosada05/pitch-tracker/storage"
)

type PlayerService interface {
	ListPlayers(ctx context.Context, principal models.Principal) ([]models.Player, error)
	// GetPlayer возвращает nil без ошибки для чужого или отсутствующего игрока.
	GetPlayer(ctx context.Context, principal models.Principal, playerID int) (*models.Player, error)
	CreatePlayer(ctx context.Context, principal models.Principal, input CreatePlayerInput) (*models.Player, error)
	DeletePlayer(ctx context.Context, principal models.Principal, playerID int) error
}

type CreatePlayerInput struct {
	Name  string `json:"name"`
	Team  string `json:"team"`
	Notes string `json:"notes"`
}

type playerService struct {
	playerRepo  repositories.PlayerRepository
	sessionRepo repositories.SessionRepository
	blobs       storage.BlobStore
	logger      *slog.Logger
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	sessionRepo repositories.SessionRepository,
	blobs storage.BlobStore,
	logger *slog.Logger,
) PlayerService {
	return &playerService{
		playerRepo:  playerRepo,
		sessionRepo: sessionRepo,
		blobs:       blobs,
		logger:      logger,
	}
}

func (s *playerService) ListPlayers(ctx context.Context, principal models.Principal) ([]models.Player, error) {
	if !principal.CanRead(models.TablePlayers) {
		return []models.Player{}, nil
	}
	players, err := s.playerRepo.List(ctx, principal.Scope())
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

func (s *playerService) GetPlayer(ctx context.Context, principal models.Principal, playerID int) (*models.Player, error) {
	if !principal.CanRead(models.TablePlayers) {
		return nil, nil
	}
	player, err := s.playerRepo.GetByID(ctx, principal.Scope(), playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get player %d: %w", playerID, err)
	}
	return player, nil
}

func (s *playerService) CreatePlayer(ctx context.Context, principal models.Principal, input CreatePlayerInput) (*models.Player, error) {
	if !principal.CanWrite(models.TablePlayers) {
		return nil, ErrForbiddenOperation
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		verr := newValidationError()
		verr.Add("name", "must be provided")
		return nil, verr
	}

	player := &models.Player{
		Name:      name,
		Team:      strings.TrimSpace(input.Team),
		Notes:     input.Notes,
		UserEmail: principal.Email,
	}
	if err := s.playerRepo.Create(ctx, nil, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerConflict) {
			return nil, ErrPlayerConflict
		}
		return nil, fmt.Errorf("ошибка создания игрока: %w", err)
	}
	return player, nil
}

// DeletePlayer удаляет файлы сессий игрока (best-effort), затем самого игрока;
// сессии удаляются каскадно. Игрока с чужими сессиями удалить нельзя.
func (s *playerService) DeletePlayer(ctx context.Context, principal models.Principal, playerID int) error {
	if !principal.CanWrite(models.TablePlayers) {
		return ErrPlayerNotFound
	}
	scope := principal.Scope()

	if _, err := s.playerRepo.GetByID(ctx, scope, playerID); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to get player %d: %w", playerID, err)
	}

	sessions, err := s.sessionRepo.List(ctx, scope, &playerID)
	if err != nil {
		return fmt.Errorf("failed to list player sessions: %w", err)
	}
	// Каскад удалил бы и сессии, которых принципал не видит.
	total, err := s.sessionRepo.CountByPlayer(ctx, nil, playerID)
	if err != nil {
		return fmt.Errorf("failed to count player sessions: %w", err)
	}
	if total > len(sessions) {
		return ErrPlayerHasForeignSessions
	}

	removeSessionBlobs(ctx, s.blobs, s.logger, sessions...)

	if err := s.playerRepo.Delete(ctx, nil, scope, playerID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPlayerNotFound):
			return ErrPlayerNotFound
		case errors.Is(err, repositories.ErrPlayerHasForeignSessions):
			return ErrPlayerHasForeignSessions
		}
		return fmt.Errorf("failed to delete player %d: %w", playerID, err)
	}

	s.logger.InfoContext(ctx, "player deleted",
		slog.Int("player_id", playerID),
		slog.Int("sessions", len(sessions)),
		slog.String("by", principal.Email),
	)
	return nil
}
