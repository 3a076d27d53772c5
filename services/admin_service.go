package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/pitch-tracker/models"
	"github.com/Dosada05/pitch-tracker/repositories"
)

// AdminService - инструменты администратора: журнал просмотров и очистка игроков без сессий.
type AdminService interface {
	ListDebugLogs(ctx context.Context, principal models.Principal) ([]models.DebugLog, error)
	ListOrphanPlayers(ctx context.Context, principal models.Principal) ([]models.Player, error)
	DeleteOrphanPlayers(ctx context.Context, principal models.Principal) ([]int, error)
}

type adminService struct {
	playerRepo   repositories.PlayerRepository
	debugLogRepo repositories.DebugLogRepository
	logger       *slog.Logger
}

func NewAdminService(playerRepo repositories.PlayerRepository, debugLogRepo repositories.DebugLogRepository, logger *slog.Logger) AdminService {
	return &adminService{
		playerRepo:   playerRepo,
		debugLogRepo: debugLogRepo,
		logger:       logger,
	}
}

func (s *adminService) ListDebugLogs(ctx context.Context, principal models.Principal) ([]models.DebugLog, error) {
	if !principal.CanRead(models.TableDebugLogs) {
		return nil, ErrForbiddenOperation
	}
	logs, err := s.debugLogRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list debug logs: %w", err)
	}
	return logs, nil
}

func (s *adminService) ListOrphanPlayers(ctx context.Context, principal models.Principal) ([]models.Player, error) {
	if !principal.IsAdmin {
		return nil, ErrForbiddenOperation
	}
	players, err := s.playerRepo.ListWithoutSessions(ctx, principal.Scope())
	if err != nil {
		return nil, fmt.Errorf("failed to list players without sessions: %w", err)
	}
	return players, nil
}

// DeleteOrphanPlayers удаляет всех игроков без сессий одним запросом. Повторный вызов
// возвращает пустой список.
func (s *adminService) DeleteOrphanPlayers(ctx context.Context, principal models.Principal) ([]int, error) {
	if !principal.IsAdmin {
		return nil, ErrForbiddenOperation
	}
	ids, err := s.playerRepo.DeleteWithoutSessions(ctx, nil, principal.Scope())
	if err != nil {
		return nil, fmt.Errorf("failed to delete players without sessions: %w", err)
	}
	s.logger.InfoContext(ctx, "players without sessions deleted", slog.Int("count", len(ids)), slog.Any("ids", ids))
	return ids, nil
}
