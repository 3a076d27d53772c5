package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/pitch-tracker/config"
	"github.com/Dosada05/pitch-tracker/models"
	"github.com/Dosada05/pitch-tracker/repositories"
	"github.com/Dosada05/pitch-tracker/storage"
)

type UploadService interface {
	Upload(ctx context.Context, principal models.Principal, input UploadInput) (*UploadResult, error)
}

// UploadInput - поля формы загрузки. File == nil означает, что файл не приложен.
type UploadInput struct {
	PlayerName        string
	Team              string
	SessionName       string
	SessionDate       time.Time
	Notes             string
	YouTubeLink       string
	ReassignOwnership bool

	FileName    string
	ContentType string
	File        io.Reader
}

type UploadResult struct {
	Kind          string          `json:"kind"`
	Player        *models.Player  `json:"player"`
	PlayerCreated bool            `json:"player_created"`
	Session       *models.Session `json:"session"`
}

type uploadService struct {
	txManager   repositories.TxManager
	playerRepo  repositories.PlayerRepository
	sessionRepo repositories.SessionRepository
	blobs       storage.BlobStore
	matchMode   string
	now         func() time.Time
	logger      *slog.Logger
}

func NewUploadService(
	txManager repositories.TxManager,
	playerRepo repositories.PlayerRepository,
	sessionRepo repositories.SessionRepository,
	blobs storage.BlobStore,
	matchMode string,
	logger *slog.Logger,
) UploadService {
	return &uploadService{
		txManager:   txManager,
		playerRepo:  playerRepo,
		sessionRepo: sessionRepo,
		blobs:       blobs,
		matchMode:   matchMode,
		now:         time.Now,
		logger:      logger,
	}
}

// Upload: validate -> classify -> match player (read only) -> blob write -> one transaction
// {upsert player, insert session}. A failed blob write leaves the database untouched.
func (s *uploadService) Upload(ctx context.Context, principal models.Principal, input UploadInput) (*UploadResult, error) {
	if !principal.CanWrite(models.TablePlayers) || !principal.CanWrite(models.TableSessions) {
		return nil, ErrForbiddenOperation
	}

	input.PlayerName = strings.TrimSpace(input.PlayerName)
	input.Team = strings.TrimSpace(input.Team)
	input.SessionName = strings.TrimSpace(input.SessionName)
	input.YouTubeLink = strings.TrimSpace(input.YouTubeLink)

	verr := newValidationError()
	if input.PlayerName == "" {
		verr.Add("player_name", "must be provided")
	}
	if input.File == nil {
		verr.Add("file", "please upload a video or a Kinovea CSV file")
	}
	if !verr.Empty() {
		return nil, verr
	}

	kind := models.ClassifyUpload(input.ContentType)
	if kind == models.UploadUnsupported {
		return nil, fmt.Errorf("%w (got %q)", ErrUnsupportedFileType, input.ContentType)
	}

	existing, reassign, err := s.matchPlayer(ctx, principal, input)
	if err != nil {
		return nil, err
	}

	key := storage.GenerateKey(input.FileName, s.now())
	stored, err := s.blobs.Upload(ctx, kind.Namespace(), key, input.ContentType, input.File)
	if err != nil {
		return nil, fmt.Errorf("failed to store %s file: %w", kind, err)
	}

	session := &models.Session{
		Date:        sessionDate(input.SessionDate, s.now()),
		SessionName: input.SessionName,
		Notes:       input.Notes,
		UserEmail:   principal.Email,
	}
	fileURL := stored.Location
	switch kind {
	case models.UploadCSV:
		// Для CSV источник видео - только ссылка YouTube, никогда не файл.
		session.VideoSource = input.YouTubeLink
		session.KinoveaCSV = &fileURL
	case models.UploadVideo:
		session.VideoSource = fileURL
		session.KinoveaCSV = &fileURL
	}

	result := &UploadResult{Kind: kind.String(), Session: session}

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		player, created, err := s.upsertPlayer(ctx, exec, principal, existing, reassign, input)
		if err != nil {
			return err
		}
		result.Player = player
		result.PlayerCreated = created

		session.PlayerID = player.ID
		if err := s.sessionRepo.Create(ctx, exec, session); err != nil {
			return fmt.Errorf("ошибка создания сессии: %w", err)
		}
		return nil
	})
	if err != nil {
		s.compensate(ctx, stored)
		if errors.Is(err, repositories.ErrPlayerConflict) {
			return nil, ErrPlayerConflict
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "session uploaded",
		slog.Int("session_id", session.ID),
		slog.Int("player_id", session.PlayerID),
		slog.String("kind", kind.String()),
		slog.String("user_email", principal.Email),
	)
	return result, nil
}

// matchPlayer ищет существующего игрока без записи в БД. Сначала среди своих игроков;
// администратор затем ищет по (name, team) среди всех.
func (s *uploadService) matchPlayer(ctx context.Context, principal models.Principal, input UploadInput) (*models.Player, bool, error) {
	own, err := s.playerRepo.FindByNameTeam(ctx, nil, models.OwnerScope(principal.Email), input.PlayerName, input.Team)
	if err == nil {
		return own, false, nil
	}
	if !errors.Is(err, repositories.ErrPlayerNotFound) {
		return nil, false, fmt.Errorf("failed to look up player: %w", err)
	}
	if !principal.IsAdmin {
		return nil, false, nil
	}

	other, err := s.playerRepo.FindByNameTeam(ctx, nil, models.UnrestrictedScope(), input.PlayerName, input.Team)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to look up player: %w", err)
	}

	if s.matchMode == config.AdminPlayerMatchLegacy {
		return other, false, nil
	}
	if !input.ReassignOwnership {
		return nil, false, ErrPlayerOwnedByAnotherUser
	}
	return other, true, nil
}

func (s *uploadService) upsertPlayer(ctx context.Context, exec repositories.SQLExecutor, principal models.Principal, existing *models.Player, reassign bool, input UploadInput) (*models.Player, bool, error) {
	if existing != nil {
		if err := s.playerRepo.UpdateNotes(ctx, exec, existing.ID, input.Notes); err != nil {
			return nil, false, fmt.Errorf("ошибка обновления игрока: %w", err)
		}
		existing.Notes = input.Notes
		if reassign {
			if err := s.playerRepo.Reassign(ctx, exec, existing.ID, principal.Email); err != nil {
				return nil, false, fmt.Errorf("ошибка смены владельца игрока: %w", err)
			}
			moved, err := s.sessionRepo.ReassignByPlayer(ctx, exec, existing.ID, principal.Email)
			if err != nil {
				return nil, false, fmt.Errorf("ошибка смены владельца сессий: %w", err)
			}
			s.logger.InfoContext(ctx, "player ownership reassigned",
				slog.Int("player_id", existing.ID),
				slog.String("from", existing.UserEmail),
				slog.String("to", principal.Email),
				slog.Int64("sessions_moved", moved),
			)
			existing.UserEmail = principal.Email
		}
		return existing, false, nil
	}

	player := &models.Player{
		Name:              input.PlayerName,
		Team:              input.Team,
		Notes:             input.Notes,
		UserEmail:         principal.Email,
		CreatedImplicitly: true,
	}
	if err := s.playerRepo.Create(ctx, exec, player); err != nil {
		return nil, false, fmt.Errorf("ошибка создания игрока: %w", err)
	}
	return player, true, nil
}

func (s *uploadService) compensate(ctx context.Context, stored *storage.UploadResult) {
	// Запрос мог быть отменен, поэтому удаление идет в отдельном контексте.
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if err := s.blobs.Remove(cleanupCtx, stored.Namespace, stored.Key); err != nil {
		s.logger.WarnContext(ctx, "failed to remove orphaned upload",
			slog.String("bucket", stored.Namespace),
			slog.String("key", stored.Key),
			slog.Any("error", err),
		)
	}
}

func sessionDate(date, now time.Time) time.Time {
	if date.IsZero() {
		date = now
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
