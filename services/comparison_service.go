package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/pitch-tracker/models"
	"github.com/Dosada05/pitch-tracker/repositories"
	"github.com/Dosada05/pitch-tracker/storage"
	"github.com/yuin/goldmark"
	"golang.org/x/sync/errgroup"
)

// ComparisonSide - выбор одной стороны сравнения: игрок и его сессия.
type ComparisonSide struct {
	PlayerID  int
	SessionID int
}

type ComparisonService interface {
	Compare(ctx context.Context, principal models.Principal, left, right *ComparisonSide) (*models.Comparison, error)
}

type comparisonService struct {
	viewer *sessionViewer
}

func NewComparisonService(
	playerRepo repositories.PlayerRepository,
	sessionRepo repositories.SessionRepository,
	debugLogRepo repositories.DebugLogRepository,
	blobs storage.BlobStore,
	markdown goldmark.Markdown,
	logger *slog.Logger,
) ComparisonService {
	return &comparisonService{
		viewer: &sessionViewer{
			playerRepo:  playerRepo,
			sessionRepo: sessionRepo,
			debugLogs:   debugLogRepo,
			blobs:       blobs,
			markdown:    markdown,
			logger:      logger,
		},
	}
}

// Compare loads both sides concurrently. Sides are independent: either may be empty and
// both may point at the same session.
func (s *comparisonService) Compare(ctx context.Context, principal models.Principal, left, right *ComparisonSide) (*models.Comparison, error) {
	result := &models.Comparison{}
	g, gCtx := errgroup.WithContext(ctx)

	load := func(side *ComparisonSide, dst **models.SessionView) {
		if side == nil {
			return
		}
		g.Go(func() error {
			playerID := side.PlayerID
			view, err := s.viewer.view(gCtx, principal, side.SessionID, &playerID)
			if err != nil {
				return err
			}
			*dst = view
			return nil
		})
	}
	load(left, &result.Left)
	load(right, &result.Right)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
