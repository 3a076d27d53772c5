package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Dosada05/pitch-tracker/kinematics"
	"github.com/Dosada05/pitch-tracker/models"
	"github.com/Dosada05/pitch-tracker/repositories"
	"github.com/Dosada05/pitch-tracker/storage"
)

// HTTPDoer - *http.Client для CSV, лежащих вне нашего хранилища.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type KinematicsService interface {
	// Frame возвращает nil без ошибки для чужой или отсутствующей сессии.
	Frame(ctx context.Context, principal models.Principal, sessionID int, metrics []string) (*models.KinematicFrame, error)
}

type kinematicsService struct {
	sessionRepo repositories.SessionRepository
	blobs       storage.BlobStore
	httpClient  HTTPDoer
}

func NewKinematicsService(sessionRepo repositories.SessionRepository, blobs storage.BlobStore, httpClient HTTPDoer) KinematicsService {
	return &kinematicsService{
		sessionRepo: sessionRepo,
		blobs:       blobs,
		httpClient:  httpClient,
	}
}

func (s *kinematicsService) Frame(ctx context.Context, principal models.Principal, sessionID int, metrics []string) (*models.KinematicFrame, error) {
	if !principal.CanRead(models.TableSessions) {
		return nil, nil
	}

	session, err := s.sessionRepo.GetByID(ctx, principal.Scope(), sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session %d: %w", sessionID, err)
	}
	if !session.HasKinematics() {
		return nil, ErrNoKinematics
	}

	body, err := s.openCSV(ctx, *session.KinoveaCSV)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	frame, err := kinematics.Parse(body, metrics)
	if err != nil {
		if errors.Is(err, kinematics.ErrEmptyCSV) {
			return nil, ErrNoKinematics
		}
		return nil, err
	}
	frame.SessionID = session.ID
	return frame, nil
}

func (s *kinematicsService) openCSV(ctx context.Context, csvURL string) (io.ReadCloser, error) {
	if ns, key, ok := blobRef(csvURL); ok && ns == models.NamespaceCSV {
		body, err := s.blobs.Open(ctx, ns, key)
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				return nil, ErrNoKinematics
			}
			return nil, fmt.Errorf("failed to read kinematics file: %w", err)
		}
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, csvURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid kinematics URL: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch kinematics file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch kinematics file: unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
