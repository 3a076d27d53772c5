package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/pitch-tracker/kinematics"
	"github.com/Dosada05/pitch-tracker/models"
	"github.com/Dosada05/pitch-tracker/repositories"
	"github.com/Dosada05/pitch-tracker/storage"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

const emptyNotesMarkdown = "_No notes provided._"

// NewNotesRenderer returns the markdown renderer for session notes.
// Line breaks are kept and raw HTML in notes is not passed through.
func NewNotesRenderer() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps()),
	)
}

// sessionViewer собирает SessionView и пишет запись в debug_logs при каждом просмотре.
type sessionViewer struct {
	playerRepo  repositories.PlayerRepository
	sessionRepo repositories.SessionRepository
	debugLogs   repositories.DebugLogRepository
	blobs       storage.BlobStore
	markdown    goldmark.Markdown
	logger      *slog.Logger
}

// view returns nil without error when the session is missing, outside the principal's
// scope, or (with playerID set) does not belong to that player.
func (v *sessionViewer) view(ctx context.Context, principal models.Principal, sessionID int, playerID *int) (*models.SessionView, error) {
	if !principal.CanRead(models.TableSessions) {
		return nil, nil
	}
	scope := principal.Scope()

	session, err := v.sessionRepo.GetByID(ctx, scope, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session %d: %w", sessionID, err)
	}
	if playerID != nil && session.PlayerID != *playerID {
		return nil, nil
	}

	view := &models.SessionView{
		Session:       *session,
		Label:         session.Label(),
		HasKinematics: session.HasKinematics(),
	}

	player, err := v.playerRepo.GetByID(ctx, scope, session.PlayerID)
	switch {
	case err == nil:
		view.PlayerName = player.Name
		view.Team = player.Team
	case errors.Is(err, repositories.ErrPlayerNotFound):
		if playerID != nil {
			return nil, nil
		}
	default:
		return nil, fmt.Errorf("failed to get player %d: %w", session.PlayerID, err)
	}

	v.logView(ctx, principal, session)

	view.EmbedURL, view.VideoWarning = kinematics.EmbedURL(session.VideoSource)

	notesHTML, err := v.renderNotes(session.Notes)
	if err != nil {
		return nil, err
	}
	view.NotesHTML = notesHTML

	return view, nil
}

func (v *sessionViewer) logView(ctx context.Context, principal models.Principal, session *models.Session) {
	if !principal.CanWrite(models.TableDebugLogs) {
		return
	}
	entry := &models.DebugLog{
		PlayerID:    session.PlayerID,
		VideoID:     debugVideoID(v.blobs, session.VideoSource),
		ViewEmailID: principal.Email,
		IsAdmin:     principal.IsAdmin,
		IsUser:      !principal.IsAdmin,
	}
	if err := v.debugLogs.Create(ctx, entry); err != nil {
		v.logger.WarnContext(ctx, "could not log video view",
			slog.Int("session_id", session.ID),
			slog.Any("error", err),
		)
	}
}

func (v *sessionViewer) renderNotes(notes string) (string, error) {
	if notes == "" {
		notes = emptyNotesMarkdown
	}
	var buf bytes.Buffer
	if err := v.markdown.Convert([]byte(notes), &buf); err != nil {
		return "", fmt.Errorf("failed to render notes: %w", err)
	}
	return buf.String(), nil
}
