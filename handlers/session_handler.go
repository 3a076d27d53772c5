package handlers

import (
	"net/http"
	"strings"

	"github.com/Dosada05/pitch-tracker/services"
)

type SessionHandler struct {
	sessionService    services.SessionService
	kinematicsService services.KinematicsService
}

func NewSessionHandler(ss services.SessionService, ks services.KinematicsService) *SessionHandler {
	return &SessionHandler{
		sessionService:    ss,
		kinematicsService: ks,
	}
}

func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	playerID, err := getOptionalIntQuery(r, "player_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	sessions, err := h.sessionService.ListSessions(r.Context(), principal, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"sessions": sessions}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetSession отвечает {"session": null} и для чужой, и для несуществующей сессии.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.sessionService.ViewSession(r.Context(), principal, sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"session": view}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.sessionService.DeleteSession(r.Context(), principal, sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"deleted": result}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) GetKinematics(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var metrics []string
	if raw := strings.TrimSpace(r.URL.Query().Get("metrics")); raw != "" {
		metrics = strings.Split(raw, ",")
	}

	frame, err := h.kinematicsService.Frame(r.Context(), principal, sessionID, metrics)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"kinematics": frame}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
