package handlers

import (
	"net/http"

	"github.com/Dosada05/pitch-tracker/services"
)

type AdminHandler struct {
	adminService services.AdminService
}

func NewAdminHandler(s services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: s}
}

func (h *AdminHandler) ListDebugLogs(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	logs, err := h.adminService.ListDebugLogs(r.Context(), principal)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"debug_logs": logs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) ListOrphanPlayers(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	players, err := h.adminService.ListOrphanPlayers(r.Context(), principal)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) DeleteOrphanPlayers(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	ids, err := h.adminService.DeleteOrphanPlayers(r.Context(), principal)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"deleted_player_ids": ids}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
