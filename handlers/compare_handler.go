package handlers

import (
	"fmt"
	"net/http"

	"github.com/Dosada05/pitch-tracker/services"
)

type CompareHandler struct {
	comparisonService services.ComparisonService
}

func NewCompareHandler(cs services.ComparisonService) *CompareHandler {
	return &CompareHandler{
		comparisonService: cs,
	}
}

// Compare: GET /compare?left_player_id=&left_session_id=&right_player_id=&right_session_id=
func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	left, err := comparisonSideFromQuery(r, "left")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	right, err := comparisonSideFromQuery(r, "right")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	comparison, err := h.comparisonService.Compare(r.Context(), principal, left, right)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"comparison": comparison}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func comparisonSideFromQuery(r *http.Request, prefix string) (*services.ComparisonSide, error) {
	playerID, err := getOptionalIntQuery(r, prefix+"_player_id")
	if err != nil {
		return nil, err
	}
	sessionID, err := getOptionalIntQuery(r, prefix+"_session_id")
	if err != nil {
		return nil, err
	}
	if playerID == nil && sessionID == nil {
		return nil, nil
	}
	if playerID == nil || sessionID == nil {
		return nil, fmt.Errorf("%s side needs both %s_player_id and %s_session_id", prefix, prefix, prefix)
	}
	return &services.ComparisonSide{PlayerID: *playerID, SessionID: *sessionID}, nil
}
