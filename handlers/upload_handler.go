package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/pitch-tracker/models"
	"github.com/Dosada05/pitch-tracker/services"
)

// Файлы крупнее этого порога multipart-парсер сбрасывает во временные файлы.
const multipartMemory = 32 << 20

type UploadHandler struct {
	uploadService  services.UploadService
	maxUploadBytes int64
}

func NewUploadHandler(us services.UploadService, maxUploadBytes int64) *UploadHandler {
	return &UploadHandler{
		uploadService:  us,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) || strings.Contains(err.Error(), "request body too large") {
			errorResponse(w, r, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload must not be larger than %d bytes", h.maxUploadBytes))
			return
		}
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	input := services.UploadInput{
		PlayerName:  r.FormValue("player_name"),
		Team:        r.FormValue("team"),
		SessionName: r.FormValue("session_name"),
		Notes:       r.FormValue("notes"),
		YouTubeLink: r.FormValue("youtube_link"),
	}

	fieldErrors := make(map[string]string)
	if raw := strings.TrimSpace(r.FormValue("session_date")); raw != "" {
		date, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			fieldErrors["session_date"] = "must be a date in YYYY-MM-DD format"
		}
		input.SessionDate = date
	}
	if raw := strings.TrimSpace(r.FormValue("reassign_ownership")); raw != "" {
		reassign, err := strconv.ParseBool(raw)
		if err != nil {
			fieldErrors["reassign_ownership"] = "must be true or false"
		}
		input.ReassignOwnership = reassign
	}
	if len(fieldErrors) > 0 {
		failedValidationResponse(w, r, fieldErrors)
		return
	}

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		input.File = file
		input.FileName = header.Filename
		input.ContentType = header.Header.Get("Content-Type")
	case errors.Is(err, http.ErrMissingFile):
		// Сервис вернет ошибку валидации по полю file.
	default:
		badRequestResponse(w, r, fmt.Errorf("failed to get file from form: %w", err))
		return
	}

	result, err := h.uploadService.Upload(r.Context(), principal, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"upload": result}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
