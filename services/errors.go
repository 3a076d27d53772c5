package services

import (
	"errors"
	"sort"
	"strings"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации
	ErrValidationFailed    = errors.New("validation failed")
	ErrUnsupportedFileType = errors.New("unsupported file type: upload a CSV or a video (mp4, mov, avi)")
	ErrNoKinematics        = errors.New("no Kinovea data uploaded for this session")

	// Ошибки конфликтов
	ErrProfileEmailConflict     = errors.New("email address is already in use")
	ErrPlayerConflict           = errors.New("player with this name and team already exists")
	ErrPlayerOwnedByAnotherUser = errors.New("a player with this name and team belongs to another user; set reassign_ownership=true to take it over")
	ErrPlayerHasForeignSessions = errors.New("player has sessions owned by another user and cannot be deleted")

	// Ошибки аутентификации и авторизации
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrPlayerNotFound  = errors.New("player not found")
	ErrSessionNotFound = errors.New("session not found")
)

// ValidationError несет ошибки по полям; errors.Is(err, ErrValidationFailed) == true.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
