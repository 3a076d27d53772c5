package models

import "time"

// DebugLog - запись аудита просмотра сессии (только добавление).
type DebugLog struct {
	ID          int       `json:"id" db:"id"`
	PlayerID    int       `json:"player_id" db:"player_id"`
	VideoID     string    `json:"video_id" db:"video_id"`
	ViewEmailID string    `json:"view_email_id" db:"view_email_id"`
	IsAdmin     bool      `json:"is_admin" db:"is_admin"`
	IsUser      bool      `json:"is_user" db:"is_user"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
