package models

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Session - одна загруженная сессия броска. Всегда принадлежит ровно одному игроку.
type Session struct {
	ID          int       `json:"id" db:"id"`
	PlayerID    int       `json:"player_id" db:"player_id"`
	Date        time.Time `json:"date" db:"date"`
	SessionName string    `json:"session_name" db:"session_name"`
	VideoSource string    `json:"video_source" db:"video_source"`
	KinoveaCSV  *string   `json:"kinovea_csv" db:"kinovea_csv"`
	Notes       string    `json:"notes" db:"notes"`
	UserEmail   string    `json:"user_email" db:"user_email"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Label is the "date - name" string used to pick a session in selectors.
func (s Session) Label() string {
	return s.Date.Format(DateLayout) + " - " + s.SessionName
}

// HasKinematics reports whether kinovea_csv points at tabular data.
// Video uploads store the video URL in kinovea_csv, so the suffix check is required.
func (s Session) HasKinematics() bool {
	if s.KinoveaCSV == nil || *s.KinoveaCSV == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(*s.KinoveaCSV), ".csv")
}

// SessionView is what the viewer and comparison screens render for one session.
type SessionView struct {
	Session       Session `json:"session"`
	PlayerName    string  `json:"player_name"`
	Team          string  `json:"team"`
	Label         string  `json:"label"`
	EmbedURL      string  `json:"embed_url,omitempty"`
	VideoWarning  string  `json:"video_warning,omitempty"`
	NotesHTML     string  `json:"notes_html"`
	HasKinematics bool    `json:"has_kinematics"`
}

// Comparison holds the two independently selected sides. Either side may be nil.
type Comparison struct {
	Left  *SessionView `json:"left"`
	Right *SessionView `json:"right"`
}
