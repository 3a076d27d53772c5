package models

import "time"

// Player is unique per (name, team, user_email).
type Player struct {
	ID                int       `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Team              string    `json:"team" db:"team"`
	Notes             string    `json:"notes" db:"notes"`
	UserEmail         string    `json:"user_email" db:"user_email"`
	CreatedImplicitly bool      `json:"created_implicitly" db:"created_implicitly"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`

	SessionCount *int `json:"session_count,omitempty" db:"-"`
}
