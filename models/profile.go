package models

import "time"

// Profile - учетная запись из таблицы profiles.
type Profile struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

func (p Profile) Principal() Principal {
	return Principal{
		ID:      p.ID,
		Email:   p.Email,
		IsAdmin: p.IsAdmin,
	}
}
