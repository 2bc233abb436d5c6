package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Username       string
	Email          string
	FullName       string
	HashedPassword string
	AvatarURL      string
	CoverImageURL  string

	// Currently valid refresh token. Nil means no active session.
	// Exactly one refresh token is valid per user: login and refresh
	// overwrite it, logout clears it.
	RefreshToken *string
}

// PublicUser is the user without secret fields. Safe to render to clients.
type PublicUser struct {
	ID            uuid.UUID `json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage"`
}

// Public strips the password hash and refresh token
func (u User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		CreatedAt:     u.CreatedAt,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
	}
}
