package models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID        uuid.UUID
	VideoID   uuid.UUID
	OwnerID   uuid.UUID
	CreatedAt time.Time
	Content   string
}

// CommentOwner is the short form of the author joined into comment listings
type CommentOwner struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	AvatarURL string    `json:"avatar"`
}

type CommentWithOwner struct {
	Comment
	Owner CommentOwner
}
