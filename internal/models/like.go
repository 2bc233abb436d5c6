package models

import (
	"time"

	"github.com/google/uuid"
)

type Like struct {
	UserID    uuid.UUID
	VideoID   uuid.UUID
	CreatedAt time.Time
}
