package models

import (
	"time"

	"github.com/google/uuid"
)

type Video struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Title        string
	Description  string
	VideoURL     string
	ThumbnailURL string
	Duration     float64 // seconds
	Views        int64
	Published    bool
}

// Video joined with its like count, as listed on the channel dashboard
type VideoWithLikes struct {
	Video
	LikesCount int64
}

// Pagination block rendered next to paginated listings
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
	Limit       int   `json:"limit"`
}

func NewPagination(page int, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
		Limit:       limit,
	}
}
