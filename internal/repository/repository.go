package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/vidtube/vidtube/internal/models"
)

type CreateUserParams struct {
	Username       string
	Email          string
	FullName       string
	HashedPassword string
	AvatarURL      string
	CoverImageURL  string
}

type UpdateAccountParams struct {
	FullName string
	Email    string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with the same username or email exists has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by id, or by username or email (single login field)
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByLogin(ctx context.Context, usernameOrEmail string) (models.User, error)

	// Overwrite the stored refresh token. Nil clears it.
	// This single-row write is the serialization point for concurrent
	// logins and refreshes: last writer wins.
	SetRefreshToken(ctx context.Context, userID uuid.UUID, token *string) error

	SetPassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error
	UpdateAccount(ctx context.Context, userID uuid.UUID, arg UpdateAccountParams) (models.User, error)
	SetAvatarURL(ctx context.Context, userID uuid.UUID, url string) (models.User, error)
	SetCoverImageURL(ctx context.Context, userID uuid.UUID, url string) (models.User, error)
}

type CreateVideoParams struct {
	OwnerID      uuid.UUID
	Title        string
	Description  string
	VideoURL     string
	ThumbnailURL string
	Duration     float64
}

type UpdateVideoParams struct {
	Title        *string
	Description  *string
	ThumbnailURL *string
}

type ListVideosOpts struct {
	Page  int
	Limit int

	// Optional filter by owner
	OwnerID *uuid.UUID
}

// Columns the dashboard listing may be sorted by
const (
	VideoSortCreatedAt = "created_at"
	VideoSortViews     = "views"
	VideoSortTitle     = "title"
	VideoSortDuration  = "duration"
)

type ListChannelVideosOpts struct {
	Page     int
	Limit    int
	SortBy   string // one of the VideoSort* constants
	SortDesc bool
}

// Video repository interface
type VideoRepo interface {
	CreateVideo(ctx context.Context, arg CreateVideoParams) (models.Video, error)

	// If video not found must return apperrors.ErrVideoNotFound
	GetVideo(ctx context.Context, videoID uuid.UUID) (models.Video, error)

	// Published videos only, newest first. Returns total count for pagination.
	ListPublished(ctx context.Context, opts ListVideosOpts) ([]models.Video, int64, error)

	// All videos of the channel (published or not) with like counts
	ListChannelVideos(ctx context.Context, ownerID uuid.UUID, opts ListChannelVideosOpts) ([]models.VideoWithLikes, int64, error)

	UpdateVideo(ctx context.Context, videoID uuid.UUID, arg UpdateVideoParams) (models.Video, error)
	DeleteVideo(ctx context.Context, videoID uuid.UUID) error
	TogglePublished(ctx context.Context, videoID uuid.UUID) (models.Video, error)
	IncrementViews(ctx context.Context, videoID uuid.UUID) error

	// Aggregated stats for the channel dashboard. Zeroes when the
	// channel has no videos.
	ChannelStats(ctx context.Context, ownerID uuid.UUID) (models.ChannelStats, error)
}

// Comment repository interface
// Create has no HTTP surface but is used for seeding and tests
type CommentRepo interface {
	CreateComment(ctx context.Context, videoID uuid.UUID, ownerID uuid.UUID, content string) (models.Comment, error)

	// Newest first, each comment joined with its author
	ListByVideo(ctx context.Context, videoID uuid.UUID, page int, limit int) ([]models.CommentWithOwner, int64, error)
}

// Like repository interface
type LikeRepo interface {
	// Like the video if not liked yet, remove the like otherwise.
	// Returns resulting state: true if the like now exists.
	Toggle(ctx context.Context, userID uuid.UUID, videoID uuid.UUID) (bool, error)
}

// Subscription repository interface
type SubscriptionRepo interface {
	// Subscribe if not subscribed yet, unsubscribe otherwise.
	// Returns resulting state: true if the subscription now exists.
	Toggle(ctx context.Context, subscriberID uuid.UUID, channelID uuid.UUID) (bool, error)

	CountSubscribers(ctx context.Context, channelID uuid.UUID) (int64, error)
}

// Storage aggregates all repositories over a single db handle
type Storage interface {
	User() UserRepo
	Video() VideoRepo
	Comment() CommentRepo
	Like() LikeRepo
	Subscription() SubscriptionRepo

	// Run fn within a database transaction
	InTx(ctx context.Context, fn func(Storage) error) error
}
