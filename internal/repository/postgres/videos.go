package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vidtube/vidtube/internal/apperrors"
	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/internal/repository"
)

type VideoRepo struct {
	DB DBTX
}

const videoColumns = `id, owner_id, created_at, updated_at, title, description, video_url, thumbnail_url, duration, views, published`

const createVideo = `-- name: CreateVideo
INSERT INTO videos (id, owner_id, title, description, video_url, thumbnail_url, duration)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + videoColumns

func (r *VideoRepo) CreateVideo(ctx context.Context, arg repository.CreateVideoParams) (models.Video, error) {
	rows, _ := r.DB.Query(ctx, createVideo,
		uuid.New(), arg.OwnerID, arg.Title, arg.Description, arg.VideoURL, arg.ThumbnailURL, arg.Duration)
	video, err := pgx.CollectOneRow(rows, rowToVideo)
	if err != nil {
		return video, fmt.Errorf("db error: %w", err)
	}
	return video, nil
}

const getVideo = `-- name: GetVideo
SELECT ` + videoColumns + `
FROM videos
WHERE id = $1
`

func (r *VideoRepo) GetVideo(ctx context.Context, videoID uuid.UUID) (models.Video, error) {
	rows, _ := r.DB.Query(ctx, getVideo, videoID)
	return collectVideo(rows)
}

const listPublished = `-- name: ListPublished
SELECT ` + videoColumns + `, COUNT(*) OVER () AS total
FROM videos
WHERE published AND ($3::uuid IS NULL OR owner_id = $3)
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`

func (r *VideoRepo) ListPublished(ctx context.Context, opts repository.ListVideosOpts) ([]models.Video, int64, error) {
	var total int64

	rows, _ := r.DB.Query(ctx, listPublished, opts.Limit, (opts.Page-1)*opts.Limit, opts.OwnerID)
	videos, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Video, error) {
		var v models.Video
		err := scanVideo(row, &v, &total)
		return v, err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return videos, total, nil
}

// Sort column is interpolated into SQL, so it must pass the allow list
const listChannelVideos = `-- name: ListChannelVideos
SELECT v.id, v.owner_id, v.created_at, v.updated_at, v.title, v.description,
       v.video_url, v.thumbnail_url, v.duration, v.views, v.published,
       COUNT(l.video_id) AS likes_count,
       COUNT(*) OVER () AS total
FROM videos v
LEFT JOIN likes l ON l.video_id = v.id
WHERE v.owner_id = $1
GROUP BY v.id
ORDER BY v.%s %s
LIMIT $2 OFFSET $3
`

func (r *VideoRepo) ListChannelVideos(ctx context.Context, ownerID uuid.UUID, opts repository.ListChannelVideosOpts) ([]models.VideoWithLikes, int64, error) {
	switch opts.SortBy {
	case repository.VideoSortCreatedAt, repository.VideoSortViews, repository.VideoSortTitle, repository.VideoSortDuration:
	default:
		return nil, 0, fmt.Errorf("unsupported sort column: %q", opts.SortBy)
	}

	direction := "ASC"
	if opts.SortDesc {
		direction = "DESC"
	}

	var total int64

	query := fmt.Sprintf(listChannelVideos, opts.SortBy, direction)
	rows, _ := r.DB.Query(ctx, query, ownerID, opts.Limit, (opts.Page-1)*opts.Limit)
	videos, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.VideoWithLikes, error) {
		var v models.VideoWithLikes
		err := row.Scan(
			&v.ID, &v.OwnerID, &v.CreatedAt, &v.UpdatedAt, &v.Title, &v.Description,
			&v.VideoURL, &v.ThumbnailURL, &v.Duration, &v.Views, &v.Published,
			&v.LikesCount, &total,
		)
		return v, err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return videos, total, nil
}

const updateVideo = `-- name: UpdateVideo
UPDATE videos
SET title = COALESCE($2, title),
    description = COALESCE($3, description),
    thumbnail_url = COALESCE($4, thumbnail_url),
    updated_at = now()
WHERE id = $1
RETURNING ` + videoColumns

func (r *VideoRepo) UpdateVideo(ctx context.Context, videoID uuid.UUID, arg repository.UpdateVideoParams) (models.Video, error) {
	rows, _ := r.DB.Query(ctx, updateVideo, videoID, arg.Title, arg.Description, arg.ThumbnailURL)
	return collectVideo(rows)
}

const deleteVideo = `-- name: DeleteVideo
DELETE FROM videos
WHERE id = $1
`

func (r *VideoRepo) DeleteVideo(ctx context.Context, videoID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteVideo, videoID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrVideoNotFound
	}
	return nil
}

const togglePublished = `-- name: TogglePublished
UPDATE videos
SET published = NOT published, updated_at = now()
WHERE id = $1
RETURNING ` + videoColumns

func (r *VideoRepo) TogglePublished(ctx context.Context, videoID uuid.UUID) (models.Video, error) {
	rows, _ := r.DB.Query(ctx, togglePublished, videoID)
	return collectVideo(rows)
}

const incrementViews = `-- name: IncrementViews
UPDATE videos
SET views = views + 1
WHERE id = $1
`

func (r *VideoRepo) IncrementViews(ctx context.Context, videoID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, incrementViews, videoID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrVideoNotFound
	}
	return nil
}

// Stats are computed as independent subqueries to avoid the join
// fan-out between likes and views
const channelStats = `-- name: ChannelStats
SELECT
  (SELECT COUNT(*) FROM videos v WHERE v.owner_id = $1) AS total_videos,
  (SELECT COALESCE(SUM(v.views), 0) FROM videos v WHERE v.owner_id = $1) AS total_views,
  (SELECT COUNT(*) FROM likes l JOIN videos v ON v.id = l.video_id WHERE v.owner_id = $1) AS total_likes,
  (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = $1) AS total_subscribers
`

func (r *VideoRepo) ChannelStats(ctx context.Context, ownerID uuid.UUID) (models.ChannelStats, error) {
	var stats models.ChannelStats

	err := r.DB.QueryRow(ctx, channelStats, ownerID).Scan(
		&stats.TotalVideos, &stats.TotalViews, &stats.TotalLikes, &stats.TotalSubscribers,
	)
	if err != nil {
		return stats, fmt.Errorf("db error: %w", err)
	}

	return stats, nil
}

func collectVideo(rows pgx.Rows) (models.Video, error) {
	video, err := pgx.CollectOneRow(rows, rowToVideo)

	switch {
	case err == nil:
		return video, nil
	case errors.Is(err, pgx.ErrNoRows):
		return video, apperrors.ErrVideoNotFound
	default:
		return video, fmt.Errorf("db error: %w", err)
	}
}

func rowToVideo(row pgx.CollectableRow) (models.Video, error) {
	var v models.Video
	err := row.Scan(
		&v.ID, &v.OwnerID, &v.CreatedAt, &v.UpdatedAt, &v.Title, &v.Description,
		&v.VideoURL, &v.ThumbnailURL, &v.Duration, &v.Views, &v.Published,
	)
	return v, err
}

func scanVideo(row pgx.CollectableRow, v *models.Video, total *int64) error {
	return row.Scan(
		&v.ID, &v.OwnerID, &v.CreatedAt, &v.UpdatedAt, &v.Title, &v.Description,
		&v.VideoURL, &v.ThumbnailURL, &v.Duration, &v.Views, &v.Published,
		total,
	)
}
