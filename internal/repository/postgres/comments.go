package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vidtube/vidtube/internal/apperrors"
	"github.com/vidtube/vidtube/internal/models"
)

type CommentRepo struct {
	DB DBTX
}

const createComment = `-- name: CreateComment
INSERT INTO comments (id, video_id, owner_id, content)
VALUES ($1, $2, $3, $4)
RETURNING id, video_id, owner_id, created_at, content
`

func (r *CommentRepo) CreateComment(ctx context.Context, videoID uuid.UUID, ownerID uuid.UUID, content string) (models.Comment, error) {
	rows, _ := r.DB.Query(ctx, createComment, uuid.New(), videoID, ownerID, content)
	comment, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.Comment, error) {
		var c models.Comment
		err := row.Scan(&c.ID, &c.VideoID, &c.OwnerID, &c.CreatedAt, &c.Content)
		return c, err
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return comment, apperrors.ErrVideoNotFound
		}

		return comment, fmt.Errorf("db error: %w", err)
	}

	return comment, nil
}

const listCommentsByVideo = `-- name: ListCommentsByVideo
SELECT c.id, c.video_id, c.owner_id, c.created_at, c.content,
       u.id, u.username, u.full_name, u.avatar_url,
       COUNT(*) OVER () AS total
FROM comments c
JOIN users u ON u.id = c.owner_id
WHERE c.video_id = $1
ORDER BY c.created_at DESC
LIMIT $2 OFFSET $3
`

func (r *CommentRepo) ListByVideo(ctx context.Context, videoID uuid.UUID, page int, limit int) ([]models.CommentWithOwner, int64, error) {
	var total int64

	rows, _ := r.DB.Query(ctx, listCommentsByVideo, videoID, limit, (page-1)*limit)
	comments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.CommentWithOwner, error) {
		var c models.CommentWithOwner
		err := row.Scan(
			&c.ID, &c.VideoID, &c.OwnerID, &c.CreatedAt, &c.Content,
			&c.Owner.ID, &c.Owner.Username, &c.Owner.FullName, &c.Owner.AvatarURL,
			&total,
		)
		return c, err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return comments, total, nil
}
