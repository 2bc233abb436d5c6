package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vidtube/vidtube/internal/apperrors"
)

type LikeRepo struct {
	DB DBTX
}

const deleteLike = `-- name: DeleteLike
DELETE FROM likes
WHERE user_id = $1 AND video_id = $2
`

const insertLike = `-- name: InsertLike
INSERT INTO likes (user_id, video_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`

// Toggle removes the like if present, otherwise inserts it.
// The delete-first order makes a concurrent double toggle settle on one
// of the two valid states instead of erroring.
func (r *LikeRepo) Toggle(ctx context.Context, userID uuid.UUID, videoID uuid.UUID) (bool, error) {
	tag, err := r.DB.Exec(ctx, deleteLike, userID, videoID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = r.DB.Exec(ctx, insertLike, userID, videoID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return false, apperrors.ErrVideoNotFound
		}

		return false, fmt.Errorf("db error: %w", err)
	}

	return true, nil
}
