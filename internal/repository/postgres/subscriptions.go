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

type SubscriptionRepo struct {
	DB DBTX
}

const deleteSubscription = `-- name: DeleteSubscription
DELETE FROM subscriptions
WHERE subscriber_id = $1 AND channel_id = $2
`

const insertSubscription = `-- name: InsertSubscription
INSERT INTO subscriptions (subscriber_id, channel_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`

func (r *SubscriptionRepo) Toggle(ctx context.Context, subscriberID uuid.UUID, channelID uuid.UUID) (bool, error) {
	tag, err := r.DB.Exec(ctx, deleteSubscription, subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = r.DB.Exec(ctx, insertSubscription, subscriberID, channelID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return false, apperrors.ErrUserNotFound
		}

		return false, fmt.Errorf("db error: %w", err)
	}

	return true, nil
}

const countSubscribers = `-- name: CountSubscribers
SELECT COUNT(*) FROM subscriptions
WHERE channel_id = $1
`

func (r *SubscriptionRepo) CountSubscribers(ctx context.Context, channelID uuid.UUID) (int64, error) {
	var count int64

	err := r.DB.QueryRow(ctx, countSubscribers, channelID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return count, nil
}
