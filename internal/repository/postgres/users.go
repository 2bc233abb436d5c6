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
	"github.com/vidtube/vidtube/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

const userColumns = `id, created_at, username, email, full_name, hashed_password, avatar_url, cover_image_url, refresh_token`

const createUser = `-- name: CreateUser
INSERT INTO users (id, username, email, full_name, hashed_password, avatar_url, cover_image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + userColumns

func (r *UserRepo) CreateUser(ctx context.Context, arg repository.CreateUserParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser,
		uuid.New(), arg.Username, arg.Email, arg.FullName, arg.HashedPassword, arg.AvatarURL, arg.CoverImageURL)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrUserAlreadyExists
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userColumns + `
FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, userID)
	return collectUser(rows)
}

const getUserByLogin = `-- name: GetUserByLogin
SELECT ` + userColumns + `
FROM users
WHERE username = $1 OR email = $1
`

// Lookup by either identity field: the login handler accepts username or email
func (r *UserRepo) GetUserByLogin(ctx context.Context, usernameOrEmail string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByLogin, usernameOrEmail)
	return collectUser(rows)
}

const setRefreshToken = `-- name: SetRefreshToken
UPDATE users
SET refresh_token = $2
WHERE id = $1
`

func (r *UserRepo) SetRefreshToken(ctx context.Context, userID uuid.UUID, token *string) error {
	tag, err := r.DB.Exec(ctx, setRefreshToken, userID, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

const setPassword = `-- name: SetPassword
UPDATE users
SET hashed_password = $2
WHERE id = $1
`

func (r *UserRepo) SetPassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error {
	tag, err := r.DB.Exec(ctx, setPassword, userID, hashedPassword)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

const updateAccount = `-- name: UpdateAccount
UPDATE users
SET full_name = $2, email = $3
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) UpdateAccount(ctx context.Context, userID uuid.UUID, arg repository.UpdateAccountParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, updateAccount, userID, arg.FullName, arg.Email)
	user, err := collectUser(rows)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return user, apperrors.ErrUserAlreadyExists
	}

	return user, err
}

const setAvatarURL = `-- name: SetAvatarURL
UPDATE users
SET avatar_url = $2
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) SetAvatarURL(ctx context.Context, userID uuid.UUID, url string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, setAvatarURL, userID, url)
	return collectUser(rows)
}

const setCoverImageURL = `-- name: SetCoverImageURL
UPDATE users
SET cover_image_url = $2
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) SetCoverImageURL(ctx context.Context, userID uuid.UUID, url string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, setCoverImageURL, userID, url)
	return collectUser(rows)
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.CreatedAt, &u.Username, &u.Email, &u.FullName,
		&u.HashedPassword, &u.AvatarURL, &u.CoverImageURL, &u.RefreshToken,
	)
	return u, err
}
