package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vidtube/vidtube/internal/apperrors"
	"github.com/vidtube/vidtube/internal/logger"
	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/internal/repository"
	"github.com/vidtube/vidtube/internal/service/auth"
	"github.com/vidtube/vidtube/internal/service/media"
)

// MediaStorage as the user service needs it: avatars and cover images
type MediaStorage interface {
	Upload(ctx context.Context, r media.Upload) (media.Asset, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) string
}

type RegisterParams struct {
	Username string
	Email    string
	FullName string
	Password string

	Avatar     media.Upload
	CoverImage *media.Upload
}

type UserService struct {
	hasher   auth.PasswordHasher
	userRepo repository.UserRepo
	media    MediaStorage
	logger   logger.Logger
}

func NewService(hasher auth.PasswordHasher, userRepo repository.UserRepo, mediaStorage MediaStorage, l logger.Logger) *UserService {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &UserService{
		hasher:   hasher,
		userRepo: userRepo,
		media:    mediaStorage,
		logger:   l,
	}
}

// Register uploads the profile images and creates the user.
// Uploaded assets are removed again if the user can't be created,
// best effort: a failed cleanup is logged, not returned.
func (s *UserService) Register(ctx context.Context, arg RegisterParams) (models.User, error) {
	var user models.User

	hash, err := s.hasher.Hash(arg.Password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	avatar, err := s.media.Upload(ctx, arg.Avatar)
	if err != nil {
		return user, fmt.Errorf("avatar upload failed (%v). Err: %w", err, apperrors.ErrMediaUploadFailed)
	}

	var cover media.Asset
	if arg.CoverImage != nil {
		cover, err = s.media.Upload(ctx, *arg.CoverImage)
		if err != nil {
			s.deleteAsset(ctx, avatar.Key)
			return user, fmt.Errorf("cover image upload failed (%v). Err: %w", err, apperrors.ErrMediaUploadFailed)
		}
	}

	user, err = s.userRepo.CreateUser(ctx, repository.CreateUserParams{
		Username:       arg.Username,
		Email:          arg.Email,
		FullName:       arg.FullName,
		HashedPassword: hash,
		AvatarURL:      avatar.URL,
		CoverImageURL:  cover.URL,
	})
	if err != nil {
		s.deleteAsset(ctx, avatar.Key)
		s.deleteAsset(ctx, cover.Key)
		return user, err
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

func (s *UserService) UpdateAccount(ctx context.Context, userID uuid.UUID, fullName string, email string) (models.User, error) {
	return s.userRepo.UpdateAccount(ctx, userID, repository.UpdateAccountParams{
		FullName: fullName,
		Email:    email,
	})
}

// UpdateAvatar uploads the new image first, then swaps the URL and
// finally drops the old asset. The old asset delete is best effort
func (s *UserService) UpdateAvatar(ctx context.Context, userID uuid.UUID, upload media.Upload) (models.User, error) {
	return s.updateImage(ctx, userID, upload,
		func(u models.User) string { return u.AvatarURL },
		s.userRepo.SetAvatarURL,
	)
}

func (s *UserService) UpdateCoverImage(ctx context.Context, userID uuid.UUID, upload media.Upload) (models.User, error) {
	return s.updateImage(ctx, userID, upload,
		func(u models.User) string { return u.CoverImageURL },
		s.userRepo.SetCoverImageURL,
	)
}

func (s *UserService) updateImage(
	ctx context.Context,
	userID uuid.UUID,
	upload media.Upload,
	currentURL func(models.User) string,
	setURL func(context.Context, uuid.UUID, string) (models.User, error),
) (models.User, error) {
	current, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	oldURL := currentURL(current)

	asset, err := s.media.Upload(ctx, upload)
	if err != nil {
		return models.User{}, fmt.Errorf("image upload failed (%v). Err: %w", err, apperrors.ErrMediaUploadFailed)
	}

	user, err := setURL(ctx, userID, asset.URL)
	if err != nil {
		s.deleteAsset(ctx, asset.Key)
		return models.User{}, err
	}

	s.deleteAsset(ctx, s.media.KeyFromURL(oldURL))

	return user, nil
}

func (s *UserService) deleteAsset(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.media.Delete(ctx, key); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("failed to delete media asset", "key", key, "error", err.Error())
	}
}
