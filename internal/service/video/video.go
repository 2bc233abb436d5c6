package video

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vidtube/vidtube/internal/apperrors"
	"github.com/vidtube/vidtube/internal/logger"
	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/internal/repository"
	"github.com/vidtube/vidtube/internal/service/media"
)

// MediaStorage as the video service needs it: video files and thumbnails
type MediaStorage interface {
	Upload(ctx context.Context, r media.Upload) (media.Asset, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) string
}

type PublishParams struct {
	OwnerID     uuid.UUID
	Title       string
	Description string
	Duration    float64

	Video     media.Upload
	Thumbnail media.Upload
}

type UpdateParams struct {
	Title       *string
	Description *string
	Thumbnail   *media.Upload
}

type VideoService struct {
	storage repository.Storage
	media   MediaStorage
	logger  logger.Logger
}

func NewService(storage repository.Storage, mediaStorage MediaStorage, l logger.Logger) *VideoService {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &VideoService{
		storage: storage,
		media:   mediaStorage,
		logger:  l,
	}
}

// Publish uploads the video file and thumbnail and creates the record.
// New videos start published
func (s *VideoService) Publish(ctx context.Context, arg PublishParams) (models.Video, error) {
	videoAsset, err := s.media.Upload(ctx, arg.Video)
	if err != nil {
		return models.Video{}, fmt.Errorf("video upload failed (%v). Err: %w", err, apperrors.ErrMediaUploadFailed)
	}

	thumbAsset, err := s.media.Upload(ctx, arg.Thumbnail)
	if err != nil {
		s.deleteAsset(ctx, videoAsset.Key)
		return models.Video{}, fmt.Errorf("thumbnail upload failed (%v). Err: %w", err, apperrors.ErrMediaUploadFailed)
	}

	video, err := s.storage.Video().CreateVideo(ctx, repository.CreateVideoParams{
		OwnerID:      arg.OwnerID,
		Title:        arg.Title,
		Description:  arg.Description,
		VideoURL:     videoAsset.URL,
		ThumbnailURL: thumbAsset.URL,
		Duration:     arg.Duration,
	})
	if err != nil {
		s.deleteAsset(ctx, videoAsset.Key)
		s.deleteAsset(ctx, thumbAsset.Key)
		return models.Video{}, err
	}

	return video, nil
}

// List returns published videos, newest first, optionally filtered by owner
func (s *VideoService) List(ctx context.Context, opts repository.ListVideosOpts) ([]models.Video, models.Pagination, error) {
	videos, total, err := s.storage.Video().ListPublished(ctx, opts)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	return videos, models.NewPagination(opts.Page, opts.Limit, total), nil
}

// Get returns the video and counts the view.
// Unpublished videos are visible to their owner only, everyone else
// gets apperrors.ErrVideoNotFound so drafts don't leak
func (s *VideoService) Get(ctx context.Context, videoID uuid.UUID, viewerID *uuid.UUID) (models.Video, error) {
	video, err := s.storage.Video().GetVideo(ctx, videoID)
	if err != nil {
		return models.Video{}, err
	}

	if !video.Published && (viewerID == nil || *viewerID != video.OwnerID) {
		return models.Video{}, apperrors.ErrVideoNotFound
	}

	if err = s.storage.Video().IncrementViews(ctx, videoID); err != nil {
		s.logger.Warn("failed to count video view", "videoID", videoID.String(), "error", err.Error())
	} else {
		video.Views++
	}

	return video, nil
}

func (s *VideoService) Update(ctx context.Context, userID uuid.UUID, videoID uuid.UUID, arg UpdateParams) (models.Video, error) {
	if _, err := s.ownedVideo(ctx, userID, videoID); err != nil {
		return models.Video{}, err
	}

	params := repository.UpdateVideoParams{
		Title:       arg.Title,
		Description: arg.Description,
	}

	var oldThumbURL string
	if arg.Thumbnail != nil {
		current, err := s.storage.Video().GetVideo(ctx, videoID)
		if err != nil {
			return models.Video{}, err
		}
		oldThumbURL = current.ThumbnailURL

		asset, err := s.media.Upload(ctx, *arg.Thumbnail)
		if err != nil {
			return models.Video{}, fmt.Errorf("thumbnail upload failed (%v). Err: %w", err, apperrors.ErrMediaUploadFailed)
		}
		params.ThumbnailURL = &asset.URL
	}

	video, err := s.storage.Video().UpdateVideo(ctx, videoID, params)
	if err != nil {
		if params.ThumbnailURL != nil {
			s.deleteAsset(ctx, s.media.KeyFromURL(*params.ThumbnailURL))
		}
		return models.Video{}, err
	}

	if oldThumbURL != "" {
		s.deleteAsset(ctx, s.media.KeyFromURL(oldThumbURL))
	}

	return video, nil
}

// Delete removes the record and then the stored assets, best effort.
// Ownership check and row delete run in one transaction
func (s *VideoService) Delete(ctx context.Context, userID uuid.UUID, videoID uuid.UUID) error {
	var video models.Video

	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		var err error
		video, err = st.Video().GetVideo(ctx, videoID)
		if err != nil {
			return err
		}
		if video.OwnerID != userID {
			return apperrors.ErrNotOwner
		}

		return st.Video().DeleteVideo(ctx, videoID)
	})
	if err != nil {
		return err
	}

	s.deleteAsset(ctx, s.media.KeyFromURL(video.VideoURL))
	s.deleteAsset(ctx, s.media.KeyFromURL(video.ThumbnailURL))

	return nil
}

func (s *VideoService) TogglePublish(ctx context.Context, userID uuid.UUID, videoID uuid.UUID) (models.Video, error) {
	if _, err := s.ownedVideo(ctx, userID, videoID); err != nil {
		return models.Video{}, err
	}

	return s.storage.Video().TogglePublished(ctx, videoID)
}

// ownedVideo fetches the video and verifies the caller owns it.
// Returns apperrors.ErrNotOwner otherwise
func (s *VideoService) ownedVideo(ctx context.Context, userID uuid.UUID, videoID uuid.UUID) (models.Video, error) {
	video, err := s.storage.Video().GetVideo(ctx, videoID)
	if err != nil {
		return models.Video{}, err
	}
	if video.OwnerID != userID {
		return models.Video{}, apperrors.ErrNotOwner
	}

	return video, nil
}

func (s *VideoService) deleteAsset(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.media.Delete(ctx, key); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("failed to delete media asset", "key", key, "error", err.Error())
	}
}
