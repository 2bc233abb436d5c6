package comment

import (
	"context"

	"github.com/google/uuid"

	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepo
	videoRepo   repository.VideoRepo
}

func NewService(commentRepo repository.CommentRepo, videoRepo repository.VideoRepo) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		videoRepo:   videoRepo,
	}
}

// ListByVideo returns the video's comments, newest first.
// apperrors.ErrVideoNotFound when the video does not exist: an empty
// page and a missing video must be distinguishable
func (s *CommentService) ListByVideo(ctx context.Context, videoID uuid.UUID, page int, limit int) ([]models.CommentWithOwner, models.Pagination, error) {
	if _, err := s.videoRepo.GetVideo(ctx, videoID); err != nil {
		return nil, models.Pagination{}, err
	}

	comments, total, err := s.commentRepo.ListByVideo(ctx, videoID, page, limit)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	return comments, models.NewPagination(page, limit, total), nil
}
