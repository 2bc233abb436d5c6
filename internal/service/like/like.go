package like

import (
	"context"

	"github.com/google/uuid"

	"github.com/vidtube/vidtube/internal/repository"
)

type LikeService struct {
	likeRepo repository.LikeRepo
}

func NewService(likeRepo repository.LikeRepo) *LikeService {
	return &LikeService{likeRepo: likeRepo}
}

// ToggleVideoLike flips the user's like on the video.
// Returns true when the video is liked after the call
func (s *LikeService) ToggleVideoLike(ctx context.Context, userID uuid.UUID, videoID uuid.UUID) (bool, error) {
	return s.likeRepo.Toggle(ctx, userID, videoID)
}
