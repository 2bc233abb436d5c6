package dashboard

import (
	"context"

	"github.com/google/uuid"

	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/internal/repository"
)

// Sort keys accepted from the API, mapped to repository sort columns
var sortColumns = map[string]string{
	"createdAt": repository.VideoSortCreatedAt,
	"views":     repository.VideoSortViews,
	"title":     repository.VideoSortTitle,
	"duration":  repository.VideoSortDuration,
}

type VideosParams struct {
	Page     int
	Limit    int
	SortBy   string // API sort key, unknown values fall back to createdAt
	SortDesc bool
}

type DashboardService struct {
	videoRepo repository.VideoRepo
}

func NewService(videoRepo repository.VideoRepo) *DashboardService {
	return &DashboardService{videoRepo: videoRepo}
}

// Stats aggregates the channel numbers for its owner, subscribers
// included. All zeroes for a channel without videos
func (s *DashboardService) Stats(ctx context.Context, channelID uuid.UUID) (models.ChannelStats, error) {
	return s.videoRepo.ChannelStats(ctx, channelID)
}

// Videos lists every video of the channel, drafts included, with like counts
func (s *DashboardService) Videos(ctx context.Context, channelID uuid.UUID, arg VideosParams) ([]models.VideoWithLikes, models.Pagination, error) {
	sortBy, ok := sortColumns[arg.SortBy]
	if !ok {
		sortBy = repository.VideoSortCreatedAt
	}

	videos, total, err := s.videoRepo.ListChannelVideos(ctx, channelID, repository.ListChannelVideosOpts{
		Page:     arg.Page,
		Limit:    arg.Limit,
		SortBy:   sortBy,
		SortDesc: arg.SortDesc,
	})
	if err != nil {
		return nil, models.Pagination{}, err
	}

	return videos, models.NewPagination(arg.Page, arg.Limit, total), nil
}
