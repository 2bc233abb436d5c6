package handlers

import (
	"net/http"

	"github.com/vidtube/vidtube/internal/handlers/render"
	"github.com/vidtube/vidtube/internal/handlers/userctx"
	"github.com/vidtube/vidtube/internal/logger"
	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/internal/service/dashboard"
)

type dashboardVideoResponse struct {
	videoResponse
	LikesCount int64 `json:"likesCount"`
}

func handleChannelStats(dashboardService dashboardService, logger logger.Logger) http.Handler {
	type response struct {
		Stats models.ChannelStats `json:"stats"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		stats, err := dashboardService.Stats(r.Context(), u.ID)
		if err != nil {
			internalError(w, logger, err)
			return
		}

		render.JSON(w, response{Stats: stats})
	})
}

// handleChannelVideos lists the caller's own videos, drafts included
func handleChannelVideos(dashboardService dashboardService, logger logger.Logger) http.Handler {
	type response struct {
		Videos     []dashboardVideoResponse `json:"videos"`
		Pagination models.Pagination        `json:"pagination"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		page, limit := pageParams(r)
		query := r.URL.Query()

		videos, pagination, err := dashboardService.Videos(r.Context(), u.ID, dashboard.VideosParams{
			Page:     page,
			Limit:    limit,
			SortBy:   query.Get("sortBy"),
			SortDesc: query.Get("sortType") != "asc",
		})
		if err != nil {
			internalError(w, logger, err)
			return
		}

		res := response{Videos: make([]dashboardVideoResponse, 0, len(videos)), Pagination: pagination}
		for _, v := range videos {
			res.Videos = append(res.Videos, dashboardVideoResponse{
				videoResponse: newVideoResponse(v.Video),
				LikesCount:    v.LikesCount,
			})
		}

		render.JSON(w, res)
	})
}
