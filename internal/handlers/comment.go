package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/vidtube/internal/apperrors"
	"github.com/vidtube/vidtube/internal/handlers/render"
	"github.com/vidtube/vidtube/internal/logger"
	"github.com/vidtube/vidtube/internal/models"
)

type commentResponse struct {
	ID        uuid.UUID           `json:"id"`
	VideoID   uuid.UUID           `json:"videoId"`
	CreatedAt time.Time           `json:"createdAt"`
	Content   string              `json:"content"`
	Owner     models.CommentOwner `json:"owner"`
}

func handleListComments(commentService commentService, logger logger.Logger) http.Handler {
	type response struct {
		Comments   []commentResponse `json:"comments"`
		Pagination models.Pagination `json:"pagination"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		videoID, ok := pathUUID(w, r, "videoId")
		if !ok {
			return
		}

		page, limit := pageParams(r)

		comments, pagination, err := commentService.ListByVideo(r.Context(), videoID, page, limit)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrVideoNotFound):
				render.ServiceError(w, "Video not found", http.StatusNotFound)
			default:
				internalError(w, logger, err)
			}
			return
		}

		res := response{Comments: make([]commentResponse, 0, len(comments)), Pagination: pagination}
		for _, c := range comments {
			res.Comments = append(res.Comments, commentResponse{
				ID:        c.ID,
				VideoID:   c.VideoID,
				CreatedAt: c.CreatedAt,
				Content:   c.Content,
				Owner:     c.Owner,
			})
		}

		render.JSON(w, res)
	})
}
