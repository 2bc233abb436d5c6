package handlers

import (
	"errors"
	"net/http"

	"github.com/vidtube/vidtube/internal/apperrors"
	"github.com/vidtube/vidtube/internal/handlers/render"
	"github.com/vidtube/vidtube/internal/handlers/userctx"
	"github.com/vidtube/vidtube/internal/logger"
)

func handleToggleVideoLike(likeService likeService, logger logger.Logger) http.Handler {
	type response struct {
		Liked bool `json:"liked"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		videoID, ok := pathUUID(w, r, "videoId")
		if !ok {
			return
		}

		liked, err := likeService.ToggleVideoLike(r.Context(), u.ID, videoID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrVideoNotFound):
				render.ServiceError(w, "Video not found", http.StatusNotFound)
			default:
				internalError(w, logger, err)
			}
			return
		}

		render.JSON(w, response{Liked: liked})
	})
}
