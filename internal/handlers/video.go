package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/vidtube/internal/apperrors"
	"github.com/vidtube/vidtube/internal/handlers/render"
	"github.com/vidtube/vidtube/internal/handlers/userctx"
	"github.com/vidtube/vidtube/internal/logger"
	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/internal/repository"
	"github.com/vidtube/vidtube/internal/service/video"
)

type videoResponse struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"ownerId"`
	CreatedAt    time.Time `json:"createdAt"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoFile"`
	ThumbnailURL string    `json:"thumbnail"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	Published    bool      `json:"isPublished"`
}

func newVideoResponse(v models.Video) videoResponse {
	return videoResponse{
		ID:           v.ID,
		OwnerID:      v.OwnerID,
		CreatedAt:    v.CreatedAt,
		Title:        v.Title,
		Description:  v.Description,
		VideoURL:     v.VideoURL,
		ThumbnailURL: v.ThumbnailURL,
		Duration:     v.Duration,
		Views:        v.Views,
		Published:    v.Published,
	}
}

// handlePublishVideo uploads the video file with its thumbnail and
// creates the record. Multipart form
func handlePublishVideo(videoService videoService, logger logger.Logger) http.Handler {
	type request struct {
		Title       string  `json:"title" validate:"required,max=200"`
		Description string  `json:"description" validate:"max=5000"`
		Duration    float64 `json:"duration" validate:"gte=0"`
	}
	type response struct {
		Video videoResponse `json:"video"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if !parseMultipart(w, r) {
			return
		}

		duration, _ := strconv.ParseFloat(r.FormValue("duration"), 64)
		data := request{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			Duration:    duration,
		}
		if err := render.Validate(w, data); err != nil {
			return
		}

		videoUpload, closeVideo, err := formUpload(r, "videoFile")
		if err != nil {
			render.ServiceError(w, "Video file is required", http.StatusBadRequest)
			return
		}
		defer closeVideo()

		thumbUpload, closeThumb, err := formUpload(r, "thumbnail")
		if err != nil {
			render.ServiceError(w, "Thumbnail file is required", http.StatusBadRequest)
			return
		}
		defer closeThumb()

		created, err := videoService.Publish(r.Context(), video.PublishParams{
			OwnerID:     u.ID,
			Title:       data.Title,
			Description: data.Description,
			Duration:    data.Duration,
			Video:       videoUpload,
			Thumbnail:   thumbUpload,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrMediaUploadFailed):
				render.ServiceError(w, "Could not store uploaded files", http.StatusBadGateway)
			default:
				internalError(w, logger, err)
			}
			return
		}

		render.JSONWithStatus(w, response{Video: newVideoResponse(created)}, http.StatusCreated)
	})
}

// handleListVideos lists published videos, newest first.
// Optional 'userId' query narrows the listing to one channel
func handleListVideos(videoService videoService, logger logger.Logger) http.Handler {
	type response struct {
		Videos     []videoResponse   `json:"videos"`
		Pagination models.Pagination `json:"pagination"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, limit := pageParams(r)

		opts := repository.ListVideosOpts{Page: page, Limit: limit}
		if raw := r.URL.Query().Get("userId"); raw != "" {
			ownerID, err := uuid.Parse(raw)
			if err != nil {
				render.ServiceError(w, "Invalid userId", http.StatusBadRequest)
				return
			}
			opts.OwnerID = &ownerID
		}

		videos, pagination, err := videoService.List(r.Context(), opts)
		if err != nil {
			internalError(w, logger, err)
			return
		}

		res := response{Videos: make([]videoResponse, 0, len(videos)), Pagination: pagination}
		for _, v := range videos {
			res.Videos = append(res.Videos, newVideoResponse(v))
		}

		render.JSON(w, res)
	})
}

// handleGetVideo returns a single video and counts the view.
// Auth is optional here: it only matters for owners peeking at their
// own unpublished videos
func handleGetVideo(videoService videoService, authService authService, logger logger.Logger) http.Handler {
	type response struct {
		Video videoResponse `json:"video"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		videoID, ok := pathUUID(w, r, "videoId")
		if !ok {
			return
		}

		var viewerID *uuid.UUID
		if u, err := authService.GetUserFromRequest(r.Context(), r); err == nil {
			viewerID = &u.ID
		}

		v, err := videoService.Get(r.Context(), videoID, viewerID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrVideoNotFound):
				render.ServiceError(w, "Video not found", http.StatusNotFound)
			default:
				internalError(w, logger, err)
			}
			return
		}

		render.JSON(w, response{Video: newVideoResponse(v)})
	})
}

// handleUpdateVideo updates title, description or thumbnail.
// Multipart form, every field optional
func handleUpdateVideo(videoService videoService, logger logger.Logger) http.Handler {
	type response struct {
		Video videoResponse `json:"video"`
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

		if !parseMultipart(w, r) {
			return
		}

		params := video.UpdateParams{}
		if r.Form.Has("title") {
			title := r.FormValue("title")
			params.Title = &title
		}
		if r.Form.Has("description") {
			description := r.FormValue("description")
			params.Description = &description
		}

		thumb, closeThumb, err := optionalFormUpload(r, "thumbnail")
		if err != nil {
			render.ServiceError(w, "Thumbnail could not be read", http.StatusBadRequest)
			return
		}
		defer closeThumb()
		params.Thumbnail = thumb

		updated, err := videoService.Update(r.Context(), u.ID, videoID, params)
		if err != nil {
			renderVideoOwnerError(w, logger, err)
			return
		}

		render.JSON(w, response{Video: newVideoResponse(updated)})
	})
}

func handleDeleteVideo(videoService videoService, logger logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
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

		if err := videoService.Delete(r.Context(), u.ID, videoID); err != nil {
			renderVideoOwnerError(w, logger, err)
			return
		}

		render.JSON(w, response{Message: "Video deleted"})
	})
}

func handleTogglePublish(videoService videoService, logger logger.Logger) http.Handler {
	type response struct {
		Video videoResponse `json:"video"`
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

		toggled, err := videoService.TogglePublish(r.Context(), u.ID, videoID)
		if err != nil {
			renderVideoOwnerError(w, logger, err)
			return
		}

		render.JSON(w, response{Video: newVideoResponse(toggled)})
	})
}

func renderVideoOwnerError(w http.ResponseWriter, logger logger.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrVideoNotFound):
		render.ServiceError(w, "Video not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrNotOwner):
		render.ServiceError(w, "Only the owner may modify this video", http.StatusForbidden)
	case errors.Is(err, apperrors.ErrMediaUploadFailed):
		render.ServiceError(w, "Could not store uploaded files", http.StatusBadGateway)
	default:
		internalError(w, logger, err)
	}
}
