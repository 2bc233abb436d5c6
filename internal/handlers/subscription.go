package handlers

import (
	"errors"
	"net/http"

	"github.com/vidtube/vidtube/internal/apperrors"
	"github.com/vidtube/vidtube/internal/handlers/render"
	"github.com/vidtube/vidtube/internal/handlers/userctx"
	"github.com/vidtube/vidtube/internal/logger"
)

func handleToggleSubscription(subscriptionService subscriptionService, logger logger.Logger) http.Handler {
	type response struct {
		Subscribed bool `json:"subscribed"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		channelID, ok := pathUUID(w, r, "channelId")
		if !ok {
			return
		}

		subscribed, err := subscriptionService.Toggle(r.Context(), u.ID, channelID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrSelfSubscription):
				render.ServiceError(w, "Can't subscribe to your own channel", http.StatusBadRequest)
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "Channel not found", http.StatusNotFound)
			default:
				internalError(w, logger, err)
			}
			return
		}

		render.JSON(w, response{Subscribed: subscribed})
	})
}

func handleCountSubscribers(subscriptionService subscriptionService, logger logger.Logger) http.Handler {
	type response struct {
		Subscribers int64 `json:"subscribers"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		channelID, ok := pathUUID(w, r, "channelId")
		if !ok {
			return
		}

		count, err := subscriptionService.CountSubscribers(r.Context(), channelID)
		if err != nil {
			internalError(w, logger, err)
			return
		}

		render.JSON(w, response{Subscribers: count})
	})
}
