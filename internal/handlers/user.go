package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/vidtube/vidtube/internal/apperrors"
	"github.com/vidtube/vidtube/internal/handlers/render"
	"github.com/vidtube/vidtube/internal/handlers/userctx"
	"github.com/vidtube/vidtube/internal/logger"
	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/internal/service/media"
	"github.com/vidtube/vidtube/internal/service/user"
)

type imageUpdateFn func(ctx context.Context, userID uuid.UUID, upload media.Upload) (models.User, error)

type userResponse struct {
	User models.PublicUser `json:"user"`
}

// handleRegister creates an account from a multipart form: text fields
// plus a required avatar and an optional cover image
func handleRegister(userService userService, logger logger.Logger) http.Handler {
	type request struct {
		Username string `json:"username" validate:"required,min=2,max=50"`
		Email    string `json:"email" validate:"required,email"`
		FullName string `json:"fullName" validate:"required,max=100"`
		Password string `json:"password" validate:"required,min=8"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !parseMultipart(w, r) {
			return
		}

		data := request{
			Username: r.FormValue("username"),
			Email:    r.FormValue("email"),
			FullName: r.FormValue("fullName"),
			Password: r.FormValue("password"),
		}
		if err := render.Validate(w, data); err != nil {
			return
		}

		avatar, closeAvatar, err := formUpload(r, "avatar")
		if err != nil {
			render.ServiceError(w, "Avatar file is required", http.StatusBadRequest)
			return
		}
		defer closeAvatar()

		cover, closeCover, err := optionalFormUpload(r, "coverImage")
		if err != nil {
			render.ServiceError(w, "Cover image could not be read", http.StatusBadRequest)
			return
		}
		defer closeCover()

		created, err := userService.Register(r.Context(), user.RegisterParams{
			Username:   data.Username,
			Email:      data.Email,
			FullName:   data.FullName,
			Password:   data.Password,
			Avatar:     avatar,
			CoverImage: cover,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserAlreadyExists):
				render.ServiceError(w, "User with this username or email already exists", http.StatusConflict)
			case errors.Is(err, apperrors.ErrMediaUploadFailed):
				render.ServiceError(w, "Could not store uploaded files", http.StatusBadGateway)
			default:
				internalError(w, logger, err)
			}
			return
		}

		render.JSONWithStatus(w, userResponse{User: created.Public()}, http.StatusCreated)
	})
}

func handleCurrentUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, userResponse{User: u.Public()})
	})
}

func handleUpdateAccount(userService userService, logger logger.Logger) http.Handler {
	type request struct {
		FullName string `json:"fullName" validate:"required,max=100"`
		Email    string `json:"email" validate:"required,email"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		updated, err := userService.UpdateAccount(r.Context(), u.ID, data.FullName, data.Email)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserAlreadyExists):
				render.ServiceError(w, "Email already in use", http.StatusConflict)
			default:
				internalError(w, logger, err)
			}
			return
		}

		render.JSON(w, userResponse{User: updated.Public()})
	})
}

func handleUpdateAvatar(userService userService, logger logger.Logger) http.Handler {
	return handleImageUpdate("avatar", userService.UpdateAvatar, logger)
}

func handleUpdateCoverImage(userService userService, logger logger.Logger) http.Handler {
	return handleImageUpdate("coverImage", userService.UpdateCoverImage, logger)
}

func handleImageUpdate(field string, update imageUpdateFn, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if !parseMultipart(w, r) {
			return
		}

		upload, closeUpload, err := formUpload(r, field)
		if err != nil {
			render.ServiceError(w, "File '"+field+"' is required", http.StatusBadRequest)
			return
		}
		defer closeUpload()

		updated, err := update(r.Context(), u.ID, upload)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrMediaUploadFailed):
				render.ServiceError(w, "Could not store uploaded files", http.StatusBadGateway)
			default:
				internalError(w, logger, err)
			}
			return
		}

		render.JSON(w, userResponse{User: updated.Public()})
	})
}
