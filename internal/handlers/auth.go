package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vidtube/vidtube/internal/apperrors"
	"github.com/vidtube/vidtube/internal/handlers/render"
	"github.com/vidtube/vidtube/internal/handlers/userctx"
	"github.com/vidtube/vidtube/internal/logger"
	"github.com/vidtube/vidtube/internal/models"
)

type sessionResponse struct {
	User         models.PublicUser `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

// handleLogin starts a session. Tokens go into cookies and, for
// non-browser clients, into the response body
func handleLogin(authService authService, logger logger.Logger) http.Handler {
	type request struct {
		Username string `json:"username" validate:"required_without=Email"`
		Email    string `json:"email" validate:"required_without=Username,omitempty,email"`
		Password string `json:"password" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		login := data.Username
		if login == "" {
			login = data.Email
		}

		user, pair, err := authService.Login(r.Context(), login, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "User does not exist", http.StatusNotFound)
			case errors.Is(err, apperrors.ErrInvalidCredentials):
				render.ServiceError(w, "Invalid credentials", http.StatusNotFound)
			default:
				internalError(w, logger, err)
			}
			return
		}

		authService.SetTokenPairToResponse(w, pair)
		render.JSON(w, sessionResponse{
			User:         user.Public(),
			AccessToken:  pair.Access.Value,
			RefreshToken: pair.Refresh.Value,
		})
	})
}

// handleLogout ends the session: the stored refresh token is dropped and
// both cookies are expired
func handleLogout(authService authService, logger logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if err := authService.Logout(r.Context(), user.ID); err != nil {
			internalError(w, logger, err)
			return
		}

		authService.ClearTokensFromResponse(w)
		render.JSON(w, response{Message: "User logged out"})
	})
}

// handleTokenRefresh swaps a valid refresh token for a fresh pair.
// The token comes from the cookie or, for non-browser clients, from the
// JSON body. Every failure is a 401: the client's only move is to log
// in again
func handleTokenRefresh(authService authService, logger logger.Logger) http.Handler {
	type request struct {
		RefreshToken string `json:"refreshToken"`
	}
	type response struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refresh := authService.GetRefreshString(r)
		if refresh == "" {
			// The body is optional, a missing token fails below as
			// ErrUnauthorized
			var data request
			_ = json.NewDecoder(r.Body).Decode(&data)
			refresh = data.RefreshToken
		}

		pair, err := authService.RefreshPair(r.Context(), refresh)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrTokenExpired):
				render.ServiceError(w, "Refresh token expired", http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrUnauthorized),
				errors.Is(err, apperrors.ErrTokenInvalid),
				errors.Is(err, apperrors.ErrTokenReused):
				render.ServiceError(w, "Invalid refresh token", http.StatusUnauthorized)
			default:
				internalError(w, logger, err)
			}
			return
		}

		authService.SetTokenPairToResponse(w, pair)
		render.JSON(w, response{
			AccessToken:  pair.Access.Value,
			RefreshToken: pair.Refresh.Value,
		})
	})
}

func handleChangePassword(authService authService, logger logger.Logger) http.Handler {
	type request struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,min=8"`
	}
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		err = authService.ChangePassword(r.Context(), user.ID, data.OldPassword, data.NewPassword)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrInvalidCredentials):
				render.ServiceError(w, "Invalid old password", http.StatusBadRequest)
			default:
				internalError(w, logger, err)
			}
			return
		}

		render.JSON(w, response{Message: "Password changed"})
	})
}
