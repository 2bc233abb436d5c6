package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/vidtube/vidtube/internal/handlers/middleware"
	"github.com/vidtube/vidtube/internal/logger"
	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/internal/repository"
	"github.com/vidtube/vidtube/internal/service/dashboard"
	"github.com/vidtube/vidtube/internal/service/media"
	"github.com/vidtube/vidtube/internal/service/user"
	"github.com/vidtube/vidtube/internal/service/video"
)

type RouterConfig struct {
	// Origin allowed to call the API from a browser
	CORSOrigin string

	// Requests per minute per client IP. The auth limit applies to the
	// credential endpoints only. Zero disables the limiter
	RateLimitRPM     int
	AuthRateLimitRPM int
}

type Services struct {
	Auth         authService
	User         userService
	Video        videoService
	Comment      commentService
	Like         likeService
	Subscription subscriptionService
	Dashboard    dashboardService
}

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(cfg RouterConfig, s Services, logger logger.Logger) http.Handler {
	authMiddleware := middleware.AuthMiddleware(s.Auth)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimitRPM)
	withAuthLimit := func(h http.Handler) http.Handler {
		return authLimiter.Middleware(h)
	}

	users := http.NewServeMux()
	users.Handle("POST /register", withAuthLimit(handleRegister(s.User, logger)))
	users.Handle("POST /login", withAuthLimit(handleLogin(s.Auth, logger)))
	users.Handle("POST /logout", withAuth(handleLogout(s.Auth, logger)))
	users.Handle("POST /refresh-token", withAuthLimit(handleTokenRefresh(s.Auth, logger)))
	users.Handle("POST /change-password", withAuth(handleChangePassword(s.Auth, logger)))
	users.Handle("GET /current-user", withAuth(handleCurrentUser()))
	users.Handle("PATCH /update-account", withAuth(handleUpdateAccount(s.User, logger)))
	users.Handle("PATCH /avatar", withAuth(handleUpdateAvatar(s.User, logger)))
	users.Handle("PATCH /cover-image", withAuth(handleUpdateCoverImage(s.User, logger)))

	videos := http.NewServeMux()
	videos.Handle("POST /", withAuth(handlePublishVideo(s.Video, logger)))
	videos.Handle("GET /", handleListVideos(s.Video, logger))
	videos.Handle("GET /{videoId}", handleGetVideo(s.Video, s.Auth, logger))
	videos.Handle("PATCH /{videoId}", withAuth(handleUpdateVideo(s.Video, logger)))
	videos.Handle("DELETE /{videoId}", withAuth(handleDeleteVideo(s.Video, logger)))
	videos.Handle("PATCH /toggle/publish/{videoId}", withAuth(handleTogglePublish(s.Video, logger)))

	comments := http.NewServeMux()
	comments.Handle("GET /{videoId}", handleListComments(s.Comment, logger))

	likes := http.NewServeMux()
	likes.Handle("POST /video/{videoId}", withAuth(handleToggleVideoLike(s.Like, logger)))

	subscriptions := http.NewServeMux()
	subscriptions.Handle("POST /{channelId}", withAuth(handleToggleSubscription(s.Subscription, logger)))
	subscriptions.Handle("GET /{channelId}/subscribers", handleCountSubscribers(s.Subscription, logger))

	dash := http.NewServeMux()
	dash.Handle("GET /stats", withAuth(handleChannelStats(s.Dashboard, logger)))
	dash.Handle("GET /videos", withAuth(handleChannelVideos(s.Dashboard, logger)))

	root := http.NewServeMux()
	root.Handle("/api/v1/users/", http.StripPrefix("/api/v1/users", users))
	root.Handle("/api/v1/videos/", http.StripPrefix("/api/v1/videos", videos))
	root.Handle("/api/v1/comments/", http.StripPrefix("/api/v1/comments", comments))
	root.Handle("/api/v1/likes/", http.StripPrefix("/api/v1/likes", likes))
	root.Handle("/api/v1/subscriptions/", http.StripPrefix("/api/v1/subscriptions", subscriptions))
	root.Handle("/api/v1/dashboard/", http.StripPrefix("/api/v1/dashboard", dash))
	root.Handle("GET /healthz", handleHealthcheck())

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
		middleware.CORSMiddleware(cfg.CORSOrigin),
		middleware.NewRateLimiter(cfg.RateLimitRPM).Middleware,
	)

	return handler
}

func handleHealthcheck() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
	})
}

type authService interface {
	// Login user with username or email plus password
	// Has to return apperrors.ErrUserNotFound or apperrors.ErrInvalidCredentials
	Login(ctx context.Context, usernameOrEmail string, password string) (models.User, models.TokenPair, error)

	// Refresh tokens using refresh token
	// Token errors are apperrors.ErrToken* or apperrors.ErrUnauthorized
	RefreshPair(ctx context.Context, refresh string) (models.TokenPair, error)

	// Drop the stored refresh token
	Logout(ctx context.Context, userID uuid.UUID) error

	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword string, newPassword string) error

	// Cookie plumbing
	SetTokenPairToResponse(w http.ResponseWriter, pair models.TokenPair)
	ClearTokensFromResponse(w http.ResponseWriter)
	GetRefreshString(r *http.Request) string

	// Get request and return user if it authenticated or error
	GetUserFromRequest(ctx context.Context, r *http.Request) (models.User, error)
}

type userService interface {
	Register(ctx context.Context, arg user.RegisterParams) (models.User, error)
	UpdateAccount(ctx context.Context, userID uuid.UUID, fullName string, email string) (models.User, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, upload media.Upload) (models.User, error)
	UpdateCoverImage(ctx context.Context, userID uuid.UUID, upload media.Upload) (models.User, error)
}

type videoService interface {
	Publish(ctx context.Context, arg video.PublishParams) (models.Video, error)
	List(ctx context.Context, opts repository.ListVideosOpts) ([]models.Video, models.Pagination, error)
	Get(ctx context.Context, videoID uuid.UUID, viewerID *uuid.UUID) (models.Video, error)
	Update(ctx context.Context, userID uuid.UUID, videoID uuid.UUID, arg video.UpdateParams) (models.Video, error)
	Delete(ctx context.Context, userID uuid.UUID, videoID uuid.UUID) error
	TogglePublish(ctx context.Context, userID uuid.UUID, videoID uuid.UUID) (models.Video, error)
}

type commentService interface {
	ListByVideo(ctx context.Context, videoID uuid.UUID, page int, limit int) ([]models.CommentWithOwner, models.Pagination, error)
}

type likeService interface {
	ToggleVideoLike(ctx context.Context, userID uuid.UUID, videoID uuid.UUID) (bool, error)
}

type subscriptionService interface {
	Toggle(ctx context.Context, subscriberID uuid.UUID, channelID uuid.UUID) (bool, error)
	CountSubscribers(ctx context.Context, channelID uuid.UUID) (int64, error)
}

type dashboardService interface {
	Stats(ctx context.Context, channelID uuid.UUID) (models.ChannelStats, error)
	Videos(ctx context.Context, channelID uuid.UUID, arg dashboard.VideosParams) ([]models.VideoWithLikes, models.Pagination, error)
}
