package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidtube/vidtube/internal/db"
	"github.com/vidtube/vidtube/internal/handlers"
	"github.com/vidtube/vidtube/internal/logger"
	"github.com/vidtube/vidtube/internal/repository/postgres"
	"github.com/vidtube/vidtube/internal/service/auth"
	"github.com/vidtube/vidtube/internal/service/auth/tokenmanager"
	"github.com/vidtube/vidtube/internal/service/comment"
	"github.com/vidtube/vidtube/internal/service/dashboard"
	"github.com/vidtube/vidtube/internal/service/like"
	"github.com/vidtube/vidtube/internal/service/media"
	"github.com/vidtube/vidtube/internal/service/subscription"
	"github.com/vidtube/vidtube/internal/service/user"
	"github.com/vidtube/vidtube/internal/service/video"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	log, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize media storage
	mediaStorage, err := media.NewStorage(ctx, media.Config{
		Region:        c.S3Region,
		Endpoint:      c.S3Endpoint,
		AccessKey:     c.S3AccessKey,
		SecretKey:     c.S3SecretKey,
		Bucket:        c.S3Bucket,
		PublicBaseURL: c.S3PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating media storage. Err: %w", err)
	}

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		AccessSecret:  c.AccessTokenSecret,
		RefreshSecret: c.RefreshTokenSecret,
		AccessTTL:     c.AccessTokenTTL,
		RefreshTTL:    c.RefreshTokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{Logger: log}, tokenManager, storage.User())
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	mux := handlers.NewRouter(
		handlers.RouterConfig{
			CORSOrigin:       c.CORSOrigin,
			RateLimitRPM:     c.RateLimitRPM,
			AuthRateLimitRPM: c.AuthRateLimitRPM,
		},
		handlers.Services{
			Auth:         authService,
			User:         user.NewService(nil, storage.User(), mediaStorage, log),
			Video:        video.NewService(storage, mediaStorage, log),
			Comment:      comment.NewService(storage.Comment(), storage.Video()),
			Like:         like.NewService(storage.Like()),
			Subscription: subscription.NewService(storage.Subscription()),
			Dashboard:    dashboard.NewService(storage.Video()),
		},
		log,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		pool:       pool,
		logger:     log,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	// In-flight requests are done, the db pool can go too
	s.pool.Close()

	return err
}
