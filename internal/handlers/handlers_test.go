package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

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
	"github.com/vidtube/vidtube/internal/testutil"
)

// fakeMedia keeps uploads in memory, good enough to stand in for S3
type fakeMedia struct {
	mu          sync.Mutex
	objects     map[string][]byte
	counter     int
	failUploads bool
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{objects: make(map[string][]byte)}
}

// failNextUploads makes every following Upload call error out
func (f *fakeMedia) failNextUploads() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failUploads = true
}

func (f *fakeMedia) Upload(_ context.Context, r media.Upload) (media.Asset, error) {
	f.mu.Lock()
	failing := f.failUploads
	f.mu.Unlock()
	if failing {
		return media.Asset{}, errors.New("storage unavailable")
	}

	data, err := io.ReadAll(r.Reader)
	if err != nil {
		return media.Asset{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.counter++
	key := fmt.Sprintf("media/test/%d", f.counter)
	f.objects[key] = data

	return media.Asset{Key: key, URL: "https://cdn.test/vidtube/" + key}, nil
}

func (f *fakeMedia) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.objects, key)
	return nil
}

func (f *fakeMedia) KeyFromURL(url string) string {
	return strings.TrimPrefix(url, "https://cdn.test/vidtube/")
}

type testEnv struct {
	Auth  *auth.AuthService
	Media *fakeMedia
}

// withServices builds the production service graph over a rolled back
// transaction. Handlers are exercised through the real router
func withServices(dbpool *pgxpool.Pool, t *testing.T, fn func(mux http.Handler, env testEnv)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)
		mediaStorage := newFakeMedia()
		log := logger.NewNoOpLogger()

		tokenManager, err := tokenmanager.New(tokenmanager.Config{
			AccessSecret:  "test-access-secret",
			RefreshSecret: "test-refresh-secret",
		})
		require.NoError(t, err, "token manager should be created without errors")

		authService, err := auth.NewService(auth.Config{}, tokenManager, storage.User())
		require.NoError(t, err, "auth service starting error")

		mux := NewRouter(
			RouterConfig{CORSOrigin: "http://localhost:5173"},
			Services{
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

		fn(mux, testEnv{Auth: authService, Media: mediaStorage})
	})
}

// multipartBody builds a multipart form from text fields and files
func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for name, value := range fields {
		require.NoError(t, w.WriteField(name, value))
	}
	for name, data := range files {
		fw, err := w.CreateFormFile(name, name+".bin")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func registerForm(username string, email string) (map[string]string, map[string][]byte) {
	fields := map[string]string{
		"username": username,
		"email":    email,
		"fullName": "Some User",
		"password": "StrongEnoughPassword",
	}
	files := map[string][]byte{
		"avatar": []byte("avatar-bytes"),
	}
	return fields, files
}
