package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/internal/testutil"
)

func Test_UserEndpoints(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("update account", func(t *testing.T) {
		withServices(pg.Pool, t, func(mux http.Handler, env testEnv) {
			srv := httptest.NewServer(mux)
			defer srv.Close()

			s := newSession(t, srv.URL, "nk", "nk@example.com")

			body := strings.NewReader(`{"fullName": "New Name", "email": "new@example.com"}`)
			resp := s.do(http.MethodPatch, "/api/v1/users/update-account", body, "application/json")
			defer resp.Body.Close() // nolint:errcheck
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var parsed struct {
				User models.PublicUser `json:"user"`
			}
			decodeBody(t, resp, &parsed)
			require.Equal(t, "New Name", parsed.User.FullName)
			require.Equal(t, "new@example.com", parsed.User.Email)
			require.Equal(t, "nk", parsed.User.Username, "username is not touched")
		})
	})

	t.Run("update account with invalid email", func(t *testing.T) {
		withServices(pg.Pool, t, func(mux http.Handler, env testEnv) {
			srv := httptest.NewServer(mux)
			defer srv.Close()

			s := newSession(t, srv.URL, "nk", "nk@example.com")

			body := strings.NewReader(`{"fullName": "New Name", "email": "not-an-email"}`)
			resp := s.do(http.MethodPatch, "/api/v1/users/update-account", body, "application/json")
			defer resp.Body.Close() // nolint:errcheck

			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	})

	t.Run("update account to taken email", func(t *testing.T) {
		withServices(pg.Pool, t, func(mux http.Handler, env testEnv) {
			srv := httptest.NewServer(mux)
			defer srv.Close()

			newSession(t, srv.URL, "first", "first@example.com")
			s := newSession(t, srv.URL, "second", "second@example.com")

			body := strings.NewReader(`{"fullName": "Second", "email": "first@example.com"}`)
			resp := s.do(http.MethodPatch, "/api/v1/users/update-account", body, "application/json")
			defer resp.Body.Close() // nolint:errcheck

			require.Equal(t, http.StatusConflict, resp.StatusCode)
		})
	})

	t.Run("update avatar replaces the old asset", func(t *testing.T) {
		withServices(pg.Pool, t, func(mux http.Handler, env testEnv) {
			srv := httptest.NewServer(mux)
			defer srv.Close()

			s := newSession(t, srv.URL, "nk", "nk@example.com")
			require.Len(t, env.Media.objects, 1, "registration stored the avatar")

			body, contentType := multipartBody(t, nil, map[string][]byte{"avatar": []byte("new-avatar")})
			resp := s.do(http.MethodPatch, "/api/v1/users/avatar", body, contentType)
			defer resp.Body.Close() // nolint:errcheck
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var parsed struct {
				User models.PublicUser `json:"user"`
			}
			decodeBody(t, resp, &parsed)
			require.NotEmpty(t, parsed.User.AvatarURL)
			require.Len(t, env.Media.objects, 1, "old avatar asset is deleted")
			require.Equal(t, []byte("new-avatar"), env.Media.objects[env.Media.KeyFromURL(parsed.User.AvatarURL)])
		})
	})

	t.Run("set cover image", func(t *testing.T) {
		withServices(pg.Pool, t, func(mux http.Handler, env testEnv) {
			srv := httptest.NewServer(mux)
			defer srv.Close()

			s := newSession(t, srv.URL, "nk", "nk@example.com")

			body, contentType := multipartBody(t, nil, map[string][]byte{"coverImage": []byte("cover")})
			resp := s.do(http.MethodPatch, "/api/v1/users/cover-image", body, contentType)
			defer resp.Body.Close() // nolint:errcheck
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var parsed struct {
				User models.PublicUser `json:"user"`
			}
			decodeBody(t, resp, &parsed)
			require.NotEmpty(t, parsed.User.CoverImageURL)
		})
	})

	t.Run("avatar update without file", func(t *testing.T) {
		withServices(pg.Pool, t, func(mux http.Handler, env testEnv) {
			srv := httptest.NewServer(mux)
			defer srv.Close()

			s := newSession(t, srv.URL, "nk", "nk@example.com")

			body, contentType := multipartBody(t, map[string]string{"unrelated": "field"}, nil)
			resp := s.do(http.MethodPatch, "/api/v1/users/avatar", body, contentType)
			defer resp.Body.Close() // nolint:errcheck

			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	})
}
