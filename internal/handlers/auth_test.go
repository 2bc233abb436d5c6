package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vidtube/vidtube/internal/testutil"
)

func Test_AuthEndpoints(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	register := func(t *testing.T, srvURL string, username string, email string) {
		t.Helper()

		fields, files := registerForm(username, email)
		body, contentType := multipartBody(t, fields, files)

		resp, err := http.Post(srvURL+"/api/v1/users/register", contentType, body)
		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck

		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", string(data))
	}

	login := func(t *testing.T, srvURL string, username string, password string) *http.Response {
		t.Helper()

		data := `{"username": "` + username + `", "password": "` + password + `"}`
		resp, err := http.Post(srvURL+"/api/v1/users/login", "application/json", strings.NewReader(data))
		require.NoError(t, err)
		return resp
	}

	t.Run("register ok", func(t *testing.T) {
		withServices(pg.Pool, t, func(mux http.Handler, env testEnv) {
			srv := httptest.NewServer(mux)
			defer srv.Close()

			fields, files := registerForm("nk", "nk@example.com")
			files["coverImage"] = []byte("cover-bytes")
			body, contentType := multipartBody(t, fields, files)

			resp, err := http.Post(srv.URL+"/api/v1/users/register", contentType, body)
			require.NoError(t, err)
			data, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer resp.Body.Close() // nolint:errcheck

			require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", string(data))

			var parsed struct {
				User struct {
					Username   string `json:"username"`
					Email      string `json:"email"`
					Avatar     string `json:"avatar"`
					CoverImage string `json:"coverImage"`
				} `json:"user"`
			}
			require.NoError(t, json.Unmarshal(data, &parsed))
			require.Equal(t, "nk", parsed.User.Username)
			require.Equal(t, "nk@example.com", parsed.User.Email)
			require.NotEmpty(t, parsed.User.Avatar, "avatar should be uploaded and linked")
			require.NotEmpty(t, parsed.User.CoverImage, "cover should be uploaded and linked")
			require.NotContains(t, string(data), "password", "no secret fields in response")
		})
	})

	t.Run("register without avatar fails", func(t *testing.T) {
		withServices(pg.Pool, t, func(mux http.Handler, env testEnv) {
			srv := httptest.NewServer(mux)
			defer srv.Close()

			fields, _ := registerForm("nk", "nk@example.com")
			body, contentType := multipartBody(t, fields, nil)

			resp, err := http.Post(srv.URL+"/api/v1/users/register", contentType, body)
			require.NoError(t, err)
			defer resp.Body.Close() // nolint:errcheck

			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	})

	t.Run("register when media storage is down", func(t *testing.T) {
		withServices(pg.Pool, t, func(mux http.Handler, env testEnv) {
			srv := httptest.NewServer(mux)
			defer srv.Close()

			env.Media.failNextUploads()

			fields, files := registerForm("nk", "nk@example.com")
			body, contentType := multipartBody(t, fields, files)

			resp, err := http.Post(srv.URL+"/api/v1/users/register", contentType, body)
			require.NoError(t, err)
			defer resp.Body.Close() // nolint:errcheck

			require.Equal(t, http.StatusBadGateway, resp.StatusCode, "upload failure is the upstream's fault")
		})
	})

	t.Run("register duplicate", func(t *testing.T) {
		withServices(pg.Pool, t, func(mux http.Handler, env testEnv) {
			srv := httptest.NewServer(mux)
			defer srv.Close()

			register(t, srv.URL, "nk", "nk@example.com")

			fields, files := registerForm("nk", "other@example.com")
			body, contentType := multipartBody(t, fields, files)

			resp, err := http.Post(srv.URL+"/api/v1/users/register", contentType, body)
			require.NoError(t, err)
			defer resp.Body.Close() // nolint:errcheck

			require.Equal(t, http.StatusConflict, resp.StatusCode)
		})
	})

	t.Run("login ok", func(t *testing.T) {
		withServices(pg.Pool, t, func(mux http.Handler, env testEnv) {
			srv := httptest.NewServer(mux)
			defer srv.Close()

			register(t, srv.URL, "nk", "nk@example.com")

			resp := login(t, srv.URL, "nk", "StrongEnoughPassword")
			data, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer resp.Body.Close() // nolint:errcheck

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", string(data))

			var parsed struct {
				User struct {
					Username string `json:"username"`
				} `json:"user"`
				AccessToken  string `json:"accessToken"`
				RefreshToken string `json:"refreshToken"`
			}
			require.NoError(t, json.Unmarshal(data, &parsed))
			require.Equal(t, "nk", parsed.User.Username)
			require.NotEmpty(t, parsed.AccessToken)
			require.NotEmpty(t, parsed.RefreshToken)

			cookies := resp.Cookies()
			require.Len(t, cookies, 2, "access and refresh cookies expected")
			for _, c := range cookies {
				require.True(t, c.HttpOnly, "auth cookies should be HttpOnly")
				require.Equal(t, "/", c.Path)
				require.Equal(t, http.SameSiteStrictMode, c.SameSite)
				require.NotEmpty(t, c.Value)
			}
		})
	})

	t.Run("login with email", func(t *testing.T) {
		withServices(pg.Pool, t, func(mux http.Handler, env testEnv) {
			srv := httptest.NewServer(mux)
			defer srv.Close()

			register(t, srv.URL, "nk", "nk@example.com")

			data := `{"email": "nk@example.com", "password": "StrongEnoughPassword"}`
			resp, err := http.Post(srv.URL+"/api/v1/users/login", "application/json", strings.NewReader(data))
			require.NoError(t, err)
			defer resp.Body.Close() // nolint:errcheck

			require.Equal(t, http.StatusOK, resp.StatusCode)
		})
	})

	t.Run("login unknown user", func(t *testing.T) {
		withServices(pg.Pool, t, func(mux http.Handler, env testEnv) {
			srv := httptest.NewServer(mux)
			defer srv.Close()

			resp := login(t, srv.URL, "nobody", "StrongEnoughPassword")
			defer resp.Body.Close() // nolint:errcheck

			require.Equal(t, http.StatusNotFound, resp.StatusCode)
			require.Empty(t, resp.Cookies(), "no cookies should be set on login error")
		})
	})

	t.Run("login wrong password", func(t *testing.T) {
		withServices(pg.Pool, t, func(mux http.Handler, env testEnv) {
			srv := httptest.NewServer(mux)
			defer srv.Close()

			register(t, srv.URL, "nk", "nk@example.com")

			resp := login(t, srv.URL, "nk", "WrongPassword")
			defer resp.Body.Close() // nolint:errcheck

			require.Equal(t, http.StatusNotFound, resp.StatusCode)
		})
	})

	t.Run("refresh rotates and detects reuse", func(t *testing.T) {
		withServices(pg.Pool, t, func(mux http.Handler, env testEnv) {
			srv := httptest.NewServer(mux)
			defer srv.Close()

			register(t, srv.URL, "nk", "nk@example.com")
			loginResp := login(t, srv.URL, "nk", "StrongEnoughPassword")
			defer loginResp.Body.Close() // nolint:errcheck
			require.Equal(t, http.StatusOK, loginResp.StatusCode)

			refresh := func(cookies []*http.Cookie) *http.Response {
				req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/users/refresh-token", nil)
				require.NoError(t, err)
				for _, c := range cookies {
					req.AddCookie(c)
				}

				resp, err := http.DefaultClient.Do(req)
				require.NoError(t, err)
				return resp
			}

			first := refresh(loginResp.Cookies())
			body, err := io.ReadAll(first.Body)
			require.NoError(t, err)
			defer first.Body.Close() // nolint:errcheck
			require.Equalf(t, http.StatusOK, first.StatusCode, "not expected code. Body: %s", string(body))

			var parsed struct {
				AccessToken  string `json:"accessToken"`
				RefreshToken string `json:"refreshToken"`
			}
			require.NoError(t, json.Unmarshal(body, &parsed))
			require.NotEmpty(t, parsed.AccessToken)
			require.NotEmpty(t, parsed.RefreshToken)

			// The token from login was rotated away, replaying it must fail
			second := refresh(loginResp.Cookies())
			defer second.Body.Close() // nolint:errcheck
			require.Equal(t, http.StatusUnauthorized, second.StatusCode, "reused refresh token must be rejected")

			// The fresh one still works
			third := refresh(first.Cookies())
			defer third.Body.Close() // nolint:errcheck
			require.Equal(t, http.StatusOK, third.StatusCode)
		})
	})

	t.Run("refresh with token in body", func(t *testing.T) {
		withServices(pg.Pool, t, func(mux http.Handler, env testEnv) {
			srv := httptest.NewServer(mux)
			defer srv.Close()

			register(t, srv.URL, "nk", "nk@example.com")
			loginResp := login(t, srv.URL, "nk", "StrongEnoughPassword")
			data, err := io.ReadAll(loginResp.Body)
			require.NoError(t, err)
			defer loginResp.Body.Close() // nolint:errcheck

			var loggedIn struct {
				RefreshToken string `json:"refreshToken"`
			}
			require.NoError(t, json.Unmarshal(data, &loggedIn))

			// No cookies at all, the token travels in the JSON body
			body := `{"refreshToken": "` + loggedIn.RefreshToken + `"}`
			resp, err := http.Post(srv.URL+"/api/v1/users/refresh-token", "application/json", strings.NewReader(body))
			require.NoError(t, err)
			refreshed, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer resp.Body.Close() // nolint:errcheck

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", string(refreshed))

			var parsed struct {
				AccessToken  string `json:"accessToken"`
				RefreshToken string `json:"refreshToken"`
			}
			require.NoError(t, json.Unmarshal(refreshed, &parsed))
			require.NotEmpty(t, parsed.AccessToken)
			require.NotEmpty(t, parsed.RefreshToken)
			require.NotEqual(t, loggedIn.RefreshToken, parsed.RefreshToken, "token must rotate")
		})
	})

	t.Run("refresh without token", func(t *testing.T) {
		withServices(pg.Pool, t, func(mux http.Handler, env testEnv) {
			srv := httptest.NewServer(mux)
			defer srv.Close()

			resp, err := http.Post(srv.URL+"/api/v1/users/refresh-token", "application/json", nil)
			require.NoError(t, err)
			defer resp.Body.Close() // nolint:errcheck

			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	})

	t.Run("logout clears the session", func(t *testing.T) {
		withServices(pg.Pool, t, func(mux http.Handler, env testEnv) {
			srv := httptest.NewServer(mux)
			defer srv.Close()

			register(t, srv.URL, "nk", "nk@example.com")
			loginResp := login(t, srv.URL, "nk", "StrongEnoughPassword")
			defer loginResp.Body.Close() // nolint:errcheck

			req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/users/logout", nil)
			require.NoError(t, err)
			for _, c := range loginResp.Cookies() {
				req.AddCookie(c)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close() // nolint:errcheck
			require.Equal(t, http.StatusOK, resp.StatusCode)

			for _, c := range resp.Cookies() {
				require.Empty(t, c.Value, "logout must clear auth cookies")
				require.Negative(t, c.MaxAge)
			}

			// Refresh with the old cookie must fail now
			req, err = http.NewRequest(http.MethodPost, srv.URL+"/api/v1/users/refresh-token", nil)
			require.NoError(t, err)
			for _, c := range loginResp.Cookies() {
				req.AddCookie(c)
			}

			refreshResp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer refreshResp.Body.Close() // nolint:errcheck
			require.Equal(t, http.StatusUnauthorized, refreshResp.StatusCode)
		})
	})

	t.Run("change password", func(t *testing.T) {
		withServices(pg.Pool, t, func(mux http.Handler, env testEnv) {
			srv := httptest.NewServer(mux)
			defer srv.Close()

			register(t, srv.URL, "nk", "nk@example.com")
			loginResp := login(t, srv.URL, "nk", "StrongEnoughPassword")
			defer loginResp.Body.Close() // nolint:errcheck

			change := func(body string) *http.Response {
				req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/users/change-password", strings.NewReader(body))
				require.NoError(t, err)
				req.Header.Set("Content-Type", "application/json")
				for _, c := range loginResp.Cookies() {
					req.AddCookie(c)
				}

				resp, err := http.DefaultClient.Do(req)
				require.NoError(t, err)
				return resp
			}

			// Wrong old password first
			resp := change(`{"oldPassword": "WrongPassword", "newPassword": "EvenStrongerPassword"}`)
			defer resp.Body.Close() // nolint:errcheck
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			resp = change(`{"oldPassword": "StrongEnoughPassword", "newPassword": "EvenStrongerPassword"}`)
			defer resp.Body.Close() // nolint:errcheck
			require.Equal(t, http.StatusOK, resp.StatusCode)

			failed := login(t, srv.URL, "nk", "StrongEnoughPassword")
			defer failed.Body.Close() // nolint:errcheck
			require.Equal(t, http.StatusNotFound, failed.StatusCode, "old password should stop working")

			ok := login(t, srv.URL, "nk", "EvenStrongerPassword")
			defer ok.Body.Close() // nolint:errcheck
			require.Equal(t, http.StatusOK, ok.StatusCode)
		})
	})

	t.Run("current user", func(t *testing.T) {
		withServices(pg.Pool, t, func(mux http.Handler, env testEnv) {
			srv := httptest.NewServer(mux)
			defer srv.Close()

			register(t, srv.URL, "nk", "nk@example.com")
			loginResp := login(t, srv.URL, "nk", "StrongEnoughPassword")
			defer loginResp.Body.Close() // nolint:errcheck

			var parsed struct {
				AccessToken string `json:"accessToken"`
			}
			data, err := io.ReadAll(loginResp.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(data, &parsed))

			// Bearer header works as well as cookies
			req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/users/current-user", nil)
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+parsed.AccessToken)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer resp.Body.Close() // nolint:errcheck

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", string(body))
			require.Contains(t, string(body), `"username":"nk"`)
		})
	})

	t.Run("protected route without token", func(t *testing.T) {
		withServices(pg.Pool, t, func(mux http.Handler, env testEnv) {
			srv := httptest.NewServer(mux)
			defer srv.Close()

			resp, err := http.Get(srv.URL + "/api/v1/users/current-user")
			require.NoError(t, err)
			defer resp.Body.Close() // nolint:errcheck

			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	})
}
