package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	t.Run("throttles after burst", func(t *testing.T) {
		h := NewRateLimiter(2).Middleware(okHandler())

		require.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:1111").Code)
		require.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:1111").Code)

		rec := doRequest(h, "10.0.0.1:1111")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	})

	t.Run("clients are limited independently", func(t *testing.T) {
		h := NewRateLimiter(1).Middleware(okHandler())

		require.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:1111").Code)
		require.Equal(t, http.StatusTooManyRequests, doRequest(h, "10.0.0.1:2222").Code, "same ip, different port")
		assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.2:1111").Code, "different ip gets its own bucket")
	})

	t.Run("disabled when rpm is zero", func(t *testing.T) {
		h := NewRateLimiter(0).Middleware(okHandler())

		for range 50 {
			require.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:1111").Code)
		}
	})
}
