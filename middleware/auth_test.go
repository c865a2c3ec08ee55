package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler(called *bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}
}

func TestSecretAuthMiddleware_WithAuth(t *testing.T) {
	t.Run("matching secret passes through", func(t *testing.T) {
		called := false
		handler := NewSecretAuthMiddleware("top-secret").WithAuth(okHandler(&called))

		req := httptest.NewRequest("POST", "/api/sync/all", nil)
		req.Header.Set("X-Sync-Secret", "top-secret")
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		called := false
		handler := NewSecretAuthMiddleware("top-secret").WithAuth(okHandler(&called))

		req := httptest.NewRequest("POST", "/api/sync/all", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})

	t.Run("wrong secret is unauthorized", func(t *testing.T) {
		called := false
		handler := NewSecretAuthMiddleware("top-secret").WithAuth(okHandler(&called))

		req := httptest.NewRequest("POST", "/api/sync/all", nil)
		req.Header.Set("X-Sync-Secret", "guess")
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})

	t.Run("unconfigured secret denies even a matching empty header", func(t *testing.T) {
		called := false
		handler := NewSecretAuthMiddleware("").WithAuth(okHandler(&called))

		req := httptest.NewRequest("POST", "/api/sync/all", nil)
		req.Header.Set("X-Sync-Secret", "")
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})

	t.Run("testing mode skips validation", func(t *testing.T) {
		t.Setenv("TESTING_MODE", "true")

		called := false
		handler := NewSecretAuthMiddleware("top-secret").WithAuth(okHandler(&called))

		req := httptest.NewRequest("POST", "/api/sync/all", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	})
}
