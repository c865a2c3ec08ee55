package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"
	"os"
)

// SecretAuthMiddleware guards the sync and token endpoints with a shared
// secret carried in the X-Sync-Secret header
type SecretAuthMiddleware struct {
	syncSecret string
}

// NewSecretAuthMiddleware creates a new authentication middleware instance
func NewSecretAuthMiddleware(syncSecret string) *SecretAuthMiddleware {
	return &SecretAuthMiddleware{
		syncSecret: syncSecret,
	}
}

// WithAuth wraps an HTTP handler with shared-secret authentication
func (m *SecretAuthMiddleware) WithAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Check if we're in testing mode
		if os.Getenv("TESTING_MODE") == "true" {
			log.Printf("🧪 Testing mode enabled - skipping secret validation")
			next(w, r)
			return
		}

		// an unset secret denies everything rather than opening the door
		if m.syncSecret == "" {
			log.Printf("❌ Sync secret not configured, rejecting request from %s", r.RemoteAddr)
			m.writeErrorResponse(w, "endpoint not available", http.StatusUnauthorized)
			return
		}

		provided := r.Header.Get("X-Sync-Secret")
		if provided == "" {
			log.Printf("❌ Missing X-Sync-Secret header")
			m.writeErrorResponse(w, "missing sync secret", http.StatusUnauthorized)
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(m.syncSecret)) != 1 {
			log.Printf("❌ Invalid sync secret from %s", r.RemoteAddr)
			m.writeErrorResponse(w, "invalid sync secret", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}

// writeErrorResponse writes a standardized error response
func (m *SecretAuthMiddleware) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		log.Printf("❌ Failed to encode error response: %v", err)
	}
}
