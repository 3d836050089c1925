package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKey enforces a static x-api-key header. An empty expected key disables
// the check, matching the permissive development default.
func APIKey(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expected != "" {
				got := r.Header.Get("X-API-Key")
				if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
					http.Error(w, "invalid API key", http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
