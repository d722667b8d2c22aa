package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/phrazzld/flashgen/internal/api/shared"
)

// RequireAPIKey rejects requests that do not carry key as a Bearer token.
// An empty key disables the check.
func RequireAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		want := []byte(key)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
				return
			}

			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
				return
			}

			if subtle.ConstantTimeCompare([]byte(token), want) != 1 {
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid API key", nil,
					shared.WithElevatedLogLevel())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
