package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AdminTokenHeader is checked when no Authorization bearer token is sent.
const AdminTokenHeader = "X-Admin-Token"

// AdminTokenMiddleware requires the given token on every request.
// An empty token disables the check, for local single-player use.
func AdminTokenMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		want := []byte(token)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := requestToken(r)
			if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				RecordConnectionRejected("unauthorized")
				writeError(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return r.Header.Get(AdminTokenHeader)
}
