// Package authmw provides HTTP middleware for bearer token authentication
// on the alert write boundary.
package authmw

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Bearer returns middleware that validates the Authorization header carries
// a Bearer token equal to the expected value. Comparison is constant-time.
// An empty expected token disables the check, so read-only deployments can
// leave the write boundary open.
func Bearer(token string) func(http.Handler) http.Handler {
	expected := []byte(token)
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")

			if !strings.HasPrefix(auth, "Bearer ") {
				deny(w, `{"error":"missing or malformed authorization header"}`)
				return
			}

			got := []byte(strings.TrimPrefix(auth, "Bearer "))

			if subtle.ConstantTimeCompare(got, expected) != 1 {
				deny(w, `{"error":"invalid token"}`)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(body))
}
