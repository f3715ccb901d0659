package middleware

import "net/http"

// CacheControl sets the Cache-Control header on every response. An empty
// policy leaves responses untouched.
func CacheControl(policy string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if policy == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", policy)
			next.ServeHTTP(w, r)
		})
	}
}
