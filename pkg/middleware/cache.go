package middleware

import (
	"fmt"
	"net/http"
)

// CacheControl returns middleware that marks GET and HEAD responses as
// publicly cacheable for maxAge seconds. Mutating methods pass through
// untouched.
func CacheControl(maxAge int) func(http.Handler) http.Handler {
	value := fmt.Sprintf("public, max-age=%d", maxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				w.Header().Set("Cache-Control", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
