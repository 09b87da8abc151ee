package middleware

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// AllowMethods answers 405 with an Allow header for any method not listed.
// It runs before authentication so a wrong verb is reported as such.
func AllowMethods(methods ...string) func(http.Handler) http.Handler {
	allow := strings.Join(methods, ", ")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(methods, r.Method) {
				w.Header().Set("Allow", allow)
				writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s Not Allowed", r.Method))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
