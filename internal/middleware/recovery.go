package middleware

import (
	"fmt"
	"net/http"

	"coursehub/internal/telemetry"

	"github.com/rs/zerolog"
)

// Recovery turns a panicking handler into a 500 and reports the panic.
func Recovery(logger zerolog.Logger, reporter telemetry.Reporter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					err := fmt.Errorf("panic: %v", p)
					logger.Error().
						Err(err).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("Panic recovered")
					reporter.Capture(r.Context(), err, map[string]string{"path": r.URL.Path})
					writeError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
