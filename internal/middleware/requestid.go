package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestID tags each request with a fresh ID and a request-scoped logger,
// and logs one access line per request.
func RequestID(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.NewString()
			reqLog := log.With().Str("request_id", id).Logger()

			w.Header().Set("X-Request-Id", id)
			reqLog.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")

			next.ServeHTTP(w, r.WithContext(reqLog.WithContext(r.Context())))
		})
	}
}
