package middleware

import (
	"net/http"
	"time"

	"github.com/metaschema/registry/internal/logger"
	"github.com/rs/zerolog"
)

// Logging logs HTTP requests and responses. The request-scoped logger
// carrying the request ID is stored in the context for handlers.
func Logging(log zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := logger.FromContext(r.Context(), log)
			r = r.WithContext(reqLog.WithContext(r.Context()))

			ww := wrap(w)
			next.ServeHTTP(ww, r)

			event := reqLog.Info()
			if ww.statusCode >= http.StatusInternalServerError {
				event = reqLog.Error()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", route(r)).
				Str("remote_addr", r.RemoteAddr).
				Int("status", ww.statusCode).
				Dur("duration", time.Since(start)).
				Msg("HTTP request")
		})
	}
}
