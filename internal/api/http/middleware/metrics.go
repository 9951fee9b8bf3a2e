package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/metaschema/registry/internal/metrics"
)

// Metrics records request counts and latency by route pattern
func Metrics(m *metrics.RegistryMetrics) Middleware {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := wrap(w)
			next.ServeHTTP(ww, r)
			m.RecordAPIRequest(r.Method, route(r), strconv.Itoa(ww.statusCode), time.Since(start))
		})
	}
}
