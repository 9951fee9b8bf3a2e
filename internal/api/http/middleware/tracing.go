package middleware

import (
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/metaschema/registry/internal/logger"
	"github.com/metaschema/registry/internal/tracing"
)

// Tracing creates tracing middleware for HTTP requests
func Tracing() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract trace context from HTTP headers
			propagator := otel.GetTextMapPropagator()
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := otel.Tracer("metaregistry.http").Start(ctx, "HTTP "+r.Method+" "+route(r),
				trace.WithSpanKind(trace.SpanKindServer),
			)
			defer span.End()

			span.SetAttributes(
				attribute.String(tracing.AttrHTTPMethod, r.Method),
				attribute.String(tracing.AttrHTTPRoute, route(r)),
				attribute.String(tracing.AttrHTTPUserAgent, r.UserAgent()),
				attribute.String(tracing.AttrHTTPRequestID, logger.RequestID(r.Context())),
			)

			ww := wrap(w)
			next.ServeHTTP(ww, r.WithContext(ctx))

			span.SetAttributes(attribute.Int(tracing.AttrHTTPStatusCode, ww.statusCode))
			if ww.statusCode >= 500 {
				span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(ww.statusCode))
			} else {
				span.SetStatus(codes.Ok, "")
			}
		})
	}
}
