package http

import (
	"net/http"

	"github.com/metaschema/registry/internal/api/http/handlers"
	"github.com/metaschema/registry/internal/api/http/middleware"
	"github.com/metaschema/registry/internal/logger"
	"github.com/metaschema/registry/internal/metrics"
)

// Router manages HTTP routes and middleware
type Router struct {
	mux      *http.ServeMux
	handlers *handlers.Handlers
	metrics  *metrics.RegistryMetrics
	ready    func() bool
}

// NewRouter creates a new router. ready reports readiness for /ready.
func NewRouter(h *handlers.Handlers, m *metrics.RegistryMetrics, ready func() bool) *Router {
	r := &Router{
		mux:      http.NewServeMux(),
		handlers: h,
		metrics:  m,
		ready:    ready,
	}

	r.setupRoutes()

	return r
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// setupRoutes sets up all HTTP routes
func (r *Router) setupRoutes() {
	log := logger.WithComponent("http.middleware")
	chain := middleware.Chain(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(),
		middleware.Metrics(r.metrics),
		middleware.Logging(log),
	)
	handle := func(pattern string, h http.HandlerFunc) {
		r.mux.Handle(pattern, chain(h))
	}
	h := r.handlers

	// Health check endpoints
	handle("GET /health", handlers.HealthCheck)
	handle("GET /ready", handlers.ReadinessCheck(r.ready))

	// Schema catalog
	handle("POST /api/v1/schemas", h.RegisterSchema)
	handle("GET /api/v1/schemas", h.ListSchemas)
	handle("POST /api/v1/schemas/validate", h.ValidateSchema)
	handle("GET /api/v1/schemas/{id}", h.GetSchema)
	handle("PATCH /api/v1/schemas/{id}", h.UpdateSchema)
	handle("DELETE /api/v1/schemas/{id}", h.DeleteSchema)
	handle("GET /api/v1/schemas/{id}/dependents", h.Dependents)

	// Records
	handle("POST /api/v1/schemas/{id}/records/validate", h.ValidateRecord)
	handle("POST /api/v1/schemas/{id}/records/defaults", h.ApplyDefaults)

	// Projections
	handle("GET /api/v1/schemas/{id}/render", h.RenderSchema)
	handle("GET /api/v1/schemas/{id}/docs", h.RenderDocumentation)
	handle("GET /api/v1/schemas/{id}/code", h.GenerateImplementation)
	handle("GET /api/v1/schemas/{id}/validation-code", h.GenerateValidation)

	// Designer
	handle("POST /api/v1/designs", h.DesignSchema)

	// Encoding schemes
	handle("POST /api/v1/encoding-schemes", h.RegisterEncodingScheme)
	handle("GET /api/v1/encoding-schemes", h.ListEncodingSchemes)
	handle("GET /api/v1/encoding-schemes/{id}", h.GetEncodingScheme)
	handle("DELETE /api/v1/encoding-schemes/{id}", h.DeleteEncodingScheme)

	// Controlled vocabularies
	handle("POST /api/v1/vocabularies", h.RegisterVocabulary)
	handle("GET /api/v1/vocabularies", h.ListVocabularies)
	handle("GET /api/v1/vocabularies/{id}", h.GetVocabulary)
	handle("DELETE /api/v1/vocabularies/{id}", h.DeleteVocabulary)
}
