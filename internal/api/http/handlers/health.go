package handlers

import (
	"net/http"

	"github.com/metaschema/registry/internal/version"
)

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// HealthCheck handles health check requests
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: version.Get().Version,
	})
}

// ReadinessCheck returns a handler reporting whether ready() holds
func ReadinessCheck(ready func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready == nil || !ready() {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "not ready"})
			return
		}
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
	}
}
