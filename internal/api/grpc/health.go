package grpc

import (
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health-checked service name besides the server-wide ""
const ServiceName = "metaregistry.v1.Registry"

// HealthService reports registry readiness through grpc.health.v1
type HealthService struct {
	server *health.Server
	ready  func() bool
}

// NewHealthService creates a health service that starts NOT_SERVING
func NewHealthService(ready func() bool) *HealthService {
	h := &HealthService{
		server: health.NewServer(),
		ready:  ready,
	}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Server returns the underlying grpc health server
func (h *HealthService) Server() *health.Server {
	return h.server
}

// Refresh re-evaluates readiness and updates the serving status
func (h *HealthService) Refresh() {
	h.server.Resume()
	if h.ready != nil && h.ready() {
		h.set(healthpb.HealthCheckResponse_SERVING)
		return
	}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
}

// Shutdown marks every service NOT_SERVING
func (h *HealthService) Shutdown() {
	h.server.Shutdown()
}

func (h *HealthService) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
}
