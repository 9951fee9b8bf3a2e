package grpc

import (
	"context"
	"net"
	"sync"

	"github.com/metaschema/registry/internal/logger"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server represents a gRPC server exposing the standard health service
type Server struct {
	grpcServer *grpc.Server
	addr       string
	listener   net.Listener
	log        zerolog.Logger
	ready      bool
	mu         sync.RWMutex
	health     *HealthService
}

// NewServer creates a new gRPC server. ready reports whether the registry
// can serve requests.
func NewServer(addr string, ready func() bool) *Server {
	s := &Server{
		addr:   addr,
		log:    logger.WithComponent("grpc"),
		health: NewHealthService(ready),
	}

	s.grpcServer = grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			s.tracingInterceptor,
			s.recoveryInterceptor,
			s.loggingInterceptor,
		),
	)
	healthpb.RegisterHealthServer(s.grpcServer, s.health.Server())

	return s
}

// Start starts the gRPC server
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.log.Info().Str("addr", listener.Addr().String()).Msg("Starting gRPC server")

	go func() {
		if err := s.grpcServer.Serve(listener); err != nil {
			s.log.Error().Err(err).Msg("gRPC server error")
		}
	}()

	s.health.Refresh()
	s.ready = true
	return nil
}

// Stop gracefully stops the gRPC server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil
	}

	s.log.Info().Msg("Stopping gRPC server")
	s.health.Shutdown()

	// Graceful stop with context
	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
		// Context expired, force stop
		s.grpcServer.Stop()
		return ctx.Err()
	case <-stopped:
	}

	s.ready = false
	s.log.Info().Msg("gRPC server stopped")

	return nil
}

// Ready returns true if the server is ready
func (s *Server) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Addr returns the bound address once started, or the configured one
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// RefreshHealth re-evaluates readiness for the health service
func (s *Server) RefreshHealth() {
	s.health.Refresh()
}
