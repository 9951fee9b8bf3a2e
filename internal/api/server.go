package api

import (
	"context"
	"sync"
	"sync/atomic"

	grpcapi "github.com/metaschema/registry/internal/api/grpc"
	httpapi "github.com/metaschema/registry/internal/api/http"
	"github.com/metaschema/registry/internal/api/http/handlers"
	"github.com/metaschema/registry/internal/designer"
	"github.com/metaschema/registry/internal/logger"
	"github.com/metaschema/registry/internal/metrics"
	"github.com/metaschema/registry/internal/projection"
	"github.com/metaschema/registry/internal/registry"
	"github.com/rs/zerolog"
)

// Server manages both gRPC and HTTP servers
type Server struct {
	registry   *registry.Registry
	grpcServer *grpcapi.Server
	httpServer *httpapi.Server
	log        zerolog.Logger
	ready      atomic.Bool
	mu         sync.Mutex
}

// Config holds configuration for the API server
type Config struct {
	GRPCAddr     string
	HTTPAddr     string
	MaxBodyBytes int64
}

// NewServer creates a new API server in front of reg. m may be nil.
func NewServer(cfg Config, reg *registry.Registry, m *metrics.RegistryMetrics) *Server {
	s := &Server{
		registry: reg,
		log:      logger.WithComponent("api"),
	}

	engine := projection.NewEngine(reg, projection.WithMetrics(m))
	h := handlers.New(reg, engine, designer.New(), cfg.MaxBodyBytes)

	s.grpcServer = grpcapi.NewServer(cfg.GRPCAddr, s.Ready)
	s.httpServer = httpapi.NewServer(cfg.HTTPAddr, httpapi.NewRouter(h, m, s.Ready))

	return s
}

// Start starts both gRPC and HTTP servers
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready.Load() {
		return nil
	}

	s.log.Info().Msg("Starting API server")

	if err := s.grpcServer.Start(ctx); err != nil {
		return err
	}

	if err := s.httpServer.Start(ctx); err != nil {
		// Stop gRPC server if HTTP fails
		_ = s.grpcServer.Stop(ctx)
		return err
	}

	s.ready.Store(true)
	s.grpcServer.RefreshHealth()

	stats := s.registry.Stats()
	s.log.Info().
		Str("http_addr", s.httpServer.Addr()).
		Str("grpc_addr", s.grpcServer.Addr()).
		Int("schemas", stats.Schemas).
		Int("encoding_schemes", stats.EncodingSchemes).
		Int("vocabularies", stats.ControlledVocabularies).
		Msg("API server started")

	return nil
}

// Stop gracefully stops both servers
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready.Load() {
		return nil
	}

	s.log.Info().Msg("Stopping API server")
	s.ready.Store(false)

	// Stop HTTP server first
	if err := s.httpServer.Stop(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Error stopping HTTP server")
	}

	if err := s.grpcServer.Stop(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Error stopping gRPC server")
	}

	s.log.Info().Msg("API server stopped")

	return nil
}

// Ready returns true once both listeners are serving
func (s *Server) Ready() bool {
	return s.ready.Load()
}

// HTTPAddr returns the bound HTTP address
func (s *Server) HTTPAddr() string {
	return s.httpServer.Addr()
}

// GRPCAddr returns the bound gRPC address
func (s *Server) GRPCAddr() string {
	return s.grpcServer.Addr()
}
