package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/metaschema/registry/internal/logger"
	"github.com/rs/zerolog"
)

// Server is a standalone HTTP listener exposing /metrics
type Server struct {
	httpServer *http.Server
	addr       string
	path       string
	collector  *Collector
	log        zerolog.Logger
	ready      bool
	mu         sync.RWMutex
}

// NewServer creates a metrics server for the collector. An empty path
// defaults to /metrics.
func NewServer(addr, path string, collector *Collector) *Server {
	if path == "" {
		path = "/metrics"
	}
	return &Server{
		addr:      addr,
		path:      path,
		collector: collector,
		log:       logger.WithComponent("metrics.server"),
	}
}

// Start binds the listener and serves in the background
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(s.path, s.collector.Handler())

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("Metrics server error")
		}
	}()

	s.ready = true
	s.log.Info().Str("addr", ln.Addr().String()).Str("path", s.path).Msg("Metrics server started")

	return nil
}

// Stop gracefully stops the metrics server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		//nolint:errcheck // Ignore close error if shutdown failed
		_ = s.httpServer.Close()
		return err
	}

	s.ready = false
	s.log.Info().Msg("Metrics server stopped")

	return nil
}

// Ready returns true if the server is serving
func (s *Server) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}
