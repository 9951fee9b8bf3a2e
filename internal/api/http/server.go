package http

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

// Server represents an HTTP server
type Server struct {
	httpServer *http.Server
	addr       string
	listener   net.Listener
	log        zerolog.Logger
	ready      bool
	mu         sync.RWMutex
}

// NewServer creates a new HTTP server
func NewServer(addr string, handler http.Handler) *Server {
	return &Server{
		addr: addr,
		log:  logger.WithComponent("http"),
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start starts the HTTP server
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

	s.log.Info().Str("addr", listener.Addr().String()).Msg("Starting HTTP server")

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	s.ready = true
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil
	}

	s.log.Info().Msg("Stopping HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.httpServer.Close()
		return err
	}

	s.ready = false
	s.log.Info().Msg("HTTP server stopped")

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
