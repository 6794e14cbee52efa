package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/Rol3ert99/CookbookAPP-backend/internal/logger"
)

// Server represents the HTTP server
type Server struct {
	http    *http.Server
	log     *logger.Logger
	closers []func() error
}

// New creates a server listening on host:port
func New(host, port string, handler http.Handler, log *logger.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:    net.JoinHostPort(host, port),
			Handler: handler,
		},
		log: log,
	}
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.http.Addr
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// OnShutdown registers fn to run after the HTTP server has stopped
func (s *Server) OnShutdown(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Start serves until Shutdown is called. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	s.log.Info("starting server", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx
// expires and then releases registered resources.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	for i := len(s.closers) - 1; i >= 0; i-- {
		if cerr := s.closers[i](); cerr != nil {
			s.log.Warn("failed to release resource on shutdown", "error", cerr)
		}
	}
	s.closers = nil
	return err
}
