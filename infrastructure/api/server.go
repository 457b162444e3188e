package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Default HTTP server timeouts.
const (
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultReadTimeout       = 30 * time.Second
	DefaultWriteTimeout      = 60 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
)

// Server represents the HTTP API server.
type Server struct {
	router       chi.Router
	httpServer   *http.Server
	logger       *slog.Logger
	addr         string
	writeTimeout time.Duration
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithWriteTimeout sets the maximum duration before timing out writes of the
// response. Ingestion requests clone repositories, so this must exceed the
// request timeout.
func WithWriteTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// NewServer creates a new API Server.
func NewServer(addr string, logger *slog.Logger, opts ...ServerOption) Server {
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()

	// No Timeout here: /mcp streams. The catalog group sets its own.
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)

	s := Server{
		router:       router,
		addr:         addr,
		logger:       logger,
		writeTimeout: DefaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(&s)
	}
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		ReadTimeout:       DefaultReadTimeout,
		WriteTimeout:      s.writeTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}
	return s
}

// Router returns the chi router for registering routes.
func (s Server) Router() chi.Router {
	return s.router
}

// Start starts the HTTP server and blocks until it stops. It returns nil
// after Shutdown, including when Shutdown ran first.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", slog.String("addr", s.addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the server address.
func (s Server) Addr() string {
	return s.addr
}

// WriteTimeout returns the configured response write timeout.
func (s Server) WriteTimeout() time.Duration {
	return s.writeTimeout
}
