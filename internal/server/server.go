// Package server runs a local stand-in for the rate limit service, serving
// fixture data over the same HTTP surface the client consumes.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	apperrors "github.com/sudobility/ratelimit-client/internal/errors"
	"github.com/sudobility/ratelimit-client/internal/observability"
	"github.com/sudobility/ratelimit-client/internal/server/fixture"
	"github.com/sudobility/ratelimit-client/internal/server/handlers"
	servermw "github.com/sudobility/ratelimit-client/internal/server/middleware"
)

// DefaultPathPrefix is where the rate limit routes are mounted.
const DefaultPathPrefix = "/api/v1"

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	server     *http.Server
	host       string
	port       int
	pathPrefix string
	source     fixture.Source
	throttle   *servermw.Throttle
	health     *handlers.HealthManager
}

// Option configures a Server.
type Option func(*Server)

// WithPathPrefix mounts the rate limit routes under prefix. An empty prefix
// mounts them at the root.
func WithPathPrefix(prefix string) Option {
	return func(s *Server) {
		s.pathPrefix = normalizePrefix(prefix)
	}
}

// WithSource replaces the fixture data source.
func WithSource(source fixture.Source) Option {
	return func(s *Server) {
		if source != nil {
			s.source = source
		}
	}
}

// WithThrottle limits each caller to limit rate limit requests per window.
func WithThrottle(limit int, window time.Duration) Option {
	return func(s *Server) {
		s.throttle = servermw.NewThrottle(limit, window)
	}
}

// New creates a new HTTP server instance
func New(host string, port int, opts ...Option) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(servermw.RequestID) // early for correlation
	r.Use(servermw.Recovery)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewNotFoundError("The requested resource was not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource"))
	})

	s := &Server{
		router:     r,
		host:       host,
		port:       port,
		pathPrefix: DefaultPathPrefix,
		source:     fixture.NewFixtureSource(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.health = handlers.NewHealthManager(handlers.AppVersion)
	s.health.RegisterChecker("source", handlers.HealthCheckerFunc(func(ctx context.Context) error {
		_, err := s.source.Limits(ctx, "")
		return err
	}))

	s.registerRoutes()

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Starting HTTP server",
			zap.String("host", s.host),
			zap.Int("port", s.port),
			zap.String("addr", addr),
			zap.String("path_prefix", s.pathPrefix))
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Shutting down HTTP server")
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for testing and instrumentation
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the server port for testing
func (s *Server) Port() int {
	return s.port
}

// PathPrefix returns the prefix the rate limit routes are mounted under.
func (s *Server) PathPrefix() string {
	return s.pathPrefix
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return "/" + prefix
}
