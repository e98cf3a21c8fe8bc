package server

import (
	"github.com/go-chi/chi/v5"

	"github.com/sudobility/ratelimit-client/internal/server/handlers"
	servermw "github.com/sudobility/ratelimit-client/internal/server/middleware"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	s.router.Get("/health", s.health.HealthHandler)
	s.router.Get("/health/live", s.health.LivenessHandler)
	s.router.Get("/health/ready", s.health.ReadinessHandler)
	s.router.Get("/version", handlers.VersionHandler)

	limits := handlers.NewRateLimits(s.source)
	routes := func(r chi.Router) {
		r.Use(servermw.RequireBearer)
		r.Use(s.throttle.Middleware)
		r.Get("/ratelimits", limits.Config)
		r.Get("/ratelimits/history/{periodType}", limits.History)
		r.Get("/ratelimits/{identifier}", limits.Config)
		r.Get("/ratelimits/{identifier}/history/{periodType}", limits.History)
	}

	if s.pathPrefix == "" {
		s.router.Group(routes)
		return
	}
	s.router.Route(s.pathPrefix, routes)
}
