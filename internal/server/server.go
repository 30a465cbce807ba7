// Package server implements the Sanhedrin HTTP API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanhedrin/sanhedrin/internal/config"
	"github.com/sanhedrin/sanhedrin/pkg/models"
)

// Deliberator is the registry surface the HTTP layer needs.
type Deliberator interface {
	Submit(task models.Task) (*models.Deliberation, error)
	Status(id string) (*models.Deliberation, error)
	Cancel(id, reason string) (*models.Deliberation, error)
	List(state models.DeliberationState) []*models.Deliberation
	Active() int
}

// Server is the Sanhedrin HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	logger     *zap.Logger
}

// ServerConfig holds the dependencies for creating a Server.
type ServerConfig struct {
	Registry Deliberator
	Config   *config.Config
	Logger   *zap.Logger
	Version  string
}

// New creates an HTTP server with all routes configured.
func New(cfg ServerConfig) *Server {
	h := newHandlers(cfg.Registry, cfg.Config, cfg.Version)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/deliberations", h.handleSubmit)
	mux.HandleFunc("GET /v1/deliberations", h.handleList)
	mux.HandleFunc("GET /v1/deliberations/{id}", h.handleStatus)
	mux.HandleFunc("DELETE /v1/deliberations/{id}", h.handleCancel)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /.well-known/agent.json", h.handleAgentCard)
	mux.Handle("GET /metrics", promhttp.Handler())

	var limiter *rateLimiter
	if cfg.Config.RateLimit.Enabled {
		limiter = newRateLimiter(cfg.Config.RateLimit)
	}

	// Middleware chain, outermost first:
	// request ID -> security headers -> logging -> metrics -> rate limit -> auth -> recovery.
	var handler http.Handler = mux
	handler = recoveryMiddleware(cfg.Logger, handler)
	handler = authMiddleware(cfg.Config.Auth.APIKeys, handler)
	handler = rateLimitMiddleware(limiter, handler)
	handler = metricsMiddleware(handler)
	handler = loggingMiddleware(cfg.Logger, handler)
	handler = securityHeadersMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Config.Addr(),
			Handler:      handler,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		handler: handler,
		logger:  cfg.Logger,
	}
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server starting", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
