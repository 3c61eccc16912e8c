// Package server assembles the HTTP server: routing, middleware chain,
// metrics and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/phantom-spire/core-studio/src/api"
	"github.com/phantom-spire/core-studio/src/config"
	"github.com/phantom-spire/core-studio/src/logging"
)

// Server represents the HTTP server.
type Server struct {
	config      *config.Config
	httpServer  *http.Server
	middleware  *Middleware
	rateLimiter *RateLimiter
	metrics     *Metrics
	logManager  *logging.Manager
	apiHandler  *api.Handler
}

// New creates a new server instance around a configured API handler.
func New(cfg *config.Config, apiHandler *api.Handler, logMgr *logging.Manager) *Server {
	if logMgr == nil {
		logMgr = logging.NewDiscard()
	}

	metrics := NewMetrics()
	s := &Server{
		config:      cfg,
		middleware:  NewMiddleware(cfg, logMgr, metrics),
		rateLimiter: NewRateLimiter(cfg.Server.RateLimit),
		metrics:     metrics,
		logManager:  logMgr,
		apiHandler:  apiHandler,
	}

	mux := http.NewServeMux()
	apiHandler.SetDispatchHook(metrics.RecordDispatch)
	apiHandler.RegisterRoutes(mux)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/", s.handleRoot)

	handler := Chain(mux,
		s.middleware.Recovery,
		s.middleware.RequestID,
		s.middleware.SecurityHeaders,
		s.middleware.CORS,
		s.middleware.RateLimit(s.rateLimiter),
		s.middleware.Logger,
	)

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler exposes the full middleware-wrapped handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// handleRoot serves a minimal service banner on / and 404s elsewhere.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "%s %s\n", s.config.Server.Title, config.Version)
	fmt.Fprintln(w, "API: /api/phantom-cores, /api/v1, /api/graphql")
}

// Start begins serving. It blocks until the listener fails or the
// server is shut down.
func (s *Server) Start() error {
	s.logManager.Server().Info("server starting",
		"addr", s.config.ListenAddr(),
		"mode", s.config.Server.Mode,
		"version", config.Version,
	)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and releases server resources.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logManager.Server().Info("server stopping")
	s.rateLimiter.Close()
	return s.httpServer.Shutdown(ctx)
}
