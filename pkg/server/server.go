package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gatewright-hq/gatewright/pkg/audit/replay"
	"gatewright-hq/gatewright/pkg/config"
	"gatewright-hq/gatewright/pkg/gate"
	"gatewright-hq/gatewright/pkg/server/middleware"
	"gatewright-hq/gatewright/pkg/store"
)

// Server is the gatewright HTTP API server.
type Server struct {
	config       *config.Config
	store        store.Store
	service      *gate.Service
	replayer     *replay.Replayer
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a new API server.
func NewServer(cfg *config.Config, st store.Store, svc *gate.Service, rep *replay.Replayer) *Server {
	return &Server{
		config:       cfg,
		store:        st,
		service:      svc,
		replayer:     rep,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         s.config.Server.ListenAddress,
		Handler:      handler,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting api server",
			"address", s.config.Server.ListenAddress,
			"auth_enabled", len(s.config.Server.APIKeys) > 0,
			"rate_limit_enabled", s.config.Server.RateLimit.Enabled,
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("api server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	anchorHandler := NewAnchorHandler(s.store)
	profileHandler := NewProfileHandler(s.store)
	gateHandler := NewGateHandler(s.service)
	logHandler := NewLogHandler(s.service)
	replayHandler := NewReplayHandler(s.replayer)

	api := http.NewServeMux()

	api.HandleFunc("POST /v1/anchors", anchorHandler.Create)
	api.HandleFunc("GET /v1/anchors", anchorHandler.List)
	api.HandleFunc("GET /v1/anchors/{id}", anchorHandler.Get)
	api.HandleFunc("PUT /v1/anchors/{id}", anchorHandler.Update)
	api.HandleFunc("POST /v1/anchors/{id}/archive", anchorHandler.Archive)

	api.HandleFunc("POST /v1/profiles", profileHandler.Create)
	api.HandleFunc("GET /v1/profiles", profileHandler.List)
	api.HandleFunc("GET /v1/profiles/{id}", profileHandler.Get)
	api.HandleFunc("GET /v1/profiles/{id}/anchors", profileHandler.ListAssignments)
	api.HandleFunc("PUT /v1/profiles/{id}/anchors/{anchorID}", profileHandler.Assign)
	api.HandleFunc("DELETE /v1/profiles/{id}/anchors/{anchorID}", profileHandler.Unassign)

	api.HandleFunc("POST /v1/gate/evaluate", gateHandler.Evaluate)
	api.HandleFunc("POST /v1/gate/reframe", gateHandler.Reframe)
	api.HandleFunc("POST /v1/gate/acknowledge", gateHandler.Acknowledge)

	api.HandleFunc("GET /v1/logs", logHandler.List)
	api.HandleFunc("GET /v1/logs/{id}", logHandler.Get)
	api.HandleFunc("GET /v1/traces/{id}", logHandler.GetTrace)

	api.HandleFunc("POST /v1/replay/{traceID}", replayHandler.Replay)

	// Auth and rate limiting cover the API only. Probes and the metrics
	// scrape endpoint stay open.
	var apiHandler http.Handler = api
	if s.config.Server.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(s.config.Server.RateLimit.RequestsPerMinute)
		apiHandler = limiter.Middleware(apiHandler)
	}
	apiHandler = middleware.AuthMiddleware(s.config.Server.APIKeys)(apiHandler)

	root := http.NewServeMux()
	root.Handle("/v1/", apiHandler)
	root.Handle("/health", NewHealthHandler())
	root.Handle("/ready", NewReadyHandler(s.store))
	if s.config.Telemetry.Metrics.Enabled {
		root.Handle(s.config.Telemetry.Metrics.Path, promhttp.Handler())
	}

	var handler http.Handler = root
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}
