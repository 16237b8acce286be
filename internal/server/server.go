// Package server provides the HTTP server for the posecontrol controller.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ayusman/posecontrol/internal/gesture"
	"github.com/ayusman/posecontrol/internal/server/api"
	"github.com/ayusman/posecontrol/internal/store"
	"github.com/ayusman/posecontrol/pkg/logger"
	"github.com/ayusman/posecontrol/pkg/metrics"
)

const shutdownTimeout = 5 * time.Second

// Config holds the server configuration. Routes whose collaborator is nil are not registered.
type Config struct {
	StaticDir string
	Store     *store.Store
	Engine    *gesture.Engine
	Frames    FrameSource
	Hub       *Hub
	Toggle    api.Toggle
	// Metrics defaults to the global Prometheus handler.
	Metrics http.Handler
	Logger  logger.Logger
}

// Server represents the HTTP server for the controller.
type Server struct {
	config Config
	mux    *http.ServeMux
	log    logger.Logger
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		log:    config.Logger,
		start:  time.Now(),
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	metricsHandler := s.config.Metrics
	if metricsHandler == nil {
		metricsHandler = metrics.Handler()
	}
	s.mux.Handle("/metrics", metricsHandler)

	if s.config.Store != nil {
		var target api.LayoutSetter
		if s.config.Engine != nil {
			target = s.config.Engine.Classifier()
		}
		zones := api.NewZoneHandler(s.config.Store, target, s.log.Named("zones"))
		s.mux.Handle("/api/zones", zones)
		s.mux.Handle("/api/zones/", zones)
	}

	if s.config.Engine != nil {
		s.mux.Handle("/api/gate", api.NewGateHandler(s.config.Engine))
	}

	if s.config.Toggle != nil {
		s.mux.Handle("/api/detection", api.NewDetectionHandler(s.config.Toggle))
	}

	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Frames, 0))
	}

	if s.config.Hub != nil {
		s.mux.Handle("/api/events", s.config.Hub)
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
// Request contexts derive from ctx so streams end with it.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	if s.config.Hub != nil {
		srv.RegisterOnShutdown(s.config.Hub.Close)
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "http server listening", logger.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info(shutdownCtx, "http server stopped")
	return nil
}
