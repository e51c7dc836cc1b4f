// Package server provides the HTTP serving boundary for the gesture
// resolution engine.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/weiting/handcount/internal/capture"
	"github.com/weiting/handcount/internal/gesture"
	"github.com/weiting/handcount/internal/server/api"
	"github.com/weiting/handcount/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir  string
	Store      *store.Store
	Camera     capture.Camera
	State      *gesture.State
	Controller api.Controller
	Logger     *zap.Logger
}

// Server exposes the committed gesture state, the event history, and
// pipeline control over HTTP.
type Server struct {
	config      Config
	mux         *http.ServeMux
	broadcaster *Broadcaster
	logger      *zap.Logger
	start       time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		logger: config.Logger,
		start:  time.Now(),
	}
	s.broadcaster = NewBroadcaster(config.State, config.Logger)
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.State != nil {
		gestureHandler := api.NewGestureHandler(s.config.State)
		s.mux.Handle("/api/gesture", gestureHandler)
		s.mux.Handle("/api/gesture/help", gestureHandler)
	}

	if s.config.Controller != nil {
		controlHandler := api.NewControlHandler(s.config.Controller)
		s.mux.Handle("/api/control/", controlHandler)
	}

	if s.config.Store != nil {
		s.mux.Handle("/api/events", api.NewEventsHandler(s.config.Store))
	}

	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera))
	}

	s.mux.Handle("/api/ws", s.broadcaster)

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// Broadcaster returns the WebSocket broadcaster, so the pipeline can be
// wired to publish commits into it.
func (s *Server) Broadcaster() *Broadcaster {
	return s.broadcaster
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

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("http server listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, s)
}
