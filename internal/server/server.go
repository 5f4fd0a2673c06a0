// Package server implements the development server: it serves a directory
// of documents, activates the behavior modules of every HTML document it
// serves, and can push reload notifications to browsers when files change.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/larsks/datamodule/internal/activator"
	"github.com/larsks/datamodule/internal/behavior"
	"github.com/larsks/datamodule/internal/httpserver"
	"github.com/larsks/datamodule/internal/static"
)

// LiveReloadPath is the websocket endpoint used for reload notifications.
const LiveReloadPath = "/_livereload"

// Server serves activated documents.
type Server struct {
	config    *Config
	registry  *behavior.Registry
	activator *activator.Activator
	documents http.FileSystem
	hub       *Hub
	router    *chi.Mux

	reloadScript string
}

// NewServer creates a server that resolves modules through registry.
// Extra activator options (such as an event observer) are applied after
// the configured attribute.
func NewServer(cfg *Config, registry *behavior.Registry, opts ...activator.Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		registry = behavior.Default()
	}

	opts = append([]activator.Option{activator.WithAttribute(cfg.Attribute)}, opts...)

	s := &Server{
		config:    cfg,
		registry:  registry,
		activator: activator.New(registry, opts...),
		documents: http.Dir(cfg.Root),
		router:    chi.NewRouter(),
	}
	if cfg.LiveReload {
		script, err := static.RenderLiveReload(static.LiveReloadData{
			Endpoint: LiveReloadPath,
			Message:  ReloadMessage,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to render live reload script: %w", err)
		}
		s.hub = NewHub()
		s.reloadScript = script
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/healthz", s.healthHandler)
	s.router.Get("/_modules", s.modulesHandler)
	if s.hub != nil {
		s.router.Get(LiveReloadPath, s.hub.ServeHTTP)
	}

	s.router.Get("/*", s.documentHandler)
	s.router.Head("/*", s.documentHandler)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the live reload hub, or nil when live reload is disabled.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Serve runs the server on listener until ctx is cancelled. When live
// reload is enabled the document root is watched for the lifetime of the
// server.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	if s.hub != nil {
		watcher, err := NewWatcher(s.config.Root, s.hub)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", s.config.Root, err)
		}
		defer watcher.Close() //nolint:errcheck
		go watcher.Run(ctx)
		defer s.hub.Close()
	}

	log.Printf("serving documents from %s", s.config.Root)
	return httpserver.Run(ctx, listener, s.router)
}

// Start listens on the configured address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := httpserver.Address(s.config)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

func (s *Server) modulesHandler(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, map[string]any{
		"attribute": s.activator.Attribute(),
		"modules":   s.registry.List(),
	}, http.StatusOK)
}

func (s *Server) sendJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
