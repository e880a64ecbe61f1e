// Package server provides the HTTP server for the CMYK portrait studio.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ayusman/cmykstudio/internal/app"
	"github.com/ayusman/cmykstudio/internal/server/api"
)

// ShutdownTimeout bounds how long ListenAndServe waits for open requests
// after its context is cancelled.
const ShutdownTimeout = 5 * time.Second

// Config holds the server configuration.
type Config struct {
	App       *app.App // optional; without it only health and static files are served
	StaticDir string
	PartsDir  string
	Logger    *slog.Logger
}

// Server represents the HTTP server for the studio.
type Server struct {
	config Config
	log    *slog.Logger
	router chi.Router
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	s := &Server{
		config: config,
		log:    config.Logger,
		router: chi.NewRouter(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		a := s.config.App
		if a == nil {
			return
		}
		r.Route("/scene", api.NewSceneHandler(a).Routes)
		r.Route("/archive", api.NewArchiveHandler(a).Routes)
		r.Group(api.NewStudioHandler(a).Routes)
		r.Handle("/separate", api.NewSeparateHandler(s.log))
		r.Handle("/stream", NewStreamHandler(a.Preview()))
		r.Handle("/ws", NewStudioSocket(a, s.log))
	})

	if s.config.PartsDir != "" {
		r.Handle("/parts/*", http.StripPrefix("/parts/", http.FileServer(http.Dir(s.config.PartsDir))))
	}
	if s.config.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).Round(time.Second).String(),
	}
	if a := s.config.App; a != nil {
		response["layers"] = a.Scene().Len()
		response["tracking"] = a.Tracking()
		response["pipeline"] = a.Running()
	}
	writeJSON(w, response)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("server stopped")
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
