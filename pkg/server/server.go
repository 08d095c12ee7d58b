// Package server exposes the mosaic pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz                  liveness probe with build version
//	POST /v1/layouts               compute and store a layout
//	GET  /v1/layouts/{id}          fetch a stored layout as JSON
//	GET  /v1/layouts/{id}.svg      render a stored layout (also .png, .txt)
//	POST /v1/layouts/{id}/refit    recompute a stored layout at a new width
//
// Layouts are stored through the runner's cache under "layout:doc:<id>",
// so a Redis-backed runner lets several server instances share documents.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/mosaic/pkg/buildinfo"
	"github.com/matzehuels/mosaic/pkg/mosaic"
	"github.com/matzehuels/mosaic/pkg/observability"
	"github.com/matzehuels/mosaic/pkg/pipeline"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 << 20

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultWidth sets the width used when a request omits one.
func WithDefaultWidth(w float64) Option {
	return func(s *Server) { s.width = w }
}

// WithIDGenerator replaces the document ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) { s.newID = fn }
}

// Server serves the layout API.
type Server struct {
	runner *pipeline.Runner
	config mosaic.Config
	width  float64
	logger *log.Logger
	newID  func() string
	router chi.Router
}

// New creates a server. cfg supplies the defaults for fields a request
// does not set.
func New(runner *pipeline.Runner, cfg mosaic.Config, opts ...Option) *Server {
	s := &Server{
		runner: runner,
		config: cfg,
		width:  pipeline.DefaultWidth,
		logger: log.Default(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/layouts", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/{id}", s.handleGet)
		r.Post("/{id}/refit", s.handleRefit)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// observe reports every request to the server hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.Server().OnRequest(r.Context(), r.Method, route, status, time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Get()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": info.Version,
		"commit":  info.Commit,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
