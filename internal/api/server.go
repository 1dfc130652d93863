// Package api exposes scanning and fixing over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mvvmshift/mvvmshift/internal/config"
	"github.com/mvvmshift/mvvmshift/internal/engine"
	"github.com/mvvmshift/mvvmshift/internal/gitrepo"
	"github.com/mvvmshift/mvvmshift/internal/history"
)

// Server represents the API server
type Server struct {
	cfg    *config.Config
	engine *engine.Engine
	repos  *gitrepo.RepoService
	store  *history.Store
	router *chi.Mux
}

// NewServer creates a new API server. repos may be nil to disable
// repository scans, store may be nil to disable scan history.
func NewServer(cfg *config.Config, eng *engine.Engine, repos *gitrepo.RepoService, store *history.Store) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		engine: eng,
		repos:  repos,
		store:  store,
		router: chi.NewRouter(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	// Repository scans clone before scanning, so the budget is generous
	s.router.Use(middleware.Timeout(120 * time.Second))
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.healthCheck)
	s.router.Get("/ready", s.readyCheck)

	// API v1
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/rules", s.listRules)
		r.Post("/scan", s.scanSource)
		r.Post("/fix", s.fixSource)

		// Scan history
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.listRuns)
			r.Get("/{runID}", s.getRun)
		})
	})
}

// Health check handlers
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) readyCheck(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database not reachable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// engineFor returns the server's engine, or a request-scoped one when
// the request restricts the rule set.
func (s *Server) engineFor(ruleIDs []string) (*engine.Engine, error) {
	if len(ruleIDs) == 0 {
		return s.engine, nil
	}
	return engine.New(engine.Options{Rules: ruleIDs, Workers: s.cfg.ScanWorkers})
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
