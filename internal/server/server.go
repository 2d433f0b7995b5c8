// Package server implements the pipeline status HTTP server.
package server

import (
	"context"
	"encoding/json"
	"expvar"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/datalith/predictit-etl/internal/pipeline"
	"github.com/datalith/predictit-etl/internal/runlog"
)

// RunHistory reads past runs. Optional; a nil history disables /api/runs.
type RunHistory interface {
	RecentRuns(ctx context.Context, limit int) ([]runlog.Entry, error)
}

// Server is the pipeline status HTTP server.
type Server struct {
	tracker *pipeline.Tracker
	history RunHistory
	logger  *slog.Logger
	router  chi.Router
	addr    string
	srv     *http.Server
}

// New creates a new status server. history may be nil.
func New(addr string, tracker *pipeline.Tracker, history RunHistory, logger *slog.Logger) *Server {
	s := &Server{
		tracker: tracker,
		history: history,
		logger:  logger,
		addr:    addr,
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Get("/runs", s.handleRuns)
	})
	r.Handle("/debug/vars", expvar.Handler())

	s.router = r
	return s
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.logger.Info("status server listening", "addr", s.addr)
	return s.srv.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}

// Handler returns the router, for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus returns the most recent run in this process.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	last := s.tracker.Last()
	if last == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no runs recorded"})
		return
	}
	writeJSON(w, http.StatusOK, last)
}

// handleRuns returns recent run history from the run log store.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run log store not configured"})
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	runs, err := s.history.RecentRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("run history query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "run history unavailable"})
		return
	}
	if runs == nil {
		runs = []runlog.Entry{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
