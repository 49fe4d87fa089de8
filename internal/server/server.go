// Package server exposes the latest findings report over HTTP for CI
// dashboards and scripted consumers.
package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/confusion"
)

// Server holds the most recent report and serves it read-only. SetReport
// may be called concurrently with request handling.
type Server struct {
	logger *log.Logger

	mu     sync.RWMutex
	report *confusion.Report
}

func New(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{logger: logger}
}

// SetReport replaces the report served by /api/findings.
func (s *Server) SetReport(r *confusion.Report) {
	s.mu.Lock()
	s.report = r
	s.mu.Unlock()
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Get("/api/findings", s.handleFindings)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleFindings(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	report := s.report
	s.mu.RUnlock()

	if report == nil {
		http.Error(w, `{"error":"no report available"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		s.logger.Error("encoding report", "err", err)
	}
}
