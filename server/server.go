// Package server exposes the poster's health, last cycle and metrics over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"auto_social_poster/scheduler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// StateSource reports the scheduler's current state.
type StateSource interface {
	State() scheduler.State
}

type Server struct {
	store  *statusStore
	state  StateSource
	dryRun bool
	logger *zerolog.Logger
}

// statusStore keeps the latest cycle report; the scheduler writes it, HTTP
// handlers read it.
type statusStore struct {
	mu     sync.Mutex
	last   *scheduler.Report
	cycles int
}

func (s *statusStore) set(r scheduler.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &r
	s.cycles++
}

func (s *statusStore) get() (*scheduler.Report, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil, s.cycles
	}
	r := *s.last
	return &r, s.cycles
}

func New(dryRun bool, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Server{store: &statusStore{}, dryRun: dryRun, logger: logger}
}

// Attach sets the scheduler whose state is reported. It must be called
// before the server starts serving.
func (s *Server) Attach(src StateSource) error {
	if src == nil {
		return errors.New("state source required")
	}
	s.state = src
	return nil
}

// ObserveCycle implements scheduler.Observer.
func (s *Server) ObserveCycle(r scheduler.Report) {
	s.store.set(r)
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.Handle("/metrics", promhttp.Handler())
	return s.logMiddleware(mux)
}

// --- Handlers ---

type statusResp struct {
	State  string            `json:"state"`
	DryRun bool              `json:"dry_run"`
	Cycles int               `json:"cycles"`
	Last   *scheduler.Report `json:"last,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	state := scheduler.Idle
	if s.state != nil {
		state = s.state.State()
	}
	last, cycles := s.store.get()
	writeJSON(w, statusResp{State: state.String(), DryRun: s.dryRun, Cycles: cycles, Last: last})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}
