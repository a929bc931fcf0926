package http

import (
	"encoding/json"
	"net/http"

	"github.com/aretw0/agentry/pkg/observability"
	"github.com/aretw0/agentry/pkg/workers"
	"github.com/go-chi/chi/v5"
)

// Runtime is the part of agentry.Runtime exposed over HTTP.
type Runtime interface {
	Pool() *workers.Pool
	Metrics() *observability.Metrics
}

// Server serves health, runtime info and metrics.
type Server struct {
	Runtime Runtime
	Version string
}

// NewHandler creates the HTTP handler for rt.
func NewHandler(rt Runtime, version string) http.Handler {
	s := &Server{Runtime: rt, Version: version}
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if m := rt.Metrics(); m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}
	return r
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	pool := s.Runtime.Pool()
	writeJSON(w, http.StatusOK, map[string]any{
		"version":           s.Version,
		"workers":           pool.Size(),
		"workers_in_flight": pool.InFlight(),
		"metrics":           s.Runtime.Metrics() != nil,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
