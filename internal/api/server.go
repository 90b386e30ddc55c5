// Package api is the HTTP front-end: a thin net/http.ServeMux surface that
// decodes requests, calls into the scheduler, and encodes outcomes into the
// documented status codes. No scheduling logic lives here.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/lindqvist/warmsched/internal/domain"
	"github.com/lindqvist/warmsched/internal/metrics"
	"github.com/lindqvist/warmsched/internal/observability"
	"github.com/lindqvist/warmsched/internal/scheduler"
)

// Server wires the scheduler to an http.Handler.
type Server struct {
	sched  *scheduler.Scheduler
	logger *slog.Logger
	mux    *http.ServeMux
}

// New builds a Server with all routes registered.
func New(sched *scheduler.Scheduler, logger *slog.Logger) *Server {
	s := &Server{sched: sched, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler, wrapping every route in the tracing middleware.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	observability.HTTPMiddleware(s.mux).ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /invoke/{function_id}", s.handleInvoke)
	s.mux.HandleFunc("GET /stats", s.handleStats)
	s.mux.HandleFunc("POST /stats/reset", s.handleStatsReset)
	s.mux.HandleFunc("POST /set_strategy", s.handleSetStrategy)
}

func (s *Server) recordOccupancy(functionID string) {
	m := metrics.Current()
	if m == nil {
		return
	}
	p := s.sched.Pools().GetOrCreate(functionID)
	snap := p.Snapshot()
	m.SetOccupancy(functionID, snap.Containers, snap.Queued)
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	functionID := r.PathValue("function_id")
	payload, err := decodeInvokeBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	outcome, err := s.sched.Invoke(r.Context(), functionID, payload)
	s.recordOccupancy(functionID)

	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if outcome.Kind == domain.OutcomeQueued {
		writeJSON(w, http.StatusAccepted, map[string]string{"message": "queued"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"function":          functionID,
		"container_id":      outcome.ContainerID,
		"execution_time_ms": outcome.DurationMs,
		"cold_start":        outcome.ColdStart,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sched.Stats())
}

func (s *Server) handleStatsReset(w http.ResponseWriter, r *http.Request) {
	s.sched.ResetStats()
	writeJSON(w, http.StatusOK, map[string]string{"message": "reset"})
}

func (s *Server) handleSetStrategy(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Strategy string `json:"strategy"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.sched.SetStrategy(body.Strategy); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"strategy": body.Strategy})
}

// Shutdown is a passthrough hook kept for symmetry with the daemon's other
// components; the scheduler and its pools have no server-owned resources to
// release beyond what the reaper's own context cancellation already handles.
func (s *Server) Shutdown(ctx context.Context) error {
	return nil
}
