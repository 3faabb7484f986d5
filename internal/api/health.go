package api

import (
	"context"
	"net/http"
	"time"

	"github.com/courtloop/challenge-engine/internal/engine"
)

type healthResponse struct {
	Status           string  `json:"status"`
	Version          string  `json:"version"`
	GeneratorVersion string  `json:"generator_version"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
	CurrentWeek      int     `json:"current_week"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:           "ok",
		Version:          Version,
		GeneratorVersion: engine.GeneratorVersion,
		UptimeSeconds:    time.Since(s.startTime).Seconds(),
		CurrentWeek:      engine.WeekNumber(s.now().UTC(), s.epoch),
	})
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleReadiness probes the store. Deployments without a database are
// always ready.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			s.writeError(w, http.StatusServiceUnavailable, newAPIError(r, ErrTypeStorage,
				"database is unreachable: "+err.Error()))
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
