// Package api exposes the weekly challenge engine over HTTP for the browser
// host page.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/courtloop/challenge-engine/internal/leaderboard"
	"github.com/courtloop/challenge-engine/internal/rewards"
)

// Pinger is the slice of the store the readiness probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Submitter forwards scores to the remote leaderboard.
type Submitter interface {
	SubmitScore(ctx context.Context, sub leaderboard.Submission) (*leaderboard.SubmitResult, error)
}

// Server handles HTTP requests.
type Server struct {
	logger    zerolog.Logger
	epoch     time.Time
	rewards   *rewards.System
	pinger    Pinger
	submitter Submitter
	now       func() time.Time
	startTime time.Time
}

// NewServer creates the API server. pinger may be nil when the deployment
// has no database to probe.
func NewServer(epoch time.Time, rw *rewards.System, pinger Pinger, logger zerolog.Logger) *Server {
	return &Server{
		logger:    logger.With().Str("component", "api").Logger(),
		epoch:     epoch,
		rewards:   rw,
		pinger:    pinger,
		now:       time.Now,
		startTime: time.Now(),
	}
}

// WithSubmitter enables the leaderboard submit route. Without it the route
// answers 404.
func (s *Server) WithSubmitter(sub Submitter) *Server {
	s.submitter = sub
	return s
}

// Routes sets up the HTTP routes with middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.cors)

	r.Get("/health", s.handleHealth)
	r.Get("/health/live", s.handleLiveness)
	r.Get("/health/ready", s.handleReadiness)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/challenge/current", s.handleCurrentChallenge)
		r.Get("/challenge/scan", s.handleScan)
		r.Get("/challenge/{week}", s.handleChallengeByWeek)
		r.Post("/challenge/{week}/evaluate", s.handleEvaluate)
		r.Get("/types", s.handleListTypes)
		r.Post("/rewards/clear", s.handleClear)
		r.Get("/rewards/achievements", s.handleAchievements)
		r.Get("/rewards/stats", s.handleStats)
		r.Get("/rewards/preview/{week}", s.handlePreview)
		r.Post("/leaderboard/submit", s.handleLeaderboardSubmit)
	})

	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", Version)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, apiErr APIError) {
	s.writeJSON(w, status, map[string]any{"error": apiErr})
}

// recoverer converts panics into structured 500 responses.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error().
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Str("request_id", middleware.GetReqID(r.Context())).
					Msg("handler panicked")
				s.writeError(w, http.StatusInternalServerError,
					newAPIError(r, ErrTypeInternal, "internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
