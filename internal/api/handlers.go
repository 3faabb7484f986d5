package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/courtloop/challenge-engine/internal/challenge"
	"github.com/courtloop/challenge-engine/internal/engine"
	"github.com/courtloop/challenge-engine/internal/leaderboard"
	"github.com/courtloop/challenge-engine/internal/rewards"
)

// challengeResponse wraps a descriptor with its week. Challenge is null for
// pre-epoch weeks.
type challengeResponse struct {
	Week      int                   `json:"week"`
	Challenge *challenge.Descriptor `json:"challenge"`
}

func (s *Server) handleCurrentChallenge(w http.ResponseWriter, r *http.Request) {
	week := engine.WeekNumber(s.now().UTC(), s.epoch)
	d, err := challenge.Generate(week, s.epoch)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, newAPIError(r, ErrTypeInternal, err.Error()))
		return
	}
	s.writeJSON(w, http.StatusOK, challengeResponse{Week: week, Challenge: d})
}

func (s *Server) handleChallengeByWeek(w http.ResponseWriter, r *http.Request) {
	week, ok := s.weekParam(w, r)
	if !ok {
		return
	}
	d, err := challenge.Generate(week, s.epoch)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, newAPIError(r, ErrTypeInternal, err.Error()))
		return
	}
	s.writeJSON(w, http.StatusOK, challengeResponse{Week: week, Challenge: d})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	week, ok := s.weekParam(w, r)
	if !ok {
		return
	}
	d, err := challenge.Generate(week, s.epoch)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, newAPIError(r, ErrTypeInternal, err.Error()))
		return
	}
	if d == nil {
		s.writeError(w, http.StatusNotFound, newAPIError(r, ErrTypeNotFound,
			fmt.Sprintf("no challenge exists for week %d", week)))
		return
	}

	var result challenge.GameResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		s.writeError(w, http.StatusBadRequest, newAPIError(r, ErrTypeValidation,
			"request body is not a valid game result: "+err.Error()))
		return
	}

	evaluation, err := challenge.NewEvaluator().Evaluate(d, result)
	if err != nil {
		status, apiErr := classifyEvaluationError(r, err)
		s.writeError(w, status, apiErr)
		return
	}
	s.writeJSON(w, http.StatusOK, evaluation)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := strconv.Atoi(q.Get("from"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, newAPIError(r, ErrTypeValidation, "from must be an integer week"))
		return
	}
	to, err := strconv.Atoi(q.Get("to"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, newAPIError(r, ErrTypeValidation, "to must be an integer week"))
		return
	}
	req := challenge.ScanRequest{
		FromWeek: from,
		ToWeek:   to,
		Type:     challenge.Type(q.Get("type")),
	}
	if limit := q.Get("limit"); limit != "" {
		req.Limit, err = strconv.Atoi(limit)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, newAPIError(r, ErrTypeValidation, "limit must be an integer"))
			return
		}
	}
	result, err := challenge.Scan(r.Context(), req, s.epoch)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, newAPIError(r, ErrTypeValidation, err.Error()))
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListTypes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"types":             challenge.ListTypes(),
		"generator_version": engine.GeneratorVersion,
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var clear rewards.ChallengeClear
	if err := json.NewDecoder(r.Body).Decode(&clear); err != nil {
		s.writeError(w, http.StatusBadRequest, newAPIError(r, ErrTypeValidation,
			"request body is not a valid clear record: "+err.Error()))
		return
	}
	outcome, err := s.rewards.ProcessChallengeClear(r.Context(), clear)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, newAPIError(r, ErrTypeValidation, err.Error()))
		return
	}
	s.writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	achievements := s.rewards.LoadAchievements(r.Context())
	s.writeJSON(w, http.StatusOK, map[string]any{
		"achievements": achievements,
		"count":        len(achievements),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.rewards.AchievementStats(r.Context())
	streak, err := s.rewards.ConsecutiveWeekStreak(r.Context())
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to compute consecutive streak")
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"totalAchievements":     stats.TotalAchievements,
		"weeklyStreak":          stats.WeeklyStreak,
		"lastAchievementDate":   stats.LastAchievementDate,
		"consecutiveWeekStreak": streak,
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	week, ok := s.weekParam(w, r)
	if !ok {
		return
	}
	d, err := challenge.Generate(week, s.epoch)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, newAPIError(r, ErrTypeInternal, err.Error()))
		return
	}
	if d == nil {
		s.writeError(w, http.StatusNotFound, newAPIError(r, ErrTypeNotFound,
			fmt.Sprintf("no challenge exists for week %d", week)))
		return
	}
	s.writeJSON(w, http.StatusOK, s.rewards.Preview(d))
}

func (s *Server) handleLeaderboardSubmit(w http.ResponseWriter, r *http.Request) {
	if s.submitter == nil {
		s.writeError(w, http.StatusNotFound, newAPIError(r, ErrTypeNotFound,
			"leaderboard submission is not enabled"))
		return
	}
	var sub leaderboard.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		s.writeError(w, http.StatusBadRequest, newAPIError(r, ErrTypeValidation,
			"request body is not a valid submission: "+err.Error()))
		return
	}
	result, err := s.submitter.SubmitScore(r.Context(), sub)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, newAPIError(r, ErrTypeInternal,
			"leaderboard submission failed: "+err.Error()))
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) weekParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	week, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, newAPIError(r, ErrTypeInvalidWeek,
			fmt.Sprintf("week %q is not an integer", chi.URLParam(r, "week"))))
		return 0, false
	}
	return week, true
}
