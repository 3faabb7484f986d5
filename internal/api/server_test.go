package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtloop/challenge-engine/internal/challenge"
	"github.com/courtloop/challenge-engine/internal/engine"
	"github.com/courtloop/challenge-engine/internal/leaderboard"
	"github.com/courtloop/challenge-engine/internal/rewards"
	"github.com/courtloop/challenge-engine/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	mem := store.NewMem()
	rw := rewards.NewSystem(mem, zerolog.Nop())
	srv := NewServer(engine.DefaultEpoch, rw, nil, zerolog.Nop())
	// Pin the clock to week 10 of the default epoch.
	srv.now = func() time.Time {
		return engine.DefaultEpoch.Add(9*7*24*time.Hour + time.Hour)
	}
	return srv
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}

func TestCurrentChallenge(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv.Routes(), http.MethodGet, "/api/v1/challenge/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Version, rec.Header().Get("X-Engine-Version"))

	var resp struct {
		Week      int                   `json:"week"`
		Challenge *challenge.Descriptor `json:"challenge"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, 10, resp.Week)
	require.NotNil(t, resp.Challenge)
	assert.Equal(t, "weekly-challenge-10", resp.Challenge.ID)
	assert.Equal(t, engine.GeneratorVersion, resp.Challenge.Version)
}

func TestChallengeByWeek(t *testing.T) {
	srv := newTestServer(t)
	routes := srv.Routes()

	rec := doRequest(t, routes, http.MethodGet, "/api/v1/challenge/3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Week      int                   `json:"week"`
		Challenge *challenge.Descriptor `json:"challenge"`
	}
	decodeBody(t, rec, &resp)
	require.NotNil(t, resp.Challenge)
	assert.Equal(t, 3, resp.Challenge.Week)

	// Pre-epoch weeks answer a null challenge, not an error.
	rec = doRequest(t, routes, http.MethodGet, "/api/v1/challenge/0", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &resp)
	assert.Nil(t, resp.Challenge)

	rec = doRequest(t, routes, http.MethodGet, "/api/v1/challenge/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var errResp struct {
		Error APIError `json:"error"`
	}
	decodeBody(t, rec, &errResp)
	assert.Equal(t, ErrTypeInvalidWeek, errResp.Error.Type)
}

func TestEvaluate(t *testing.T) {
	srv := newTestServer(t)
	routes := srv.Routes()

	// Week 1 of the default epoch is a 4500-point score challenge.
	d, err := challenge.Generate(1, engine.DefaultEpoch)
	require.NoError(t, err)
	require.Equal(t, challenge.TypeScore, d.Type)

	rec := doRequest(t, routes, http.MethodPost, "/api/v1/challenge/1/evaluate",
		map[string]any{"score": 5000})
	require.Equal(t, http.StatusOK, rec.Code)
	var ev challenge.Evaluation
	decodeBody(t, rec, &ev)
	assert.True(t, ev.Passed)
	assert.Equal(t, d.ID, ev.ChallengeID)

	rec = doRequest(t, routes, http.MethodPost, "/api/v1/challenge/1/evaluate",
		map[string]any{"score": 100})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &ev)
	assert.False(t, ev.Passed, "a low score is a failed evaluation, not an error")
}

func TestEvaluateMissingFieldIs400(t *testing.T) {
	srv := newTestServer(t)

	// Duration alone cannot satisfy a score challenge.
	rec := doRequest(t, srv.Routes(), http.MethodPost, "/api/v1/challenge/1/evaluate",
		map[string]any{"duration": 30.5})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp struct {
		Error APIError `json:"error"`
	}
	decodeBody(t, rec, &errResp)
	assert.Equal(t, ErrTypeValidation, errResp.Error.Type)
	assert.Equal(t, "score", errResp.Error.Context["missing_field"])
}

func TestEvaluatePreEpochWeekIs404(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv.Routes(), http.MethodPost, "/api/v1/challenge/0/evaluate",
		map[string]any{"score": 100})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScanEndpoint(t *testing.T) {
	srv := newTestServer(t)
	routes := srv.Routes()

	rec := doRequest(t, routes, http.MethodGet, "/api/v1/challenge/scan?from=1&to=20", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result challenge.ScanResult
	decodeBody(t, rec, &result)
	assert.Equal(t, 20, result.WeeksScanned)
	assert.Len(t, result.Descriptors, 20)

	rec = doRequest(t, routes, http.MethodGet, "/api/v1/challenge/scan?from=5&to=1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, routes, http.MethodGet, "/api/v1/challenge/scan?from=x&to=5", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTypes(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv.Routes(), http.MethodGet, "/api/v1/types", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Types            []challenge.Type `json:"types"`
		GeneratorVersion string           `json:"generator_version"`
	}
	decodeBody(t, rec, &resp)
	assert.Len(t, resp.Types, 6)
	assert.Equal(t, engine.GeneratorVersion, resp.GeneratorVersion)
}

func TestClearEndpoint(t *testing.T) {
	srv := newTestServer(t)
	routes := srv.Routes()

	rec := doRequest(t, routes, http.MethodPost, "/api/v1/rewards/clear", rewards.ChallengeClear{
		ChallengeID: "weekly-challenge-4",
		Week:        4,
		Score:       3100,
		FirstClear:  true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var outcome rewards.ClearOutcome
	decodeBody(t, rec, &outcome)
	assert.NotEmpty(t, outcome.Badges)
	assert.NotEmpty(t, outcome.NewAchievements)

	rec = doRequest(t, routes, http.MethodPost, "/api/v1/rewards/clear", rewards.ChallengeClear{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAchievementsAndStats(t *testing.T) {
	srv := newTestServer(t)
	routes := srv.Routes()

	for week := 1; week <= 3; week++ {
		rec := doRequest(t, routes, http.MethodPost, "/api/v1/rewards/clear", rewards.ChallengeClear{
			ChallengeID: fmt.Sprintf("weekly-challenge-%d", week),
			Week:        week,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(t, routes, http.MethodGet, "/api/v1/rewards/achievements", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var achResp struct {
		Achievements []rewards.Achievement `json:"achievements"`
		Count        int                   `json:"count"`
	}
	decodeBody(t, rec, &achResp)
	// Three completions plus the streak achievement minted at week 3.
	assert.Equal(t, 4, achResp.Count)

	rec = doRequest(t, routes, http.MethodGet, "/api/v1/rewards/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		TotalAchievements     int `json:"totalAchievements"`
		ConsecutiveWeekStreak int `json:"consecutiveWeekStreak"`
	}
	decodeBody(t, rec, &stats)
	assert.Equal(t, 4, stats.TotalAchievements)
	assert.Equal(t, 3, stats.ConsecutiveWeekStreak)
}

func TestPreviewEndpoint(t *testing.T) {
	srv := newTestServer(t)
	routes := srv.Routes()

	rec := doRequest(t, routes, http.MethodGet, "/api/v1/rewards/preview/6", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var preview rewards.RewardPreview
	decodeBody(t, rec, &preview)
	assert.Equal(t, "weekly-challenge-6", preview.ChallengeID)
	assert.Len(t, preview.PossibleBadges, 4)

	rec = doRequest(t, routes, http.MethodGet, "/api/v1/rewards/preview/0", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeaderboardSubmitEndpoint(t *testing.T) {
	srv := newTestServer(t)
	routes := srv.Routes()

	sub := leaderboard.Submission{ChallengeID: "weekly-challenge-2", Week: 2, PlayerID: "p1", Score: 900}

	// Without a submitter the route does not exist.
	rec := doRequest(t, routes, http.MethodPost, "/api/v1/leaderboard/submit", sub)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	srv.WithSubmitter(stubSubmitter{rank: 3})
	rec = doRequest(t, srv.Routes(), http.MethodPost, "/api/v1/leaderboard/submit", sub)
	require.Equal(t, http.StatusOK, rec.Code)
	var result leaderboard.SubmitResult
	decodeBody(t, rec, &result)
	assert.Equal(t, 3, result.Rank)
}

type stubSubmitter struct {
	rank int
}

func (s stubSubmitter) SubmitScore(_ context.Context, _ leaderboard.Submission) (*leaderboard.SubmitResult, error) {
	return &leaderboard.SubmitResult{Success: true, Rank: s.rank}, nil
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	routes := srv.Routes()

	rec := doRequest(t, routes, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health struct {
		Status           string `json:"status"`
		Version          string `json:"version"`
		GeneratorVersion string `json:"generator_version"`
		CurrentWeek      int    `json:"current_week"`
	}
	decodeBody(t, rec, &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, Version, health.Version)
	assert.Equal(t, engine.GeneratorVersion, health.GeneratorVersion)
	assert.Equal(t, 10, health.CurrentWeek)

	rec = doRequest(t, routes, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// No pinger configured: always ready.
	rec = doRequest(t, routes, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadinessWithFailingPinger(t *testing.T) {
	mem := store.NewMem()
	rw := rewards.NewSystem(mem, zerolog.Nop())
	srv := NewServer(engine.DefaultEpoch, rw, failingPinger{}, zerolog.Nop())

	rec := doRequest(t, srv.Routes(), http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("db down") }

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv.Routes(), http.MethodOptions, "/api/v1/challenge/current", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
