// Package session wires a weekly challenge into a running game: it applies
// the generated parameters to the game engine, enforces restrictions in real
// time while the game runs, holds the hard time limit, and on completion
// feeds the final result through evaluation, rewards and optional
// leaderboard submission.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/courtloop/challenge-engine/internal/challenge"
	"github.com/courtloop/challenge-engine/internal/leaderboard"
	"github.com/courtloop/challenge-engine/internal/rewards"
)

// State is the session lifecycle phase. Terminal states are final for a
// manager instance; a new attempt needs a new manager.
type State int

const (
	StateIdle State = iota
	StateActive
	StateCompleted
	StateFailed
	StateTimeout
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateActive:
		return "ACTIVE"
	case StateCompleted:
		return "COMPLETED"
	case StateFailed:
		return "FAILED"
	case StateTimeout:
		return "TIMEOUT"
	}
	return "UNKNOWN"
}

// Event is a UI-facing notification emitted by the session.
type Event struct {
	Name    string
	Payload map[string]any
}

// Handler receives session events synchronously.
type Handler func(Event)

// Submitter posts completed scores to a remote board.
type Submitter interface {
	SubmitScore(ctx context.Context, sub leaderboard.Submission) (*leaderboard.SubmitResult, error)
}

// Config wires a session manager. Engine and Descriptor are required;
// everything else is optional.
type Config struct {
	Engine     GameEngine
	Descriptor *challenge.Descriptor
	Evaluator  *challenge.Evaluator
	Rewards    *rewards.System
	Submitter  Submitter
	PlayerID   string
	Logger     zerolog.Logger
}

// CompletionReport is everything a completed session produced. SubmitErr is
// non-nil when the leaderboard post failed; local reward state is unaffected
// by submission failures.
type CompletionReport struct {
	Result     challenge.GameResult
	Evaluation challenge.Evaluation
	Outcome    *rewards.ClearOutcome
	Rank       int
	SubmitErr  error
}

// Manager runs one challenge session through its lifecycle.
type Manager struct {
	mu sync.Mutex

	logger    zerolog.Logger
	engine    GameEngine
	desc      *challenge.Descriptor
	evaluator *challenge.Evaluator
	rewards   *rewards.System
	submitter Submitter
	playerID  string

	state         State
	failureReason string
	timer         *time.Timer
	handlers      map[string][]Handler
	restricted    map[challenge.Restriction]bool
	bestRally     *int
	pauseCount    int
}

// NewManager creates an idle session manager for one descriptor.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("session: engine is required")
	}
	if cfg.Descriptor == nil {
		return nil, fmt.Errorf("session: descriptor is required")
	}
	evaluator := cfg.Evaluator
	if evaluator == nil {
		evaluator = challenge.NewEvaluator()
	}
	restricted := make(map[challenge.Restriction]bool)
	for _, r := range cfg.Descriptor.Restrictions() {
		restricted[r] = true
	}
	return &Manager{
		logger:     cfg.Logger.With().Str("component", "session").Str("challenge", cfg.Descriptor.ID).Logger(),
		engine:     cfg.Engine,
		desc:       cfg.Descriptor,
		evaluator:  evaluator,
		rewards:    cfg.Rewards,
		submitter:  cfg.Submitter,
		playerID:   cfg.PlayerID,
		state:      StateIdle,
		handlers:   make(map[string][]Handler),
		restricted: restricted,
	}, nil
}

// OnEvent registers a handler for a session event name.
func (m *Manager) OnEvent(name string, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[name] = append(m.handlers[name], h)
}

// emit runs handlers outside the lock so handlers can query the manager.
func (m *Manager) emit(name string, payload map[string]any) {
	m.mu.Lock()
	handlers := append([]Handler(nil), m.handlers[name]...)
	m.mu.Unlock()
	ev := Event{Name: name, Payload: payload}
	for _, h := range handlers {
		h(ev)
	}
}

// Activate applies the descriptor's parameters to the engine, subscribes to
// its events, arms the time limit and starts play.
func (m *Manager) Activate() error {
	m.mu.Lock()
	if m.state != StateIdle {
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("session: cannot activate from state %s", state)
	}

	params := m.desc.Parameters
	m.engine.SetGameSpeed(params.BallSpeed)
	m.engine.SetPaddleSize(params.PaddleSize)
	m.engine.EnablePowerups(!m.restricted[challenge.RestrictionNoPowerups])

	m.engine.On(EngineEventScoreUpdate, m.onScoreUpdate)
	m.engine.On(EngineEventPowerupCollected, m.onPowerupCollected)
	m.engine.On(EngineEventGamePause, m.onGamePause)

	if m.desc.TimeLimit != nil {
		limit := time.Duration(*m.desc.TimeLimit * float64(time.Second))
		m.timer = time.AfterFunc(limit, m.onTimeLimit)
	}

	m.state = StateActive
	m.mu.Unlock()

	m.engine.Start()
	m.emit(EventChallengeStart, map[string]any{
		"challengeId": m.desc.ID,
		"title":       m.desc.Title,
		"timeLimit":   m.desc.TimeLimit,
	})
	m.emitStateChange(StateIdle, StateActive)
	return nil
}

func (m *Manager) onScoreUpdate(payload map[string]any) {
	m.mu.Lock()
	if m.state != StateActive {
		m.mu.Unlock()
		return
	}
	// The engine reports the current rally length alongside each score
	// update; the session keeps the best one seen for evaluation.
	if rally, ok := payloadInt(payload, "consecutiveHits"); ok {
		if m.bestRally == nil || rally > *m.bestRally {
			m.bestRally = &rally
		}
	}
	target := m.desc.Target
	m.mu.Unlock()

	score := m.engine.GetScore()
	progress := 100.0
	if target > 0 {
		progress = 100 * float64(score) / target
		if progress > 100 {
			progress = 100
		}
	}
	m.emit(EventProgressUpdate, map[string]any{
		"challengeId": m.desc.ID,
		"score":       score,
		"progress":    progress,
	})
}

func (m *Manager) onPowerupCollected(payload map[string]any) {
	if m.restricted[challenge.RestrictionNoPowerups] {
		m.violate("power-up collected during a no-power-up challenge")
	}
}

func (m *Manager) onGamePause(payload map[string]any) {
	m.mu.Lock()
	m.pauseCount++
	m.mu.Unlock()
	if m.restricted[challenge.RestrictionNoPause] {
		m.violate("game paused during a no-pause challenge")
	}
}

// payloadInt reads a numeric payload value; engine payloads that crossed a
// JSON boundary carry numbers as float64.
func payloadInt(payload map[string]any, key string) (int, bool) {
	switch v := payload[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

// violate fails the session immediately. Restriction enforcement is
// real-time: the session does not wait for the post-hoc evaluation.
func (m *Manager) violate(reason string) {
	m.mu.Lock()
	if m.state != StateActive {
		m.mu.Unlock()
		return
	}
	m.stopTimerLocked()
	m.state = StateFailed
	m.failureReason = reason
	m.mu.Unlock()

	m.logger.Info().Str("reason", reason).Msg("restriction violated")
	m.engine.Pause()
	m.emit(EventChallengeViolation, map[string]any{
		"challengeId": m.desc.ID,
		"reason":      reason,
	})
	m.emitStateChange(StateActive, StateFailed)
}

// onTimeLimit fires when the hard time limit expires. Completion and abort
// cancel the timer, so a stale expiry against a finished session is a no-op.
func (m *Manager) onTimeLimit() {
	m.mu.Lock()
	if m.state != StateActive {
		m.mu.Unlock()
		return
	}
	m.state = StateTimeout
	m.failureReason = "time limit expired"
	m.mu.Unlock()

	m.engine.Pause()
	m.emit(EventChallengeTimeout, map[string]any{"challengeId": m.desc.ID})
	m.emitStateChange(StateActive, StateTimeout)
}

// Complete assembles the final result from the engine, evaluates it, feeds
// the reward system on a pass, and optionally submits the score. Structural
// evaluation errors propagate; they mean a wiring bug, not a failed run.
func (m *Manager) Complete(ctx context.Context) (*CompletionReport, error) {
	m.mu.Lock()
	if m.state != StateActive {
		state := m.state
		m.mu.Unlock()
		return nil, fmt.Errorf("session: cannot complete from state %s", state)
	}
	m.stopTimerLocked()
	pauses := m.pauseCount
	bestRally := m.bestRally
	m.mu.Unlock()

	score := m.engine.GetScore()
	duration := m.engine.GetElapsedTime()
	misses := m.engine.GetMissCount()
	powerups := m.engine.GetPowerupsUsed()

	result := challenge.GameResult{
		Score:           &score,
		Duration:        &duration,
		MissCount:       &misses,
		PowerUpsUsed:    &powerups,
		PauseCount:      &pauses,
		ConsecutiveHits: bestRally,
	}

	evaluation, err := m.evaluator.Evaluate(m.desc, result)
	if err != nil {
		return nil, fmt.Errorf("session: evaluate: %w", err)
	}

	report := &CompletionReport{Result: result, Evaluation: evaluation}

	if evaluation.Passed && m.rewards != nil {
		perfect := m.rewards.CheckPerfectClear(rewards.PlayStats{
			MissCount:    misses,
			PowerupsUsed: powerups,
			PauseCount:   pauses,
		})
		outcome, err := m.rewards.ProcessChallengeClear(ctx, rewards.ChallengeClear{
			ChallengeID:  m.desc.ID,
			Week:         m.desc.Week,
			Score:        score,
			FirstClear:   len(m.rewards.History()) == 0,
			PerfectClear: perfect,
		})
		if err != nil {
			return nil, fmt.Errorf("session: process clear: %w", err)
		}
		report.Outcome = outcome
	}

	if evaluation.Passed && m.submitter != nil {
		res, err := m.submitter.SubmitScore(ctx, leaderboard.Submission{
			ChallengeID: m.desc.ID,
			Week:        m.desc.Week,
			PlayerID:    m.playerID,
			Score:       score,
			Duration:    duration,
		})
		if err != nil {
			// Reported, not fatal: local reward state stays as computed.
			m.logger.Warn().Err(err).Msg("score submission failed")
			report.SubmitErr = err
		} else {
			report.Rank = res.Rank
		}
	}

	next := StateCompleted
	if !evaluation.Passed {
		next = StateFailed
	}
	m.mu.Lock()
	m.state = next
	if !evaluation.Passed {
		m.failureReason = evaluation.Message
	}
	m.mu.Unlock()

	m.emit(EventChallengeEnd, map[string]any{
		"challengeId": m.desc.ID,
		"passed":      evaluation.Passed,
		"progress":    evaluation.Progress,
		"message":     evaluation.Message,
	})
	m.emitStateChange(StateActive, next)
	return report, nil
}

// Abort cancels an active session without evaluation.
func (m *Manager) Abort() {
	m.mu.Lock()
	if m.state != StateActive {
		m.mu.Unlock()
		return
	}
	m.stopTimerLocked()
	m.state = StateFailed
	m.failureReason = "aborted"
	m.mu.Unlock()

	m.engine.Pause()
	m.emitStateChange(StateActive, StateFailed)
}

func (m *Manager) emitStateChange(from, to State) {
	m.emit(EventStateChange, map[string]any{
		"from": from.String(),
		"to":   to.String(),
	})
}

func (m *Manager) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Failed reports whether the session ended in failure or timeout.
func (m *Manager) Failed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateFailed || m.state == StateTimeout
}

// FailureReason returns why the session failed, if it did.
func (m *Manager) FailureReason() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failureReason
}

// Descriptor returns the challenge this session runs.
func (m *Manager) Descriptor() *challenge.Descriptor {
	return m.desc
}
