// Package rewards mints badges and achievements from challenge clears and
// keeps the streak bookkeeping behind them.
package rewards

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/courtloop/challenge-engine/internal/challenge"
)

// Achievement condition codes.
const (
	ConditionComplete      = "COMPLETE"
	ConditionTopPercentile = "TOP_PERCENTILE"
	ConditionPerfect       = "PERFECT"
	ConditionStreak3       = "STREAK_3"
)

// Achievement is a permanent record minted at the moment it is granted.
// It is never mutated after creation.
type Achievement struct {
	ID          string          `json:"id"`
	ChallengeID string          `json:"challengeId"`
	Condition   string          `json:"condition"`
	Points      decimal.Decimal `json:"points"`
	EarnedAt    time.Time       `json:"earnedAt"`
}

// ChallengeClear reports a cleared challenge to the reward system. Week is
// the typed week index; callers should set it directly rather than rely on
// the challenge-ID fallback parse.
type ChallengeClear struct {
	ChallengeID  string    `json:"challengeId"`
	Week         int       `json:"week"`
	Score        int       `json:"score"`
	FirstClear   bool      `json:"firstClear"`
	HighScore    bool      `json:"highScore"`
	Percentile   float64   `json:"percentile"`
	PerfectClear bool      `json:"perfectClear"`
	ClearedAt    time.Time `json:"clearedAt"`
}

// ClearOutcome lists what a processed clear earned.
type ClearOutcome struct {
	Badges          []Badge         `json:"badges"`
	NewAchievements []Achievement   `json:"newAchievements"`
	TotalPoints     decimal.Decimal `json:"totalPoints"`
}

// PlayStats are the counters checked for a perfect clear.
type PlayStats struct {
	MissCount    int `json:"missCount"`
	PowerupsUsed int `json:"powerupsUsed"`
	PauseCount   int `json:"pauseCount"`
}

// SpeedrunCheck carries the figures for a speedrun verdict.
type SpeedrunCheck struct {
	ChallengeType challenge.Type `json:"challengeType"`
	TargetScore   int            `json:"targetScore"`
	ActualScore   int            `json:"actualScore"`
	TimeElapsed   float64        `json:"timeElapsed"`  // seconds
	ExpectedTime  float64        `json:"expectedTime"` // seconds
}

// AchievementStats summarizes the persisted achievement collection.
// WeeklyStreak counts COMPLETE-condition achievements; see
// ConsecutiveWeekStreak for real run-length detection.
type AchievementStats struct {
	TotalAchievements   int        `json:"totalAchievements"`
	WeeklyStreak        int        `json:"weeklyStreak"`
	LastAchievementDate *time.Time `json:"lastAchievementDate"`
}

// RewardPreview describes what a not-yet-played challenge could award.
type RewardPreview struct {
	ChallengeID    string   `json:"challengeId"`
	PossibleBadges []Badge  `json:"possibleBadges"`
	Conditions     []string `json:"conditions"`
}

// Store is the persistence the reward system delegates to. Reward history is
// best-effort: callers treat load failures as an empty collection.
type Store interface {
	SaveAchievement(ctx context.Context, a Achievement) error
	ListAchievements(ctx context.Context) ([]Achievement, error)
	SaveClear(ctx context.Context, c ChallengeClear) error
	ListClears(ctx context.Context, limit, offset int) ([]ChallengeClear, int, error)
}

// System owns badge and clear-history state for one player session.
// Persistence is a delegated side effect; all verdict logic is local.
type System struct {
	logger  zerolog.Logger
	store   Store
	now     func() time.Time
	badges  map[string]*Badge
	history []ChallengeClear
}

// NewSystem creates a reward system backed by the given store.
func NewSystem(store Store, logger zerolog.Logger) *System {
	return &System{
		logger: logger.With().Str("component", "rewards").Logger(),
		store:  store,
		now:    time.Now,
		badges: make(map[string]*Badge),
	}
}

func pointsFor(r Rarity) decimal.Decimal {
	switch r {
	case RarityCommon:
		return decimal.NewFromInt(10)
	case RarityRare:
		return decimal.NewFromInt(25)
	case RarityEpic:
		return decimal.NewFromInt(50)
	case RarityLegendary:
		return decimal.NewFromInt(100)
	}
	return decimal.Zero
}

// ProcessChallengeClear records a clear and mints whatever it earned. The
// clear is appended to history regardless of outcome. Persistence failures
// are logged and do not roll back the computed local state.
func (s *System) ProcessChallengeClear(ctx context.Context, clear ChallengeClear) (*ClearOutcome, error) {
	if clear.ChallengeID == "" {
		return nil, fmt.Errorf("rewards: clear missing challenge id")
	}
	if clear.Week == 0 {
		// Fallback for callers that only carry the formatted ID.
		if _, err := fmt.Sscanf(clear.ChallengeID, "weekly-challenge-%d", &clear.Week); err != nil {
			return nil, fmt.Errorf("rewards: clear missing week and id %q is not parseable: %w", clear.ChallengeID, err)
		}
	}
	if clear.ClearedAt.IsZero() {
		clear.ClearedAt = s.now()
	}

	repeat := false
	for _, prev := range s.history {
		if prev.ChallengeID == clear.ChallengeID {
			repeat = true
			break
		}
	}
	s.history = append(s.history, clear)
	if err := s.store.SaveClear(ctx, clear); err != nil {
		s.logger.Warn().Err(err).Str("challenge", clear.ChallengeID).Msg("failed to persist clear")
	}

	outcome := &ClearOutcome{TotalPoints: decimal.Zero}

	if !repeat {
		s.grantAchievement(ctx, outcome, clear, ConditionComplete, pointsFor(RarityCommon))
	}
	if clear.FirstClear {
		s.mintBadge(outcome, BadgeFirstChallenge, clear.ClearedAt)
	}
	if clear.HighScore && clear.Percentile <= 1 {
		if s.mintBadge(outcome, BadgeTopOnePercent, clear.ClearedAt) {
			s.grantAchievement(ctx, outcome, clear, ConditionTopPercentile, pointsFor(RarityLegendary))
		}
	}
	if clear.PerfectClear {
		if s.mintBadge(outcome, BadgeFlawless, clear.ClearedAt) {
			s.grantAchievement(ctx, outcome, clear, ConditionPerfect, pointsFor(RarityEpic))
		}
	}
	if s.hasStreak(clear.Week, 3) {
		if s.mintBadge(outcome, BadgeStreak3, clear.ClearedAt) {
			s.grantAchievement(ctx, outcome, clear, ConditionStreak3, pointsFor(RarityRare))
		}
	}

	return outcome, nil
}

// mintBadge unlocks a catalog badge once. Returns true when this call
// performed the unlock; an already unlocked badge is left untouched and not
// added to the outcome.
func (s *System) mintBadge(outcome *ClearOutcome, id string, at time.Time) bool {
	if existing, ok := s.badges[id]; ok && existing.Unlocked() {
		return false
	}
	tmpl, ok := catalogBadge(id)
	if !ok {
		return false
	}
	badge := tmpl
	badge.Unlock(at)
	s.badges[id] = &badge
	outcome.Badges = append(outcome.Badges, badge)
	return true
}

func (s *System) grantAchievement(ctx context.Context, outcome *ClearOutcome, clear ChallengeClear, condition string, points decimal.Decimal) {
	a := Achievement{
		ID:          uuid.NewString(),
		ChallengeID: clear.ChallengeID,
		Condition:   condition,
		Points:      points,
		EarnedAt:    clear.ClearedAt,
	}
	if err := s.store.SaveAchievement(ctx, a); err != nil {
		s.logger.Warn().Err(err).Str("condition", condition).Msg("failed to persist achievement")
	}
	outcome.NewAchievements = append(outcome.NewAchievements, a)
	outcome.TotalPoints = outcome.TotalPoints.Add(points)
}

// hasStreak reports whether the processed history contains length
// consecutive week indices ending at week.
func (s *System) hasStreak(week, length int) bool {
	if week < length {
		return false
	}
	weeks := make(map[int]bool, len(s.history))
	for _, c := range s.history {
		weeks[c.Week] = true
	}
	for i := 0; i < length; i++ {
		if !weeks[week-i] {
			return false
		}
	}
	return true
}

// Badges returns the badges minted this session, unlocked first-in order is
// not guaranteed.
func (s *System) Badges() []Badge {
	out := make([]Badge, 0, len(s.badges))
	for _, b := range s.badges {
		out = append(out, *b)
	}
	return out
}

// History returns a copy of the processed clear records.
func (s *System) History() []ChallengeClear {
	out := make([]ChallengeClear, len(s.history))
	copy(out, s.history)
	return out
}

// CheckPerfectClear is true iff every tracked counter is exactly zero.
func (s *System) CheckPerfectClear(stats PlayStats) bool {
	return stats.MissCount == 0 && stats.PowerupsUsed == 0 && stats.PauseCount == 0
}

// CheckSpeedrun is true iff the challenge is score-based, the target was
// met, and the run beat half the expected time.
func (s *System) CheckSpeedrun(data SpeedrunCheck) bool {
	if data.ChallengeType != challenge.TypeScore && data.ChallengeType != challenge.TypeComposite {
		return false
	}
	if data.ActualScore < data.TargetScore {
		return false
	}
	if data.ExpectedTime <= 0 {
		return false
	}
	return data.TimeElapsed < data.ExpectedTime/2
}

// SaveAchievement persists a single achievement through the store.
func (s *System) SaveAchievement(ctx context.Context, a Achievement) error {
	return s.store.SaveAchievement(ctx, a)
}

// LoadAchievements returns the persisted achievement collection. Missing or
// unreadable state degrades to an empty collection; reward history is
// best-effort, never critical-path.
func (s *System) LoadAchievements(ctx context.Context) []Achievement {
	achievements, err := s.store.ListAchievements(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load achievements, treating as empty")
		return []Achievement{}
	}
	if achievements == nil {
		return []Achievement{}
	}
	return achievements
}

// AchievementStats derives summary figures from the persisted collection.
// WeeklyStreak deliberately counts COMPLETE-condition achievements rather
// than verifying run length; ConsecutiveWeekStreak is the corrected variant.
func (s *System) AchievementStats(ctx context.Context) AchievementStats {
	achievements := s.LoadAchievements(ctx)
	stats := AchievementStats{TotalAchievements: len(achievements)}
	for i := range achievements {
		a := &achievements[i]
		if a.Condition == ConditionComplete {
			stats.WeeklyStreak++
		}
		if stats.LastAchievementDate == nil || a.EarnedAt.After(*stats.LastAchievementDate) {
			t := a.EarnedAt
			stats.LastAchievementDate = &t
		}
	}
	return stats
}

// ConsecutiveWeekStreak computes the true trailing run of consecutive
// cleared weeks from the persisted clear history: the number of weeks,
// counting down from the most recent cleared week, with no gap.
func (s *System) ConsecutiveWeekStreak(ctx context.Context) (int, error) {
	clears, _, err := s.store.ListClears(ctx, 0, 0)
	if err != nil {
		return 0, fmt.Errorf("rewards: list clears: %w", err)
	}
	weeks := make(map[int]bool, len(clears)+len(s.history))
	latest := 0
	for _, c := range clears {
		weeks[c.Week] = true
		if c.Week > latest {
			latest = c.Week
		}
	}
	for _, c := range s.history {
		weeks[c.Week] = true
		if c.Week > latest {
			latest = c.Week
		}
	}
	streak := 0
	for w := latest; w >= 1 && weeks[w]; w-- {
		streak++
	}
	return streak, nil
}

// Preview describes what clearing the given challenge could award. It never
// mutates reward state.
func (s *System) Preview(d *challenge.Descriptor) RewardPreview {
	if d == nil {
		return RewardPreview{}
	}
	preview := RewardPreview{ChallengeID: d.ID}
	for _, tmpl := range catalog {
		if minted, ok := s.badges[tmpl.ID]; ok && minted.Unlocked() {
			continue
		}
		preview.PossibleBadges = append(preview.PossibleBadges, tmpl)
	}
	preview.Conditions = []string{
		"Clear the challenge to earn completion points",
		"Clear with zero misses, power-ups and pauses for the Flawless badge",
		"Post a top 1% score for the Court Royalty badge",
		fmt.Sprintf("Clear weeks %d through %d for the streak badge", d.Week-2, d.Week),
	}
	return preview
}
