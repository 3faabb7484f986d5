package challenge

import (
	"fmt"
	"math"
	"time"

	"github.com/courtloop/challenge-engine/internal/engine"
)

// Parameter ranges. The generator clamps every drawn value to these bounds.
const (
	minBallSpeed        = 5.0
	maxBallSpeed        = 10.0
	minPaddleSize       = 50
	maxPaddleSize       = 100
	minBallCount        = 1
	maxBallCount        = 3
	minPowerupFrequency = 0.0
	maxPowerupFrequency = 1.0
)

// IDForWeek formats the canonical challenge identifier for a week index.
func IDForWeek(weekIndex int) string {
	return fmt.Sprintf("weekly-challenge-%d", weekIndex)
}

// Generate produces the challenge descriptor for a week index. It is a pure
// function of the week: the archetype pick, the goal, the optional time limit
// and the gameplay parameters are all drawn in a pinned order from a stream
// keyed by engine.Seed(week). Week indices at or below 0 yield (nil, nil):
// there is no challenge before the epoch.
func Generate(weekIndex int, epoch time.Time) (*Descriptor, error) {
	seed := engine.Seed(weekIndex)
	if seed == 0 {
		return nil, nil
	}

	s := engine.NewStream(seed)

	weights := make([]int, len(archetypes))
	for i, a := range archetypes {
		weights[i] = a.Weight()
	}
	arch := archetypes[s.Pick(weights)]
	goal := arch.Roll(s)
	timeLimit := rollTimeLimit(s, goal)
	params := rollParameters(s)

	title, description := arch.Describe(goal)
	start, end := engine.WeekBounds(weekIndex, epoch)

	return &Descriptor{
		ID:          IDForWeek(weekIndex),
		Week:        weekIndex,
		Type:        arch.Type(),
		Title:       title,
		Description: description,
		Target:      goal.Primary(),
		TimeLimit:   timeLimit,
		Goal:        goal,
		Parameters:  params,
		StartDate:   start,
		EndDate:     end,
		Version:     engine.GeneratorVersion,
	}, nil
}

// GenerateAt resolves the week for an instant and generates its descriptor.
func GenerateAt(t time.Time, epoch time.Time) (*Descriptor, error) {
	return Generate(engine.WeekNumber(t, epoch), epoch)
}

// rollTimeLimit draws the session time limit. Time-capped goals reuse their
// own cap; survival goals are open-ended; every other type gets a limit half
// the time.
func rollTimeLimit(s *engine.Stream, goal Goal) *float64 {
	switch g := goal.(type) {
	case TimeGoal:
		limit := g.MaxDuration
		return &limit
	case SurvivalGoal:
		return nil
	}
	if s.NextFloat() < 0.5 {
		limit := float64(s.IntBetween(6, 18) * 10) // 60..180s
		return &limit
	}
	return nil
}

// rollParameters draws the gameplay knobs in a pinned order and clamps each
// to its documented range.
func rollParameters(s *engine.Stream) Parameters {
	return Parameters{
		BallSpeed:        clampFloat(round1(s.FloatBetween(minBallSpeed, maxBallSpeed)), minBallSpeed, maxBallSpeed),
		PaddleSize:       clampInt(s.IntBetween(minPaddleSize, maxPaddleSize), minPaddleSize, maxPaddleSize),
		BallCount:        clampInt(s.IntBetween(minBallCount, maxBallCount), minBallCount, maxBallCount),
		PowerupFrequency: clampFloat(round2(s.FloatBetween(minPowerupFrequency, maxPowerupFrequency)), minPowerupFrequency, maxPowerupFrequency),
	}
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }

func clampFloat(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
