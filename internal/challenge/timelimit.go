package challenge

import (
	"fmt"
	"math"

	"github.com/courtloop/challenge-engine/internal/engine"
)

// timeArchetype: finish within a maximum duration. Progress reflects the
// remaining headroom under the cap, not the elapsed fraction: a instant
// finish is 100, finishing exactly on the cap is 0.
type timeArchetype struct{}

func (a *timeArchetype) Type() Type  { return TypeTime }
func (a *timeArchetype) Weight() int { return 15 }

func (a *timeArchetype) Roll(s *engine.Stream) Goal {
	// 60..180 seconds in steps of 10
	return TimeGoal{MaxDuration: float64(s.IntBetween(6, 18) * 10)}
}

func (a *timeArchetype) Describe(g Goal) (string, string) {
	goal := g.(TimeGoal)
	return "Beat the Clock",
		fmt.Sprintf("Finish a game in %.0f seconds or less.", goal.MaxDuration)
}

func (a *timeArchetype) Evaluate(g Goal, r GameResult) (bool, float64, string) {
	goal := g.(TimeGoal)
	duration := *r.Duration
	passed := duration <= goal.MaxDuration
	headroom := math.Min(100, 100*(goal.MaxDuration-duration)/goal.MaxDuration)
	if headroom < 0 {
		headroom = 0
	}
	if passed {
		return true, headroom, fmt.Sprintf("Finished in %.1fs, %.1fs under the %.0fs cap", duration, goal.MaxDuration-duration, goal.MaxDuration)
	}
	return false, headroom, fmt.Sprintf("Took %.1fs, over the %.0fs cap", duration, goal.MaxDuration)
}
