package challenge

import (
	"fmt"
	"math"

	"github.com/courtloop/challenge-engine/internal/engine"
)

// survivalArchetype: keep a game alive for a minimum duration.
type survivalArchetype struct{}

func (a *survivalArchetype) Type() Type  { return TypeTimeSurvival }
func (a *survivalArchetype) Weight() int { return 15 }

func (a *survivalArchetype) Roll(s *engine.Stream) Goal {
	// 90..240 seconds in steps of 10
	return SurvivalGoal{MinDuration: float64(s.IntBetween(9, 24) * 10)}
}

func (a *survivalArchetype) Describe(g Goal) (string, string) {
	goal := g.(SurvivalGoal)
	return "Endurance Run",
		fmt.Sprintf("Survive for at least %.0f seconds in a single game.", goal.MinDuration)
}

func (a *survivalArchetype) Evaluate(g Goal, r GameResult) (bool, float64, string) {
	goal := g.(SurvivalGoal)
	duration := *r.Duration
	passed := duration >= goal.MinDuration
	progress := math.Min(100, 100*duration/goal.MinDuration)
	if passed {
		return true, progress, fmt.Sprintf("Survived %.1fs, target was %.0fs", duration, goal.MinDuration)
	}
	return false, progress, fmt.Sprintf("Survived %.1fs of the required %.0fs", duration, goal.MinDuration)
}
