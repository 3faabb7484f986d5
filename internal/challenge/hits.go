package challenge

import (
	"fmt"
	"math"

	"github.com/courtloop/challenge-engine/internal/engine"
)

// consecutiveHitsArchetype: land an unbroken run of hits.
type consecutiveHitsArchetype struct{}

func (a *consecutiveHitsArchetype) Type() Type  { return TypeConsecutiveHits }
func (a *consecutiveHitsArchetype) Weight() int { return 15 }

func (a *consecutiveHitsArchetype) Roll(s *engine.Stream) Goal {
	return ConsecutiveHitsGoal{TargetHits: s.IntBetween(10, 30)}
}

func (a *consecutiveHitsArchetype) Describe(g Goal) (string, string) {
	goal := g.(ConsecutiveHitsGoal)
	return "Rally Master",
		fmt.Sprintf("Hit the ball %d times in a row without missing.", goal.TargetHits)
}

func (a *consecutiveHitsArchetype) Evaluate(g Goal, r GameResult) (bool, float64, string) {
	goal := g.(ConsecutiveHitsGoal)
	hits := *r.ConsecutiveHits
	passed := hits >= goal.TargetHits
	progress := math.Min(100, 100*float64(hits)/float64(goal.TargetHits))
	if passed {
		return true, progress, fmt.Sprintf("Best rally of %d hits, target was %d", hits, goal.TargetHits)
	}
	return false, progress, fmt.Sprintf("Best rally of %d hits, %d short of %d", hits, goal.TargetHits-hits, goal.TargetHits)
}
