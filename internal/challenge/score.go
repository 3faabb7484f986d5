package challenge

import (
	"fmt"
	"math"

	"github.com/courtloop/challenge-engine/internal/engine"
)

// scoreArchetype: reach a target score. The boundary is inclusive.
type scoreArchetype struct{}

func (a *scoreArchetype) Type() Type  { return TypeScore }
func (a *scoreArchetype) Weight() int { return 30 }

func (a *scoreArchetype) Roll(s *engine.Stream) Goal {
	// 1000..5000 in steps of 100
	return ScoreGoal{TargetScore: s.IntBetween(10, 50) * 100}
}

func (a *scoreArchetype) Describe(g Goal) (string, string) {
	goal := g.(ScoreGoal)
	return "Point Chase",
		fmt.Sprintf("Score at least %d points in a single game.", goal.TargetScore)
}

func (a *scoreArchetype) Evaluate(g Goal, r GameResult) (bool, float64, string) {
	goal := g.(ScoreGoal)
	score := *r.Score
	passed := score >= goal.TargetScore
	progress := math.Min(100, 100*float64(score)/float64(goal.TargetScore))
	if passed {
		return true, progress, fmt.Sprintf("Scored %d of %d points", score, goal.TargetScore)
	}
	return false, progress, fmt.Sprintf("Scored %d of %d points, %d short", score, goal.TargetScore, goal.TargetScore-score)
}
