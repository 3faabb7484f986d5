package challenge

import (
	"fmt"
	"math"
	"strings"

	"github.com/courtloop/challenge-engine/internal/engine"
)

// compositeArchetype: every present sub-goal must pass on its own. Absent
// sub-goals are vacuously satisfied.
type compositeArchetype struct{}

func (a *compositeArchetype) Type() Type  { return TypeComposite }
func (a *compositeArchetype) Weight() int { return 10 }

func (a *compositeArchetype) Roll(s *engine.Stream) Goal {
	target := s.IntBetween(20, 40) * 100 // 2000..4000
	maxPowerUps := s.IntBetween(0, 1)
	goal := CompositeGoal{TargetScore: &target, MaxPowerUps: &maxPowerUps}
	if s.NextFloat() < 0.5 {
		maxMisses := s.IntBetween(3, 10)
		goal.MaxMisses = &maxMisses
	}
	return goal
}

func (a *compositeArchetype) Describe(g Goal) (string, string) {
	goal := g.(CompositeGoal)
	var clauses []string
	if goal.TargetScore != nil {
		clauses = append(clauses, fmt.Sprintf("score at least %d points", *goal.TargetScore))
	}
	if goal.MaxPowerUps != nil {
		clauses = append(clauses, restrictionClause("power-up", *goal.MaxPowerUps))
	}
	if goal.MaxMisses != nil {
		clauses = append(clauses, restrictionClause("miss", *goal.MaxMisses))
	}
	return "Combo Gauntlet",
		fmt.Sprintf("In one game, %s.", strings.Join(clauses, " and "))
}

func (a *compositeArchetype) Evaluate(g Goal, r GameResult) (bool, float64, string) {
	goal := g.(CompositeGoal)
	var failures []string
	progress := 100.0
	if goal.TargetScore != nil {
		progress = math.Min(100, 100*float64(*r.Score)/float64(*goal.TargetScore))
		if *r.Score < *goal.TargetScore {
			failures = append(failures, fmt.Sprintf("score %d below target %d", *r.Score, *goal.TargetScore))
		}
	}
	if goal.MaxPowerUps != nil && *r.PowerUpsUsed > *goal.MaxPowerUps {
		failures = append(failures, fmt.Sprintf("used %d power-ups, limit %d", *r.PowerUpsUsed, *goal.MaxPowerUps))
	}
	if goal.MaxMisses != nil && *r.MissCount > *goal.MaxMisses {
		failures = append(failures, fmt.Sprintf("missed %d times, limit %d", *r.MissCount, *goal.MaxMisses))
	}
	if len(failures) > 0 {
		return false, progress, "Sub-goals failed: " + strings.Join(failures, "; ")
	}
	return true, progress, "All sub-goals met"
}
