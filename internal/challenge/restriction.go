package challenge

import (
	"fmt"
	"strings"

	"github.com/courtloop/challenge-engine/internal/engine"
)

// restrictionArchetype: keep a resource counter at or below a ceiling.
// No progress percentage is defined for this type; the verdict is binary.
type restrictionArchetype struct{}

func (a *restrictionArchetype) Type() Type  { return TypeRestriction }
func (a *restrictionArchetype) Weight() int { return 15 }

func (a *restrictionArchetype) Roll(s *engine.Stream) Goal {
	// Resource pick order: powerups, pauses, misses. Powerup bans are the
	// flagship restriction, so they carry double weight.
	resource := s.Pick([]int{2, 1, 1})
	ceiling := s.IntBetween(0, 2)
	switch resource {
	case 0:
		return RestrictionGoal{MaxPowerUps: &ceiling}
	case 1:
		return RestrictionGoal{MaxPauses: &ceiling}
	default:
		return RestrictionGoal{MaxMisses: &ceiling}
	}
}

func (a *restrictionArchetype) Describe(g Goal) (string, string) {
	goal := g.(RestrictionGoal)
	var clauses []string
	if goal.MaxPowerUps != nil {
		clauses = append(clauses, restrictionClause("power-up", *goal.MaxPowerUps))
	}
	if goal.MaxPauses != nil {
		clauses = append(clauses, restrictionClause("pause", *goal.MaxPauses))
	}
	if goal.MaxMisses != nil {
		clauses = append(clauses, restrictionClause("miss", *goal.MaxMisses))
	}
	return "House Rules",
		fmt.Sprintf("Complete a game %s.", strings.Join(clauses, " and "))
}

func restrictionClause(resource string, ceiling int) string {
	if ceiling == 0 {
		return fmt.Sprintf("without a single %s", resource)
	}
	return fmt.Sprintf("with at most %d %ses", ceiling, resource)
}

func (a *restrictionArchetype) Evaluate(g Goal, r GameResult) (bool, float64, string) {
	goal := g.(RestrictionGoal)
	if goal.MaxPowerUps != nil && *r.PowerUpsUsed > *goal.MaxPowerUps {
		return false, 0, fmt.Sprintf("Used %d power-ups, limit was %d", *r.PowerUpsUsed, *goal.MaxPowerUps)
	}
	if goal.MaxPauses != nil && *r.PauseCount > *goal.MaxPauses {
		return false, 0, fmt.Sprintf("Paused %d times, limit was %d", *r.PauseCount, *goal.MaxPauses)
	}
	if goal.MaxMisses != nil && *r.MissCount > *goal.MaxMisses {
		return false, 0, fmt.Sprintf("Missed %d times, limit was %d", *r.MissCount, *goal.MaxMisses)
	}
	return true, 100, "All restrictions respected"
}
