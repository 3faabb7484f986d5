package challenge

import "github.com/courtloop/challenge-engine/internal/engine"

// Archetype is one challenge type: it knows how to roll a goal from the
// weekly stream, how to phrase it for players, and how to judge a finished
// session against it.
type Archetype interface {
	// Type is the archetype's identifier.
	Type() Type
	// Weight is the archetype's share in the weekly weighted pick.
	Weight() int
	// Roll draws the goal for a week. The number and order of draws it
	// consumes from the stream is part of GeneratorVersion.
	Roll(s *engine.Stream) Goal
	// Describe renders the player-facing title and description for a goal.
	Describe(g Goal) (title, description string)
	// Evaluate judges a structurally valid result against the goal.
	// Validation of required fields happens in the Evaluator before this is
	// called.
	Evaluate(g Goal, r GameResult) (passed bool, progress float64, message string)
}

// archetypes holds the registered types in registration order. Order matters:
// the weighted pick indexes into this slice, so it is as much a part of the
// deterministic draw as the PRNG itself.
var archetypes []Archetype

var archetypesByType = make(map[Type]Archetype)

func register(a Archetype) {
	archetypes = append(archetypes, a)
	archetypesByType[a.Type()] = a
}

// GetType retrieves an archetype by its type identifier.
func GetType(t Type) (Archetype, bool) {
	a, ok := archetypesByType[t]
	return a, ok
}

// ListTypes returns the registered challenge types in pick order.
func ListTypes() []Type {
	out := make([]Type, len(archetypes))
	for i, a := range archetypes {
		out[i] = a.Type()
	}
	return out
}

func init() {
	register(&scoreArchetype{})
	register(&timeArchetype{})
	register(&restrictionArchetype{})
	register(&compositeArchetype{})
	register(&consecutiveHitsArchetype{})
	register(&survivalArchetype{})
}
