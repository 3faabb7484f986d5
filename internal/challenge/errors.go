package challenge

import "fmt"

// StructuralError reports a caller bug or a corrupted descriptor: a game
// result missing a field the goal requires, or a challenge type no archetype
// is registered for. It is never used for "goal not met" verdicts; those are
// ordinary failed Evaluations.
type StructuralError struct {
	// MissingField is set when a required GameResult field is absent.
	MissingField string
	// UnknownType is set when the descriptor's type has no archetype.
	UnknownType Type
}

func (e *StructuralError) Error() string {
	if e.MissingField != "" {
		return fmt.Sprintf("game result missing required field %q", e.MissingField)
	}
	return fmt.Sprintf("unknown challenge type %q", e.UnknownType)
}

func missingFieldError(field string) *StructuralError {
	return &StructuralError{MissingField: field}
}

func unknownTypeError(t Type) *StructuralError {
	return &StructuralError{UnknownType: t}
}
