package challenge

// Evaluator judges completed sessions against descriptors. Each call is
// independent; the only instance state is a local evaluation log kept for
// UI replay, which never influences verdicts.
type Evaluator struct {
	log []Evaluation
}

// NewEvaluator creates an evaluator with an empty log.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate returns the verdict for a result against a descriptor.
//
// Structural problems are errors: a nil descriptor or goal, a type with no
// registered archetype, a goal that does not belong to the descriptor's
// type, or a result missing a field the goal requires. Callers must not
// interpret those as "challenge failed". Semantic failures (score too low,
// cap exceeded) are normal Evaluations with Passed=false.
func (e *Evaluator) Evaluate(d *Descriptor, r GameResult) (Evaluation, error) {
	if d == nil || d.Goal == nil {
		return Evaluation{}, unknownTypeError("")
	}
	arch, ok := GetType(d.Type)
	if !ok {
		return Evaluation{}, unknownTypeError(d.Type)
	}
	if d.Goal.ChallengeType() != d.Type {
		return Evaluation{}, unknownTypeError(d.Type)
	}
	for _, field := range d.Goal.requiredFields() {
		if !r.Has(field) {
			return Evaluation{}, missingFieldError(field)
		}
	}

	passed, progress, message := arch.Evaluate(d.Goal, r)
	ev := Evaluation{
		ChallengeID: d.ID,
		Passed:      passed,
		Progress:    progress,
		Message:     message,
	}
	e.log = append(e.log, ev)
	return ev, nil
}

// LastEvaluation returns the most recent logged evaluation, if any.
func (e *Evaluator) LastEvaluation() (Evaluation, bool) {
	if len(e.log) == 0 {
		return Evaluation{}, false
	}
	return e.log[len(e.log)-1], true
}

// History returns a copy of the evaluation log in call order.
func (e *Evaluator) History() []Evaluation {
	out := make([]Evaluation, len(e.log))
	copy(out, e.log)
	return out
}

// Reset clears the evaluation log.
func (e *Evaluator) Reset() {
	e.log = nil
}
