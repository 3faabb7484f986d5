package challenge

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type identifies a challenge archetype.
type Type string

const (
	TypeScore           Type = "score"
	TypeTime            Type = "time"
	TypeRestriction     Type = "restriction"
	TypeComposite       Type = "composite"
	TypeConsecutiveHits Type = "consecutive_hits"
	TypeTimeSurvival    Type = "time_survival"
)

// GameResult field names used in structural validation errors.
const (
	FieldScore           = "score"
	FieldDuration        = "duration"
	FieldPowerUpsUsed    = "powerUpsUsed"
	FieldMissCount       = "missCount"
	FieldPauseCount      = "pauseCount"
	FieldConsecutiveHits = "consecutiveHits"
)

// Restriction names a real-time rule the session layer enforces during play.
type Restriction string

const (
	RestrictionNoPowerups Restriction = "NO_POWERUPS"
	RestrictionNoPause    Restriction = "NO_PAUSE"
	RestrictionNoMisses   Restriction = "NO_MISSES"
)

// Goal is the typed target of a challenge. Exactly one concrete variant
// exists per challenge type; the unexported method seals the set.
type Goal interface {
	// ChallengeType reports which archetype the goal belongs to.
	ChallengeType() Type
	// Primary is the headline target value shown to players.
	Primary() float64

	requiredFields() []string
}

// ScoreGoal: reach at least TargetScore points.
type ScoreGoal struct {
	TargetScore int `json:"targetScore"`
}

func (g ScoreGoal) ChallengeType() Type      { return TypeScore }
func (g ScoreGoal) Primary() float64         { return float64(g.TargetScore) }
func (g ScoreGoal) requiredFields() []string { return []string{FieldScore} }

// TimeGoal: finish the session within MaxDuration seconds.
type TimeGoal struct {
	MaxDuration float64 `json:"maxDuration"`
}

func (g TimeGoal) ChallengeType() Type      { return TypeTime }
func (g TimeGoal) Primary() float64         { return g.MaxDuration }
func (g TimeGoal) requiredFields() []string { return []string{FieldDuration} }

// RestrictionGoal: keep one or more resource counters at or below a ceiling.
// At least one ceiling is set; nil ceilings are not part of the goal.
type RestrictionGoal struct {
	MaxPowerUps *int `json:"maxPowerUps,omitempty"`
	MaxPauses   *int `json:"maxPauses,omitempty"`
	MaxMisses   *int `json:"maxMisses,omitempty"`
}

func (g RestrictionGoal) ChallengeType() Type { return TypeRestriction }

func (g RestrictionGoal) Primary() float64 {
	switch {
	case g.MaxPowerUps != nil:
		return float64(*g.MaxPowerUps)
	case g.MaxPauses != nil:
		return float64(*g.MaxPauses)
	case g.MaxMisses != nil:
		return float64(*g.MaxMisses)
	}
	return 0
}

func (g RestrictionGoal) requiredFields() []string {
	var fields []string
	if g.MaxPowerUps != nil {
		fields = append(fields, FieldPowerUpsUsed)
	}
	if g.MaxPauses != nil {
		fields = append(fields, FieldPauseCount)
	}
	if g.MaxMisses != nil {
		fields = append(fields, FieldMissCount)
	}
	return fields
}

// CompositeGoal: every present sub-goal must pass independently; omitted
// sub-goals are vacuously satisfied.
type CompositeGoal struct {
	TargetScore *int `json:"targetScore,omitempty"`
	MaxPowerUps *int `json:"maxPowerUps,omitempty"`
	MaxMisses   *int `json:"maxMisses,omitempty"`
}

func (g CompositeGoal) ChallengeType() Type { return TypeComposite }

func (g CompositeGoal) Primary() float64 {
	if g.TargetScore != nil {
		return float64(*g.TargetScore)
	}
	return 0
}

func (g CompositeGoal) requiredFields() []string {
	var fields []string
	if g.TargetScore != nil {
		fields = append(fields, FieldScore)
	}
	if g.MaxPowerUps != nil {
		fields = append(fields, FieldPowerUpsUsed)
	}
	if g.MaxMisses != nil {
		fields = append(fields, FieldMissCount)
	}
	return fields
}

// ConsecutiveHitsGoal: land at least TargetHits hits in a row.
type ConsecutiveHitsGoal struct {
	TargetHits int `json:"targetHits"`
}

func (g ConsecutiveHitsGoal) ChallengeType() Type      { return TypeConsecutiveHits }
func (g ConsecutiveHitsGoal) Primary() float64         { return float64(g.TargetHits) }
func (g ConsecutiveHitsGoal) requiredFields() []string { return []string{FieldConsecutiveHits} }

// SurvivalGoal: keep the rally alive for at least MinDuration seconds.
type SurvivalGoal struct {
	MinDuration float64 `json:"minDuration"`
}

func (g SurvivalGoal) ChallengeType() Type      { return TypeTimeSurvival }
func (g SurvivalGoal) Primary() float64         { return g.MinDuration }
func (g SurvivalGoal) requiredFields() []string { return []string{FieldDuration} }

// Parameters are the gameplay knobs applied to the game engine before a
// challenge session starts. Each value is clamped to its documented range by
// the generator.
type Parameters struct {
	BallSpeed        float64 `json:"ballSpeed"`        // [5, 10]
	PaddleSize       int     `json:"paddleSize"`       // [50, 100]
	BallCount        int     `json:"ballCount"`        // [1, 3]
	PowerupFrequency float64 `json:"powerupFrequency"` // [0, 1]
}

// Descriptor is the complete weekly challenge specification. It is a pure
// function of the week index: regenerating for any instant within the same
// week yields a field-for-field identical descriptor.
type Descriptor struct {
	ID          string     `json:"id"`
	Week        int        `json:"week"`
	Type        Type       `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Target      float64    `json:"target"`
	TimeLimit   *float64   `json:"timeLimit"` // seconds, nil when unlimited
	Goal        Goal       `json:"-"`
	Parameters  Parameters `json:"parameters"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     time.Time  `json:"endDate"`
	Version     string     `json:"version"`
}

// Restrictions derives the real-time rules the session layer must enforce
// from the goal's zero ceilings.
func (d *Descriptor) Restrictions() []Restriction {
	var out []Restriction
	switch g := d.Goal.(type) {
	case RestrictionGoal:
		if g.MaxPowerUps != nil && *g.MaxPowerUps == 0 {
			out = append(out, RestrictionNoPowerups)
		}
		if g.MaxPauses != nil && *g.MaxPauses == 0 {
			out = append(out, RestrictionNoPause)
		}
		if g.MaxMisses != nil && *g.MaxMisses == 0 {
			out = append(out, RestrictionNoMisses)
		}
	case CompositeGoal:
		if g.MaxPowerUps != nil && *g.MaxPowerUps == 0 {
			out = append(out, RestrictionNoPowerups)
		}
		if g.MaxMisses != nil && *g.MaxMisses == 0 {
			out = append(out, RestrictionNoMisses)
		}
	}
	return out
}

// goalEnvelope is the wire shape of the goal union: the superset of all
// variant fields, discriminated by the descriptor's type.
type goalEnvelope struct {
	TargetScore *int     `json:"targetScore,omitempty"`
	MaxDuration *float64 `json:"maxDuration,omitempty"`
	MinDuration *float64 `json:"minDuration,omitempty"`
	TargetHits  *int     `json:"targetHits,omitempty"`
	MaxPowerUps *int     `json:"maxPowerUps,omitempty"`
	MaxPauses   *int     `json:"maxPauses,omitempty"`
	MaxMisses   *int     `json:"maxMisses,omitempty"`
}

func envelopeFromGoal(g Goal) goalEnvelope {
	var env goalEnvelope
	switch goal := g.(type) {
	case ScoreGoal:
		env.TargetScore = &goal.TargetScore
	case TimeGoal:
		env.MaxDuration = &goal.MaxDuration
	case RestrictionGoal:
		env.MaxPowerUps = goal.MaxPowerUps
		env.MaxPauses = goal.MaxPauses
		env.MaxMisses = goal.MaxMisses
	case CompositeGoal:
		env.TargetScore = goal.TargetScore
		env.MaxPowerUps = goal.MaxPowerUps
		env.MaxMisses = goal.MaxMisses
	case ConsecutiveHitsGoal:
		env.TargetHits = &goal.TargetHits
	case SurvivalGoal:
		env.MinDuration = &goal.MinDuration
	}
	return env
}

func (env goalEnvelope) toGoal(t Type) (Goal, error) {
	switch t {
	case TypeScore:
		if env.TargetScore == nil {
			return nil, fmt.Errorf("score goal missing targetScore")
		}
		return ScoreGoal{TargetScore: *env.TargetScore}, nil
	case TypeTime:
		if env.MaxDuration == nil {
			return nil, fmt.Errorf("time goal missing maxDuration")
		}
		return TimeGoal{MaxDuration: *env.MaxDuration}, nil
	case TypeRestriction:
		g := RestrictionGoal{MaxPowerUps: env.MaxPowerUps, MaxPauses: env.MaxPauses, MaxMisses: env.MaxMisses}
		if len(g.requiredFields()) == 0 {
			return nil, fmt.Errorf("restriction goal has no ceilings")
		}
		return g, nil
	case TypeComposite:
		return CompositeGoal{TargetScore: env.TargetScore, MaxPowerUps: env.MaxPowerUps, MaxMisses: env.MaxMisses}, nil
	case TypeConsecutiveHits:
		if env.TargetHits == nil {
			return nil, fmt.Errorf("consecutive_hits goal missing targetHits")
		}
		return ConsecutiveHitsGoal{TargetHits: *env.TargetHits}, nil
	case TypeTimeSurvival:
		if env.MinDuration == nil {
			return nil, fmt.Errorf("time_survival goal missing minDuration")
		}
		return SurvivalGoal{MinDuration: *env.MinDuration}, nil
	}
	return nil, fmt.Errorf("unknown challenge type %q", t)
}

// descriptorJSON mirrors Descriptor with the goal flattened into an envelope.
type descriptorJSON struct {
	ID          string       `json:"id"`
	Week        int          `json:"week"`
	Type        Type         `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Target      float64      `json:"target"`
	TimeLimit   *float64     `json:"timeLimit"`
	Goal        goalEnvelope `json:"goal"`
	Parameters  Parameters   `json:"parameters"`
	StartDate   time.Time    `json:"startDate"`
	EndDate     time.Time    `json:"endDate"`
	Version     string       `json:"version"`
}

// MarshalJSON flattens the goal union into a type-discriminated envelope.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(descriptorJSON{
		ID:          d.ID,
		Week:        d.Week,
		Type:        d.Type,
		Title:       d.Title,
		Description: d.Description,
		Target:      d.Target,
		TimeLimit:   d.TimeLimit,
		Goal:        envelopeFromGoal(d.Goal),
		Parameters:  d.Parameters,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		Version:     d.Version,
	})
}

// UnmarshalJSON restores the typed goal from the envelope.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	var dj descriptorJSON
	if err := json.Unmarshal(data, &dj); err != nil {
		return err
	}
	goal, err := dj.Goal.toGoal(dj.Type)
	if err != nil {
		return err
	}
	*d = Descriptor{
		ID:          dj.ID,
		Week:        dj.Week,
		Type:        dj.Type,
		Title:       dj.Title,
		Description: dj.Description,
		Target:      dj.Target,
		TimeLimit:   dj.TimeLimit,
		Goal:        goal,
		Parameters:  dj.Parameters,
		StartDate:   dj.StartDate,
		EndDate:     dj.EndDate,
		Version:     dj.Version,
	}
	return nil
}

// GameResult is the statistics record captured at the end of a play session.
// Fields are pointers so that an absent value is distinguishable from zero;
// which fields are required depends on the challenge's goal.
type GameResult struct {
	Score           *int     `json:"score,omitempty"`
	Duration        *float64 `json:"duration,omitempty"` // seconds
	PowerUpsUsed    *int     `json:"powerUpsUsed,omitempty"`
	MissCount       *int     `json:"missCount,omitempty"`
	PauseCount      *int     `json:"pauseCount,omitempty"`
	ConsecutiveHits *int     `json:"consecutiveHits,omitempty"`
}

// Has reports whether the named field is present on the record.
func (r GameResult) Has(field string) bool {
	switch field {
	case FieldScore:
		return r.Score != nil
	case FieldDuration:
		return r.Duration != nil
	case FieldPowerUpsUsed:
		return r.PowerUpsUsed != nil
	case FieldMissCount:
		return r.MissCount != nil
	case FieldPauseCount:
		return r.PauseCount != nil
	case FieldConsecutiveHits:
		return r.ConsecutiveHits != nil
	}
	return false
}

// Evaluation is the verdict for a single completed session against a
// descriptor. Progress is a percentage in [0, 100].
type Evaluation struct {
	ChallengeID string  `json:"challengeId"`
	Passed      bool    `json:"passed"`
	Progress    float64 `json:"progress"`
	Message     string  `json:"message"`
}
