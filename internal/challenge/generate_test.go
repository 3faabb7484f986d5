package challenge

import (
	"fmt"
	"testing"
	"time"

	"github.com/courtloop/challenge-engine/internal/engine"
)

func TestGenerateReproducible(t *testing.T) {
	epoch := engine.DefaultEpoch
	for week := 1; week <= 200; week++ {
		a, err := Generate(week, epoch)
		if err != nil {
			t.Fatalf("Generate(%d) error: %v", week, err)
		}
		b, err := Generate(week, epoch)
		if err != nil {
			t.Fatalf("Generate(%d) second call error: %v", week, err)
		}
		if a.Type != b.Type || a.Target != b.Target || a.Parameters != b.Parameters {
			t.Fatalf("Generate(%d) not reproducible:\n  first:  %+v\n  second: %+v", week, a, b)
		}
		if (a.TimeLimit == nil) != (b.TimeLimit == nil) {
			t.Fatalf("Generate(%d) time limit presence differs between calls", week)
		}
		if a.TimeLimit != nil && *a.TimeLimit != *b.TimeLimit {
			t.Fatalf("Generate(%d) time limit differs: %v vs %v", week, *a.TimeLimit, *b.TimeLimit)
		}
	}
}

func TestGeneratePreEpochWeeks(t *testing.T) {
	for _, week := range []int{0, -1, -52} {
		d, err := Generate(week, engine.DefaultEpoch)
		if err != nil {
			t.Errorf("Generate(%d) error: %v", week, err)
		}
		if d != nil {
			t.Errorf("Generate(%d) = %+v, want nil for pre-epoch week", week, d)
		}
	}
}

func TestGenerateDescriptorShape(t *testing.T) {
	epoch := engine.DefaultEpoch
	for week := 1; week <= 500; week++ {
		d, err := Generate(week, epoch)
		if err != nil {
			t.Fatalf("Generate(%d) error: %v", week, err)
		}

		if want := fmt.Sprintf("weekly-challenge-%d", week); d.ID != want {
			t.Errorf("week %d: ID = %q, want %q", week, d.ID, want)
		}
		if d.Week != week {
			t.Errorf("week %d: Week field = %d", week, d.Week)
		}
		if d.Version != engine.GeneratorVersion {
			t.Errorf("week %d: Version = %q, want %q", week, d.Version, engine.GeneratorVersion)
		}
		if _, ok := GetType(d.Type); !ok {
			t.Errorf("week %d: unregistered type %q", week, d.Type)
		}
		if d.Title == "" || d.Description == "" {
			t.Errorf("week %d: empty title or description", week)
		}
		if d.Goal == nil {
			t.Fatalf("week %d: nil goal", week)
		}
		if d.Goal.ChallengeType() != d.Type {
			t.Errorf("week %d: goal type %q does not match descriptor type %q", week, d.Goal.ChallengeType(), d.Type)
		}
		if d.Target != d.Goal.Primary() {
			t.Errorf("week %d: Target %v does not mirror goal primary %v", week, d.Target, d.Goal.Primary())
		}

		p := d.Parameters
		if p.BallSpeed < minBallSpeed || p.BallSpeed > maxBallSpeed {
			t.Errorf("week %d: ball speed %v out of range", week, p.BallSpeed)
		}
		if p.PaddleSize < minPaddleSize || p.PaddleSize > maxPaddleSize {
			t.Errorf("week %d: paddle size %d out of range", week, p.PaddleSize)
		}
		if p.BallCount < minBallCount || p.BallCount > maxBallCount {
			t.Errorf("week %d: ball count %d out of range", week, p.BallCount)
		}
		if p.PowerupFrequency < minPowerupFrequency || p.PowerupFrequency > maxPowerupFrequency {
			t.Errorf("week %d: powerup frequency %v out of range", week, p.PowerupFrequency)
		}

		start, end := engine.WeekBounds(week, epoch)
		if !d.StartDate.Equal(start) || !d.EndDate.Equal(end) {
			t.Errorf("week %d: dates [%v, %v], want [%v, %v]", week, d.StartDate, d.EndDate, start, end)
		}
	}
}

func TestGenerateTimeLimitConventions(t *testing.T) {
	epoch := engine.DefaultEpoch
	for week := 1; week <= 500; week++ {
		d, err := Generate(week, epoch)
		if err != nil {
			t.Fatalf("Generate(%d) error: %v", week, err)
		}
		switch g := d.Goal.(type) {
		case TimeGoal:
			if d.TimeLimit == nil || *d.TimeLimit != g.MaxDuration {
				t.Errorf("week %d: time challenge limit %v, want the goal cap %v", week, d.TimeLimit, g.MaxDuration)
			}
		case SurvivalGoal:
			if d.TimeLimit != nil {
				t.Errorf("week %d: survival challenge has limit %v, want open-ended", week, *d.TimeLimit)
			}
		default:
			if d.TimeLimit != nil && (*d.TimeLimit < 60 || *d.TimeLimit > 180) {
				t.Errorf("week %d: time limit %v outside 60..180", week, *d.TimeLimit)
			}
		}
	}
}

func TestGenerateAllTypesAppear(t *testing.T) {
	seen := make(map[Type]bool)
	for week := 1; week <= 500; week++ {
		d, err := Generate(week, engine.DefaultEpoch)
		if err != nil {
			t.Fatalf("Generate(%d) error: %v", week, err)
		}
		seen[d.Type] = true
	}
	for _, typ := range ListTypes() {
		if !seen[typ] {
			t.Errorf("type %q never generated in 500 weeks", typ)
		}
	}
}

func TestGenerateAt(t *testing.T) {
	epoch := engine.DefaultEpoch

	d, err := GenerateAt(epoch.Add(3*24*time.Hour), epoch)
	if err != nil {
		t.Fatalf("GenerateAt error: %v", err)
	}
	if d == nil || d.Week != 1 {
		t.Fatalf("GenerateAt mid week 1 = %+v, want week 1 descriptor", d)
	}

	d, err = GenerateAt(epoch.Add(-time.Hour), epoch)
	if err != nil {
		t.Fatalf("GenerateAt pre-epoch error: %v", err)
	}
	if d != nil {
		t.Errorf("GenerateAt before epoch = %+v, want nil", d)
	}
}
