package challenge

import (
	"context"
	"testing"

	"github.com/courtloop/challenge-engine/internal/engine"
)

func TestScan(t *testing.T) {
	ctx := context.Background()
	epoch := engine.DefaultEpoch

	t.Run("full range", func(t *testing.T) {
		res, err := Scan(ctx, ScanRequest{FromWeek: 1, ToWeek: 52}, epoch)
		if err != nil {
			t.Fatalf("Scan error: %v", err)
		}
		if res.WeeksScanned != 52 || len(res.Descriptors) != 52 {
			t.Errorf("scanned %d weeks with %d descriptors, want 52 and 52", res.WeeksScanned, len(res.Descriptors))
		}
		if res.Truncated {
			t.Error("unlimited scan reported truncation")
		}
		for i, d := range res.Descriptors {
			if d.Week != i+1 {
				t.Fatalf("descriptor %d has week %d, want %d", i, d.Week, i+1)
			}
		}
	})

	t.Run("type filter", func(t *testing.T) {
		res, err := Scan(ctx, ScanRequest{FromWeek: 1, ToWeek: 200, Type: TypeScore}, epoch)
		if err != nil {
			t.Fatalf("Scan error: %v", err)
		}
		if len(res.Descriptors) == 0 {
			t.Fatal("no score challenges in 200 weeks")
		}
		for _, d := range res.Descriptors {
			if d.Type != TypeScore {
				t.Fatalf("filtered scan returned type %q", d.Type)
			}
		}
	})

	t.Run("limit truncates", func(t *testing.T) {
		res, err := Scan(ctx, ScanRequest{FromWeek: 1, ToWeek: 100, Limit: 5}, epoch)
		if err != nil {
			t.Fatalf("Scan error: %v", err)
		}
		if len(res.Descriptors) != 5 || !res.Truncated {
			t.Errorf("got %d descriptors, truncated=%v; want 5, true", len(res.Descriptors), res.Truncated)
		}
	})

	t.Run("validation", func(t *testing.T) {
		bad := []ScanRequest{
			{FromWeek: 0, ToWeek: 5},
			{FromWeek: 10, ToWeek: 5},
			{FromWeek: 1, ToWeek: 2000},
			{FromWeek: 1, ToWeek: 5, Type: "marathon"},
		}
		for _, req := range bad {
			if _, err := Scan(ctx, req, epoch); err == nil {
				t.Errorf("Scan accepted invalid request %+v", req)
			}
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := Scan(cancelled, ScanRequest{FromWeek: 1, ToWeek: 10}, epoch); err == nil {
			t.Error("Scan ignored a cancelled context")
		}
	})
}
