package challenge

import (
	"context"
	"fmt"
	"time"
)

// maxScanSpan bounds a single scan request. Descriptor generation is cheap
// but the result set is returned in one response.
const maxScanSpan = 1000

// ScanRequest asks for the descriptors of a contiguous week range,
// optionally filtered by challenge type.
type ScanRequest struct {
	FromWeek int  `json:"fromWeek"`
	ToWeek   int  `json:"toWeek"`
	Type     Type `json:"type,omitempty"` // empty matches every type
	Limit    int  `json:"limit,omitempty"`
}

// ScanResult is the outcome of a week scan.
type ScanResult struct {
	Descriptors  []*Descriptor `json:"descriptors"`
	WeeksScanned int           `json:"weeksScanned"`
	Truncated    bool          `json:"truncated"`
}

// Scan regenerates descriptors across a week range and returns those
// matching the filter. Used by content-calendar tooling to preview upcoming
// weeks; determinism makes the scan exact, not a simulation.
func Scan(ctx context.Context, req ScanRequest, epoch time.Time) (*ScanResult, error) {
	if req.FromWeek < 1 {
		return nil, fmt.Errorf("fromWeek must be at least 1, got %d", req.FromWeek)
	}
	if req.ToWeek < req.FromWeek {
		return nil, fmt.Errorf("toWeek %d precedes fromWeek %d", req.ToWeek, req.FromWeek)
	}
	if span := req.ToWeek - req.FromWeek + 1; span > maxScanSpan {
		return nil, fmt.Errorf("scan span %d exceeds maximum %d", span, maxScanSpan)
	}
	if req.Type != "" {
		if _, ok := GetType(req.Type); !ok {
			return nil, unknownTypeError(req.Type)
		}
	}

	result := &ScanResult{}
	for week := req.FromWeek; week <= req.ToWeek; week++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := Generate(week, epoch)
		if err != nil {
			return nil, err
		}
		result.WeeksScanned++
		if req.Type != "" && d.Type != req.Type {
			continue
		}
		if req.Limit > 0 && len(result.Descriptors) >= req.Limit {
			result.Truncated = true
			break
		}
		result.Descriptors = append(result.Descriptors, d)
	}
	return result, nil
}
