package engine

import "time"

// DefaultEpoch is the first challenge Monday: 2024-01-01 00:00:00 UTC.
// Week indices are counted from this instant; deployments may override it
// through configuration but it is expected to stay constant for the lifetime
// of a deployment.
var DefaultEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

const week = 7 * 24 * time.Hour

// WeekNumber maps an instant to a 1-based week index relative to epoch.
// Instants before the epoch map to 0 (the pre-epoch sentinel). Week 1 is the
// week containing the epoch itself; the next Monday 00:00:00.000 UTC begins
// week 2.
func WeekNumber(t, epoch time.Time) int {
	if t.Before(epoch) {
		return 0
	}
	return int(t.Sub(epoch)/week) + 1
}

// WeekBounds returns the Monday 00:00:00.000 UTC start and the Sunday
// 23:59:59.999 UTC end of the given week index. Week indices below 1 return
// zero times.
func WeekBounds(weekIndex int, epoch time.Time) (start, end time.Time) {
	if weekIndex < 1 {
		return time.Time{}, time.Time{}
	}
	start = epoch.AddDate(0, 0, (weekIndex-1)*7)
	end = start.AddDate(0, 0, 7).Add(-time.Millisecond)
	return start, end
}
