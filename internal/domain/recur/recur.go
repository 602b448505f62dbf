// Package recur calculates the next occurrence of a recurring task from
// its recurrence rule.
//
// Rules are matched by case-insensitive substring rather than parsed as
// full RFC 5545 RRULEs. The policy is deliberately simple and must stay
// stable, because due dates produced by the periodic scheduler and by the
// event-driven path are compared against each other within a tolerance
// window for duplicate suppression:
//
//   - "DAILY" or "INTERVAL=1"  -> +1 day
//   - "WEEKLY" or "INTERVAL=7" -> +7 days
//   - "MONTHLY"                -> +30 days (not calendar-month aware)
//   - "YEARLY"                 -> +365 days
//   - anything else            -> +1 day
package recur

import (
	"strings"
	"time"
)

// Interval durations applied per frequency keyword.
const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day // approximation, not calendar-month aware
	year  = 365 * day
)

// NextOccurrence returns the instant of the next occurrence after the
// given reference instant. A zero reference means "now".
//
// The function is pure for a non-zero reference: it has no side effects
// and always returns a value. Unknown rules default to daily.
func NextOccurrence(after time.Time, rule string) time.Time {
	if after.IsZero() {
		after = time.Now().UTC()
	}

	upper := strings.ToUpper(rule)

	switch {
	case strings.Contains(upper, "DAILY"), strings.Contains(upper, "INTERVAL=1"):
		return after.Add(day)
	case strings.Contains(upper, "WEEKLY"), strings.Contains(upper, "INTERVAL=7"):
		return after.Add(week)
	case strings.Contains(upper, "MONTHLY"):
		return after.Add(month)
	case strings.Contains(upper, "YEARLY"):
		return after.Add(year)
	default:
		return after.Add(day)
	}
}
