package recur

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextOccurrence(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		rule string
		want time.Time
	}{
		{name: "daily keyword", rule: "DAILY", want: base.AddDate(0, 0, 1)},
		{name: "weekly keyword", rule: "WEEKLY", want: base.AddDate(0, 0, 7)},
		{name: "monthly keyword", rule: "MONTHLY", want: base.AddDate(0, 0, 30)},
		{name: "yearly keyword", rule: "YEARLY", want: base.AddDate(0, 0, 365)},
		{name: "interval one", rule: "RRULE:FREQ=DAILY;INTERVAL=1", want: base.AddDate(0, 0, 1)},
		{name: "interval seven", rule: "INTERVAL=7", want: base.AddDate(0, 0, 7)},
		{name: "unknown rule defaults to daily", rule: "garbage", want: base.AddDate(0, 0, 1)},
		{name: "empty rule defaults to daily", rule: "", want: base.AddDate(0, 0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(base, tt.rule)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestNextOccurrence_CaseInsensitive(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, NextOccurrence(base, "DAILY"), NextOccurrence(base, "daily"))
	assert.Equal(t, NextOccurrence(base, "WEEKLY"), NextOccurrence(base, "Weekly"))
	assert.Equal(t, NextOccurrence(base, "YEARLY"), NextOccurrence(base, "yearly"))
}

func TestNextOccurrence_ZeroReferenceUsesNow(t *testing.T) {
	before := time.Now().UTC()
	got := NextOccurrence(time.Time{}, "DAILY")
	after := time.Now().UTC()

	assert.True(t, !got.Before(before.Add(24*time.Hour)))
	assert.True(t, !got.After(after.Add(24*time.Hour)))
}

func TestNextOccurrence_Pure(t *testing.T) {
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	first := NextOccurrence(base, "WEEKLY")
	second := NextOccurrence(base, "WEEKLY")
	assert.Equal(t, first, second)
}
