package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatRelativeTimeFrom(t *testing.T) {
	now := time.Date(2025, 12, 13, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{"exact", now, "now"},
		{"future", now.Add(time.Hour), "now"},
		{"59 seconds", now.Add(-59 * time.Second), "now"},
		{"1 minute", now.Add(-time.Minute), "1m ago"},
		{"59 minutes", now.Add(-59 * time.Minute), "59m ago"},
		{"1 hour", now.Add(-time.Hour), "1h ago"},
		{"23 hours", now.Add(-23 * time.Hour), "23h ago"},
		{"1 day", now.Add(-24 * time.Hour), "1d ago"},
		{"40 days", now.Add(-40 * 24 * time.Hour), "40d ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, FormatRelativeTimeFrom(tt.input, now))
		})
	}
}

func TestFormatRelativeTime(t *testing.T) {
	clock := NewFakeClock(time.Date(2025, 12, 13, 12, 0, 0, 0, time.UTC))
	saved := clock.Now()

	require.Equal(t, "never", FormatRelativeTime(time.Time{}, clock))
	require.Equal(t, "now", FormatRelativeTime(saved, clock))

	clock.Advance(5 * time.Minute)
	require.Equal(t, "5m ago", FormatRelativeTime(saved, clock))
}
