package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeStreakFirstWalk(t *testing.T) {
	require.Equal(t, 1, ComputeStreak(0, nil, day(2026, 3, 10)))
}

func TestComputeStreakTable(t *testing.T) {
	last := day(2026, 3, 10)

	tests := []struct {
		name     string
		prev     int
		walkedOn time.Time
		want     int
	}{
		{"same day holds", 4, day(2026, 3, 10), 4},
		{"next day increments", 4, day(2026, 3, 11), 5},
		{"two day gap resets", 4, day(2026, 3, 12), 1},
		{"five day gap resets", 4, day(2026, 3, 15), 1},
		{"backdated leaves streak alone", 4, day(2026, 3, 7), 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ComputeStreak(tc.prev, &last, tc.walkedOn))
		})
	}
}

func TestComputeStreakIgnoresClockTime(t *testing.T) {
	// 23:59 one day to 00:01 the next is still exactly one calendar day
	last := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	next := time.Date(2026, 3, 11, 0, 1, 0, 0, time.UTC)
	require.Equal(t, 3, ComputeStreak(2, &last, next))
}

func TestDaysBetweenTruncates(t *testing.T) {
	from := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 12, 6, 0, 0, 0, time.UTC)
	require.Equal(t, 2, daysBetween(from, to))
	require.Equal(t, -2, daysBetween(to, from))
}
