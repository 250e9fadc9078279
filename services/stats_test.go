package services

import (
	"testing"
	"time"

	"walk-tracker-system/models"

	"github.com/stretchr/testify/require"
)

func TestApplyWalkFirstWalk(t *testing.T) {
	stats := models.UserStats{ExternalUserID: "u1"}

	applyWalk(&stats, 2.5, day(2026, 4, 1))

	require.Equal(t, 2.5, stats.TotalDistanceKm)
	require.Equal(t, int64(1), stats.TotalWalks)
	require.Equal(t, 1, stats.CurrentStreak)
	require.Equal(t, 1, stats.BestStreak)
	require.Equal(t, day(2026, 4, 1), *stats.LastWalkDate)
}

func TestApplyWalkSameDayInvariant(t *testing.T) {
	// Two walks on one calendar day: count moves by 2, streak does not move
	stats := models.UserStats{ExternalUserID: "u1"}

	applyWalk(&stats, 1.0, day(2026, 4, 1))
	applyWalk(&stats, 3.0, day(2026, 4, 1))

	require.Equal(t, int64(2), stats.TotalWalks)
	require.Equal(t, 4.0, stats.TotalDistanceKm)
	require.Equal(t, 1, stats.CurrentStreak)
}

func TestApplyWalkStreakContinuationAndBreak(t *testing.T) {
	stats := models.UserStats{ExternalUserID: "u1"}

	for i := 0; i < 5; i++ {
		applyWalk(&stats, 1.0, day(2026, 4, 1+i))
	}
	require.Equal(t, 5, stats.CurrentStreak)
	require.Equal(t, 5, stats.BestStreak)

	// D+5 gap breaks the current streak but best survives
	applyWalk(&stats, 1.0, day(2026, 4, 10))
	require.Equal(t, 1, stats.CurrentStreak)
	require.Equal(t, 5, stats.BestStreak)
}

func TestApplyWalkBackdatedKeepsLastDateAndStreak(t *testing.T) {
	stats := models.UserStats{ExternalUserID: "u1"}

	applyWalk(&stats, 1.0, day(2026, 4, 1))
	applyWalk(&stats, 1.0, day(2026, 4, 2))
	applyWalk(&stats, 2.0, day(2026, 3, 20)) // backdated entry

	require.Equal(t, 2, stats.CurrentStreak)
	require.Equal(t, day(2026, 4, 2), *stats.LastWalkDate)
	require.Equal(t, int64(3), stats.TotalWalks)
	require.Equal(t, 4.0, stats.TotalDistanceKm)
}

func TestApplyWalkMonotonicity(t *testing.T) {
	stats := models.UserStats{ExternalUserID: "u1"}
	dates := []time.Time{
		day(2026, 4, 1), day(2026, 4, 2), day(2026, 4, 2),
		day(2026, 4, 9), day(2026, 4, 10), day(2026, 3, 1),
	}

	var prevDistance float64
	var prevWalks int64
	var prevBest int
	for _, d := range dates {
		applyWalk(&stats, 1.5, d)
		require.GreaterOrEqual(t, stats.TotalDistanceKm, prevDistance)
		require.GreaterOrEqual(t, stats.TotalWalks, prevWalks)
		require.GreaterOrEqual(t, stats.BestStreak, prevBest)
		require.GreaterOrEqual(t, stats.BestStreak, stats.CurrentStreak)
		prevDistance, prevWalks, prevBest = stats.TotalDistanceKm, stats.TotalWalks, stats.BestStreak
	}
}

func TestRecordWalkRejectsBadInput(t *testing.T) {
	s := NewStatsService(nil) // validation happens before any DB access

	_, err := s.RecordWalk(WalkInput{ExternalUserID: "u1", DistanceKm: 0, WalkedOn: day(2026, 4, 1)})
	require.ErrorIs(t, err, ErrInvalidDistance)

	_, err = s.RecordWalk(WalkInput{ExternalUserID: "u1", DistanceKm: -3, WalkedOn: day(2026, 4, 1)})
	require.ErrorIs(t, err, ErrInvalidDistance)

	_, err = s.RecordWalk(WalkInput{ExternalUserID: "", DistanceKm: 1, WalkedOn: day(2026, 4, 1)})
	require.ErrorIs(t, err, ErrUserRequired)

	_, err = s.RecordWalk(WalkInput{ExternalUserID: "u1", DistanceKm: 1, WalkedOn: time.Now().AddDate(0, 0, 10)})
	require.ErrorIs(t, err, ErrInvalidDate)
}
