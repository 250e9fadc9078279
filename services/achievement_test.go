package services

import (
	"testing"
	"time"

	"walk-tracker-system/models"

	"github.com/stretchr/testify/require"
)

func confirmedOn(d time.Time) models.EventParticipation {
	return models.EventParticipation{ExternalUserID: "u1", EventDate: d, Confirmed: true}
}

func defsByCode(defs []models.AchievementDefinition) map[string]models.AchievementDefinition {
	m := make(map[string]models.AchievementDefinition, len(defs))
	for _, d := range defs {
		m[d.Code] = d
	}
	return m
}

func codes(defs []models.AchievementDefinition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.Code
	}
	return out
}

func TestLongestConsecutiveRun(t *testing.T) {
	base := day(2026, 1, 1)
	onDay := func(n int) models.EventParticipation {
		return confirmedOn(base.AddDate(0, 0, n-1))
	}

	tests := []struct {
		name           string
		participations []models.EventParticipation
		want           int
	}{
		{"empty", nil, 0},
		{"single", []models.EventParticipation{onDay(1)}, 1},
		{
			"run of three then far outlier",
			[]models.EventParticipation{onDay(1), onDay(20), onDay(25), onDay(100)},
			3,
		},
		{
			"outlier on day 200 does not extend",
			[]models.EventParticipation{onDay(1), onDay(20), onDay(25), onDay(100), onDay(200)},
			3,
		},
		{
			"gap of exactly 30 days still counts",
			[]models.EventParticipation{onDay(1), onDay(31)},
			2,
		},
		{
			"gap of 31 days breaks",
			[]models.EventParticipation{onDay(1), onDay(32)},
			1,
		},
		{
			"storage order is not trusted",
			[]models.EventParticipation{onDay(25), onDay(1), onDay(100), onDay(20)},
			3,
		},
		{
			"unconfirmed rows are excluded",
			[]models.EventParticipation{
				onDay(1),
				{ExternalUserID: "u1", EventDate: base.AddDate(0, 0, 19), Confirmed: false},
				onDay(25),
			},
			2, // days 1 and 25 are within the window on their own
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, LongestConsecutiveRun(tc.participations))
		})
	}
}

func TestEvaluateThresholdBoundaryIsInclusive(t *testing.T) {
	svc := &AchievementService{}
	defs := []models.AchievementDefinition{
		{ID: "d1", Code: "DISTANCE_100KM", Category: models.CategoryDistance, Threshold: 100},
		{ID: "d2", Code: "WALKS_50", Category: models.CategoryWalkCount, Threshold: 50},
		{ID: "d3", Code: "STREAK_7", Category: models.CategoryStreak, Threshold: 7},
	}
	stats := &models.UserStats{
		TotalDistanceKm: 100, // exactly at threshold
		TotalWalks:      49,
		CurrentStreak:   2,
		BestStreak:      7, // STREAK compares best, not current
	}

	qualified, evalErrs := svc.Evaluate(stats, map[string]bool{}, defs, nil)
	require.Empty(t, evalErrs)
	require.ElementsMatch(t, []string{"DISTANCE_100KM", "STREAK_7"}, codes(qualified))
}

func TestEvaluateSkipsAlreadyGranted(t *testing.T) {
	svc := &AchievementService{}
	defs := []models.AchievementDefinition{
		{ID: "d1", Code: "FIRST_WALK", Category: models.CategoryWalkCount, Threshold: 1},
		{ID: "d2", Code: "DISTANCE_10KM", Category: models.CategoryDistance, Threshold: 10},
	}
	stats := &models.UserStats{TotalDistanceKm: 12, TotalWalks: 3}

	first, evalErrs := svc.Evaluate(stats, map[string]bool{}, defs, nil)
	require.Empty(t, evalErrs)
	require.Len(t, first, 2)

	// Second pass with the grants applied and no new activity: nothing new
	granted := map[string]bool{"d1": true, "d2": true}
	second, evalErrs := svc.Evaluate(stats, granted, defs, nil)
	require.Empty(t, evalErrs)
	require.Empty(t, second)
}

func TestEvaluateParticipationAndConstancy(t *testing.T) {
	svc := &AchievementService{}
	defs := []models.AchievementDefinition{
		{ID: "p1", Code: "EVENT_FIRST", Category: models.CategoryParticipation, Threshold: 1},
		{ID: "p5", Code: "EVENT_5", Category: models.CategoryParticipation, Threshold: 5},
		{ID: "c2", Code: "CONSTANCY_2", Category: models.CategoryConstancy, Threshold: 2},
		{ID: "c3", Code: "CONSTANCY_3", Category: models.CategoryConstancy, Threshold: 3},
		{ID: "c5", Code: "CONSTANCY_5", Category: models.CategoryConstancy, Threshold: 5},
	}
	base := day(2026, 1, 1)
	participations := []models.EventParticipation{
		confirmedOn(base),
		confirmedOn(base.AddDate(0, 0, 19)),
		confirmedOn(base.AddDate(0, 0, 24)),
		confirmedOn(base.AddDate(0, 0, 99)), // breaks the run
	}

	qualified, evalErrs := svc.Evaluate(&models.UserStats{}, map[string]bool{}, defs, participations)
	require.Empty(t, evalErrs)
	// 4 confirmed total → EVENT_FIRST only (EVENT_5 needs 5); run of 3 → both constancy tiers up to 3
	require.ElementsMatch(t, []string{"EVENT_FIRST", "CONSTANCY_2", "CONSTANCY_3"}, codes(qualified))
}

func TestEvaluateSpecialNeverGrantedByScan(t *testing.T) {
	svc := &AchievementService{}
	defs := []models.AchievementDefinition{
		{ID: "s1", Code: "PROFILE_COMPLETE", Category: models.CategorySpecial},
	}
	stats := &models.UserStats{TotalDistanceKm: 9999, TotalWalks: 9999, BestStreak: 9999}

	qualified, evalErrs := svc.Evaluate(stats, map[string]bool{}, defs, nil)
	require.Empty(t, evalErrs)
	require.Empty(t, qualified)
}

func TestEvaluatePartialFailureResilience(t *testing.T) {
	svc := &AchievementService{}
	defs := []models.AchievementDefinition{
		{ID: "bad1", Code: "BROKEN_CATEGORY", Category: "paw_quality", Threshold: 3},
		{ID: "bad2", Code: "BROKEN_THRESHOLD", Category: models.CategoryDistance, Threshold: 0},
		{ID: "ok", Code: "FIRST_WALK", Category: models.CategoryWalkCount, Threshold: 1},
	}
	stats := &models.UserStats{TotalWalks: 1}

	qualified, evalErrs := svc.Evaluate(stats, map[string]bool{}, defs, nil)
	require.Len(t, evalErrs, 2)
	require.Equal(t, []string{"FIRST_WALK"}, codes(qualified))
}

func TestSeedCatalogShape(t *testing.T) {
	byCode := defsByCode(models.AchievementSeed)
	require.Len(t, models.AchievementSeed, len(byCode), "seed codes must be unique")

	for _, def := range models.AchievementSeed {
		if def.Category == models.CategorySpecial {
			require.Zero(t, def.Threshold, "%s: special tiers carry no threshold", def.Code)
		} else {
			require.Positive(t, def.Threshold, "%s: threshold tiers need a positive threshold", def.Code)
		}
	}

	// Constancy ladder shares the window, lengths climb
	require.Less(t, byCode["CONSTANCY_2"].Threshold, byCode["CONSTANCY_3"].Threshold)
	require.Less(t, byCode["CONSTANCY_3"].Threshold, byCode["CONSTANCY_5"].Threshold)
}
