package services

import (
	"fmt"
	"log"
	"sort"

	"walk-tracker-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// constancyGapDays: two confirmed attendances at most this many days apart count
// as consecutive. Shared by every constancy tier — only the required run length
// differs between tiers.
const constancyGapDays = 30

type AchievementService struct {
	DB *gorm.DB
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{DB: db}
}

// SeedCatalog upserts the built-in definitions by code so a fresh database
// starts with the full tier ladder. Existing rows keep their IsActive flag.
func (s *AchievementService) SeedCatalog() error {
	for _, def := range models.AchievementSeed {
		res := s.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).Create(&def)
		if res.Error != nil {
			return fmt.Errorf("seed achievement %s: %w", def.Code, res.Error)
		}
	}
	return nil
}

// ActiveDefinitions returns the catalog snapshot the evaluator runs against
func (s *AchievementService) ActiveDefinitions() ([]models.AchievementDefinition, error) {
	var defs []models.AchievementDefinition
	err := s.DB.Where("is_active = ?", true).Order("code ASC").Find(&defs).Error
	return defs, err
}

// GrantedIDs returns the set of achievement IDs the user already holds
func (s *AchievementService) GrantedIDs(externalUserID string) (map[string]bool, error) {
	var rows []models.UserAchievement
	if err := s.DB.Select("achievement_id").
		Where("external_user_id = ?", externalUserID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	granted := make(map[string]bool, len(rows))
	for _, r := range rows {
		granted[r.AchievementID] = true
	}
	return granted, nil
}

// Evaluate scans the catalog snapshot against the given stats and confirmed
// participations and returns the definitions that newly qualify. Pure over its
// inputs: no DB access, no hidden catalog state. One definition failing never
// aborts the rest of the scan — its error is collected and the scan continues.
func (s *AchievementService) Evaluate(
	stats *models.UserStats,
	granted map[string]bool,
	defs []models.AchievementDefinition,
	participations []models.EventParticipation,
) (newlyQualified []models.AchievementDefinition, evalErrs []error) {
	confirmed := 0
	for _, p := range participations {
		if p.Confirmed {
			confirmed++
		}
	}
	longestRun := LongestConsecutiveRun(participations)

	for _, def := range defs {
		if granted[def.ID] {
			continue // fast path — the unique index is the real guard
		}
		ok, err := qualifies(def, stats, confirmed, longestRun)
		if err != nil {
			evalErrs = append(evalErrs, fmt.Errorf("achievement %s: %w", def.Code, err))
			continue
		}
		if ok {
			newlyQualified = append(newlyQualified, def)
		}
	}
	return newlyQualified, evalErrs
}

// qualifies tests one definition's threshold predicate. Recovers a panicking
// predicate into an error so a single malformed definition degrades, not the
// whole pass.
func qualifies(def models.AchievementDefinition, stats *models.UserStats, confirmed, longestRun int) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = fmt.Errorf("predicate panicked: %v", r)
		}
	}()

	switch def.Category {
	case models.CategorySpecial:
		// Only granted via an explicit trigger (GrantSpecial), never by scan
		return false, nil
	case models.CategoryDistance, models.CategoryWalkCount, models.CategoryStreak,
		models.CategoryParticipation, models.CategoryConstancy:
		if def.Threshold <= 0 {
			return false, fmt.Errorf("non-positive threshold %d", def.Threshold)
		}
	default:
		return false, fmt.Errorf("unknown category %q", def.Category)
	}

	switch def.Category {
	case models.CategoryDistance:
		return stats.TotalDistanceKm >= float64(def.Threshold), nil
	case models.CategoryWalkCount:
		return stats.TotalWalks >= def.Threshold, nil
	case models.CategoryStreak:
		return int64(stats.BestStreak) >= def.Threshold, nil
	case models.CategoryParticipation:
		return int64(confirmed) >= def.Threshold, nil
	case models.CategoryConstancy:
		return int64(longestRun) >= def.Threshold, nil
	}
	return false, nil
}

// LongestConsecutiveRun computes the longest run of confirmed participations
// where each successive event date is within constancyGapDays of the previous
// one. Sorts by event date itself — storage order is never trusted.
func LongestConsecutiveRun(participations []models.EventParticipation) int {
	dates := make([]models.EventParticipation, 0, len(participations))
	for _, p := range participations {
		if p.Confirmed {
			dates = append(dates, p)
		}
	}
	if len(dates) == 0 {
		return 0
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].EventDate.Before(dates[j].EventDate)
	})

	best, consecutive := 1, 1
	for i := 1; i < len(dates); i++ {
		gap := daysBetween(dates[i-1].EventDate, dates[i].EventDate)
		if gap < 0 {
			gap = -gap
		}
		if gap <= constancyGapDays {
			consecutive++
		} else {
			consecutive = 1
		}
		if consecutive > best {
			best = consecutive
		}
	}
	return best
}

// RunEvaluation loads the user's snapshots, evaluates the catalog, and persists
// any new grants. Safe to re-run at any time — already-granted definitions are
// skipped up front and the insert is ON CONFLICT DO NOTHING, so a concurrent
// pass deciding the same grant simply loses the race silently.
func (s *AchievementService) RunEvaluation(externalUserID string) ([]models.AchievementDefinition, error) {
	var stats models.UserStats
	if err := s.DB.Where("external_user_id = ?", externalUserID).First(&stats).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		// No walks yet — participation tiers can still qualify, so evaluate
		// against zeroed totals instead of bailing out.
		stats = models.UserStats{ExternalUserID: externalUserID}
	}

	granted, err := s.GrantedIDs(externalUserID)
	if err != nil {
		return nil, err
	}
	defs, err := s.ActiveDefinitions()
	if err != nil {
		return nil, err
	}

	var participations []models.EventParticipation
	if err := s.DB.Where("external_user_id = ? AND confirmed = ?", externalUserID, true).
		Find(&participations).Error; err != nil {
		return nil, err
	}

	qualified, evalErrs := s.Evaluate(&stats, granted, defs, participations)
	for _, e := range evalErrs {
		log.Printf("⚠️ [ACHIEVEMENTS] evaluation error for %s: %v", externalUserID, e)
	}

	var awarded []models.AchievementDefinition
	for _, def := range qualified {
		if err := s.grant(externalUserID, def.ID); err != nil {
			// One failed grant must not block the rest of the pass
			log.Printf("❌ [ACHIEVEMENTS] grant %s → %s failed: %v", def.Code, externalUserID, err)
			continue
		}
		awarded = append(awarded, def)
		log.Printf("🎖️ Achievement awarded: %s → %s", def.Name, externalUserID)
	}
	return awarded, nil
}

func (s *AchievementService) grant(externalUserID, achievementID string) error {
	ua := models.UserAchievement{
		ExternalUserID:  externalUserID,
		AchievementID:   achievementID,
		ProgressPercent: 100,
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_user_id"}, {Name: "achievement_id"}},
		DoNothing: true,
	}).Create(&ua).Error
}

// GrantSpecial awards a special-category achievement via an explicit external
// trigger (e.g., profile completion). Idempotent like the scan grants.
func (s *AchievementService) GrantSpecial(externalUserID, code string) error {
	var def models.AchievementDefinition
	err := s.DB.Where("code = ? AND category = ? AND is_active = ?",
		code, models.CategorySpecial, true).First(&def).Error
	if err == gorm.ErrRecordNotFound {
		return fmt.Errorf("%w: special achievement %s", ErrNotFound, code)
	}
	if err != nil {
		return err
	}
	if err := s.grant(externalUserID, def.ID); err != nil {
		return err
	}
	log.Printf("🎖️ Special achievement awarded: %s → %s", def.Name, externalUserID)
	return nil
}

// UserAchievementView is the badge-list row returned to clients
type UserAchievementView struct {
	ID              string `json:"id"`
	AchievementID   string `json:"achievement_id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	IconURL         string `json:"icon_url"`
	Category        string `json:"category"`
	ProgressPercent int    `json:"progress_percent"`
	GrantedAt       string `json:"granted_at"`
}

// ListUserAchievements returns the user's badges joined with their definitions
func (s *AchievementService) ListUserAchievements(externalUserID string) ([]UserAchievementView, error) {
	var views []UserAchievementView
	err := s.DB.Raw(`
		SELECT ua.id, ua.achievement_id, d.code, d.name, d.description, d.icon_url,
		       d.category, ua.progress_percent, ua.granted_at
		FROM user_achievements ua
		INNER JOIN achievement_definitions d ON d.id = ua.achievement_id
		WHERE ua.external_user_id = ?
		ORDER BY ua.granted_at DESC
	`, externalUserID).Scan(&views).Error
	return views, err
}
