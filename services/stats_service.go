package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"walk-tracker-system/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxFutureDays: walks may be backdated freely but not dated into the future
// beyond a timezone-slack day.
const maxFutureDays = 1

type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db}
}

// WalkInput is the payload for one walk submission
type WalkInput struct {
	ExternalUserID string
	DistanceKm     float64
	WalkedOn       time.Time
	DurationMins   int
	DogName        string
	Notes          string
}

// EnsureStatsRecord ensures a UserStats row exists (idempotent)
func (s *StatsService) EnsureStatsRecord(externalUserID string) (*models.UserStats, error) {
	var stats models.UserStats
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&stats).Error
	if err == gorm.ErrRecordNotFound {
		stats = models.UserStats{
			ExternalUserID: externalUserID,
		}
		if err := s.DB.Create(&stats).Error; err != nil {
			return nil, err
		}
		return &stats, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// RecordWalk appends the walk to the ledger and folds it into the running
// totals, all inside one transaction holding a row lock on the stats record so
// two submissions for the same user can never both read the pre-update streak.
// Returns the updated stats.
func (s *StatsService) RecordWalk(in WalkInput) (*models.UserStats, error) {
	if in.ExternalUserID == "" {
		return nil, ErrUserRequired
	}
	if in.DistanceKm <= 0 {
		return nil, ErrInvalidDistance
	}
	walkedOn := DayDate(in.WalkedOn)
	if walkedOn.IsZero() || walkedOn.After(DayDate(time.Now()).AddDate(0, 0, maxFutureDays)) {
		return nil, ErrInvalidDate
	}

	var updated *models.UserStats
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var stats models.UserStats
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "NOWAIT"}).
			Where("external_user_id = ?", in.ExternalUserID).
			First(&stats).Error
		if err == gorm.ErrRecordNotFound {
			stats = models.UserStats{ExternalUserID: in.ExternalUserID}
			if err := tx.Create(&stats).Error; err != nil {
				return err
			}
		} else if err != nil {
			return lockErr(err)
		}

		walk := models.Walk{
			ExternalUserID: in.ExternalUserID,
			DistanceKm:     in.DistanceKm,
			WalkedOn:       walkedOn,
			DurationMins:   in.DurationMins,
			DogName:        in.DogName,
			Notes:          in.Notes,
		}
		if err := tx.Create(&walk).Error; err != nil {
			return err
		}

		applyWalk(&stats, in.DistanceKm, walkedOn)

		if err := tx.Save(&stats).Error; err != nil {
			return err
		}

		updated = &models.UserStats{}
		*updated = stats

		log.Printf("🐕 Walk recorded: %s → %.1fkm on %s (streak=%d, best=%d, total=%.1fkm)",
			in.ExternalUserID, in.DistanceKm, walkedOn.Format("2006-01-02"),
			stats.CurrentStreak, stats.BestStreak, stats.TotalDistanceKm)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// applyWalk folds one walk into the running totals. Totals only grow; the
// streak pair moves per ComputeStreak; BestStreak never drops below
// CurrentStreak; LastWalkDate only moves forward (backdated walks are history).
func applyWalk(stats *models.UserStats, distanceKm float64, walkedOn time.Time) {
	stats.TotalDistanceKm += distanceKm
	stats.TotalWalks++
	stats.CurrentStreak = ComputeStreak(stats.CurrentStreak, stats.LastWalkDate, walkedOn)
	if stats.CurrentStreak > stats.BestStreak {
		stats.BestStreak = stats.CurrentStreak
	}
	if stats.LastWalkDate == nil || walkedOn.After(*stats.LastWalkDate) {
		d := walkedOn
		stats.LastWalkDate = &d
	}
}

// lockErr maps Postgres lock_not_available (NOWAIT lost the race) onto the
// retryable conflict sentinel; everything else propagates as-is.
func lockErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "55P03" {
		return fmt.Errorf("%w: %v", ErrStatsConflict, err)
	}
	return err
}

// GetRecentWalks returns walks in last N days
func (s *StatsService) GetRecentWalks(externalUserID string, days int) ([]models.Walk, error) {
	var walks []models.Walk
	since := DayDate(time.Now()).AddDate(0, 0, -days)
	err := s.DB.Where("external_user_id = ? AND walked_on >= ?", externalUserID, since).
		Order("walked_on DESC, created_at DESC").
		Find(&walks).Error
	return walks, err
}

// GetWalkHistory returns paginated walk history plus totals
func (s *StatsService) GetWalkHistory(externalUserID string, page, size int) (map[string]interface{}, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	var totalWalks int64
	s.DB.Model(&models.Walk{}).Where("external_user_id = ?", externalUserID).Count(&totalWalks)

	var walks []models.Walk
	if err := s.DB.Where("external_user_id = ?", externalUserID).
		Order("walked_on DESC, created_at DESC").
		Limit(size).Offset(offset).
		Find(&walks).Error; err != nil {
		return nil, err
	}

	totalPages := int((totalWalks + int64(size) - 1) / int64(size))

	return map[string]interface{}{
		"walks":       walks,
		"page":        page,
		"size":        size,
		"total_items": totalWalks,
		"total_pages": totalPages,
	}, nil
}
