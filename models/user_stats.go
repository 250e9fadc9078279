package models

import (
	"time"

	"gorm.io/gorm"
)

// UserStats tracks the per-walker running totals (denormalized for performance)
type UserStats struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to profile service

	// Running totals — only ever grow
	TotalDistanceKm float64 `json:"total_distance_km" gorm:"default:0"`
	TotalWalks      int64   `json:"total_walks" gorm:"default:0"`

	// Day streak
	CurrentStreak int `json:"current_streak" gorm:"default:0"`
	BestStreak    int `json:"best_streak" gorm:"default:0"` // invariant: BestStreak >= CurrentStreak

	// Date (UTC midnight) of the most recent walk, nil until the first one
	LastWalkDate *time.Time `json:"last_walk_date,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
