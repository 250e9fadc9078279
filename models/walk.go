package models

import (
	"time"
)

// Walk is one logged walk. Rows are append-only — the ledger is the source of
// truth for recomputing aggregates if the denormalized stats ever drift.
type Walk struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"index;not null" json:"external_user_id"`

	DistanceKm float64   `json:"distance_km" gorm:"not null"`
	WalkedOn   time.Time `json:"walked_on" gorm:"index;not null"` // calendar date, caller-supplied (backdating allowed)

	// Optional metadata — opaque to the engine
	DurationMins int    `json:"duration_mins,omitempty" gorm:"default:0"`
	DogName      string `json:"dog_name,omitempty"`
	Notes        string `json:"notes,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
