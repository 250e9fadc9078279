package models

import (
	"time"
)

// GroupEvent represents an organized group walk on a fixed route
type GroupEvent struct {
	ID               string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name             string     `json:"name" gorm:"not null"`
	Slug             string     `json:"slug" gorm:"uniqueIndex;not null"`
	Description      string     `json:"description" gorm:"type:text"`
	RouteName        string     `json:"route_name"`
	MeetingPoint     string     `json:"meeting_point"`
	DistanceKm       float64    `json:"distance_km" gorm:"default:0"`
	MaxParticipants  int        `json:"max_participants" gorm:"default:0"` // 0 = unlimited
	Status           string     `json:"status" gorm:"type:varchar(16);default:'draft'"` // draft → scheduled → open → completed
	StartsAt         time.Time  `json:"starts_at" gorm:"not null;index"`
	EndsAt           time.Time  `json:"ends_at" gorm:"index"`
	MainPhotoURL     string     `json:"main_photo_url"`
	CreatedAt        time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	PublishedAt      *time.Time `json:"published_at,omitempty" gorm:"index"`

	// Relationships
	Participations []EventParticipation `json:"participations,omitempty" gorm:"foreignKey:EventID"`

	// Calculated fields (not stored in DB)
	ParticipantsCount int64 `json:"participants_count,omitempty" gorm:"-"`
	AvailableSlots    int64 `json:"available_slots,omitempty" gorm:"-"`
}

// EventParticipation tracks one walker at one group event. One row per
// (user, event) — joining twice is a no-op. Only confirmed rows count toward
// participation and constancy achievements.
type EventParticipation struct {
	ID             string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	EventID        string     `json:"event_id" gorm:"not null;index;uniqueIndex:idx_event_participation_once"`
	ExternalUserID string     `json:"external_user_id" gorm:"not null;index;uniqueIndex:idx_event_participation_once"`
	EventDate      time.Time  `json:"event_date" gorm:"not null;index"` // denormalized from GroupEvent.StartsAt
	Confirmed      bool       `json:"confirmed" gorm:"default:false"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	Event GroupEvent `json:"event,omitempty" gorm:"foreignKey:EventID"`
}
