package models

import (
	"time"

	"gorm.io/gorm"
)

// WalkerUser is a local snapshot of user data needed for walks and events.
// Owned and managed solely by this service.
// Populated via sync worker from the Profile Service's user table.
type WalkerUser struct {
	ID                string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID    string  `gorm:"uniqueIndex;not null" json:"external_user_id"` // the profile service's UUID
	Username          string  `gorm:"index;not null" json:"username"`
	Email             string  `json:"email,omitempty"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
	FirstName         *string `json:"first_name,omitempty"`
	LastName          *string `json:"last_name,omitempty"`
	Bio               *string `json:"bio,omitempty"`
	ProfileComplete   bool    `json:"profile_complete" gorm:"default:false"` // triggers the PROFILE_COMPLETE grant

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	LastSeen *time.Time `json:"last_seen,omitempty"`
	IsBanned bool       `json:"is_banned" gorm:"default:false"` // local ban, events only

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
