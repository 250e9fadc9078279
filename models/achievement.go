package models

import (
	"time"
)

// AchievementCategory decides which stat a definition's threshold is compared
// against. The evaluator switches exhaustively on it.
type AchievementCategory string

const (
	CategoryDistance      AchievementCategory = "distance"            // total km walked
	CategoryWalkCount     AchievementCategory = "walk_count"          // total walks logged
	CategoryStreak        AchievementCategory = "streak"              // best day streak
	CategoryParticipation AchievementCategory = "event_participation" // confirmed event attendances
	CategoryConstancy     AchievementCategory = "constancy"           // longest run of close-together attendances
	CategorySpecial       AchievementCategory = "special"             // granted by explicit trigger only
)

// AchievementDefinition: static catalog entry (seeded from AchievementSeed, admins
// can deactivate tiers without redeploying)
type AchievementDefinition struct {
	ID          string              `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Code        string              `gorm:"uniqueIndex;not null" json:"code"` // e.g., "DISTANCE_100KM"
	Name        string              `gorm:"not null" json:"name"`
	Description string              `json:"description"`
	IconURL     string              `gorm:"type:text" json:"icon_url"` // served by the assets CDN
	Category    AchievementCategory `gorm:"type:varchar(32);not null;index" json:"category"`
	Threshold   int64               `gorm:"default:0" json:"threshold"` // km / walks / days / attendances / run length; 0 for special
	IsActive    bool                `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

// UserAchievement: awarded instance. The composite unique index is the real
// duplicate-grant guard — evaluation inserts with ON CONFLICT DO NOTHING, so two
// concurrent passes can both decide to grant and only one row lands.
type UserAchievement struct {
	ID              string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID  string    `gorm:"not null;index;uniqueIndex:idx_user_achievement_once" json:"external_user_id"`
	AchievementID   string    `gorm:"not null;index;uniqueIndex:idx_user_achievement_once" json:"achievement_id"`
	ProgressPercent int       `gorm:"default:100" json:"progress_percent"` // always 100 on grant
	GrantedAt       time.Time `gorm:"autoCreateTime" json:"granted_at"`
}

// AchievementSeed is upserted by code on boot
var AchievementSeed = []AchievementDefinition{
	{
		Code:        "FIRST_WALK",
		Name:        "First Steps",
		Description: "Logged your very first walk",
		Category:    CategoryWalkCount,
		Threshold:   1,
	},
	{
		Code:        "WALKS_50",
		Name:        "Regular",
		Description: "Logged 50 walks",
		Category:    CategoryWalkCount,
		Threshold:   50,
	},
	{
		Code:        "WALKS_200",
		Name:        "Out In Any Weather",
		Description: "Logged 200 walks",
		Category:    CategoryWalkCount,
		Threshold:   200,
	},
	{
		Code:        "DISTANCE_10KM",
		Name:        "Warming Up",
		Description: "Walked 10 km in total",
		Category:    CategoryDistance,
		Threshold:   10,
	},
	{
		Code:        "DISTANCE_100KM",
		Name:        "Century Club",
		Description: "Walked 100 km in total",
		Category:    CategoryDistance,
		Threshold:   100,
	},
	{
		Code:        "DISTANCE_500KM",
		Name:        "Long Hauler",
		Description: "Walked 500 km in total",
		Category:    CategoryDistance,
		Threshold:   500,
	},
	{
		Code:        "STREAK_7",
		Name:        "One Full Week",
		Description: "Walked 7 days in a row",
		Category:    CategoryStreak,
		Threshold:   7,
	},
	{
		Code:        "STREAK_30",
		Name:        "Rain Or Shine",
		Description: "Walked 30 days in a row",
		Category:    CategoryStreak,
		Threshold:   30,
	},
	{
		Code:        "EVENT_FIRST",
		Name:        "Pack Walker",
		Description: "Attended your first group walk",
		Category:    CategoryParticipation,
		Threshold:   1,
	},
	{
		Code:        "EVENT_5",
		Name:        "Trail Regular",
		Description: "Attended 5 group walks",
		Category:    CategoryParticipation,
		Threshold:   5,
	},
	{
		Code:        "EVENT_10",
		Name:        "Route Collector",
		Description: "Attended 10 group walks",
		Category:    CategoryParticipation,
		Threshold:   10,
	},
	{
		Code:        "CONSTANCY_2",
		Name:        "Coming Back",
		Description: "Attended 2 group walks close together",
		Category:    CategoryConstancy,
		Threshold:   2,
	},
	{
		Code:        "CONSTANCY_3",
		Name:        "Familiar Face",
		Description: "Attended 3 group walks close together",
		Category:    CategoryConstancy,
		Threshold:   3,
	},
	{
		Code:        "CONSTANCY_5",
		Name:        "Part Of The Pack",
		Description: "Attended 5 group walks close together",
		Category:    CategoryConstancy,
		Threshold:   5,
	},
	{
		Code:        "PROFILE_COMPLETE",
		Name:        "All Set Up",
		Description: "Completed your walker profile",
		Category:    CategorySpecial,
	},
}
