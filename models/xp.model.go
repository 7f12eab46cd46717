package models

import (
	"time"

	"gorm.io/gorm"
)

// XPHistory is an append-only ledger of experience points earned by a user.
// Total XP is the sum of rows; users.xp mirrors it for cheap reads.
type XPHistory struct {
	gorm.Model
	UserID   uint      `json:"user_id" gorm:"index;not null"`
	XP       int       `json:"xp" gorm:"not null"`
	Activity string    `json:"activity"` // e.g. QUIZ_SUBMISSION
	EarnedAt time.Time `json:"earned_at"`
}

// UserBadge records a named badge granted to a user, at most once per name.
type UserBadge struct {
	gorm.Model
	UserID        uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_badge_name"`
	BadgeName     string    `json:"badge_name" gorm:"not null;uniqueIndex:idx_user_badge_name"`
	ModuleID      *uint     `json:"module_id"` // module active at grant time, if any
	BadgeImageURL string    `json:"badge_image_url"`
	AwardedAt     time.Time `json:"awarded_at"`
	IsDeleted     bool      `gorm:"default:false"`
}
