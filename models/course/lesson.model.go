package course

import (
	"time"

	"gorm.io/gorm"
)

// Lesson is the smallest progression unit, ordered within its module.
type Lesson struct {
	gorm.Model
	ModuleID    uint   `json:"module_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Content     string `json:"content" gorm:"type:text"`
	VideoURL    string `json:"video_url"`
	OrderNumber int    `json:"order_number" gorm:"default:0"`
	IsDeleted   bool   `gorm:"default:false"`
}

// UserLessonProgress marks a lesson as completed by a user. Presence = completed.
type UserLessonProgress struct {
	gorm.Model
	UserID      uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_lesson"`
	LessonID    uint      `json:"lesson_id" gorm:"not null;uniqueIndex:idx_user_lesson"`
	CompletedAt time.Time `json:"completed_at"`
}
