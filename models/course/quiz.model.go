package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Quiz is the single quiz of a lesson, created lazily on first access.
type Quiz struct {
	gorm.Model
	LessonID  uint   `json:"lesson_id" gorm:"uniqueIndex;not null"`
	Title     string `json:"title"`
	IsDeleted bool   `gorm:"default:false"`
}

// QuizQuestion holds a question, its options and the correct option text.
type QuizQuestion struct {
	gorm.Model
	QuizID        uint           `json:"quiz_id" gorm:"index;not null"`
	Question      string         `json:"question" gorm:"type:text"`
	Options       datatypes.JSON `json:"options"` // JSON array of option strings
	CorrectOption string         `json:"correct_option"`
	OrderNumber   int            `json:"order_number" gorm:"default:0"`
	IsDeleted     bool           `gorm:"default:false"`
}

// QuizSubmission is one scored attempt at a lesson's quiz. History is
// append-only; the latest attempt by created_at answers "already submitted".
type QuizSubmission struct {
	gorm.Model
	QuizID        uint           `json:"quiz_id" gorm:"index;not null"`
	StudentID     uint           `json:"student_id" gorm:"index;not null"`
	Score         int            `json:"score"` // 0-100
	Passed        bool           `json:"passed" gorm:"default:false"`
	ReviewData    datatypes.JSON `json:"review_data"` // per-question correctness + feedback
	AttemptNumber int            `json:"attempt_number" gorm:"default:1"`
	IsDeleted     bool           `gorm:"default:false"`
}
