package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AssignmentSubmission is a student's answer to a module assignment. The row
// is written ungraded first so a submission is never lost when grading fails;
// Score stays NULL until the AI grader returns a usable result.
type AssignmentSubmission struct {
	gorm.Model
	AssignmentID uint           `json:"assignment_id" gorm:"index;not null"`
	StudentID    uint           `json:"student_id" gorm:"index;not null"`
	Description  string         `json:"description" gorm:"type:text"`
	FileURL      string         `json:"file_url"`
	Score        *int           `json:"score"`
	Total        int            `json:"total" gorm:"default:100"`
	Grade        string         `json:"grade"` // letter grade from the rubric
	AIFeedback   string         `json:"ai_feedback" gorm:"type:text"`
	Criteria     datatypes.JSON `json:"criteria"` // per-criterion score breakdown
	IsDeleted    bool           `gorm:"default:false"`
}
