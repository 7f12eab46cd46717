package course

import "gorm.io/gorm"

// Module represents an ordered section within a course. OrderNumber defines
// progression order; ties are broken by primary key.
type Module struct {
	gorm.Model
	CourseID      uint   `json:"course_id" gorm:"index;not null"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	OrderNumber   int    `json:"order_number" gorm:"default:0"`
	BadgeImageURL string `json:"badge_image_url"`
	IsDeleted     bool   `gorm:"default:false"`
}

// ModuleAssignment is a graded written assignment attached to a module.
// Instructions may embed a free-text evaluation rubric parsed by the AI grader.
type ModuleAssignment struct {
	gorm.Model
	ModuleID     uint   `json:"module_id" gorm:"index;not null"`
	Title        string `json:"title"`
	Instructions string `json:"instructions" gorm:"type:text"`
	IsDeleted    bool   `gorm:"default:false"`
}
