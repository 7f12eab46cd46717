package course

import "gorm.io/gorm"

// Unlock grants are monotonic: rows are only ever inserted, never removed.
// The composite unique indexes make every grant idempotent (ON CONFLICT DO
// NOTHING semantics at the insert site).

// UnlockedModule states that a student may access a module.
type UnlockedModule struct {
	gorm.Model
	StudentID uint `json:"student_id" gorm:"not null;uniqueIndex:idx_student_module"`
	ModuleID  uint `json:"module_id" gorm:"not null;uniqueIndex:idx_student_module"`
}

// UnlockedLesson states that a student may access a lesson.
type UnlockedLesson struct {
	gorm.Model
	StudentID uint `json:"student_id" gorm:"not null;uniqueIndex:idx_student_lesson"`
	LessonID  uint `json:"lesson_id" gorm:"not null;uniqueIndex:idx_student_lesson"`
}

// UnlockedAssignment states that a student may access a module assignment.
type UnlockedAssignment struct {
	gorm.Model
	StudentID    uint `json:"student_id" gorm:"not null;uniqueIndex:idx_student_assignment"`
	AssignmentID uint `json:"assignment_id" gorm:"not null;uniqueIndex:idx_student_assignment"`
}
