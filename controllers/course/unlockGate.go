package controllers

import (
	"errors"

	"learnhub/config"
	courseModels "learnhub/models/course"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Unlock grants are idempotent inserts against composite unique indexes.
// A duplicate grant is success, never an error.

func grantModuleUnlock(db *gorm.DB, studentID, moduleID uint) error {
	unlock := courseModels.UnlockedModule{StudentID: studentID, ModuleID: moduleID}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&unlock).Error
}

func grantLessonUnlock(db *gorm.DB, studentID, lessonID uint) error {
	unlock := courseModels.UnlockedLesson{StudentID: studentID, LessonID: lessonID}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&unlock).Error
}

func grantAssignmentUnlock(db *gorm.DB, studentID, assignmentID uint) error {
	unlock := courseModels.UnlockedAssignment{StudentID: studentID, AssignmentID: assignmentID}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&unlock).Error
}

// UnlockFirstModuleAndLesson bootstraps progression for a freshly enrolled
// course: the lowest-ordered module and its lowest-ordered lesson are granted.
// No-op when any module of the course is already unlocked for the student.
func UnlockFirstModuleAndLesson(db *gorm.DB, studentID, courseID uint) error {
	var count int64
	if err := db.Model(&courseModels.UnlockedModule{}).
		Joins("JOIN modules ON modules.id = unlocked_modules.module_id").
		Where("unlocked_modules.student_id = ? AND modules.course_id = ? AND modules.is_deleted = ?", studentID, courseID, false).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var firstModule courseModels.Module
	err := db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_number asc, id asc").First(&firstModule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil // course has no modules yet
	}
	if err != nil {
		return err
	}

	if err := grantModuleUnlock(db, studentID, firstModule.ID); err != nil {
		return err
	}

	var firstLesson courseModels.Lesson
	err = db.Where("module_id = ? AND is_deleted = ?", firstModule.ID, false).
		Order("order_number asc, id asc").First(&firstLesson).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	return grantLessonUnlock(db, studentID, firstLesson.ID)
}

// AdvanceAfterQuizSubmission opens the next lesson in the module after a quiz
// submission, or the module's assignments when the submitted lesson was the
// last one. Submission alone advances the student; only the
// REQUIRE_PASS_TO_ADVANCE policy gates advancement on passing.
func AdvanceAfterQuizSubmission(db *gorm.DB, studentID uint, lesson courseModels.Lesson, passed bool) error {
	if config.AppConfig.RequirePassToAdvance && !passed {
		return nil
	}

	var next courseModels.Lesson
	err := db.Where("module_id = ? AND is_deleted = ? AND (order_number > ? OR (order_number = ? AND id > ?))",
		lesson.ModuleID, false, lesson.OrderNumber, lesson.OrderNumber, lesson.ID).
		Order("order_number asc, id asc").First(&next).Error
	if err == nil {
		return grantLessonUnlock(db, studentID, next.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// Last lesson of the module: open its assignments instead.
	return UnlockModuleAssignments(db, studentID, lesson.ModuleID)
}

// UnlockModuleAssignments grants every assignment of a module.
func UnlockModuleAssignments(db *gorm.DB, studentID, moduleID uint) error {
	var assignments []courseModels.ModuleAssignment
	if err := db.Where("module_id = ? AND is_deleted = ?", moduleID, false).Find(&assignments).Error; err != nil {
		return err
	}
	for _, assignment := range assignments {
		if err := grantAssignmentUnlock(db, studentID, assignment.ID); err != nil {
			return err
		}
	}
	return nil
}

// OnAssignmentGraded opens the next module of the course (and its first
// lesson) once an assignment has a usable score. On the last module this is a
// no-op; course completion is driven by the lesson completion ratio.
func OnAssignmentGraded(db *gorm.DB, studentID, assignmentID uint) error {
	var assignment courseModels.ModuleAssignment
	if err := db.Where("id = ? AND is_deleted = ?", assignmentID, false).First(&assignment).Error; err != nil {
		return err
	}

	var module courseModels.Module
	if err := db.Where("id = ?", assignment.ModuleID).First(&module).Error; err != nil {
		return err
	}

	var next courseModels.Module
	err := db.Where("course_id = ? AND is_deleted = ? AND (order_number > ? OR (order_number = ? AND id > ?))",
		module.CourseID, false, module.OrderNumber, module.OrderNumber, module.ID).
		Order("order_number asc, id asc").First(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := grantModuleUnlock(db, studentID, next.ID); err != nil {
		return err
	}

	var firstLesson courseModels.Lesson
	err = db.Where("module_id = ? AND is_deleted = ?", next.ID, false).
		Order("order_number asc, id asc").First(&firstLesson).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	return grantLessonUnlock(db, studentID, firstLesson.ID)
}

// isLastLessonInModule reports whether no lesson orders after the given one.
func isLastLessonInModule(db *gorm.DB, lesson courseModels.Lesson) (bool, error) {
	var count int64
	err := db.Model(&courseModels.Lesson{}).
		Where("module_id = ? AND is_deleted = ? AND (order_number > ? OR (order_number = ? AND id > ?))",
			lesson.ModuleID, false, lesson.OrderNumber, lesson.OrderNumber, lesson.ID).
		Count(&count).Error
	return count == 0, err
}

func isLessonUnlocked(db *gorm.DB, studentID, lessonID uint) bool {
	var unlock courseModels.UnlockedLesson
	return db.Where("student_id = ? AND lesson_id = ?", studentID, lessonID).First(&unlock).Error == nil
}

func isAssignmentUnlocked(db *gorm.DB, studentID, assignmentID uint) bool {
	var unlock courseModels.UnlockedAssignment
	return db.Where("student_id = ? AND assignment_id = ?", studentID, assignmentID).First(&unlock).Error == nil
}
