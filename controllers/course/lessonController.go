package controllers

import (
	"math"
	"time"

	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	courseModels "learnhub/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MarkLessonComplete records a lesson completion for the current user and
// runs the downstream progression: progress recompute, assignment unlocks for
// a finished module and certificate issuance at 100%.
func MarkLessonComplete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	db := database.Database.Db

	// Check enrollment
	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please enroll in this course first!", nil)
	}

	lesson, err := findCourseLesson(db, uint(courseID), uint(lessonID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	if !isLessonUnlocked(db, userID, lesson.ID) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Lesson is locked!", nil)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		return completeLesson(tx, user, lesson, uint(courseID))
	}); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to complete lesson!", nil)
	}

	db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson completed!", fiber.Map{
		"ok":       true,
		"progress": enrollment.Progress,
	})
}

// findCourseLesson loads a lesson and verifies it belongs to the course.
func findCourseLesson(db *gorm.DB, courseID, lessonID uint) (courseModels.Lesson, error) {
	var lesson courseModels.Lesson
	err := db.Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("lessons.id = ? AND modules.course_id = ? AND lessons.is_deleted = ? AND modules.is_deleted = ?",
			lessonID, courseID, false, false).
		First(&lesson).Error
	return lesson, err
}

// completeLesson is the transactional completion path shared by the direct
// completion endpoint and quiz submission. Completing an already-completed
// lesson changes nothing.
func completeLesson(tx *gorm.DB, user models.User, lesson courseModels.Lesson, courseID uint) error {
	progress := courseModels.UserLessonProgress{
		UserID:      user.ID,
		LessonID:    lesson.ID,
		CompletedAt: time.Now(),
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&progress).Error; err != nil {
		return err
	}

	// Finishing the last lesson of a module opens its assignments, whether or
	// not that lesson carried a quiz.
	last, err := isLastLessonInModule(tx, lesson)
	if err != nil {
		return err
	}
	if last {
		if err := UnlockModuleAssignments(tx, user.ID, lesson.ModuleID); err != nil {
			return err
		}
	}

	pct, err := recomputeEnrollmentProgress(tx, user.ID, courseID)
	if err != nil {
		return err
	}
	if pct >= 100 {
		return issueCertificate(tx, user, courseID)
	}
	return nil
}

// recomputeEnrollmentProgress rewrites the cached enrollment progress from
// completion counts. The value is derived, never incremented, so concurrent
// recomputes converge.
func recomputeEnrollmentProgress(tx *gorm.DB, userID, courseID uint) (int, error) {
	var total int64
	if err := tx.Model(&courseModels.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("modules.course_id = ? AND modules.is_deleted = ? AND lessons.is_deleted = ?", courseID, false, false).
		Count(&total).Error; err != nil {
		return 0, err
	}

	var completed int64
	if err := tx.Model(&courseModels.UserLessonProgress{}).
		Joins("JOIN lessons ON lessons.id = user_lesson_progresses.lesson_id").
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("user_lesson_progresses.user_id = ? AND modules.course_id = ? AND lessons.is_deleted = ?", userID, courseID, false).
		Count(&completed).Error; err != nil {
		return 0, err
	}

	pct := 0
	if total > 0 {
		pct = int(math.Round(float64(completed) / float64(total) * 100))
	}

	var enrollment courseModels.Enrollment
	if err := tx.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return pct, err
	}

	enrollment.Progress = pct
	enrollment.CompletedLessons = int(completed)
	enrollment.TotalLessons = int(total)

	if pct >= 100 {
		enrollment.Status = "COMPLETED"
		if enrollment.CompletedAt == nil {
			now := time.Now()
			enrollment.CompletedAt = &now
		}
	} else if pct > 0 {
		enrollment.Status = "IN_PROGRESS"
	}

	return pct, tx.Save(&enrollment).Error
}
