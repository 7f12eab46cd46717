package controllers

import (
	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	courseModels "learnhub/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LessonView is a lesson with the student's unlock/completion state.
type LessonView struct {
	courseModels.Lesson
	Unlocked  bool `json:"unlocked"`
	Completed bool `json:"completed"`
	HasQuiz   bool `json:"has_quiz"`
}

// AssignmentView is a module assignment with the student's state.
type AssignmentView struct {
	courseModels.ModuleAssignment
	Unlocked  bool `json:"unlocked"`
	Submitted bool `json:"submitted"`
	Score     *int `json:"score"`
}

// ModuleView is a module with its lessons and assignments resolved for one student.
type ModuleView struct {
	courseModels.Module
	Unlocked    bool             `json:"unlocked"`
	Lessons     []LessonView     `json:"lessons"`
	Assignments []AssignmentView `json:"assignments"`
}

// CourseView is one enrolled course fully expanded for the dashboard.
type CourseView struct {
	courseModels.Course
	Enrollment courseModels.Enrollment `json:"enrollment"`
	Modules    []ModuleView            `json:"modules"`
}

// GetDashboardState reconstructs the full locked/unlocked, completed/pending
// view of every enrolled course. A freshly enrolled course with no unlocks
// yet is bootstrapped in place, so the first visit is self-initializing.
func GetDashboardState(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	db := database.Database.Db

	var enrollments []courseModels.Enrollment
	if err := db.Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("created_at asc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	courses := make([]CourseView, 0, len(enrollments))
	for _, enrollment := range enrollments {
		// Lazy bootstrap for courses without any unlocked module yet
		if err := UnlockFirstModuleAndLesson(db, userID, enrollment.CourseID); err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to initialize course progression!", nil)
		}

		view, err := buildCourseView(db, userID, enrollment)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to assemble dashboard!", nil)
		}
		courses = append(courses, view)
	}

	var badges []models.UserBadge
	db.Where("user_id = ? AND is_deleted = ?", userID, false).Order("awarded_at asc").Find(&badges)

	var certificates []courseModels.Certificate
	db.Where("user_id = ? AND is_deleted = ?", userID, false).Order("issued_at desc").Find(&certificates)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", fiber.Map{
		"courses":      courses,
		"badges":       badges,
		"total_xp":     totalUserXP(db, userID),
		"certificates": certificates,
	})
}

// buildCourseView expands one enrollment into modules, lessons and
// assignments with per-student flags.
func buildCourseView(db *gorm.DB, userID uint, enrollment courseModels.Enrollment) (CourseView, error) {
	var crs courseModels.Course
	if err := db.Where("id = ?", enrollment.CourseID).First(&crs).Error; err != nil {
		return CourseView{}, err
	}

	var modules []courseModels.Module
	if err := db.Where("course_id = ? AND is_deleted = ?", crs.ID, false).
		Order("order_number asc, id asc").Find(&modules).Error; err != nil {
		return CourseView{}, err
	}

	unlockedModules := make(map[uint]bool)
	var moduleUnlocks []courseModels.UnlockedModule
	db.Where("student_id = ?", userID).Find(&moduleUnlocks)
	for _, u := range moduleUnlocks {
		unlockedModules[u.ModuleID] = true
	}

	unlockedLessons := make(map[uint]bool)
	var lessonUnlocks []courseModels.UnlockedLesson
	db.Where("student_id = ?", userID).Find(&lessonUnlocks)
	for _, u := range lessonUnlocks {
		unlockedLessons[u.LessonID] = true
	}

	unlockedAssignments := make(map[uint]bool)
	var assignmentUnlocks []courseModels.UnlockedAssignment
	db.Where("student_id = ?", userID).Find(&assignmentUnlocks)
	for _, u := range assignmentUnlocks {
		unlockedAssignments[u.AssignmentID] = true
	}

	completedLessons := make(map[uint]bool)
	var lessonProgress []courseModels.UserLessonProgress
	db.Where("user_id = ?", userID).Find(&lessonProgress)
	for _, p := range lessonProgress {
		completedLessons[p.LessonID] = true
	}

	moduleViews := make([]ModuleView, len(modules))
	for i, module := range modules {
		var lessons []courseModels.Lesson
		if err := db.Where("module_id = ? AND is_deleted = ?", module.ID, false).
			Order("order_number asc, id asc").Find(&lessons).Error; err != nil {
			return CourseView{}, err
		}

		lessonViews := make([]LessonView, len(lessons))
		for j, lesson := range lessons {
			var quizCount int64
			db.Model(&courseModels.Quiz{}).Where("lesson_id = ? AND is_deleted = ?", lesson.ID, false).Count(&quizCount)
			lessonViews[j] = LessonView{
				Lesson:    lesson,
				Unlocked:  unlockedLessons[lesson.ID],
				Completed: completedLessons[lesson.ID],
				HasQuiz:   quizCount > 0,
			}
		}

		var assignments []courseModels.ModuleAssignment
		if err := db.Where("module_id = ? AND is_deleted = ?", module.ID, false).Find(&assignments).Error; err != nil {
			return CourseView{}, err
		}

		assignmentViews := make([]AssignmentView, len(assignments))
		for j, assignment := range assignments {
			var submission courseModels.AssignmentSubmission
			submitted := db.Where("assignment_id = ? AND student_id = ? AND is_deleted = ?", assignment.ID, userID, false).
				Order("created_at desc, id desc").First(&submission).Error == nil
			view := AssignmentView{
				ModuleAssignment: assignment,
				Unlocked:         unlockedAssignments[assignment.ID],
				Submitted:        submitted,
			}
			if submitted {
				view.Score = submission.Score
			}
			assignmentViews[j] = view
		}

		moduleViews[i] = ModuleView{
			Module:      module,
			Unlocked:    unlockedModules[module.ID],
			Lessons:     lessonViews,
			Assignments: assignmentViews,
		}
	}

	return CourseView{
		Course:     crs,
		Enrollment: enrollment,
		Modules:    moduleViews,
	}, nil
}

// GetCourseProgress gets the user's per-module progress in a course
func GetCourseProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	db := database.Database.Db

	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	var modules []courseModels.Module
	db.Where("course_id = ? AND is_deleted = ?", courseID, false).Order("order_number asc, id asc").Find(&modules)

	type ModuleProgress struct {
		ModuleID         uint   `json:"module_id"`
		ModuleTitle      string `json:"module_title"`
		TotalLessons     int64  `json:"total_lessons"`
		CompletedLessons int64  `json:"completed_lessons"`
		Progress         int    `json:"progress"`
	}

	moduleProgress := make([]ModuleProgress, len(modules))
	for i, module := range modules {
		var totalLessons int64
		var completedLessons int64

		db.Model(&courseModels.Lesson{}).
			Where("module_id = ? AND is_deleted = ?", module.ID, false).
			Count(&totalLessons)
		db.Model(&courseModels.UserLessonProgress{}).
			Joins("JOIN lessons ON lessons.id = user_lesson_progresses.lesson_id").
			Where("user_lesson_progresses.user_id = ? AND lessons.module_id = ? AND lessons.is_deleted = ?", userID, module.ID, false).
			Count(&completedLessons)

		progress := 0
		if totalLessons > 0 {
			progress = int(completedLessons * 100 / totalLessons)
		}

		moduleProgress[i] = ModuleProgress{
			ModuleID:         module.ID,
			ModuleTitle:      module.Title,
			TotalLessons:     totalLessons,
			CompletedLessons: completedLessons,
			Progress:         progress,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"enrollment":      enrollment,
		"module_progress": moduleProgress,
	})
}
