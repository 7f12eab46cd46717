package courseRoutes

import (
	controllers "learnhub/controllers/course"
	"learnhub/middleware"
	validators "learnhub/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all student-facing course and progression routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Enrollment
	courseGroup.Post("/:id/enroll", middleware.JWTMiddleware, validators.EnrollCourse(), controllers.EnrollInCourse)

	// Lesson completion
	courseGroup.Post("/:course_id/lesson/:lesson_id/complete", middleware.JWTMiddleware, validators.LessonRef(), controllers.MarkLessonComplete)

	// Quizzes
	courseGroup.Get("/:course_id/lesson/:lesson_id/quiz", middleware.JWTMiddleware, validators.LessonRef(), controllers.GetLessonQuiz)
	courseGroup.Post("/:course_id/lesson/:lesson_id/quiz/submit", middleware.JWTMiddleware, validators.LessonRef(), validators.SubmitQuizBody(), controllers.SubmitQuiz)

	// Assignments
	courseGroup.Get("/:course_id/assignment/:assignment_id", middleware.JWTMiddleware, validators.AssignmentRef(), controllers.ViewAssignment)
	courseGroup.Post("/:course_id/assignment/:assignment_id/submit", middleware.JWTMiddleware, validators.AssignmentRef(), validators.SubmitAssignmentBody(), controllers.SubmitAssignment)

	// Progress tracking
	courseGroup.Get("/:course_id/progress", middleware.JWTMiddleware, validators.CourseRef(), controllers.GetCourseProgress)

	// User dashboard, enrollments and certificates
	userGroup := app.Group("/user")
	userGroup.Get("/dashboard", middleware.JWTMiddleware, controllers.GetDashboardState)
	userGroup.Get("/enrollments", middleware.JWTMiddleware, controllers.GetUserEnrollmentsList)
	userGroup.Get("/certificates", middleware.JWTMiddleware, controllers.GetUserCertificates)
}
