package courseValidator

import (
	"strconv"
	"strings"

	controllers "learnhub/controllers/course"
	"learnhub/middleware"

	"github.com/gofiber/fiber/v2"
)

// parsePositiveID validates a positive integer path parameter.
func parsePositiveID(c *fiber.Ctx, name string) (int, bool) {
	raw := strings.TrimSpace(c.Params(name))
	if raw == "" {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func EnrollCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parsePositiveID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		c.Locals("courseID", courseID)
		return c.Next()
	}
}

func CourseRef() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parsePositiveID(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		c.Locals("courseID", courseID)
		return c.Next()
	}
}

func LessonRef() fiber.Handler {
	return func(c *fiber.Ctx) error {
		errors := make(map[string]string)

		courseID, ok := parsePositiveID(c, "course_id")
		if !ok {
			errors["course_id"] = "Course ID must be a positive integer!"
		}
		lessonID, ok := parsePositiveID(c, "lesson_id")
		if !ok {
			errors["lesson_id"] = "Lesson ID must be a positive integer!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		return c.Next()
	}
}

func AssignmentRef() fiber.Handler {
	return func(c *fiber.Ctx) error {
		errors := make(map[string]string)

		courseID, ok := parsePositiveID(c, "course_id")
		if !ok {
			errors["course_id"] = "Course ID must be a positive integer!"
		}
		assignmentID, ok := parsePositiveID(c, "assignment_id")
		if !ok {
			errors["assignment_id"] = "Assignment ID must be a positive integer!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("assignmentID", assignmentID)
		return c.Next()
	}
}

// SubmitQuizBody validates the quiz answers payload before any write happens.
func SubmitQuizBody() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Answers []controllers.QuizAnswer `json:"answers"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if len(reqData.Answers) == 0 {
			errors["answers"] = "Please answer at least one question!"
		}
		for _, answer := range reqData.Answers {
			if answer.QuestionID == 0 {
				errors["answers"] = "Every answer must reference a question!"
				break
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuizAnswers", reqData.Answers)
		return c.Next()
	}
}

// SubmitAssignmentBody validates the assignment submission form. The
// description is required; the file attachment is optional and handled by the
// controller.
func SubmitAssignmentBody() fiber.Handler {
	return func(c *fiber.Ctx) error {
		description := strings.TrimSpace(c.FormValue("description"))

		if description == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"description": "Description is required!",
			})
		}

		c.Locals("validatedAssignmentDescription", description)
		return c.Next()
	}
}
