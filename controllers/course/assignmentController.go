package controllers

import (
	"context"
	"log"
	"time"

	"learnhub/config"
	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	courseModels "learnhub/models/course"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// gradingFallbackFeedback is stored when the grading collaborator is
// unavailable; the submission itself always succeeds.
const gradingFallbackFeedback = "Your submission was received. Automated feedback is temporarily unavailable and your work will be graded shortly."

// ViewAssignment returns an assignment with the student's submission state.
func ViewAssignment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)
	assignmentID := c.Locals("assignmentID").(int)

	db := database.Database.Db

	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please enroll in this course first!", nil)
	}

	assignment, err := findCourseAssignment(db, uint(courseID), uint(assignmentID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assignment not found!", nil)
	}

	unlocked := isAssignmentUnlocked(db, userID, assignment.ID)

	var submission courseModels.AssignmentSubmission
	submitted := db.Where("assignment_id = ? AND student_id = ? AND is_deleted = ?", assignment.ID, userID, false).
		Order("created_at desc, id desc").First(&submission).Error == nil

	data := fiber.Map{
		"assignment": assignment,
		"unlocked":   unlocked,
		"submitted":  submitted,
	}
	if submitted {
		data["submission"] = submission
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignment fetched successfully!", data)
}

// SubmitAssignment persists the submission first, then grades it through the
// AI collaborator. Grading failure degrades to placeholder feedback; losing a
// student's submission is the only unacceptable outcome.
func SubmitAssignment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)
	assignmentID := c.Locals("assignmentID").(int)
	description := c.Locals("validatedAssignmentDescription").(string)

	db := database.Database.Db

	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please enroll in this course first!", nil)
	}

	assignment, err := findCourseAssignment(db, uint(courseID), uint(assignmentID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assignment not found!", nil)
	}

	if !isAssignmentUnlocked(db, userID, assignment.ID) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Assignment is locked!", nil)
	}

	// Optional attachment
	fileURL := ""
	if file, err := c.FormFile("file"); err == nil && file != nil {
		fileURL, err = utils.SaveSubmissionFile(file, userID)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save uploaded file!", nil)
		}
	}

	submission := courseModels.AssignmentSubmission{
		AssignmentID: assignment.ID,
		StudentID:    userID,
		Description:  description,
		FileURL:      fileURL,
		Total:        100,
	}
	if err := db.Create(&submission).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store submission!", nil)
	}

	if err := gradeAssignmentSubmission(db, &submission, assignment); err != nil {
		log.Printf("[GRADING] assignment %d submission %d: %v", assignment.ID, submission.ID, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignment submitted!", fiber.Map{
		"score":      submission.Score,
		"total":      submission.Total,
		"grade":      submission.Grade,
		"feedback":   submission.AIFeedback,
		"criteria":   submission.Criteria,
		"submission": submission,
	})
}

// findCourseAssignment loads an assignment and verifies it belongs to the course.
func findCourseAssignment(db *gorm.DB, courseID, assignmentID uint) (courseModels.ModuleAssignment, error) {
	var assignment courseModels.ModuleAssignment
	err := db.Joins("JOIN modules ON modules.id = module_assignments.module_id").
		Where("module_assignments.id = ? AND modules.course_id = ? AND module_assignments.is_deleted = ? AND modules.is_deleted = ?",
			assignmentID, courseID, false, false).
		First(&assignment).Error
	return assignment, err
}

// gradeAssignmentSubmission calls the grading collaborator and applies the
// result to the stored submission. On success the unlock gate advances to the
// next module; on failure the placeholder feedback is stored and the score
// stays NULL so the regrade sweep can retry.
func gradeAssignmentSubmission(db *gorm.DB, submission *courseModels.AssignmentSubmission, assignment courseModels.ModuleAssignment) error {
	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(config.AppConfig.GradingTimeoutSeconds)*time.Second)
	defer cancel()

	grade, err := utils.Grading.GradeAssignment(ctx, assignment.Instructions, submission.Description)
	if err != nil {
		submission.AIFeedback = gradingFallbackFeedback
		if saveErr := db.Model(submission).Update("ai_feedback", gradingFallbackFeedback).Error; saveErr != nil {
			return saveErr
		}
		return err
	}

	submission.Score = grade.Total
	submission.Grade = grade.Grade
	submission.AIFeedback = grade.Feedback
	submission.Criteria = datatypes.JSON(grade.Criteria)

	if err := db.Model(submission).Updates(map[string]interface{}{
		"score":       submission.Score,
		"grade":       submission.Grade,
		"ai_feedback": submission.AIFeedback,
		"criteria":    submission.Criteria,
	}).Error; err != nil {
		return err
	}

	return OnAssignmentGraded(db, submission.StudentID, submission.AssignmentID)
}
