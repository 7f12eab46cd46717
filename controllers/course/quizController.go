package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
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
	"gorm.io/gorm/clause"
)

// passThreshold is the minimum score counted as a pass.
const passThreshold = 50

// ErrEmptyQuiz is returned when a quiz has no questions to score.
var ErrEmptyQuiz = errors.New("quiz has no questions")

// QuizAnswer is one submitted answer keyed by question id.
type QuizAnswer struct {
	QuestionID uint   `json:"question_id"`
	Answer     string `json:"answer"`
}

// ReviewItem is the per-question breakdown stored with every submission.
type ReviewItem struct {
	QuestionID uint   `json:"question_id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Correct    bool   `json:"correct"`
	Feedback   string `json:"feedback"`
}

// QuizResult is the outcome of a scored quiz submission.
type QuizResult struct {
	Score         int          `json:"score"`
	Passed        bool         `json:"passed"`
	Review        []ReviewItem `json:"review_data"`
	AttemptNumber int          `json:"attempt_number"`
	XPAwarded     int          `json:"xp_awarded"`
}

// GetLessonQuiz returns the lesson's quiz for taking, or the latest submission
// review when the student already submitted. The quiz row is created lazily on
// first access.
func GetLessonQuiz(c *fiber.Ctx) error {
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

	quiz, err := getOrCreateQuiz(db, lesson.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load quiz!", nil)
	}

	// Latest attempt answers "already submitted"
	var latest courseModels.QuizSubmission
	if err := db.Where("quiz_id = ? AND student_id = ? AND is_deleted = ?", quiz.ID, userID, false).
		Order("created_at desc, id desc").First(&latest).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz already submitted!", fiber.Map{
			"already_submitted": true,
			"score":             latest.Score,
			"passed":            latest.Passed,
			"review_data":       latest.ReviewData,
			"attempt_number":    latest.AttemptNumber,
		})
	}

	var questions []courseModels.QuizQuestion
	if err := db.Where("quiz_id = ? AND is_deleted = ?", quiz.ID, false).
		Order("order_number asc, id asc").Find(&questions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load quiz questions!", nil)
	}

	// Strip correct options before handing questions to the student
	type QuestionView struct {
		ID       uint            `json:"id"`
		Question string          `json:"question"`
		Options  json.RawMessage `json:"options"`
	}
	view := make([]QuestionView, len(questions))
	for i, q := range questions {
		view[i] = QuestionView{ID: q.ID, Question: q.Question, Options: json.RawMessage(q.Options)}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", fiber.Map{
		"already_submitted": false,
		"quiz_id":           quiz.ID,
		"questions":         view,
	})
}

// SubmitQuiz scores the submitted answers, stores the attempt with AI
// feedback, marks the lesson completed and fires the downstream unlock,
// XP and badge triggers.
func SubmitQuiz(c *fiber.Ctx) error {
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
	answers := c.Locals("validatedQuizAnswers").([]QuizAnswer)

	db := database.Database.Db

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

	result, err := processQuizSubmission(db, user, lesson, uint(courseID), answers)
	if errors.Is(err, ErrEmptyQuiz) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "This lesson's quiz has no questions yet!", nil)
	}
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit quiz!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz submitted!", result)
}

// getOrCreateQuiz returns the lesson's quiz, creating it on first access.
func getOrCreateQuiz(db *gorm.DB, lessonID uint) (courseModels.Quiz, error) {
	var quiz courseModels.Quiz
	err := db.Where("lesson_id = ? AND is_deleted = ?", lessonID, false).First(&quiz).Error
	if err == nil {
		return quiz, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return quiz, err
	}

	quiz = courseModels.Quiz{LessonID: lessonID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&quiz).Error; err != nil {
		return quiz, err
	}
	if quiz.ID == 0 {
		// lost the insert race, fetch the winner
		err = db.Where("lesson_id = ?", lessonID).First(&quiz).Error
	}
	return quiz, err
}

// scoreQuiz evaluates answers against the questions by case-insensitive exact
// match and returns the rounded percentage score with the review skeleton.
func scoreQuiz(questions []courseModels.QuizQuestion, answers []QuizAnswer) (int, []ReviewItem) {
	answerByQuestion := make(map[uint]string, len(answers))
	for _, a := range answers {
		answerByQuestion[a.QuestionID] = a.Answer
	}

	review := make([]ReviewItem, len(questions))
	correct := 0
	for i, q := range questions {
		answer := answerByQuestion[q.ID]
		matched := strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(q.CorrectOption))
		if matched {
			correct++
		}
		review[i] = ReviewItem{
			QuestionID: q.ID,
			Question:   q.Question,
			Answer:     answer,
			Correct:    matched,
		}
	}

	score := 0
	if len(questions) > 0 {
		score = int(math.Round(float64(correct) / float64(len(questions)) * 100))
	}
	return score, review
}

// attachQuizFeedback fills review feedback from the grading collaborator,
// falling back to generic correct/incorrect messages so the submission always
// carries feedback.
func attachQuizFeedback(review []ReviewItem) {
	pairs := make([]utils.QuizQA, len(review))
	for i, item := range review {
		pairs[i] = utils.QuizQA{
			QuestionID: item.QuestionID,
			Question:   item.Question,
			Answer:     item.Answer,
			Correct:    item.Correct,
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(config.AppConfig.GradingTimeoutSeconds)*time.Second)
	defer cancel()

	feedback, err := utils.Grading.QuizFeedback(ctx, pairs)
	byQuestion := make(map[uint]string)
	if err == nil {
		for _, f := range feedback {
			byQuestion[f.QuestionID] = f.Feedback
		}
	}

	for i := range review {
		if text, ok := byQuestion[review[i].QuestionID]; ok && text != "" {
			review[i].Feedback = text
			continue
		}
		if review[i].Correct {
			review[i].Feedback = "Correct, well done!"
		} else {
			review[i].Feedback = "Incorrect. Review the lesson material and try to understand why."
		}
	}
}

// processQuizSubmission is the full quiz completion event: score, persist the
// attempt, complete the lesson, award XP, advance the unlock gate and check
// badge thresholds. Persistence runs in one transaction.
func processQuizSubmission(db *gorm.DB, user models.User, lesson courseModels.Lesson, courseID uint, answers []QuizAnswer) (*QuizResult, error) {
	quiz, err := getOrCreateQuiz(db, lesson.ID)
	if err != nil {
		return nil, err
	}

	var questions []courseModels.QuizQuestion
	if err := db.Where("quiz_id = ? AND is_deleted = ?", quiz.ID, false).
		Order("order_number asc, id asc").Find(&questions).Error; err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrEmptyQuiz
	}

	score, review := scoreQuiz(questions, answers)
	passed := score >= passThreshold

	// Feedback is best-effort; the collaborator may be down.
	attachQuizFeedback(review)

	reviewJSON, err := json.Marshal(review)
	if err != nil {
		return nil, err
	}

	var attempts int64
	if err := db.Model(&courseModels.QuizSubmission{}).
		Where("quiz_id = ? AND student_id = ? AND is_deleted = ?", quiz.ID, user.ID, false).
		Count(&attempts).Error; err != nil {
		return nil, err
	}

	submission := courseModels.QuizSubmission{
		QuizID:        quiz.ID,
		StudentID:     user.ID,
		Score:         score,
		Passed:        passed,
		ReviewData:    datatypes.JSON(reviewJSON),
		AttemptNumber: int(attempts) + 1,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&submission).Error; err != nil {
			return fmt.Errorf("store submission: %w", err)
		}
		if err := completeLesson(tx, user, lesson, courseID); err != nil {
			return err
		}
		if err := awardQuizXP(tx, user.ID); err != nil {
			return err
		}
		if err := AdvanceAfterQuizSubmission(tx, user.ID, lesson, passed); err != nil {
			return err
		}
		return checkBadgeThresholds(tx, user.ID, lesson.ModuleID)
	})
	if err != nil {
		return nil, err
	}

	return &QuizResult{
		Score:         score,
		Passed:        passed,
		Review:        review,
		AttemptNumber: submission.AttemptNumber,
		XPAwarded:     quizSubmissionXP,
	}, nil
}
