package controllers

import (
	"context"
	"errors"
	"testing"

	"learnhub/config"
	"learnhub/database"
	"learnhub/models"
	courseModels "learnhub/models/course"
	"learnhub/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory database, migrates the schema and wires
// it as the global handle. The grading collaborator is replaced with a failing
// stub so every test starts from the degraded path; tests that need grading to
// succeed install their own stub.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // one shared in-memory database

	database.RunMigrations(db)
	database.Database = database.DbInstance{Db: db}

	config.AppConfig = &config.Config{
		Port:                  "3000",
		JWTKey:                "test-secret",
		GradingTimeoutSeconds: 2,
		RequirePassToAdvance:  false,
		CertificateDir:        t.TempDir(),
		UploadDir:             t.TempDir(),
		RegradeCronSpec:       "@every 15m",
	}

	utils.Grading = &stubGrading{
		quizErr:  errors.New("grading unavailable"),
		gradeErr: errors.New("grading unavailable"),
	}

	return db
}

// stubGrading is a canned grading collaborator.
type stubGrading struct {
	quizFeedback []utils.QuestionFeedback
	quizErr      error

	grade    *utils.AssignmentGrade
	gradeErr error

	gradeCalls int
}

func (s *stubGrading) QuizFeedback(_ context.Context, _ []utils.QuizQA) ([]utils.QuestionFeedback, error) {
	return s.quizFeedback, s.quizErr
}

func (s *stubGrading) GradeAssignment(_ context.Context, _, _ string) (*utils.AssignmentGrade, error) {
	s.gradeCalls++
	return s.grade, s.gradeErr
}

func passingGrade(total int) *utils.AssignmentGrade {
	return &utils.AssignmentGrade{
		Total:    &total,
		Grade:    "B",
		Feedback: "Solid work.",
		Criteria: []byte(`{"clarity": 40, "depth": 35}`),
	}
}

func createStudent(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Name: "Test Student", Email: email, Password: "hashed"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// seedCourse builds a published course with the given shape: one assignment
// per module, lessons ordered 1..n within each module.
func seedCourse(t *testing.T, db *gorm.DB, moduleCount, lessonsPerModule int) (courseModels.Course, []courseModels.Module, [][]courseModels.Lesson, []courseModels.ModuleAssignment) {
	t.Helper()

	crs := courseModels.Course{Title: "Go from Zero", Level: "BEGINNER", IsPublished: true}
	require.NoError(t, db.Create(&crs).Error)

	modules := make([]courseModels.Module, moduleCount)
	lessons := make([][]courseModels.Lesson, moduleCount)
	assignments := make([]courseModels.ModuleAssignment, moduleCount)

	for i := 0; i < moduleCount; i++ {
		modules[i] = courseModels.Module{CourseID: crs.ID, Title: "Module", OrderNumber: i + 1}
		require.NoError(t, db.Create(&modules[i]).Error)

		lessons[i] = make([]courseModels.Lesson, lessonsPerModule)
		for j := 0; j < lessonsPerModule; j++ {
			lessons[i][j] = courseModels.Lesson{ModuleID: modules[i].ID, Title: "Lesson", OrderNumber: j + 1}
			require.NoError(t, db.Create(&lessons[i][j]).Error)
		}

		assignments[i] = courseModels.ModuleAssignment{ModuleID: modules[i].ID, Title: "Assignment", Instructions: "Write an essay. Rubric: clarity 50, depth 50."}
		require.NoError(t, db.Create(&assignments[i]).Error)
	}

	return crs, modules, lessons, assignments
}

func enrollStudent(t *testing.T, db *gorm.DB, userID, courseID uint) courseModels.Enrollment {
	t.Helper()
	enrollment := courseModels.Enrollment{UserID: userID, CourseID: courseID, Status: "ENROLLED"}
	require.NoError(t, db.Create(&enrollment).Error)
	return enrollment
}

func seedQuizQuestions(t *testing.T, db *gorm.DB, lessonID uint, correctOptions ...string) (courseModels.Quiz, []courseModels.QuizQuestion) {
	t.Helper()

	quiz, err := getOrCreateQuiz(db, lessonID)
	require.NoError(t, err)

	questions := make([]courseModels.QuizQuestion, len(correctOptions))
	for i, correct := range correctOptions {
		questions[i] = courseModels.QuizQuestion{
			QuizID:        quiz.ID,
			Question:      "Pick the right option",
			Options:       []byte(`["Option A", "Option B", "Option C"]`),
			CorrectOption: correct,
			OrderNumber:   i + 1,
		}
		require.NoError(t, db.Create(&questions[i]).Error)
	}
	return quiz, questions
}

func gormModel(id uint) gorm.Model {
	return gorm.Model{ID: id}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&count).Error)
	return count
}
