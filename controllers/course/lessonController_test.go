package controllers

import (
	"testing"

	courseModels "learnhub/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteLessonUpdatesProgress(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "progress@test.dev")
	crs, _, lessons, _ := seedCourse(t, db, 2, 2) // 4 lessons total
	enrollStudent(t, db, user.ID, crs.ID)

	require.NoError(t, completeLesson(db, user, lessons[0][0], crs.ID))

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", user.ID, crs.ID).First(&enrollment).Error)
	assert.Equal(t, 25, enrollment.Progress)
	assert.Equal(t, 1, enrollment.CompletedLessons)
	assert.Equal(t, 4, enrollment.TotalLessons)
	assert.Equal(t, "IN_PROGRESS", enrollment.Status)
	assert.Nil(t, enrollment.CompletedAt)
}

func TestCompleteLessonTwiceChangesNothing(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "twice@test.dev")
	crs, _, lessons, _ := seedCourse(t, db, 1, 4)
	enrollStudent(t, db, user.ID, crs.ID)

	require.NoError(t, completeLesson(db, user, lessons[0][0], crs.ID))
	require.NoError(t, completeLesson(db, user, lessons[0][0], crs.ID))

	assert.EqualValues(t, 1, countRows(t, db, &courseModels.UserLessonProgress{}, "user_id = ?", user.ID))

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", user.ID, crs.ID).First(&enrollment).Error)
	assert.Equal(t, 25, enrollment.Progress)
}

func TestCompleteLastLessonOfModuleOpensAssignments(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "moduledone@test.dev")
	crs, _, lessons, assignments := seedCourse(t, db, 2, 2)
	enrollStudent(t, db, user.ID, crs.ID)

	require.NoError(t, completeLesson(db, user, lessons[0][0], crs.ID))
	assert.EqualValues(t, 0, countRows(t, db, &courseModels.UnlockedAssignment{}, "student_id = ?", user.ID))

	require.NoError(t, completeLesson(db, user, lessons[0][1], crs.ID))
	assert.EqualValues(t, 1, countRows(t, db, &courseModels.UnlockedAssignment{}, "student_id = ? AND assignment_id = ?", user.ID, assignments[0].ID))
}

func TestFullCompletionIssuesCertificateOnce(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "graduate@test.dev")
	crs, _, lessons, _ := seedCourse(t, db, 1, 2)
	enrollStudent(t, db, user.ID, crs.ID)

	require.NoError(t, completeLesson(db, user, lessons[0][0], crs.ID))
	require.NoError(t, completeLesson(db, user, lessons[0][1], crs.ID))

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", user.ID, crs.ID).First(&enrollment).Error)
	assert.Equal(t, 100, enrollment.Progress)
	assert.Equal(t, "COMPLETED", enrollment.Status)
	require.NotNil(t, enrollment.CompletedAt)
	completedAt := *enrollment.CompletedAt

	var cert courseModels.Certificate
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", user.ID, crs.ID).First(&cert).Error)
	assert.Contains(t, cert.CertificateNumber, "LH-")

	// Completing again must not issue a second certificate or move CompletedAt
	require.NoError(t, completeLesson(db, user, lessons[0][1], crs.ID))
	assert.EqualValues(t, 1, countRows(t, db, &courseModels.Certificate{}, "user_id = ? AND course_id = ?", user.ID, crs.ID))

	require.NoError(t, db.Where("user_id = ? AND course_id = ?", user.ID, crs.ID).First(&enrollment).Error)
	assert.True(t, enrollment.CompletedAt.Equal(completedAt))
}

func TestRecomputeProgressRounds(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "rounding@test.dev")
	crs, _, lessons, _ := seedCourse(t, db, 1, 3)
	enrollStudent(t, db, user.ID, crs.ID)

	require.NoError(t, completeLesson(db, user, lessons[0][0], crs.ID))
	pct, err := recomputeEnrollmentProgress(db, user.ID, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, 33, pct) // 1/3 rounds down

	require.NoError(t, completeLesson(db, user, lessons[0][1], crs.ID))
	pct, err = recomputeEnrollmentProgress(db, user.ID, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, 67, pct) // 2/3 rounds up
}

func TestFindCourseLessonRejectsForeignLesson(t *testing.T) {
	db := setupTestDB(t)
	crs, _, _, _ := seedCourse(t, db, 1, 1)
	other, _, otherLessons, _ := seedCourse(t, db, 1, 1)

	_, err := findCourseLesson(db, crs.ID, otherLessons[0][0].ID)
	assert.Error(t, err)

	lesson, err := findCourseLesson(db, other.ID, otherLessons[0][0].ID)
	require.NoError(t, err)
	assert.Equal(t, otherLessons[0][0].ID, lesson.ID)
}
