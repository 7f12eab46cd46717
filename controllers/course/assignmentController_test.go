package controllers

import (
	"errors"
	"testing"

	courseModels "learnhub/models/course"
	"learnhub/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeAssignmentSubmissionSuccess(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "graded@test.dev")
	crs, modules, _, assignments := seedCourse(t, db, 2, 1)
	enrollStudent(t, db, user.ID, crs.ID)

	utils.Grading = &stubGrading{grade: passingGrade(85)}

	submission := courseModels.AssignmentSubmission{
		AssignmentID: assignments[0].ID,
		StudentID:    user.ID,
		Description:  "My essay about interfaces.",
		Total:        100,
	}
	require.NoError(t, db.Create(&submission).Error)

	require.NoError(t, gradeAssignmentSubmission(db, &submission, assignments[0]))

	var stored courseModels.AssignmentSubmission
	require.NoError(t, db.First(&stored, submission.ID).Error)
	require.NotNil(t, stored.Score)
	assert.Equal(t, 85, *stored.Score)
	assert.Equal(t, "B", stored.Grade)
	assert.Equal(t, "Solid work.", stored.AIFeedback)
	assert.JSONEq(t, `{"clarity": 40, "depth": 35}`, string(stored.Criteria))

	// A usable grade opens the next module
	assert.EqualValues(t, 1, countRows(t, db, &courseModels.UnlockedModule{}, "student_id = ? AND module_id = ?", user.ID, modules[1].ID))
}

func TestGradeAssignmentSubmissionFailureDegrades(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "degraded@test.dev")
	crs, _, _, assignments := seedCourse(t, db, 2, 1)
	enrollStudent(t, db, user.ID, crs.ID)

	utils.Grading = &stubGrading{gradeErr: errors.New("collaborator down")}

	submission := courseModels.AssignmentSubmission{
		AssignmentID: assignments[0].ID,
		StudentID:    user.ID,
		Description:  "My essay.",
		Total:        100,
	}
	require.NoError(t, db.Create(&submission).Error)

	err := gradeAssignmentSubmission(db, &submission, assignments[0])
	assert.Error(t, err)

	// Placeholder feedback is stored, the score stays empty for the regrade
	// sweep, and nothing unlocks.
	var stored courseModels.AssignmentSubmission
	require.NoError(t, db.First(&stored, submission.ID).Error)
	assert.Nil(t, stored.Score)
	assert.Equal(t, gradingFallbackFeedback, stored.AIFeedback)
	assert.EqualValues(t, 0, countRows(t, db, &courseModels.UnlockedModule{}, "student_id = ?", user.ID))
}

func TestProcessUngradedSubmissionsRetries(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "regrade@test.dev")
	crs, modules, _, assignments := seedCourse(t, db, 2, 1)
	enrollStudent(t, db, user.ID, crs.ID)

	// Two pending rows from an earlier outage, one already graded
	pending1 := courseModels.AssignmentSubmission{AssignmentID: assignments[0].ID, StudentID: user.ID, Description: "a", Total: 100, AIFeedback: gradingFallbackFeedback}
	require.NoError(t, db.Create(&pending1).Error)
	pending2 := courseModels.AssignmentSubmission{AssignmentID: assignments[1].ID, StudentID: user.ID, Description: "b", Total: 100, AIFeedback: gradingFallbackFeedback}
	require.NoError(t, db.Create(&pending2).Error)
	score := 70
	done := courseModels.AssignmentSubmission{AssignmentID: assignments[0].ID, StudentID: user.ID, Description: "c", Total: 100, Score: &score}
	require.NoError(t, db.Create(&done).Error)

	stub := &stubGrading{grade: passingGrade(90)}
	utils.Grading = stub

	processUngradedSubmissions()

	// Only the two ungraded rows went back to the collaborator
	assert.Equal(t, 2, stub.gradeCalls)

	for _, id := range []uint{pending1.ID, pending2.ID} {
		var stored courseModels.AssignmentSubmission
		require.NoError(t, db.First(&stored, id).Error)
		require.NotNil(t, stored.Score)
		assert.Equal(t, 90, *stored.Score)
	}

	assert.EqualValues(t, 1, countRows(t, db, &courseModels.UnlockedModule{}, "student_id = ? AND module_id = ?", user.ID, modules[1].ID))
}

func TestFindCourseAssignmentRejectsForeignAssignment(t *testing.T) {
	db := setupTestDB(t)
	crs, _, _, _ := seedCourse(t, db, 1, 1)
	_, _, _, otherAssignments := seedCourse(t, db, 1, 1)

	_, err := findCourseAssignment(db, crs.ID, otherAssignments[0].ID)
	assert.Error(t, err)
}
