package controllers

import (
	"fmt"
	"log"
	"time"

	"learnhub/config"
	"learnhub/database"
	courseModels "learnhub/models/course"

	"github.com/robfig/cron/v3"
)

// logRegrade logs regrade sweep events with timestamp
func logRegrade(message string) {
	log.Printf("[REGRADE-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// processUngradedSubmissions retries grading for submissions whose score is
// still NULL (the collaborator was down at submit time). Successful regrades
// fire the same unlock path as a first-try grade.
func processUngradedSubmissions() {
	db := database.Database.Db

	var pending []courseModels.AssignmentSubmission
	if err := db.Where("score IS NULL AND is_deleted = ?", false).
		Order("created_at asc").Limit(20).Find(&pending).Error; err != nil {
		logRegrade("Error fetching ungraded submissions: " + err.Error())
		return
	}
	if len(pending) == 0 {
		return
	}

	graded := 0
	for i := range pending {
		submission := pending[i]

		var assignment courseModels.ModuleAssignment
		if err := db.Where("id = ? AND is_deleted = ?", submission.AssignmentID, false).First(&assignment).Error; err != nil {
			continue
		}

		if err := gradeAssignmentSubmission(db, &submission, assignment); err != nil {
			logRegrade(fmt.Sprintf("Regrade failed for submission %d: %v", submission.ID, err))
			continue
		}
		graded++
	}

	if graded > 0 {
		logRegrade(fmt.Sprintf("Regraded %d of %d pending submissions", graded, len(pending)))
	}
}

// InitializeRegradeScheduler starts the periodic regrade sweep.
func InitializeRegradeScheduler() *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc(config.AppConfig.RegradeCronSpec, processUngradedSubmissions); err != nil {
		log.Fatalf("Failed to schedule regrade sweep: %v", err)
	}

	c.Start()
	logRegrade("Regrade scheduler started with spec " + config.AppConfig.RegradeCronSpec)
	return c
}
