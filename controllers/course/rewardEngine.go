package controllers

import (
	"time"

	"learnhub/models"
	courseModels "learnhub/models/course"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// quizSubmissionXP is the flat XP granted per quiz submission event.
const quizSubmissionXP = 10

// badgeTiers are cumulative completion-ratio cutoffs. Each grants a distinct
// named badge at most once per user.
var badgeTiers = []struct {
	Threshold int
	Name      string
}{
	{20, "Beginner"},
	{50, "Intermediate"},
	{80, "Advanced"},
	{100, "Master"},
}

// awardQuizXP appends a ledger entry and mirrors the total onto the user row.
func awardQuizXP(tx *gorm.DB, userID uint) error {
	entry := models.XPHistory{
		UserID:   userID,
		XP:       quizSubmissionXP,
		Activity: "QUIZ_SUBMISSION",
		EarnedAt: time.Now(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return err
	}
	return tx.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("xp", gorm.Expr("xp + ?", quizSubmissionXP)).Error
}

// checkBadgeThresholds grants tier badges from the student's overall
// completion ratio: completed lessons across all courses over the published
// catalog's lesson count. Each badge is tagged with the module active at
// grant time and its badge image.
func checkBadgeThresholds(tx *gorm.DB, userID, moduleID uint) error {
	var total int64
	if err := tx.Model(&courseModels.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Joins("JOIN courses ON courses.id = modules.course_id").
		Where("lessons.is_deleted = ? AND modules.is_deleted = ? AND courses.is_published = ?", false, false, true).
		Count(&total).Error; err != nil {
		return err
	}
	if total == 0 {
		return nil
	}

	var completed int64
	if err := tx.Model(&courseModels.UserLessonProgress{}).
		Where("user_id = ?", userID).
		Count(&completed).Error; err != nil {
		return err
	}

	ratio := int(completed * 100 / total)

	var module courseModels.Module
	tx.Where("id = ?", moduleID).First(&module)

	for _, tier := range badgeTiers {
		if ratio < tier.Threshold {
			continue
		}
		badge := models.UserBadge{
			UserID:    userID,
			BadgeName: tier.Name,
			AwardedAt: time.Now(),
		}
		if module.ID != 0 {
			badge.ModuleID = &module.ID
			badge.BadgeImageURL = module.BadgeImageURL
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&badge).Error; err != nil {
			return err
		}
	}
	return nil
}

// totalUserXP sums the XP ledger for a user.
func totalUserXP(db *gorm.DB, userID uint) int {
	var total int64
	db.Model(&models.XPHistory{}).Where("user_id = ?", userID).
		Select("COALESCE(SUM(xp), 0)").Scan(&total)
	return int(total)
}
