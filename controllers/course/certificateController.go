package controllers

import (
	"log"
	"strings"
	"time"

	"learnhub/config"
	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	courseModels "learnhub/models/course"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// issueCertificate inserts the certificate for a fully completed course. The
// unique (user, course) index makes issuance one-time: an insert that affects
// no rows means the certificate already exists and is silently accepted.
// Rendering and email are collaborators; their failure never fails completion.
func issueCertificate(tx *gorm.DB, user models.User, courseID uint) error {
	var crs courseModels.Course
	if err := tx.Where("id = ? AND is_deleted = ?", courseID, false).First(&crs).Error; err != nil {
		return err
	}

	cert := courseModels.Certificate{
		UserID:            user.ID,
		CourseID:          courseID,
		CertificateNumber: "LH-" + strings.ToUpper(uuid.NewString()[:8]),
		IssuedAt:          time.Now(),
	}

	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&cert)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return nil // already issued
	}

	url, err := utils.RenderCertificate(user.ID, courseID, user.Name, crs.Title, cert.CertificateNumber, cert.IssuedAt)
	if err != nil {
		log.Printf("[CERTIFICATE] render failed for user %d course %d: %v", user.ID, courseID, err)
	} else if err := tx.Model(&courseModels.Certificate{}).Where("id = ?", cert.ID).Update("certificate_url", url).Error; err != nil {
		return err
	}

	if config.AppConfig.EmailSender != "" {
		go utils.SendCertificateEmail(user.Email, user.Name, crs.Title, cert.CertificateNumber)
	}

	log.Printf("[CERTIFICATE] issued %s to user %d for course %d", cert.CertificateNumber, user.ID, courseID)
	return nil
}

// GetUserCertificates gets all certificates for the current user
func GetUserCertificates(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	type CertificateWithCourse struct {
		courseModels.Certificate
		CourseName string `json:"course_name"`
	}

	var certificates []courseModels.Certificate
	if err := database.Database.Db.Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("issued_at desc").Find(&certificates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	result := make([]CertificateWithCourse, len(certificates))
	for i, cert := range certificates {
		var crs courseModels.Course
		database.Database.Db.Where("id = ?", cert.CourseID).First(&crs)
		result[i] = CertificateWithCourse{
			Certificate: cert,
			CourseName:  crs.Title,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": result,
		"total":        len(result),
	})
}
