package course

import (
	"time"

	"gorm.io/gorm"
)

// Certificate is issued once per (user, course) when enrollment progress
// reaches 100. The unique index is the single-issuance guarantee; a duplicate
// key on insert means "already issued", not an error.
type Certificate struct {
	gorm.Model
	UserID            uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_course_cert"`
	CourseID          uint      `json:"course_id" gorm:"not null;uniqueIndex:idx_user_course_cert"`
	CertificateURL    string    `json:"certificate_url"`
	CertificateNumber string    `json:"certificate_number" gorm:"unique"`
	IssuedAt          time.Time `json:"issued_at"`
	IsDeleted         bool      `gorm:"default:false"`
}
