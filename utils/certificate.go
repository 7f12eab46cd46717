package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"learnhub/config"
)

const certificateTemplate = `<html>
	<body style="font-family: Georgia, serif; background-color: #f4f4f4; padding: 40px;">
		<div style="max-width: 700px; margin: auto; background-color: #ffffff; border: 8px double #4CAF50; padding: 50px; text-align: center;">
			<h1 style="color: #333333; letter-spacing: 2px;">Certificate of Completion</h1>
			<p style="font-size: 16px; color: #555555;">This certifies that</p>
			<h2 style="color: #4CAF50; margin: 20px 0;">%s</h2>
			<p style="font-size: 16px; color: #555555;">has successfully completed the course</p>
			<h3 style="color: #333333; margin: 20px 0;">%s</h3>
			<p style="font-size: 14px; color: #999999;">Certificate No: %s</p>
			<p style="font-size: 14px; color: #999999;">Issued on %s</p>
		</div>
	</body>
</html>`

// RenderCertificate writes the certificate document for a (user, course) pair
// to a deterministic path derived from the two ids and returns its URL.
// Re-rendering for the same pair overwrites the same file.
func RenderCertificate(userID, courseID uint, studentName, courseTitle, certificateNumber string, issuedAt time.Time) (string, error) {
	destDir := config.AppConfig.CertificateDir
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("certificate_%d_%d.html", userID, courseID)
	fullPath := filepath.Join(destDir, filename)

	doc := fmt.Sprintf(certificateTemplate, studentName, courseTitle, certificateNumber, issuedAt.Format("January 2, 2006"))
	if err := os.WriteFile(fullPath, []byte(doc), 0644); err != nil {
		return "", err
	}

	return "/certificates/" + filename, nil
}
