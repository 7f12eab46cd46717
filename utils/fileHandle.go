package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"learnhub/config"
)

// SaveSubmissionFile stores an uploaded assignment file under the upload
// directory and returns its serving URL.
func SaveSubmissionFile(file *multipart.FileHeader, userID uint) (string, error) {
	// Open the uploaded file
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	destDir := filepath.Join(config.AppConfig.UploadDir, "assignments")
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	// Create a unique filename
	ext := filepath.Ext(file.Filename)
	newFilename := fmt.Sprintf("%s_%d%s", time.Now().Format("20060102150405"), userID, ext)
	fullPath := filepath.Join(destDir, newFilename)

	// Create destination file
	dst, err := os.Create(fullPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	// Copy the file content
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return "/uploads/assignments/" + newFilename, nil
}
