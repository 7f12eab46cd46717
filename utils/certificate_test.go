package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"learnhub/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCertificate(t *testing.T) {
	dir := t.TempDir()
	config.AppConfig = &config.Config{CertificateDir: dir}

	issued := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	url, err := RenderCertificate(7, 3, "Ada Lovelace", "Go from Zero", "LH-ABCD1234", issued)
	require.NoError(t, err)
	assert.Equal(t, "/certificates/certificate_7_3.html", url)

	content, err := os.ReadFile(filepath.Join(dir, "certificate_7_3.html"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Ada Lovelace")
	assert.Contains(t, string(content), "Go from Zero")
	assert.Contains(t, string(content), "LH-ABCD1234")
	assert.Contains(t, string(content), "March 14, 2026")
}

func TestRenderCertificateOverwritesSamePair(t *testing.T) {
	dir := t.TempDir()
	config.AppConfig = &config.Config{CertificateDir: dir}

	_, err := RenderCertificate(1, 1, "First Name", "Course", "LH-1", time.Now())
	require.NoError(t, err)
	_, err = RenderCertificate(1, 1, "Second Name", "Course", "LH-2", time.Now())
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	content, err := os.ReadFile(filepath.Join(dir, "certificate_1_1.html"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Second Name")
}
