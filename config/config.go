package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port   string
	JWTKey string

	// Grading service (OpenAI-compatible chat completions API)
	GradingApiURL         string
	GradingApiKey         string
	GradingModel          string
	GradingTimeoutSeconds int

	// Progression policy: when true, a failed quiz does not unlock the next lesson
	RequirePassToAdvance bool

	CertificateDir string
	UploadDir      string

	RegradeCronSpec string

	EmailSender string
	Password    string // SMTP Password
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:   getEnv("PORT", "3000"),
		JWTKey: getEnv("JWT_SECRET_KEY", "defaultSecret"),

		GradingApiURL:         getEnv("GRADING_API_URL", "https://api.openai.com/v1"),
		GradingApiKey:         getEnv("GRADING_API_KEY", ""),
		GradingModel:          getEnv("GRADING_MODEL", "gpt-4o-mini"),
		GradingTimeoutSeconds: getEnvInt("GRADING_TIMEOUT_SECONDS", 30),

		RequirePassToAdvance: getEnvBool("REQUIRE_PASS_TO_ADVANCE", false),

		CertificateDir: getEnv("CERTIFICATE_DIR", "public/certificates"),
		UploadDir:      getEnv("UPLOAD_DIR", "public/uploads"),

		RegradeCronSpec: getEnv("REGRADE_CRON_SPEC", "@every 15m"),

		EmailSender: getEnv("EMAIL_SENDER", ""),
		Password:    getEnv("PASSWORD", ""),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.GradingApiKey == "" {
		log.Println("Warning: GRADING_API_KEY not set. AI feedback will fall back to generic messages.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

// getEnvBool retrieves an environment variable as a boolean or returns the default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return boolValue
}
