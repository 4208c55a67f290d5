package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Email backend choices.
const (
	EmailBackendConsole = "console"
	EmailBackendFile    = "file"
	EmailBackendSMTP    = "smtp"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	DatabasePath string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ResetTokenTTL   time.Duration

	// Base URL the reset link points at, e.g. the frontend's confirm page.
	ResetURLBase string

	EmailBackend string // console, file or smtp
	EmailFile    string // destination for the file backend
	EmailFrom    string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	// Cron expression for purging expired refresh tokens.
	SweepSchedule string

	AllowedOrigin string
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	cfg := &Config{
		ServerPort:      port,
		DatabasePath:    getEnv("DATABASE_PATH", "./accounts.db"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		AccessTokenTTL:  60 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		ResetTokenTTL:   24 * time.Hour,
		ResetURLBase:    getEnv("RESET_URL_BASE", "http://localhost:3000/password-reset-confirm"),
		EmailBackend:    getEnv("EMAIL_BACKEND", EmailBackendConsole),
		EmailFile:       getEnv("EMAIL_FILE", "./sent-emails.log"),
		EmailFrom:       getEnv("EMAIL_FROM", "noreply@meetapp.local"),
		SMTPHost:        getEnv("SMTP_HOST", "localhost"),
		SMTPPort:        smtpPort,
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		SweepSchedule:   getEnv("TOKEN_SWEEP_SCHEDULE", "@hourly"),
		AllowedOrigin:   getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	switch cfg.EmailBackend {
	case EmailBackendConsole, EmailBackendFile, EmailBackendSMTP:
	default:
		return nil, fmt.Errorf("unknown EMAIL_BACKEND %q", cfg.EmailBackend)
	}

	return cfg, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
