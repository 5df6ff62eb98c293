package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port            string
	LogLevel        string
	UploadDir       string
	MaxUploadMemory int64
	JWTSecret       string
	AllowedOrigins  []string
	SeedFile        string

	LoginRatePerSecond float64
	LoginBurst         int

	SweepSchedule string
	SweepGrace    time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "3001"),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		SeedFile:      getEnv("SEED_FILE", ""),
		SweepSchedule: getEnv("UPLOAD_SWEEP_SCHEDULE", "@every 1h"),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SenderEmail:   getEnv("SENDER_EMAIL", ""),
	}
	cfg.AllowedOrigins = parseList(getEnv("ALLOWED_ORIGINS", "*"))

	var err error
	if cfg.MaxUploadMemory, err = strconv.ParseInt(getEnv("MAX_UPLOAD_MEMORY", "33554432"), 10, 64); err != nil || cfg.MaxUploadMemory <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MEMORY must be a positive integer")
	}
	if cfg.LoginRatePerSecond, err = strconv.ParseFloat(getEnv("LOGIN_RATE_PER_SECOND", "5"), 64); err != nil || cfg.LoginRatePerSecond <= 0 {
		return nil, fmt.Errorf("LOGIN_RATE_PER_SECOND must be a positive number")
	}
	if cfg.LoginBurst, err = strconv.Atoi(getEnv("LOGIN_BURST", "10")); err != nil || cfg.LoginBurst <= 0 {
		return nil, fmt.Errorf("LOGIN_BURST must be a positive integer")
	}
	if cfg.SweepGrace, err = time.ParseDuration(getEnv("UPLOAD_SWEEP_GRACE", "10m")); err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_SWEEP_GRACE: %w", err)
	}

	if cfg.UploadDir == "" {
		return nil, fmt.Errorf("UPLOAD_DIR is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// MailEnabled reports whether SMTP settings are present
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SenderEmail != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func parseList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
