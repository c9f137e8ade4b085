package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	Env  string
	Addr string

	RedisURL string

	CodeLength   int
	CodeTTL      time.Duration
	ResendWindow time.Duration

	WelcomeQueueSize int

	SMTP SMTPConfig
	SNS  SNSConfig

	AllowedOrigins []string
}

// SMTPConfig configures the outbound email transport.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// SNSConfig configures the optional SMS channel. An empty region disables it.
type SNSConfig struct {
	Region string
}

// Load reads all configuration from environment variables so main stays lean.
func Load() *Config {
	return &Config{
		Env:  getEnv("APP_ENV", "development"),
		Addr: getEnv("ROLLCALL_ADDR", ":8080"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		CodeLength:   getEnvInt("OTP_CODE_LENGTH", 6),
		CodeTTL:      getEnvDuration("OTP_CODE_TTL", 300*time.Second),
		ResendWindow: getEnvDuration("OTP_RESEND_WINDOW", 60*time.Second),

		WelcomeQueueSize: getEnvInt("WELCOME_QUEUE_SIZE", 64),

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnvInt("SMTP_PORT", 1025),
			From:     getEnv("SMTP_FROM", "noreply@rollcall.local"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
		},
		SNS: SNSConfig{
			Region: getEnv("SNS_REGION", ""),
		},

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
