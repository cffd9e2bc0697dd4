package app

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/devcrm/auth-service/pkg/jwtx"
)

type Config struct {
	AccessSecret  string // Required: HS256 secret for access and one-time tokens
	RefreshSecret string // Required: HS256 secret for refresh tokens, must differ
	Issuer        string // Issuer claim for tokens (default: devcrm)
	Audience      string // Audience claim for tokens (default: devcrm-app)

	AccessTTL      time.Duration // Access token lifetime (default: 15m)
	RefreshTTL     time.Duration // Refresh token and session lifetime (default: 7d)
	EmailVerifyTTL time.Duration // Email verification token lifetime (default: 24h)
	ResetPwdTTL    time.Duration // Password reset token lifetime (default: 1h)

	RedisAddr     string // Redis address (default: localhost:6379)
	RedisPassword string // Optional: Redis auth
	RedisDB       int    // Redis logical database (default: 0)

	DatabaseFile string // Path to SQLite database file (default: ./auth.db)
	PepperFile   string // Path to password-hashing pepper file (default: ./pepper)
	FrontendURL  string // Base URL for links in outgoing emails

	RateLimitEnabled bool // Toggle the login/resend/forgot limits (default: true)

	MailProvider   string // mailgun, smtp or log (default: log)
	MailgunDomain  string
	MailgunAPIKey  string
	MailFrom       string
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() (Config, error) {
	cfg := Config{
		AccessSecret:  os.Getenv("JWT_ACCESS_SECRET"),
		RefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		Issuer:        getEnvOrDefault("JWT_ISSUER", "devcrm"),
		Audience:      getEnvOrDefault("JWT_AUDIENCE", "devcrm-app"),

		// TTLs use the token format: bare digits are seconds, or <n>[smhd].
		AccessTTL:      jwtx.ParseTTL(getEnvOrDefault("JWT_ACCESS_TTL", "15m")),
		RefreshTTL:     jwtx.ParseTTL(getEnvOrDefault("JWT_REFRESH_TTL", "7d")),
		EmailVerifyTTL: jwtx.ParseTTL(getEnvOrDefault("EMAIL_VERIFY_TTL", "24h")),
		ResetPwdTTL:    jwtx.ParseTTL(getEnvOrDefault("RESET_PWD_TTL", "1h")),

		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "auth.db"),
		PepperFile:   getEnvOrDefault("PEPPER_FILE", "pepper"),
		FrontendURL:  getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),

		RateLimitEnabled: getEnvBoolOrDefault("RATE_LIMIT_ENABLED", true),

		MailProvider:  getEnvOrDefault("MAIL_PROVIDER", "log"),
		MailgunDomain: os.Getenv("MAILGUN_DOMAIN"),
		MailgunAPIKey: os.Getenv("MAILGUN_API_KEY"),
		MailFrom:      os.Getenv("MAIL_FROM"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      getEnvOrDefault("SMTP_PORT", "587"),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return cfg, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
