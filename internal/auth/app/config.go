package app

import (
	"os"
	"strconv"
	"time"

	"github.com/crateworks/wmsauth/internal/auth/service"
	"github.com/crateworks/wmsauth/pkg/jwtx"
)

type Config struct {
	Secret string // Required: HS256 signing secret for tokens
	Issuer string // Issuer claim for tokens (default: wmsauth)

	DatabaseFile string // Path to SQLite database file (default: ./auth.db)
	PepperFile   string // Path to password-hash pepper file (default: ./pepper)

	AccessTokenTTL    time.Duration // Access token lifetime (default: 15m)
	RefreshTokenTTL   time.Duration // Refresh token lifetime (default: 168h)
	InactivityTimeout time.Duration // Session inactivity window (default: 30m)
	InviteTTL         time.Duration // Invitation validity (default: 72h)

	// Bootstrap admin for first install; no-op once any user exists.
	BootstrapAdminEmail    string
	BootstrapAdminPassword string

	// SMTP delivery for invitations; log-only when Addr is empty.
	SMTPAddr     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	PublicURL    string // base for accept-invitation links in mail

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		Secret: os.Getenv("AUTH_SECRET"),
		Issuer: getEnvOrDefault("AUTH_ISSUER", "wmsauth"),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		AccessTokenTTL:    getEnvDurationOrDefault("ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTokenTTL:   getEnvDurationOrDefault("REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL),
		InactivityTimeout: getEnvDurationOrDefault("SESSION_INACTIVITY_TIMEOUT", service.DefaultInactivityWindow),
		InviteTTL:         getEnvDurationOrDefault("INVITE_TTL", service.DefaultInviteTTL),

		BootstrapAdminEmail:    os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),
		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),

		SMTPAddr:     os.Getenv("SMTP_ADDR"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnvOrDefault("SMTP_FROM", "no-reply@localhost"),
		PublicURL:    getEnvOrDefault("PUBLIC_URL", "http://localhost:8080"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
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
