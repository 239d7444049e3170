package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/habits/internal/habits/service"
	"github.com/aussiebroadwan/habits/pkg/httpx"
	"github.com/aussiebroadwan/habits/pkg/jwtx"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
	LogFile   string // Optional: rotated copy of the log stream

	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	AllowedOrigins      []string      // CORS origins; empty reflects any origin
	StaticDir           string        // Optional: built frontend served at /

	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseURL    string // Path for sqlite, DSN for postgres (default: habits.db)

	UploadDir       string        // Root of per-user upload directories (default: ./uploads)
	UploadMaxBytes  int64         // Per-file cap (default: 10 MiB)
	UploadRetention time.Duration // Age at which the janitor deletes uploads (default: 30 days)
	JanitorInterval time.Duration // Time between janitor sweeps (default: 1h)

	Timezone string // IANA zone that decides "today" (default: process local)

	JWTSecret   string        // Optional: session signing secret; random when empty
	SessionTTL  time.Duration // (default: 24h)
	RememberTTL time.Duration // "remember me" sessions (default: 30 days)
	RequireAuth bool          // Reject user scoped requests without a session token
	PepperFile  string        // Path to the password pepper (default: ./pepper)

	RateLimits RateLimitSettings
}

// RateLimitSettings holds the per route class limiter profiles.
type RateLimitSettings struct {
	Auth   httpx.RateLimitConfig
	Write  httpx.RateLimitConfig
	Read   httpx.RateLimitConfig
	Upload httpx.RateLimitConfig
}

// LoadConfig reads an optional .env file and then the environment.
// Variables already set in the environment win over the file.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		LogFile:   os.Getenv("LOG_FILE"),

		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		AllowedOrigins:      splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		StaticDir:           os.Getenv("STATIC_DIR"),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", DriverSQLite)),
		DatabaseURL:    getEnvOrDefault("DATABASE_URL", "habits.db"),

		UploadDir:       getEnvOrDefault("UPLOAD_DIR", "uploads"),
		UploadMaxBytes:  int64(getEnvIntOrDefault("UPLOAD_MAX_BYTES", 10<<20)),
		UploadRetention: getEnvDurationOrDefault("UPLOAD_RETENTION", service.DefaultRetention),
		JanitorInterval: getEnvDurationOrDefault("JANITOR_INTERVAL", service.DefaultJanitorInterval),

		Timezone: os.Getenv("HABITS_TIMEZONE"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		SessionTTL:  getEnvDurationOrDefault("SESSION_TTL", jwtx.DefaultSessionTTL),
		RememberTTL: getEnvDurationOrDefault("REMEMBER_TTL", jwtx.DefaultRememberTTL),
		RequireAuth: getEnvBoolOrDefault("HABITS_REQUIRE_AUTH", false),
		PepperFile:  getEnvOrDefault("PEPPER_FILE", "pepper"),

		RateLimits: RateLimitSettings{
			Auth:   httpx.RateLimitFromEnv("AUTH", httpx.StrictLimit),
			Write:  httpx.RateLimitFromEnv("WRITE", httpx.ModerateLimit),
			Read:   httpx.RateLimitFromEnv("READ", httpx.LenientLimit),
			Upload: httpx.RateLimitFromEnv("UPLOAD", httpx.ModerateLimit),
		},
	}
}

// Validate reports settings the service cannot start with.
func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 32 {
		return jwtx.ErrShortSecret
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. An empty value means the process local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid HABITS_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
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

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
