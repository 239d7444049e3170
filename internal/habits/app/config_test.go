package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/habits/internal/habits/service"
	"github.com/aussiebroadwan/habits/pkg/httpx"
	"github.com/aussiebroadwan/habits/pkg/jwtx"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{
		"ENV", "PORT", "DATABASE_DRIVER", "DATABASE_URL", "UPLOAD_DIR", "UPLOAD_RETENTION",
		"JANITOR_INTERVAL", "HABITS_REQUIRE_AUTH", "CORS_ALLOWED_ORIGINS", "SESSION_TTL",
		"RATELIMIT_AUTH_REQUESTS",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.Equal(t, "habits.db", cfg.DatabaseURL)
	require.Equal(t, "uploads", cfg.UploadDir)
	require.Equal(t, service.DefaultRetention, cfg.UploadRetention)
	require.Equal(t, service.DefaultJanitorInterval, cfg.JanitorInterval)
	require.Equal(t, jwtx.DefaultSessionTTL, cfg.SessionTTL)
	require.False(t, cfg.RequireAuth)
	require.Empty(t, cfg.AllowedOrigins)
	require.Equal(t, httpx.StrictLimit, cfg.RateLimits.Auth)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/habits")
	t.Setenv("UPLOAD_RETENTION", "72h")
	t.Setenv("JANITOR_INTERVAL", "15")
	t.Setenv("HABITS_REQUIRE_AUTH", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://habits.example.com ,")
	t.Setenv("HABITS_TIMEZONE", "Australia/Sydney")
	t.Setenv("RATELIMIT_AUTH_REQUESTS", "50")

	cfg := LoadConfig()
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	require.Equal(t, 72*time.Hour, cfg.UploadRetention)
	require.Equal(t, 15*time.Minute, cfg.JanitorInterval)
	require.True(t, cfg.RequireAuth)
	require.Equal(t, []string{"http://localhost:3000", "https://habits.example.com"}, cfg.AllowedOrigins)
	require.Equal(t, 50, cfg.RateLimits.Auth.RequestsPerWindow)
	require.NoError(t, cfg.Validate())

	loc, err := cfg.Location()
	require.NoError(t, err)
	require.Equal(t, "Australia/Sydney", loc.String())
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "eighty")
	t.Setenv("SHUTDOWN_GRACE_PERIOD", "soon")
	t.Setenv("HABITS_REQUIRE_AUTH", "maybe")

	cfg := LoadConfig()
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.False(t, cfg.RequireAuth)
}

func TestValidate(t *testing.T) {
	base := Config{DatabaseDriver: DriverSQLite, Port: 8080}
	require.NoError(t, base.Validate())

	bad := base
	bad.DatabaseDriver = "mysql"
	require.Error(t, bad.Validate())

	bad = base
	bad.Port = 0
	require.Error(t, bad.Validate())

	bad = base
	bad.JWTSecret = "short"
	require.ErrorIs(t, bad.Validate(), jwtx.ErrShortSecret)

	bad = base
	bad.Timezone = "Mars/Olympus_Mons"
	require.Error(t, bad.Validate())
}
