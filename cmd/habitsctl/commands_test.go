package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/habits/internal/habits/app"
	"github.com/aussiebroadwan/habits/pkg/slogx"
)

func testContext(t *testing.T) (*Context, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	out := &bytes.Buffer{}

	return &Context{
		Config: app.Config{
			Port:           8080,
			DatabaseDriver: app.DriverSQLite,
			DatabaseURL:    filepath.Join(dir, "habits.db"),
			UploadDir:      filepath.Join(dir, "uploads"),
		},
		Logger: slogx.Discard(),
		Out:    out,
	}, out
}

func TestMigrateThenSweep(t *testing.T) {
	ctx, out := testContext(t)

	require.NoError(t, (&MigrateCmd{}).Run(ctx))
	require.Contains(t, out.String(), "migrations applied")

	// Migrating twice is a no-op.
	require.NoError(t, (&MigrateCmd{}).Run(ctx))

	out.Reset()
	require.NoError(t, (&SweepCmd{DryRun: true}).Run(ctx))
	require.Equal(t, "rows=0 files=0\n", out.String())

	out.Reset()
	require.NoError(t, (&SweepCmd{}).Run(ctx))
	require.Equal(t, "scanned=0 orphaned=0 expired=0 failed=0\n", out.String())
	_, err := os.Stat(ctx.Config.UploadDir)
	require.NoError(t, err)
}

func TestMigrateRejectsUnknownDriver(t *testing.T) {
	ctx, _ := testContext(t)
	ctx.Config.DatabaseDriver = "mysql"

	require.Error(t, (&MigrateCmd{}).Run(ctx))
}

func TestVersion(t *testing.T) {
	ctx, out := testContext(t)
	require.NoError(t, (&VersionCmd{}).Run(ctx))
	require.Equal(t, app.BuildVersion+"\n", out.String())
}
