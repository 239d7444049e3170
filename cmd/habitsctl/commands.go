package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aussiebroadwan/habits/internal/habits/app"
	"github.com/aussiebroadwan/habits/internal/habits/filestore"
)

// Context is handed to every command's Run.
type Context struct {
	Config app.Config
	Logger *slog.Logger
	Out    io.Writer
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	if err := ctx.Config.Validate(); err != nil {
		return err
	}

	st, err := app.OpenStore(ctx.Config)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	if err := st.ApplyMigrations(); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	_, _ = fmt.Fprintf(ctx.Out, "migrations applied (%s)\n", ctx.Config.DatabaseDriver)
	return nil
}

type SweepCmd struct {
	DryRun bool `help:"Only count uploads and files; delete nothing."`
}

func (c *SweepCmd) Run(ctx *Context) error {
	if err := ctx.Config.Validate(); err != nil {
		return err
	}

	st, err := app.OpenStore(ctx.Config)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	files, err := filestore.New(ctx.Config.UploadDir)
	if err != nil {
		return fmt.Errorf("open upload dir: %w", err)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.DryRun {
		rows, err := st.Uploads().ListUploads(sigCtx)
		if err != nil {
			return fmt.Errorf("list uploads: %w", err)
		}
		entries, err := files.Scan()
		if err != nil {
			return fmt.Errorf("scan upload dir: %w", err)
		}
		_, _ = fmt.Fprintf(ctx.Out, "rows=%d files=%d\n", len(rows), len(entries))
		return nil
	}

	report, err := app.NewJanitor(ctx.Config, st, files, ctx.Logger).Sweep(sigCtx)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	_, _ = fmt.Fprintf(ctx.Out, "scanned=%d orphaned=%d expired=%d failed=%d\n",
		report.Scanned, report.Orphaned, report.Expired, report.Failed)
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run(ctx *Context) error {
	_, _ = fmt.Fprintln(ctx.Out, app.BuildVersion)
	return nil
}
