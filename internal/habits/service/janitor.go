package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aussiebroadwan/habits/internal/habits/filestore"
	"github.com/aussiebroadwan/habits/internal/habits/store"
)

const (
	DefaultJanitorInterval = time.Hour
	DefaultRetention       = 30 * 24 * time.Hour

	// Files younger than this are never treated as orphans, so an upload
	// whose row is still being written survives a concurrent sweep.
	orphanGrace = time.Minute
)

// SweepReport summarises one janitor pass.
type SweepReport struct {
	Scanned  int
	Orphaned int
	Expired  int
	Failed   int
}

// Janitor keeps the upload directory and the uploads table consistent:
// files with no row are removed, and uploads older than Retention lose both
// file and row.
type Janitor struct {
	Store     store.Store
	Files     *filestore.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration
	Clock     Clock

	sweepMu sync.Mutex

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewJanitor returns a janitor. Non-positive durations take the defaults.
func NewJanitor(st store.Store, files *filestore.Store, logger *slog.Logger, interval, retention time.Duration) *Janitor {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Janitor{
		Store:     st,
		Files:     files,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
	}
}

// Start runs a sweep immediately and then every Interval. It does not block.
func (j *Janitor) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cron != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	j.cancel = cancel

	logger := cronLogger{j.Logger}
	j.cron = cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	j.cron.Schedule(cron.Every(j.Interval), cron.FuncJob(func() { j.run(ctx) }))

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		j.run(ctx)
	}()

	j.cron.Start()
	j.Logger.Info("upload janitor started", "interval", j.Interval, "retention", j.Retention)
}

// Stop cancels any sweep in progress and waits for it to return.
func (j *Janitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cron == nil {
		return
	}

	j.cancel()
	<-j.cron.Stop().Done()
	j.wg.Wait()
	j.cron = nil

	j.Logger.Info("upload janitor stopped")
}

func (j *Janitor) run(ctx context.Context) {
	report, err := j.Sweep(ctx)
	if err != nil {
		j.Logger.Error("upload sweep failed", "err", err)
		return
	}
	j.Logger.Info("upload sweep completed",
		"scanned", report.Scanned,
		"orphaned", report.Orphaned,
		"expired", report.Expired,
		"failed", report.Failed,
	)
}

// Sweep performs one reconciliation pass. Individual file failures are
// logged and counted; only failing to read the uploads table or a cancelled
// ctx abort the pass.
func (j *Janitor) Sweep(ctx context.Context) (SweepReport, error) {
	j.sweepMu.Lock()
	defer j.sweepMu.Unlock()

	var report SweepReport
	now := j.Clock.now()
	cutoff := now.Add(-j.Retention)

	rows, err := j.Store.Uploads().ListUploads(ctx)
	if err != nil {
		return report, fmt.Errorf("list uploads: %w", err)
	}

	type tracked struct {
		id       string
		uploaded time.Time
		seen     bool
	}
	byPath := make(map[string]*tracked, len(rows))
	for _, r := range rows {
		byPath[j.Files.Path(r.UserID, r.Filename)] = &tracked{id: r.ID, uploaded: r.UploadedAt}
	}

	entries, err := j.Files.Scan()
	if err != nil {
		// Partial listings are still worth sweeping.
		j.Logger.Warn("upload dir scan incomplete", "err", err)
		report.Failed++
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++

		row, ok := byPath[e.Path]
		if !ok {
			if now.Sub(e.ModTime) < orphanGrace {
				continue
			}
			if err := j.Files.RemovePath(e.Path); err != nil {
				j.Logger.Error("remove orphaned file", "path", e.Path, "err", err)
				report.Failed++
				continue
			}
			j.Logger.Info("removed orphaned file", "path", e.Path)
			report.Orphaned++
			continue
		}

		row.seen = true
		if !row.uploaded.Before(cutoff) {
			continue
		}
		if err := j.Files.RemovePath(e.Path); err != nil {
			j.Logger.Error("remove expired file", "path", e.Path, "err", err)
			report.Failed++
			continue
		}
		if err := j.Store.Uploads().DeleteUpload(ctx, row.id); err != nil {
			j.Logger.Error("delete expired upload row", "upload_id", row.id, "err", err)
			report.Failed++
			continue
		}
		j.Logger.Info("removed expired upload", "path", e.Path)
		report.Expired++
	}

	// Expired rows whose file is already gone.
	for p, row := range byPath {
		if row.seen || !row.uploaded.Before(cutoff) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := j.Store.Uploads().DeleteUpload(ctx, row.id); err != nil {
			j.Logger.Error("delete expired upload row", "upload_id", row.id, "err", err)
			report.Failed++
			continue
		}
		j.Logger.Info("removed expired upload row with no file", "path", p)
		report.Expired++
	}

	return report, nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
