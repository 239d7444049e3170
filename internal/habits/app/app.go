package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/habits/internal/habits/filestore"
	httpapi "github.com/aussiebroadwan/habits/internal/habits/http"
	"github.com/aussiebroadwan/habits/internal/habits/service"
	"github.com/aussiebroadwan/habits/internal/habits/store"
	"github.com/aussiebroadwan/habits/internal/habits/store/drivers/postgres"
	"github.com/aussiebroadwan/habits/internal/habits/store/drivers/sqlite"
	"github.com/aussiebroadwan/habits/pkg/cryptox"
	"github.com/aussiebroadwan/habits/pkg/jwtx"
	"github.com/aussiebroadwan/habits/pkg/slogx"
)

const sessionIssuer = "habits"

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application wires the habits service together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	files    *filestore.Store
	sessions *jwtx.SessionIssuer

	userService   *service.UserService
	habitService  *service.HabitService
	forumService  *service.ForumService
	uploadService *service.UploadService
	janitor       *service.Janitor

	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config, serviceName string) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: serviceName,
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		File:    cfg.LogFile,
	})
}

// OpenStore opens the configured database without migrating it.
func OpenStore(cfg Config) (store.Store, error) {
	switch cfg.DatabaseDriver {
	case DriverSQLite:
		return sqlite.NewStore(sqlite.DSN(cfg.DatabaseURL))
	case DriverPostgres:
		return postgres.NewStore(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

// New creates an Application with every dependency initialized and the
// schema migrated.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg:    cfg,
		logger: NewLogger(cfg, "habits"),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the fully wired router.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.janitor.Start()

	app.logger.Info("habits service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"driver", app.cfg.DatabaseDriver,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.janitor.Stop()
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains HTTP traffic, stops the janitor and closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down habits service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.janitor.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("habits service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	db, err := OpenStore(app.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

func (app *Application) initServices() error {
	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	secret := app.cfg.JWTSecret
	if secret == "" {
		secret = cryptox.MustGenerateToken(cryptox.TokenSize256)
		app.logger.Warn("JWT_SECRET not set; using a random secret, sessions end on restart")
	}
	app.sessions, err = jwtx.NewSessionIssuer(jwtx.SessionOptions{
		Secret:      []byte(secret),
		Issuer:      sessionIssuer,
		TTL:         app.cfg.SessionTTL,
		RememberTTL: app.cfg.RememberTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sessions: %w", err)
	}

	app.files, err = filestore.New(app.cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("failed to initialize upload directory: %w", err)
	}

	loc, err := app.cfg.Location()
	if err != nil {
		return err
	}
	clock := service.Clock{Location: loc}

	app.userService = &service.UserService{
		Store:    app.db,
		Hasher:   cryptox.NewPasswordHasher(pepper),
		Sessions: app.sessions,
		Clock:    clock,
	}
	app.habitService = &service.HabitService{Store: app.db, Clock: clock}
	app.forumService = &service.ForumService{Store: app.db, Clock: clock}
	app.uploadService = &service.UploadService{
		Store:    app.db,
		Files:    app.files,
		Clock:    clock,
		MaxBytes: app.cfg.UploadMaxBytes,
	}

	app.janitor = NewJanitor(app.cfg, app.db, app.files, app.logger)
	app.janitor.Clock = clock
	return nil
}

// NewJanitor builds the upload janitor from cfg.
func NewJanitor(cfg Config, st store.Store, files *filestore.Store, logger *slog.Logger) *service.Janitor {
	return service.NewJanitor(st, files, logger, cfg.JanitorInterval, cfg.UploadRetention)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(httpapi.RouterOptions{
		Verifier:       app.sessions,
		RequireAuth:    app.cfg.RequireAuth,
		BuildVersion:   BuildVersion,
		Store:          app.db,
		Files:          app.files,
		Logger:         app.logger,
		AllowedOrigins: app.cfg.AllowedOrigins,
	})

	router.UserService = app.userService
	router.HabitService = app.habitService
	router.ForumService = app.forumService
	router.UploadService = app.uploadService
	router.RateLimits = httpapi.RateLimits{
		Auth:   app.cfg.RateLimits.Auth,
		Write:  app.cfg.RateLimits.Write,
		Read:   app.cfg.RateLimits.Read,
		Upload: app.cfg.RateLimits.Upload,
	}
	router.StaticDir = app.cfg.StaticDir
	router.MaxUploadBytes = app.cfg.UploadMaxBytes
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
