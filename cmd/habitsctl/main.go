package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/aussiebroadwan/habits/internal/habits/app"
)

var CLI struct {
	Version kong.VersionFlag

	DatabaseDriver string `help:"Database driver (sqlite, postgres). Overrides DATABASE_DRIVER." placeholder:"DRIVER"`
	DatabaseURL    string `help:"SQLite path or Postgres DSN. Overrides DATABASE_URL." placeholder:"URL"`
	UploadDir      string `help:"Upload root. Overrides UPLOAD_DIR." type:"path"`

	Migrate MigrateCmd `cmd:"" help:"Apply pending schema migrations."`
	Sweep   SweepCmd   `cmd:"" help:"Run one upload janitor pass and print the report."`
	Info    VersionCmd `cmd:"" name:"version" help:"Print the build version."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("habitsctl"),
		kong.Description("Operational tasks for the habits service"),
		kong.UsageOnError(),
		kong.Vars{"version": app.BuildVersion},
	)

	cfg := app.LoadConfig()
	if CLI.DatabaseDriver != "" {
		cfg.DatabaseDriver = CLI.DatabaseDriver
	}
	if CLI.DatabaseURL != "" {
		cfg.DatabaseURL = CLI.DatabaseURL
	}
	if CLI.UploadDir != "" {
		cfg.UploadDir = CLI.UploadDir
	}

	err := ctx.Run(&Context{
		Config: cfg,
		Logger: app.NewLogger(cfg, "habitsctl"),
		Out:    os.Stdout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
