package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"

	"go.hackfix.me/automigrate/app/config"
	actx "go.hackfix.me/automigrate/app/context"
	aerrors "go.hackfix.me/automigrate/app/errors"
	"go.hackfix.me/automigrate/cli"
	"go.hackfix.me/automigrate/db"
)

// App is the application.
type App struct {
	name string
	ctx  *actx.Context
	cli  *cli.CLI
	args []string
	// the logging level is set via the CLI, if the app was initialized with the
	// WithLogger option.
	logLevel *slog.LevelVar
}

// New initializes a new application.
func New(name, configFilePath string, opts ...Option) (*App, error) {
	version, err := actx.GetVersion()
	if err != nil {
		return nil, err
	}

	defaultCtx := &actx.Context{
		Ctx:     context.Background(),
		FS:      memoryfs.New(),
		Logger:  slog.Default(),
		TimeNow: time.Now,
		Version: version,
	}
	app := &App{name: name, ctx: defaultCtx}

	for _, opt := range opts {
		opt(app)
	}

	ver := fmt.Sprintf("%s %s", app.name, app.ctx.Version.String())
	app.cli, err = cli.New(configFilePath, ver)
	if err != nil {
		return nil, err
	}

	return app, nil
}

// Run initializes the application environment and starts execution of the
// application.
func (app *App) Run(args []string) error {
	if err := app.cli.Parse(args); err != nil {
		return err
	}

	if app.logLevel != nil {
		app.logLevel.Set(app.cli.Log.Level)
		slog.SetLogLoggerLevel(app.cli.Log.Level)
	}

	cfg := config.New(app.ctx.FS, app.cli.ConfigFile)
	if err := cfg.Load(); err != nil {
		return err
	}
	// Flags and environment variables take precedence over the config file,
	// which takes precedence over built-in defaults.
	app.cli.ApplyConfig(cfg)
	cfg.SetDefaults()
	app.ctx.Config = cfg

	app.ctx.Settings = actx.Settings{
		DatabaseURL: app.cli.DatabaseURL,
		Dir:         app.cli.Dir,
		Table:       app.cli.Table,
	}
	if app.ctx.Settings.Dir == "" {
		app.ctx.Settings.Dir = config.DefaultDir
	}
	if app.ctx.Settings.Table == "" {
		app.ctx.Settings.Table = config.DefaultTable
	}

	if err := app.openDB(); err != nil {
		return err
	}

	if err := app.cli.Execute(app.ctx); err != nil {
		return err
	}

	return nil
}

// openDB opens the database connection for commands that need one, unless a
// connection was already injected with WithDB.
func (app *App) openDB() error {
	if app.ctx.DB != nil || !commandNeedsDB(app.cli.Command()) {
		return nil
	}

	if app.ctx.Settings.DatabaseURL == "" {
		return aerrors.NewRuntimeError("no database URL configured", nil,
			"set --database-url, the AUTOMIGRATE_DATABASE_URL environment variable, "+
				"or database.url in the configuration file")
	}

	d, err := db.Open(app.ctx.Ctx, app.ctx.Settings.DatabaseURL, app.ctx.TimeNow)
	if err != nil {
		return aerrors.NewRuntimeError("failed opening database", err, "")
	}
	app.ctx.DB = d

	return nil
}

func commandNeedsDB(command string) bool {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "status", "history", "migrate", "rollback", "validate":
		return true
	}
	return false
}
