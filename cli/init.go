package cli

import (
	"database/sql"
	"fmt"

	actx "go.hackfix.me/automigrate/app/context"
	aerrors "go.hackfix.me/automigrate/app/errors"
)

// The Init command creates the migrations directory and writes the initial
// configuration file.
type Init struct{}

// Run the init command.
func (c *Init) Run(appCtx *actx.Context) error {
	exists, err := appCtx.Config.Exists()
	if err != nil {
		return aerrors.NewRuntimeError("failed initializing", err, "")
	}
	if exists {
		return aerrors.NewRuntimeError(
			fmt.Sprintf("configuration file '%s' already exists", appCtx.Config.Path()),
			nil, "remove it first to reinitialize")
	}

	if err = appCtx.FS.MkdirAll(appCtx.Settings.Dir, 0o755); err != nil {
		return aerrors.NewRuntimeError("failed creating migrations directory", err, "")
	}

	appCtx.Config.Migrations.Dir = sql.Null[string]{V: appCtx.Settings.Dir, Valid: true}
	appCtx.Config.Migrations.Table = sql.Null[string]{V: appCtx.Settings.Table, Valid: true}
	if appCtx.Settings.DatabaseURL != "" {
		appCtx.Config.Database.URL = sql.Null[string]{V: appCtx.Settings.DatabaseURL, Valid: true}
	}
	if err = appCtx.Config.Save(); err != nil {
		return aerrors.NewRuntimeError("failed saving configuration", err, "")
	}

	fmt.Fprintf(appCtx.Stdout, "initialized migrations directory '%s'\n", appCtx.Settings.Dir)
	fmt.Fprintf(appCtx.Stdout, "wrote configuration to '%s'\n", appCtx.Config.Path())

	return nil
}
