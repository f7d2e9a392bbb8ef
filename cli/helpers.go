package cli

import (
	actx "go.hackfix.me/automigrate/app/context"
	"go.hackfix.me/automigrate/migrator"
	"go.hackfix.me/automigrate/migrator/sqlexec"
)

func loadCatalog(appCtx *actx.Context) (*migrator.Catalog, error) {
	return migrator.LoadCatalog(appCtx.FS, appCtx.Settings.Dir)
}

func newMigrator(appCtx *actx.Context) *migrator.Migrator {
	exec := sqlexec.New(
		appCtx.DB, appCtx.FS, appCtx.Settings.Dir, appCtx.Settings.Table)
	return migrator.New(appCtx.DB, exec,
		migrator.WithTable(appCtx.Settings.Table),
		migrator.WithLogger(appCtx.Logger),
	)
}
