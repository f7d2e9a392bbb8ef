package cli

import (
	"errors"
	"fmt"

	actx "go.hackfix.me/automigrate/app/context"
	aerrors "go.hackfix.me/automigrate/app/errors"
	mtypes "go.hackfix.me/automigrate/migrator/types"
)

// The Rollback command removes the records of all migrations with a number
// greater than the target, without running any down migrations.
type Rollback struct {
	Target int `arg:"" help:"Target migration number. 0 removes all records."`
}

// Run the rollback command.
func (c *Rollback) Run(appCtx *actx.Context) error {
	if c.Target < 0 {
		return aerrors.NewRuntimeError(
			fmt.Sprintf("invalid target migration number: %d", c.Target),
			nil, "the target must be 0 or a positive migration number")
	}

	catalog, err := loadCatalog(appCtx)
	if err != nil {
		return aerrors.NewRuntimeError("failed loading migration catalog", err, "")
	}

	m := newMigrator(appCtx)
	removed, err := m.RollbackTo(appCtx.DB.NewContext(), catalog, c.Target)
	if err != nil {
		var noTableErr *mtypes.NoMigrationsTableError
		if errors.As(err, &noTableErr) {
			fmt.Fprintln(appCtx.Stdout, "no migrations applied yet")
			return nil
		}
		return aerrors.NewRuntimeError("rollback failed", err, "")
	}

	for _, name := range removed {
		fmt.Fprintf(appCtx.Stdout, "removed record %s\n", name)
	}
	fmt.Fprintf(appCtx.Stdout, "removed %d migration records\n", len(removed))

	return nil
}
