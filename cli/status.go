package cli

import (
	"fmt"

	actx "go.hackfix.me/automigrate/app/context"
	aerrors "go.hackfix.me/automigrate/app/errors"
)

// The Status command renders the applied/pending state of all migrations.
type Status struct{}

// Run the status command.
func (c *Status) Run(appCtx *actx.Context) error {
	catalog, err := loadCatalog(appCtx)
	if err != nil {
		return aerrors.NewRuntimeError("failed loading migration catalog", err, "")
	}

	m := newMigrator(appCtx)
	status, err := m.Status(appCtx.DB.NewContext(), catalog)
	if err != nil {
		return aerrors.NewRuntimeError("failed reading migration status", err, "")
	}

	if err = status.Render(appCtx.Stdout); err != nil {
		return aerrors.NewRuntimeError("failed writing to stdout", err, "")
	}

	sum := status.Summary()
	if sum.Total == 0 {
		return nil
	}
	if sum.UpToDate {
		fmt.Fprintf(appCtx.Stdout, "up to date (%d applied)\n", sum.Applied)
	} else {
		fmt.Fprintf(appCtx.Stdout, "%d applied, %d pending\n", sum.Applied, sum.Pending)
	}

	return nil
}
