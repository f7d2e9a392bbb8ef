package cli

import (
	"fmt"

	actx "go.hackfix.me/automigrate/app/context"
	aerrors "go.hackfix.me/automigrate/app/errors"
)

// The Validate command checks that the applied migrations form a contiguous,
// gapless prefix of the migration sequence.
type Validate struct{}

// Run the validate command.
func (c *Validate) Run(appCtx *actx.Context) error {
	catalog, err := loadCatalog(appCtx)
	if err != nil {
		return aerrors.NewRuntimeError("failed loading migration catalog", err, "")
	}

	m := newMigrator(appCtx)
	report, err := m.Validate(appCtx.DB.NewContext(), catalog)
	if err != nil {
		return aerrors.NewRuntimeError("failed validating migration sequence", err, "")
	}

	if !report.Valid {
		fmt.Fprintf(appCtx.Stdout, "applied:  %v\n", report.Applied)
		fmt.Fprintf(appCtx.Stdout, "expected: %v\n", report.Expected)
		return aerrors.NewRuntimeError("migration sequence is invalid", nil,
			"migrations were applied out of order or with gaps; inspect 'status' and 'history'")
	}

	fmt.Fprintf(appCtx.Stdout, "migration sequence is valid (%d applied)\n",
		len(report.Applied))

	return nil
}
