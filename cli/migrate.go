package cli

import (
	"database/sql"
	"errors"
	"fmt"

	actx "go.hackfix.me/automigrate/app/context"
	aerrors "go.hackfix.me/automigrate/app/errors"
	mtypes "go.hackfix.me/automigrate/migrator/types"
)

// The Migrate command applies or reverts migrations to reach a target state.
type Migrate struct {
	Target int  `default:"-1" help:"Target migration number. 0 reverts everything; omit to migrate to the latest."`
	DryRun bool `help:"Print the plan without executing it."`
}

// Run the migrate command.
func (c *Migrate) Run(appCtx *actx.Context) error {
	catalog, err := loadCatalog(appCtx)
	if err != nil {
		return aerrors.NewRuntimeError("failed loading migration catalog", err, "")
	}

	target := sql.Null[int]{}
	if c.Target >= 0 {
		target = sql.Null[int]{V: c.Target, Valid: true}
	}

	m := newMigrator(appCtx)
	ctx := appCtx.DB.NewContext()

	var plan *mtypes.Plan
	if c.DryRun {
		plan, err = m.Plan(ctx, catalog, target)
	} else {
		plan, err = m.MigrateTo(ctx, catalog, target)
	}
	if err != nil {
		var targetErr *mtypes.InvalidTargetError
		if errors.As(err, &targetErr) {
			return aerrors.NewRuntimeError(targetErr.Error(), nil,
				"the target must be 0 or the number of an existing migration")
		}
		return aerrors.NewRuntimeError("migration run failed", err, "")
	}

	if plan.Empty() {
		fmt.Fprintln(appCtx.Stdout, "nothing to migrate")
		return nil
	}

	verb := "applied"
	if plan.Direction == mtypes.DirectionBackward {
		verb = "reverted"
	}
	if c.DryRun {
		fmt.Fprintf(appCtx.Stdout, "plan: %s (current %d, target %d)\n",
			plan.Direction, plan.Current, plan.Target)
		verb = "would migrate"
	}
	for _, f := range plan.ToMigrate {
		fmt.Fprintf(appCtx.Stdout, "%s %s\n", verb, f.Name)
	}

	return nil
}
