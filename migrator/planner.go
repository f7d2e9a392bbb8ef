package migrator

import (
	"database/sql"
	"slices"

	"go.hackfix.me/automigrate/migrator/types"
)

// BuildPlan computes the ordered, directed list of migrations that must be
// executed to move the database from its current state to the target number.
// An invalid target is 0 (the revert-everything sentinel, always valid) or
// any catalog number; if target is not set, the catalog's highest number is
// used. It is a pure function of its inputs; execution is the caller's
// concern.
func BuildPlan(
	catalog *Catalog, applied map[string]struct{}, target sql.Null[int],
) (*types.Plan, error) {
	if catalog.Len() == 0 {
		return &types.Plan{Direction: types.DirectionNone}, nil
	}

	tgt := catalog.LastNumber()
	if target.Valid {
		tgt = target.V
	}

	current := currentNumber(catalog, applied)

	if tgt != 0 && !catalog.ContainsNumber(tgt) {
		return nil, &types.InvalidTargetError{Number: tgt}
	}

	plan := &types.Plan{Current: current, Target: tgt}
	if tgt > current {
		plan.Direction = types.DirectionForward
		for _, f := range catalog.Files() {
			if f.Number > current && f.Number <= tgt {
				plan.ToMigrate = append(plan.ToMigrate, f)
			}
		}
		return plan, nil
	}

	// Backward, including the target == current no-op case. Migrations are
	// reverted in the opposite order they were applied, so the ascending
	// slice is reversed.
	plan.Direction = types.DirectionBackward
	for _, f := range catalog.Files() {
		if f.Number > tgt && f.Number <= current {
			plan.ToMigrate = append(plan.ToMigrate, f)
		}
	}
	slices.Reverse(plan.ToMigrate)

	return plan, nil
}

// currentNumber returns the number of the most recently applied migration,
// i.e. the highest catalog number whose name is in the applied set, or 0 if
// none have been applied.
func currentNumber(catalog *Catalog, applied map[string]struct{}) int {
	current := 0
	for _, f := range catalog.Files() {
		if _, ok := applied[f.Name]; ok {
			current = f.Number
		}
	}

	return current
}
