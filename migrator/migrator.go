// Package migrator implements a versioned schema-migration engine.
//
// It tracks which migration files have been applied to a database in a
// dedicated records table, computes the ordered plan of migrations to apply
// or revert to reach a requested target state, and validates that the applied
// history forms a gapless sequence. The actual per-migration SQL execution is
// delegated to a types.Executor implementation.
//
// The engine assumes single-operator execution: nothing here provides a
// distributed or advisory lock, so concurrent runs against the same records
// table are an operational hazard.
package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/nrednav/cuid2"

	dbtypes "go.hackfix.me/automigrate/db/types"
	"go.hackfix.me/automigrate/migrator/types"
)

// DefaultTable is the default name of the migration records table.
const DefaultTable = "automigrate_migrations"

// Migrator orchestrates migration runs against a single database.
type Migrator struct {
	db     dbtypes.Querier
	exec   types.Executor
	table  string
	runID  string
	logger *slog.Logger
}

// New creates a new Migrator that reads migration records via d and delegates
// migration execution to exec.
func New(d dbtypes.Querier, exec types.Executor, opts ...Option) *Migrator {
	m := &Migrator{
		db:     d,
		exec:   exec,
		table:  DefaultTable,
		runID:  cuid2.Generate(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("run", m.runID)

	return m
}

// Status returns the applied/pending state of every catalog migration.
func (m *Migrator) Status(ctx context.Context, catalog *Catalog) (*Status, error) {
	applied, err := AlreadyMigratedOrEmpty(ctx, m.db, m.table)
	if err != nil {
		return nil, err
	}

	return BuildStatus(catalog, applied), nil
}

// History returns all migration records, ordered by application time
// ascending. Unlike Status, a missing records table is surfaced to the
// caller, which may treat it as a fresh install.
func (m *Migrator) History(ctx context.Context) ([]types.MigrationRecord, error) {
	return Records(ctx, m.db, m.table)
}

// Plan computes the migration plan toward target without executing it.
func (m *Migrator) Plan(ctx context.Context, catalog *Catalog, target sql.Null[int]) (
	*types.Plan, error,
) {
	applied, err := AlreadyMigratedOrEmpty(ctx, m.db, m.table)
	if err != nil {
		return nil, err
	}

	return BuildPlan(catalog, applied, target)
}

// MigrateTo plans and executes a migration run toward target. Each migration
// runs in its own transaction, so a failure partway through the plan stops
// execution immediately and leaves the already executed prefix in place;
// re-running resumes from the new current state. The executed plan is
// returned for reporting.
func (m *Migrator) MigrateTo(ctx context.Context, catalog *Catalog, target sql.Null[int]) (
	*types.Plan, error,
) {
	plan, err := m.Plan(ctx, catalog, target)
	if err != nil {
		return nil, err
	}

	logger := m.logger.With(
		"direction", string(plan.Direction),
		"current", plan.Current, "target", plan.Target)
	if plan.Empty() {
		logger.Info("nothing to migrate")
		return plan, nil
	}

	if plan.Direction == types.DirectionForward {
		if err = m.exec.EnsureTable(ctx); err != nil {
			return nil, fmt.Errorf("failed ensuring migrations table exists: %w", err)
		}
	}

	for _, f := range plan.ToMigrate {
		flogger := logger.With("migration", f.Name, "number", f.Number)
		switch plan.Direction {
		case types.DirectionForward:
			flogger.Info("applying migration")
			err = m.exec.Apply(ctx, f)
		case types.DirectionBackward:
			flogger.Info("reverting migration")
			err = m.exec.Revert(ctx, f)
		}
		if err != nil {
			return nil, fmt.Errorf("failed migrating '%s': %w", f.Name, err)
		}
		flogger.Debug("migration done")
	}
	logger.Info("migration run finished", "migrated", len(plan.ToMigrate))

	return plan, nil
}

// RollbackTo removes the records of all migrations with a number greater than
// target, and returns their names. Records are deleted in ascending catalog
// order; only the bookkeeping table is touched, reversal of actual schema
// effects is the Executor's concern. The target is deliberately not validated
// against the catalog.
func (m *Migrator) RollbackTo(ctx context.Context, catalog *Catalog, target int) (
	[]string, error,
) {
	var removed []string
	for _, f := range catalog.Files() {
		if f.Number <= target {
			continue
		}
		m.logger.Info("removing migration record", "migration", f.Name, "number", f.Number)
		if err := m.exec.DeleteRecord(ctx, f.Name); err != nil {
			return removed, fmt.Errorf("failed removing record of '%s': %w", f.Name, err)
		}
		removed = append(removed, f.Name)
	}

	return removed, nil
}

// Validate checks that the applied migrations form a contiguous prefix of the
// migration sequence.
func (m *Migrator) Validate(ctx context.Context, catalog *Catalog) (SequenceReport, error) {
	applied, err := AlreadyMigratedOrEmpty(ctx, m.db, m.table)
	if err != nil {
		return SequenceReport{}, err
	}

	return ValidateSequence(catalog, applied), nil
}
