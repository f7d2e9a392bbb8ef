package migrator

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/automigrate/migrator/mock"
	"go.hackfix.me/automigrate/migrator/types"
)

func newTestMigrator(t *testing.T, applied ...string) (*Migrator, *mock.Executor) {
	t.Helper()

	d := newTestDB(t)
	createRecordsTable(t, d, "automigrate_migrations")
	for i, name := range applied {
		insertRecord(t, d, "automigrate_migrations", name,
			testTime.Add(time.Duration(i)*time.Minute))
	}

	exec := mock.New()
	m := New(d, exec,
		migratorTestLogger(),
		WithRunID("test-run"),
	)

	return m, exec
}

func migratorTestLogger() Option {
	return WithLogger(slog.New(slog.DiscardHandler))
}

func TestMigrateToForward(t *testing.T) {
	t.Parallel()

	m, exec := newTestMigrator(t, "0001-m1")
	catalog := testCatalog(1, 2, 3)

	plan, err := m.MigrateTo(m.db.NewContext(), catalog, noTarget())
	require.NoError(t, err)
	assert.Equal(t, types.DirectionForward, plan.Direction)
	assert.True(t, exec.TableEnsured)
	assert.Equal(t, []string{"0002-m2", "0003-m3"}, exec.Applied)
	assert.Empty(t, exec.Reverted)
}

func TestMigrateToBackward(t *testing.T) {
	t.Parallel()

	m, exec := newTestMigrator(t, "0001-m1", "0002-m2", "0003-m3")
	catalog := testCatalog(1, 2, 3)

	plan, err := m.MigrateTo(m.db.NewContext(), catalog, target(1))
	require.NoError(t, err)
	assert.Equal(t, types.DirectionBackward, plan.Direction)
	// Reverted newest-applied-first.
	assert.Equal(t, []string{"0003-m3", "0002-m2"}, exec.Reverted)
	assert.Empty(t, exec.Applied)
	// The records table hasn't been created by this run.
	assert.False(t, exec.TableEnsured)
}

func TestMigrateToNoop(t *testing.T) {
	t.Parallel()

	m, exec := newTestMigrator(t, "0001-m1", "0002-m2")
	catalog := testCatalog(1, 2)

	plan, err := m.MigrateTo(m.db.NewContext(), catalog, noTarget())
	require.NoError(t, err)
	assert.True(t, plan.Empty())
	assert.Empty(t, exec.Applied)
	assert.Empty(t, exec.Reverted)
	assert.False(t, exec.TableEnsured)
}

func TestMigrateToInvalidTarget(t *testing.T) {
	t.Parallel()

	m, exec := newTestMigrator(t)
	catalog := testCatalog(1, 2, 3)

	_, err := m.MigrateTo(m.db.NewContext(), catalog, target(5))
	var targetErr *types.InvalidTargetError
	require.ErrorAs(t, err, &targetErr)
	assert.Equal(t, 5, targetErr.Number)
	// No side effects before the planning failure.
	assert.Empty(t, exec.Applied)
	assert.False(t, exec.TableEnsured)
}

func TestMigrateToStopsOnFailure(t *testing.T) {
	t.Parallel()

	m, exec := newTestMigrator(t)
	catalog := testCatalog(1, 2, 3)

	failErr := errors.New("syntax error")
	exec.SetFailError(failErr, "0002-m2")

	_, err := m.MigrateTo(m.db.NewContext(), catalog, noTarget())
	require.Error(t, err)
	assert.ErrorIs(t, err, failErr)
	assert.ErrorContains(t, err, "failed migrating '0002-m2'")
	// The completed prefix stays applied; nothing after the failure ran.
	assert.Equal(t, []string{"0001-m1"}, exec.Applied)
}

func TestRollbackToSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		catalog      []int
		target       int
		expRemoved   []string
		expRemaining int
	}{
		{
			name:       "ok/above_target",
			catalog:    []int{1, 2, 3},
			target:     1,
			expRemoved: []string{"0002-m2", "0003-m3"},
		},
		{
			name:       "ok/zero_removes_all",
			catalog:    []int{1, 2, 3},
			target:     0,
			expRemoved: []string{"0001-m1", "0002-m2", "0003-m3"},
		},
		{
			// Selection applies regardless of the target's presence in the
			// catalog.
			name:       "ok/target_not_a_catalog_ordinal",
			catalog:    []int{1, 3, 7},
			target:     2,
			expRemoved: []string{"0003-m3", "0007-m7"},
		},
		{
			name:       "ok/target_above_catalog_removes_nothing",
			catalog:    []int{1, 2},
			target:     5,
			expRemoved: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, exec := newTestMigrator(t)
			catalog := testCatalog(tt.catalog...)
			removed, err := m.RollbackTo(m.db.NewContext(), catalog, tt.target)
			require.NoError(t, err)
			// Records are deleted in ascending catalog order.
			assert.Equal(t, tt.expRemoved, removed)
			assert.Equal(t, tt.expRemoved, exec.Deleted)
		})
	}
}

func TestRollbackToDeleteFailure(t *testing.T) {
	t.Parallel()

	m, exec := newTestMigrator(t)
	catalog := testCatalog(1, 2, 3)

	failErr := errors.New("connection lost")
	exec.SetFailError(failErr, "0002-m2")

	removed, err := m.RollbackTo(m.db.NewContext(), catalog, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, failErr)
	assert.Equal(t, []string{"0001-m1"}, removed)
}

func TestMigratorStatusAndValidate(t *testing.T) {
	t.Parallel()

	m, _ := newTestMigrator(t, "0001-m1", "0003-m3")
	catalog := testCatalog(1, 2, 3)
	ctx := m.db.NewContext()

	status, err := m.Status(ctx, catalog)
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 3, Applied: 2, Pending: 1, UpToDate: false},
		status.Summary())

	report, err := m.Validate(ctx, catalog)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Equal(t, []int{1, 3}, report.Applied)
	assert.Equal(t, []int{1, 2}, report.Expected)
}

func TestMigratorHistory(t *testing.T) {
	t.Parallel()

	m, _ := newTestMigrator(t, "0001-m1", "0002-m2")
	records, err := m.History(m.db.NewContext())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "0001-m1", records[0].Name)
	assert.Equal(t, "0002-m2", records[1].Name)
}

func TestMigratorHistoryMissingTable(t *testing.T) {
	t.Parallel()

	d := newTestDB(t)
	m := New(d, mock.New(), migratorTestLogger())

	_, err := m.History(d.NewContext())
	var noTableErr *types.NoMigrationsTableError
	require.ErrorAs(t, err, &noTableErr)
}
