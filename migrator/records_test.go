package migrator

import (
	"context"
	"crypto/rand"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/automigrate/db"
	"go.hackfix.me/automigrate/migrator/types"
)

var testTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func testTimeNow() time.Time {
	return testTime
}

// newTestDB opens a uniquely named in-memory SQLite database, to avoid
// clashing between parallel tests.
func newTestDB(t *testing.T) *db.DB {
	t.Helper()

	rndName := make([]byte, 12)
	_, err := rand.Read(rndName)
	require.NoError(t, err)

	// Not using just :memory: to avoid 'no such table' issue.
	// See https://github.com/mattn/go-sqlite3#faq
	d, err := db.Open(context.Background(),
		fmt.Sprintf("file:automigrate-%x?mode=memory&cache=shared", rndName), testTimeNow)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	return d
}

func createRecordsTable(t *testing.T, d *db.DB, table string) {
	t.Helper()
	_, err := d.ExecContext(d.NewContext(), fmt.Sprintf(
		`CREATE TABLE "%s" (name TEXT PRIMARY KEY, created_at TIMESTAMP NOT NULL)`,
		table))
	require.NoError(t, err)
}

func insertRecord(t *testing.T, d *db.DB, table, name string, createdAt time.Time) {
	t.Helper()
	_, err := d.ExecContext(d.NewContext(), fmt.Sprintf(
		`INSERT INTO "%s" (name, created_at) VALUES (?, ?)`, table),
		name, createdAt)
	require.NoError(t, err)
}

func TestRecordsMissingTable(t *testing.T) {
	t.Parallel()

	d := newTestDB(t)
	ctx := d.NewContext()

	_, err := Records(ctx, d, "automigrate_migrations")
	var noTableErr *types.NoMigrationsTableError
	require.ErrorAs(t, err, &noTableErr)
	assert.Equal(t, "automigrate_migrations", noTableErr.Table)

	_, err = AlreadyMigrated(ctx, d, "automigrate_migrations")
	require.ErrorAs(t, err, &noTableErr)

	applied, err := AlreadyMigratedOrEmpty(ctx, d, "automigrate_migrations")
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestRecordsOrdering(t *testing.T) {
	t.Parallel()

	d := newTestDB(t)
	ctx := d.NewContext()
	createRecordsTable(t, d, "automigrate_migrations")

	// Inserted out of name order; read order must follow created_at.
	insertRecord(t, d, "automigrate_migrations", "0002-second", testTime.Add(time.Minute))
	insertRecord(t, d, "automigrate_migrations", "0001-first", testTime)
	insertRecord(t, d, "automigrate_migrations", "0003-third", testTime.Add(2*time.Minute))

	records, err := Records(ctx, d, "automigrate_migrations")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "0001-first", records[0].Name)
	assert.Equal(t, "0002-second", records[1].Name)
	assert.Equal(t, "0003-third", records[2].Name)
	assert.True(t, records[0].CreatedAt.Equal(testTime))

	applied, err := AlreadyMigrated(ctx, d, "automigrate_migrations")
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{
		"0001-first":  {},
		"0002-second": {},
		"0003-third":  {},
	}, applied)
}

func TestRecordsUnexpectedError(t *testing.T) {
	t.Parallel()

	d := newTestDB(t)
	ctx := d.NewContext()

	// A table with the right name but wrong columns is an unexpected
	// database error, not a missing table.
	_, err := d.ExecContext(ctx,
		`CREATE TABLE "automigrate_migrations" (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)

	_, err = Records(ctx, d, "automigrate_migrations")
	var dbErr *types.DatabaseError
	require.ErrorAs(t, err, &dbErr)
	assert.Contains(t, dbErr.Error(), "no such column")

	// The wrapper only recovers the missing-table condition.
	_, err = AlreadyMigratedOrEmpty(ctx, d, "automigrate_migrations")
	require.ErrorAs(t, err, &dbErr)
}

func TestRecordsCustomTableName(t *testing.T) {
	t.Parallel()

	d := newTestDB(t)
	ctx := d.NewContext()
	createRecordsTable(t, d, "my_history")
	insertRecord(t, d, "my_history", "0001-first", testTime)

	applied, err := AlreadyMigratedOrEmpty(ctx, d, "my_history")
	require.NoError(t, err)
	assert.Contains(t, applied, "0001-first")
}
