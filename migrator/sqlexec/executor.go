// Package sqlexec implements the migration executor that runs migration SQL
// files against a database. Each applied or reverted migration runs in its
// own transaction together with its bookkeeping record, never one transaction
// for a whole plan.
package sqlexec

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/mandelsoft/vfs/pkg/vfs"

	dbtypes "go.hackfix.me/automigrate/db/types"
	"go.hackfix.me/automigrate/migrator/types"
)

// Executor runs migration SQL read from a filesystem and maintains the
// migration records table.
type Executor struct {
	db    dbtypes.Transactor
	fsys  vfs.FileSystem
	dir   string
	table string
}

var _ types.Executor = (*Executor)(nil)

// New creates a new Executor reading migration files from dir on fsys, and
// recording applied migrations in the given table.
func New(d dbtypes.Transactor, fsys vfs.FileSystem, dir, table string) *Executor {
	return &Executor{db: d, fsys: fsys, dir: dir, table: table}
}

// EnsureTable creates the migration records table if it doesn't exist.
func (e *Executor) EnsureTable(ctx context.Context) error {
	q := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS "%s" (
			name TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL
		)`, e.table)
	if _, err := e.db.ExecContext(ctx, q); err != nil {
		return &types.DatabaseError{Op: "creating migrations table", Err: err}
	}

	return nil
}

// Apply runs the migration's up SQL and inserts its record, in a single
// transaction.
func (e *Executor) Apply(ctx context.Context, file *types.MigrationFile) error {
	sqlText, err := e.readSQL(file.FileName)
	if err != nil {
		return err
	}

	err = e.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if _, txErr := tx.ExecContext(ctx, sqlText); txErr != nil {
			return &types.DatabaseError{
				Op: fmt.Sprintf("applying '%s'", file.Name), Err: txErr}
		}

		q := tx.Rebind(fmt.Sprintf(
			`INSERT INTO "%s" (name, created_at) VALUES (?, ?)`, e.table))
		if _, txErr := tx.ExecContext(ctx, q, file.Name, e.db.TimeNow().UTC()); txErr != nil {
			if dbtypes.UniqueViolation(txErr) {
				return &dbtypes.DuplicateRecordError{Table: e.table, Name: file.Name}
			}
			return &types.DatabaseError{
				Op: fmt.Sprintf("recording '%s'", file.Name), Err: txErr}
		}

		return nil
	})

	return err
}

// Revert runs the migration's down SQL and deletes its record, in a single
// transaction. Migrations without a down file cannot be reverted.
func (e *Executor) Revert(ctx context.Context, file *types.MigrationFile) error {
	if file.DownFileName == "" {
		return fmt.Errorf("migration '%s' has no down file", file.Name)
	}

	sqlText, err := e.readSQL(file.DownFileName)
	if err != nil {
		return err
	}

	err = e.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if _, txErr := tx.ExecContext(ctx, sqlText); txErr != nil {
			return &types.DatabaseError{
				Op: fmt.Sprintf("reverting '%s'", file.Name), Err: txErr}
		}

		q := tx.Rebind(fmt.Sprintf(`DELETE FROM "%s" WHERE name = ?`, e.table))
		if _, txErr := tx.ExecContext(ctx, q, file.Name); txErr != nil {
			return &types.DatabaseError{
				Op: fmt.Sprintf("unrecording '%s'", file.Name), Err: txErr}
		}

		return nil
	})

	return err
}

// DeleteRecord removes a migration record without touching the schema. A
// missing records table is surfaced as a types.NoMigrationsTableError.
func (e *Executor) DeleteRecord(ctx context.Context, name string) error {
	q := e.db.Rebind(fmt.Sprintf(`DELETE FROM "%s" WHERE name = ?`, e.table))
	if _, err := e.db.ExecContext(ctx, q, name); err != nil {
		if dbtypes.MissingTable(err) {
			return &types.NoMigrationsTableError{Table: e.table}
		}
		return &types.DatabaseError{
			Op: fmt.Sprintf("deleting record '%s'", name), Err: err}
	}

	return nil
}

func (e *Executor) readSQL(fileName string) (string, error) {
	data, err := vfs.ReadFile(e.fsys, filepath.Join(e.dir, fileName))
	if err != nil {
		return "", fmt.Errorf("failed reading migration file '%s': %w", fileName, err)
	}

	return string(data), nil
}
