package migrator

import (
	"context"
	"errors"
	"fmt"

	dbtypes "go.hackfix.me/automigrate/db/types"
	"go.hackfix.me/automigrate/migrator/types"
)

// Records returns all rows of the migration records table, ordered by
// created_at ascending. If the table doesn't exist it fails with a
// types.NoMigrationsTableError; any other failure is surfaced as a
// types.DatabaseError with the original driver message preserved.
func Records(ctx context.Context, d dbtypes.Querier, table string) (
	[]types.MigrationRecord, error,
) {
	q := fmt.Sprintf(
		`SELECT name, created_at FROM "%s" ORDER BY created_at ASC`, table)
	rows, err := d.QueryContext(ctx, q)
	if err != nil {
		return nil, recordsErr(err, table)
	}
	defer rows.Close()

	var records []types.MigrationRecord
	for rows.Next() {
		var rec types.MigrationRecord
		if err = rows.Scan(&rec.Name, &rec.CreatedAt); err != nil {
			return nil, &types.DatabaseError{Op: "scanning migration record", Err: err}
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, recordsErr(err, table)
	}

	return records, nil
}

// AlreadyMigrated returns the set of applied migration names, for membership
// tests. The failure modes are the same as those of Records.
func AlreadyMigrated(ctx context.Context, d dbtypes.Querier, table string) (
	map[string]struct{}, error,
) {
	records, err := Records(ctx, d, table)
	if err != nil {
		return nil, err
	}

	applied := make(map[string]struct{}, len(records))
	for _, rec := range records {
		applied[rec.Name] = struct{}{}
	}

	return applied, nil
}

// AlreadyMigratedOrEmpty is like AlreadyMigrated, but normalizes a missing
// records table to an empty applied set, so that a first run proceeds as
// "nothing applied yet".
func AlreadyMigratedOrEmpty(ctx context.Context, d dbtypes.Querier, table string) (
	map[string]struct{}, error,
) {
	applied, err := AlreadyMigrated(ctx, d, table)
	if err != nil {
		var noTableErr *types.NoMigrationsTableError
		if errors.As(err, &noTableErr) {
			return map[string]struct{}{}, nil
		}
		return nil, err
	}

	return applied, nil
}

func recordsErr(err error, table string) error {
	if dbtypes.MissingTable(err) {
		return &types.NoMigrationsTableError{Table: table}
	}
	return &types.DatabaseError{Op: "reading migration records", Err: err}
}
