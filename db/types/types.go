package types

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

// Querier exposes only methods for running SQL queries, and some helper functions.
type Querier interface {
	NewContext() context.Context
	TimeNow() time.Time
	// Rebind converts '?' placeholders to the placeholder format of the
	// underlying driver.
	Rebind(query string) string
	ExecContext(ctx context.Context, sql string, arguments ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Transactor extends Querier with the ability to run a function inside a
// single database transaction.
type Transactor interface {
	Querier
	Transaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}
