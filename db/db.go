package db

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	//nolint:revive,nolintlint // Idiomatic way of loading DB libraries.
	_ "github.com/glebarez/go-sqlite"
	//nolint:revive,nolintlint // Idiomatic way of loading DB libraries.
	_ "github.com/lib/pq"

	"go.hackfix.me/automigrate/db/types"
)

// DB wraps sqlx.DB with additional context and transaction functionality.
type DB struct {
	*sqlx.DB
	ctx     context.Context
	timeNow func() time.Time
	url     string
}

var _ types.Transactor = (*DB)(nil)

// Open creates and configures a new database connection. The driver is
// selected from the URL scheme: 'postgres://' and 'postgresql://' use the
// PostgreSQL driver, anything else is treated as a SQLite path or URI.
func Open(ctx context.Context, url string, timeNow func() time.Time) (*DB, error) {
	driver, dsn := resolveDriver(url)

	var d *DB
	if driver == "sqlite" &&
		(strings.Contains(dsn, "mode=memory") || strings.Contains(dsn, ":memory:")) {
		defer func() {
			if d != nil {
				// See https://github.com/mattn/go-sqlite3#faq
				d.SetMaxIdleConns(10)
				d.SetConnMaxLifetime(time.Duration(math.Inf(1)))
			}
		}()
	}

	sqlxDB, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed opening %s database: %w", driver, err)
	}

	d = &DB{DB: sqlxDB, ctx: ctx, timeNow: timeNow, url: url}

	if driver == "sqlite" {
		// Enable foreign key enforcement
		_, err = d.Exec(`PRAGMA foreign_keys = ON;`)
		if err != nil {
			return nil, fmt.Errorf("failed enabling foreign key enforcement: %w", err)
		}
	}

	return d, nil
}

// NewContext returns a new child context of the main database context.
func (d *DB) NewContext() context.Context {
	// TODO: Return cancel func?
	ctx, _ := context.WithCancel(d.ctx) //nolint:govet // I'll handle this later...
	return ctx
}

// TimeNow returns the current system time.
func (d *DB) TimeNow() time.Time {
	return d.timeNow()
}

// Transaction runs fn inside a single database transaction, committing it if
// fn returns nil, and rolling it back otherwise.
func (d *DB) Transaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed beginning transaction: %w", err)
	}

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed rolling back transaction: %w (caused by: %w)", rbErr, err)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed committing transaction: %w", err)
	}

	return nil
}

func resolveDriver(url string) (driver, dsn string) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "postgres", url
	case strings.HasPrefix(url, "sqlite://"):
		return "sqlite", strings.TrimPrefix(url, "sqlite://")
	default:
		return "sqlite", url
	}
}
