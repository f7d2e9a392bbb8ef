package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/go-sqlite"
	"github.com/lib/pq"
	sqlite3 "modernc.org/sqlite/lib"
)

// DuplicateRecordError represents an error when attempting to insert a record
// that already exists.
type DuplicateRecordError struct {
	Table string
	Name  string
}

// Error returns a string representation of the error.
func (e DuplicateRecordError) Error() string {
	return fmt.Sprintf("record '%s' already exists in table '%s'", e.Name, e.Table)
}

// MissingTable reports whether err was caused by querying a table that
// doesn't exist, for both supported drivers.
func MissingTable(err error) bool {
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code() == sqlite3.SQLITE_ERROR &&
			strings.Contains(sqlErr.Error(), "no such table")
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "undefined_table"
	}

	return false
}

// UniqueViolation reports whether err was caused by violating a unique or
// primary key constraint, for both supported drivers.
func UniqueViolation(err error) bool {
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		code := sqlErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "unique_violation"
	}

	return false
}
