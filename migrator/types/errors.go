package types

import (
	"fmt"
	"strings"
)

// CatalogError represents an invalid migration file in the migrations
// directory, such as an unparsable name or a down file without a matching up
// file. It is raised during catalog construction, before any database access.
type CatalogError struct {
	File   string
	Reason string
}

// Error returns a string representation of the error.
func (e CatalogError) Error() string {
	return fmt.Sprintf("invalid migration file '%s': %s", e.File, e.Reason)
}

// DuplicateNumberError represents two or more migration files sharing the
// same ordinal number. It is raised during catalog construction.
type DuplicateNumberError struct {
	Number int
	Files  []string
}

// Error returns a string representation of the error.
func (e DuplicateNumberError) Error() string {
	return fmt.Sprintf("duplicate migration number %d: %s",
		e.Number, strings.Join(e.Files, ", "))
}

// NoMigrationsTableError indicates that the migration records table doesn't
// exist yet. On a first run this is an expected condition, normalized to an
// empty applied set by AlreadyMigratedOrEmpty.
type NoMigrationsTableError struct {
	Table string
}

// Error returns a string representation of the error.
func (e NoMigrationsTableError) Error() string {
	return fmt.Sprintf("migrations table '%s' doesn't exist", e.Table)
}

// DatabaseError represents an unexpected database failure during a migration
// operation. The original driver error is preserved for diagnostics.
type DatabaseError struct {
	Op  string
	Err error
}

// Error returns a string representation of the error.
func (e DatabaseError) Error() string {
	return fmt.Sprintf("database error during %s: %s", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e DatabaseError) Unwrap() error {
	return e.Err
}

// InvalidTargetError indicates that the requested target migration number is
// neither a catalog ordinal nor the rollback-to-empty sentinel 0. It is
// raised during planning, before any side effects occur.
type InvalidTargetError struct {
	Number int
}

// Error returns a string representation of the error.
func (e InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid target migration number: %d", e.Number)
}
