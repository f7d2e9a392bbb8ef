// Package mock provides an in-memory migration executor for tests.
package mock

import (
	"context"

	"go.hackfix.me/automigrate/migrator/types"
)

// Executor records all calls made to it instead of touching a database.
type Executor struct {
	TableEnsured bool
	Applied      []string
	Reverted     []string
	Deleted      []string

	failErr error  // to simulate errors
	failOn  string // migration name that triggers failErr; empty fails everything
}

var _ types.Executor = (*Executor)(nil)

// New creates a new mock Executor.
func New() *Executor {
	return &Executor{}
}

// EnsureTable implements types.Executor.
func (m *Executor) EnsureTable(_ context.Context) error {
	if m.failErr != nil && m.failOn == "" {
		return m.failErr
	}
	m.TableEnsured = true
	return nil
}

// Apply implements types.Executor.
func (m *Executor) Apply(_ context.Context, file *types.MigrationFile) error {
	if err := m.fail(file.Name); err != nil {
		return err
	}
	m.Applied = append(m.Applied, file.Name)
	return nil
}

// Revert implements types.Executor.
func (m *Executor) Revert(_ context.Context, file *types.MigrationFile) error {
	if err := m.fail(file.Name); err != nil {
		return err
	}
	m.Reverted = append(m.Reverted, file.Name)
	return nil
}

// DeleteRecord implements types.Executor.
func (m *Executor) DeleteRecord(_ context.Context, name string) error {
	if err := m.fail(name); err != nil {
		return err
	}
	m.Deleted = append(m.Deleted, name)
	return nil
}

// SetFailError makes all subsequent calls fail with err. If failOn is
// non-empty, only calls for that migration name fail.
func (m *Executor) SetFailError(err error, failOn string) {
	m.failErr = err
	m.failOn = failOn
}

func (m *Executor) fail(name string) error {
	if m.failErr != nil && (m.failOn == "" || m.failOn == name) {
		return m.failErr
	}
	return nil
}
