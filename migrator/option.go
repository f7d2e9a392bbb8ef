package migrator

import "log/slog"

// Option is a function that allows configuring the Migrator.
type Option func(*Migrator)

// WithLogger sets the logger used by the Migrator.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Migrator) {
		m.logger = logger
	}
}

// WithTable sets the name of the migration records table.
func WithTable(table string) Option {
	return func(m *Migrator) {
		m.table = table
	}
}

// WithRunID sets the run ID attached to all log records of this Migrator.
func WithRunID(id string) Option {
	return func(m *Migrator) {
		m.runID = id
	}
}
