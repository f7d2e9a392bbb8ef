package migrator

import (
	"fmt"
	"io"

	"go.hackfix.me/automigrate/migrator/types"
)

// Status is the applied/pending state of every migration in a catalog, in
// catalog order.
type Status struct {
	Entries []StatusEntry
}

// StatusEntry is the state of a single migration.
type StatusEntry struct {
	File    *types.MigrationFile
	Applied bool
}

// Summary is an aggregate view of a Status.
type Summary struct {
	Total    int
	Applied  int
	Pending  int
	UpToDate bool
}

// BuildStatus computes the status of every catalog migration against the
// applied name set. It is a pure function of its inputs.
func BuildStatus(catalog *Catalog, applied map[string]struct{}) *Status {
	s := &Status{Entries: make([]StatusEntry, 0, catalog.Len())}
	for _, f := range catalog.Files() {
		_, ok := applied[f.Name]
		s.Entries = append(s.Entries, StatusEntry{File: f, Applied: ok})
	}

	return s
}

// Render writes the status as a line-oriented report: one line per migration
// in catalog order, prefixed with a completion marker, or a sentinel line
// when the catalog is empty.
func (s *Status) Render(w io.Writer) error {
	if len(s.Entries) == 0 {
		if _, err := fmt.Fprintln(w, "no migrations found"); err != nil {
			return fmt.Errorf("failed writing status report: %w", err)
		}
		return nil
	}

	for _, entry := range s.Entries {
		marker := "[ ]"
		if entry.Applied {
			marker = "[x]"
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", marker, entry.File.FileName); err != nil {
			return fmt.Errorf("failed writing status report: %w", err)
		}
	}

	return nil
}

// Summary aggregates the status into applied/pending counts.
func (s *Status) Summary() Summary {
	sum := Summary{Total: len(s.Entries)}
	for _, entry := range s.Entries {
		if entry.Applied {
			sum.Applied++
		} else {
			sum.Pending++
		}
	}
	sum.UpToDate = sum.Pending == 0

	return sum
}
