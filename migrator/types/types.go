package types

import (
	"context"
	"time"
)

// Direction indicates whether a plan applies pending migrations or reverts
// applied ones.
type Direction string

// Possible migration directions. A plan built from an empty catalog has no
// direction.
const (
	DirectionNone     Direction = ""
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
)

// MigrationType classifies a migration. It is informational only and never
// affects ordering.
type MigrationType string

// Possible migration types.
const (
	TypeSchema MigrationType = "schema"
	TypeData   MigrationType = "data"
)

// MigrationFile is a single migration artifact on disk.
type MigrationFile struct {
	// FileName is the raw on-disk name of the forward (up) file.
	FileName string
	// DownFileName is the raw name of the paired reverse (down) file. It is
	// empty for forward-only migrations.
	DownFileName string
	// Name is the logical migration name, used as the key in the migration
	// records table. It is the '{number}-{slug}' filename prefix exactly as
	// written on disk, including any zero padding.
	Name string
	// Number is the positive integer ordinal of the migration, defining its
	// position in the global apply order. It must be unique within a catalog.
	Number int
	// Type is the migration classification.
	Type MigrationType
}

// MigrationRecord is a row in the migration records table, written when a
// migration is applied.
type MigrationRecord struct {
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// Plan is the ordered, directed list of migrations that must be executed to
// move the database from the Current to the Target ordinal. It is consumed
// once and discarded.
type Plan struct {
	Direction Direction
	// ToMigrate is ordered ascending by number for forward plans, and
	// descending for backward plans.
	ToMigrate []*MigrationFile
	Current   int
	Target    int
}

// Empty reports whether executing the plan would be a no-op.
func (p *Plan) Empty() bool {
	return len(p.ToMigrate) == 0
}

// Executor performs the actual per-migration work against the database. Each
// Apply and Revert call must run in its own transaction, so that a failure
// partway through a plan leaves a well-defined prefix applied.
type Executor interface {
	// EnsureTable creates the migration records table if it doesn't exist.
	EnsureTable(ctx context.Context) error
	// Apply runs the migration's up SQL and inserts its record.
	Apply(ctx context.Context, file *MigrationFile) error
	// Revert runs the migration's down SQL and deletes its record.
	Revert(ctx context.Context, file *MigrationFile) error
	// DeleteRecord removes a migration record without touching the schema.
	DeleteRecord(ctx context.Context, name string) error
}
