package config

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

// Default values applied when neither CLI flags, environment variables nor
// the configuration file set them.
const (
	DefaultDir   = "migrations"
	DefaultTable = "automigrate_migrations"
)

// Config represents the application configuration, backed by a filesystem for
// persistence.
type Config struct {
	Database   Database
	Migrations Migrations

	fs   vfs.FileSystem
	path string
}

// New creates a new Config instance with the specified filesystem and
// configuration file path.
func New(fs vfs.FileSystem, path string) *Config {
	return &Config{fs: fs, path: path}
}

// Database defines database-specific configuration options.
type Database struct {
	// URL is the database connection descriptor. Either a 'postgres://' URL,
	// or a SQLite path or URI.
	URL sql.Null[string] `json:"url"`
}

// Migrations defines migration-specific configuration options.
type Migrations struct {
	// Dir is the path of the directory containing the migration files.
	Dir sql.Null[string] `json:"dir"`
	// Table is the name of the table migration records are stored in.
	Table sql.Null[string] `json:"table"`
}

// Exists reports whether the configuration file exists on the filesystem.
func (c *Config) Exists() (bool, error) {
	ok, err := vfs.FileExists(c.fs, c.path)
	if err != nil {
		return false, fmt.Errorf("failed checking configuration file: %w", err)
	}

	return ok, nil
}

// Load reads and parses the configuration file from the filesystem.
// If the file doesn't exist, it initializes with an empty configuration.
func (c *Config) Load() error {
	configJSON, err := vfs.ReadFile(c.fs, c.path)
	if err != nil && !vfs.IsErrNotExist(err) {
		return fmt.Errorf("failed reading configuration file: %w", err)
	}

	// Ensure that unmarshalling JSON doesn't fail if the file doesn't exist or is empty.
	if len(configJSON) == 0 {
		configJSON = []byte("{}")
	}

	if err = json.Unmarshal(configJSON, c); err != nil {
		return fmt.Errorf("failed parsing configuration file: %w", err)
	}

	return nil
}

// Path returns the filesystem path where the configuration is stored.
func (c *Config) Path() string {
	return c.path
}

// Save writes the current configuration to the filesystem as JSON.
func (c *Config) Save() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed creating configuration directory: %w", err)
	}
	configJSON, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed serializing configuration data: %w", err)
	}
	if err = vfs.WriteFile(c.fs, c.path, configJSON, 0o644); err != nil {
		return fmt.Errorf("failed writing configuration file: %w", err)
	}

	return nil
}

// SetDefaults sets default configuration values if they weren't set already.
func (c *Config) SetDefaults() {
	if !c.Migrations.Dir.Valid {
		c.Migrations.Dir = sql.Null[string]{V: DefaultDir, Valid: true}
	}
	if !c.Migrations.Table.Valid {
		c.Migrations.Table = sql.Null[string]{V: DefaultTable, Valid: true}
	}
}

type cfgWrapper struct {
	Database   dbCfgWrapper  `json:"database"`
	Migrations migCfgWrapper `json:"migrations"`
}
type dbCfgWrapper struct {
	URL string `json:"url,omitempty"`
}
type migCfgWrapper struct {
	Dir   string `json:"dir,omitempty"`
	Table string `json:"table,omitempty"`
}

// MarshalJSON implements custom JSON marshaling to convert sql.Null values
// to their underlying types, omitting invalid/null fields from the output.
func (c Config) MarshalJSON() ([]byte, error) {
	w := cfgWrapper{}

	if c.Database.URL.Valid {
		w.Database.URL = c.Database.URL.V
	}
	if c.Migrations.Dir.Valid {
		w.Migrations.Dir = c.Migrations.Dir.V
	}
	if c.Migrations.Table.Valid {
		w.Migrations.Table = c.Migrations.Table.V
	}

	//nolint:wrapcheck // This is fine.
	return json.Marshal(w)
}

// UnmarshalJSON implements custom JSON unmarshaling to convert plain values
// into sql.Null types.
func (c *Config) UnmarshalJSON(data []byte) error {
	var w cfgWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		//nolint:wrapcheck // This is fine.
		return err
	}

	if w.Database.URL != "" {
		c.Database.URL = sql.Null[string]{V: w.Database.URL, Valid: true}
	}
	if w.Migrations.Dir != "" {
		c.Migrations.Dir = sql.Null[string]{V: w.Migrations.Dir, Valid: true}
	}
	if w.Migrations.Table != "" {
		c.Migrations.Table = sql.Null[string]{V: w.Migrations.Table, Valid: true}
	}

	return nil
}
