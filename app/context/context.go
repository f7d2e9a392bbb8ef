package context

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"

	cfg "go.hackfix.me/automigrate/app/config"
	"go.hackfix.me/automigrate/db"
)

// Context contains common objects used by the application. It is passed around
// the application to avoid direct dependencies on external systems, and make
// testing easier.
type Context struct {
	Ctx     context.Context // global context
	FS      vfs.FileSystem  // filesystem
	Env     Environment     // process environment
	Logger  *slog.Logger    // global logger
	TimeNow func() time.Time
	DB      *db.DB
	Config  *cfg.Config

	// Settings are the fully resolved runtime settings, after merging CLI
	// flags, environment variables, the configuration file and built-in
	// defaults.
	Settings Settings

	// Standard streams
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Metadata
	Version *VersionInfo
}

// Settings are the resolved settings consumed by commands. They are threaded
// through explicitly instead of being read from ambient global state.
type Settings struct {
	DatabaseURL string
	Dir         string
	Table       string
}
