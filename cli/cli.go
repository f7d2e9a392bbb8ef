package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"go.hackfix.me/automigrate/app/config"
	actx "go.hackfix.me/automigrate/app/context"
)

// CLI is the command line interface of automigrate.
type CLI struct {
	Init     Init     `kong:"cmd,help='Create the migrations directory and configuration file.'"`
	Create   Create   `kong:"cmd,help='Scaffold a new migration file pair.',aliases='new'"`
	Status   Status   `kong:"cmd,help='Show the applied/pending state of all migrations.'"`
	History  History  `kong:"cmd,help='List applied migrations in order of application.'"`
	Migrate  Migrate  `kong:"cmd,help='Apply or revert migrations to reach a target state.'"`
	Rollback Rollback `kong:"cmd,help='Remove migration records above a target number.'"`
	Validate Validate `kong:"cmd,help='Check that applied migrations form a gapless sequence.'"`

	Log struct {
		Level slog.Level `enum:"DEBUG,INFO,WARN,ERROR" default:"INFO" help:"Set the app logging level."`
	} `embed:"" prefix:"log-"`
	DatabaseURL string `kong:"env='AUTOMIGRATE_DATABASE_URL,DATABASE_URL',help='Database connection URL (postgres:// or a SQLite path).'"`
	Dir         string `kong:"help='Path to the migrations directory (default: ${defaultDir}).'"`
	Table       string `kong:"help='Name of the migration records table (default: ${defaultTable}).'"`
	// NOTE: I'm deliberately not using kong.ConfigFlag or its support for reading
	// values from configuration files, since I want to manage configuration
	// independently from the CLI.
	ConfigFile string           `kong:"default='${configFile}',help='Path to the automigrate configuration file.'"`
	Version    kong.VersionFlag `kong:"help='Output version and exit.'"`

	kong *kong.Kong
	kctx *kong.Context
}

// New initializes the command-line interface.
func New(configFilePath, version string) (*CLI, error) {
	c := &CLI{}
	kparser, err := kong.New(c,
		kong.Name("automigrate"),
		kong.UsageOnError(),
		kong.DefaultEnvars("AUTOMIGRATE"),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"configFile":   configFilePath,
			"defaultDir":   config.DefaultDir,
			"defaultTable": config.DefaultTable,
			"version":      version,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed creating the Kong parser: %w", err)
	}

	c.kong = kparser

	return c, nil
}

// Execute starts the command execution. Parse must be called before this method.
func (c *CLI) Execute(appCtx *actx.Context) error {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	c.kong.Stdout = appCtx.Stdout
	c.kong.Stderr = appCtx.Stderr

	//nolint:wrapcheck // This is fine.
	return c.kctx.Run(appCtx)
}

// Parse the given command line arguments. This method must be called before
// Execute.
func (c *CLI) Parse(args []string) error {
	kctx, err := c.kong.Parse(args)
	if err != nil {
		return fmt.Errorf("failed parsing CLI arguments: %w", err)
	}
	c.kctx = kctx

	return nil
}

// Command returns the full path of the executed command.
func (c *CLI) Command() string {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	cmdPath := []string{}
	for _, p := range c.kctx.Path {
		if p.Command != nil {
			cmdPath = append(cmdPath, p.Command.Name)
		}
	}

	return strings.Join(cmdPath, " ")
}

// ApplyConfig applies configuration values to the CLI, but only if they weren't
// already set.
func (c *CLI) ApplyConfig(cfg *config.Config) {
	if c.DatabaseURL == "" && cfg.Database.URL.Valid {
		c.DatabaseURL = cfg.Database.URL.V
	}
	if c.Dir == "" && cfg.Migrations.Dir.Valid {
		c.Dir = cfg.Migrations.Dir.V
	}
	if c.Table == "" && cfg.Migrations.Table.Valid {
		c.Table = cfg.Migrations.Table.V
	}
}
