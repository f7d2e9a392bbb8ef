package cli

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/mandelsoft/vfs/pkg/vfs"

	actx "go.hackfix.me/automigrate/app/context"
	aerrors "go.hackfix.me/automigrate/app/errors"
)

var slugRx = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// The Create command scaffolds the next migration file pair in the migrations
// directory.
type Create struct {
	Name string `arg:"" help:"Migration name. Lowercase letters, digits, '-' and '_' only."`
	Type string `enum:"schema,data" default:"schema" help:"Migration type."`
}

// Run the create command.
func (c *Create) Run(appCtx *actx.Context) error {
	if !slugRx.MatchString(c.Name) {
		return aerrors.NewRuntimeError(
			fmt.Sprintf("invalid migration name '%s'", c.Name),
			nil, "use lowercase letters, digits, '-' and '_' only")
	}

	catalog, err := loadCatalog(appCtx)
	if err != nil {
		return aerrors.NewRuntimeError("failed loading migration catalog", err, "")
	}

	prefix := fmt.Sprintf("%04d-%s.%s", catalog.NextNumber(), c.Name, c.Type)
	for _, direction := range []string{"up", "down"} {
		fileName := fmt.Sprintf("%s.%s.sql", prefix, direction)
		path := filepath.Join(appCtx.Settings.Dir, fileName)
		content := fmt.Sprintf("-- %s: add %s statements below.\n", fileName, direction)
		if err = vfs.WriteFile(appCtx.FS, path, []byte(content), 0o644); err != nil {
			return aerrors.NewRuntimeError(
				fmt.Sprintf("failed writing migration file '%s'", fileName), err, "")
		}
		fmt.Fprintf(appCtx.Stdout, "created %s\n", path)
	}

	return nil
}
