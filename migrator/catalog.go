package migrator

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.hackfix.me/automigrate/migrator/types"
)

// fileNameRx is the migration file naming grammar:
// {number}-{slug}.{type}.{direction}.sql
var fileNameRx = regexp.MustCompile(
	`^(\d+)-([a-z0-9][a-z0-9_-]*)\.(schema|data)\.(up|down)\.sql$`)

// Catalog is the full ordered sequence of migration files in a migrations
// directory. It is recomputed from the filesystem on every run and never
// cached across invocations.
type Catalog struct {
	dir   string
	files []*types.MigrationFile
}

// LoadCatalog enumerates the migration files in dir, sorted ascending by
// number. Each '.sql' entry must conform to the naming grammar, and each down
// file must pair with an up file of the same number, slug and type; anything
// else fails with a types.CatalogError. Duplicate ordinals fail with a
// types.DuplicateNumberError. Non-SQL entries and subdirectories are ignored.
func LoadCatalog(fsys vfs.FileSystem, dir string) (*Catalog, error) {
	entries, err := vfs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed reading migrations directory '%s': %w", dir, err)
	}

	var (
		byNumber = map[int]*types.MigrationFile{}
		downs    []parsedName
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		m := fileNameRx.FindStringSubmatch(name)
		if m == nil {
			if isSQLFile(name) {
				return nil, &types.CatalogError{
					File:   name,
					Reason: "name doesn't match '{number}-{slug}.{type}.{up|down}.sql'",
				}
			}
			continue
		}

		p, perr := newParsedName(name, m)
		if perr != nil {
			return nil, perr
		}

		if p.direction == "down" {
			// Pairing is deferred until all up files are known.
			downs = append(downs, p)
			continue
		}

		if dup, ok := byNumber[p.number]; ok {
			return nil, &types.DuplicateNumberError{
				Number: p.number,
				Files:  []string{dup.FileName, name},
			}
		}
		byNumber[p.number] = &types.MigrationFile{
			FileName: name,
			Name:     p.logicalName(),
			Number:   p.number,
			Type:     types.MigrationType(p.mtype),
		}
	}

	for _, p := range downs {
		up, ok := byNumber[p.number]
		if !ok {
			return nil, &types.CatalogError{
				File:   p.fileName,
				Reason: "down file without a matching up file",
			}
		}
		if up.Name != p.logicalName() || up.Type != types.MigrationType(p.mtype) {
			return nil, &types.CatalogError{
				File: p.fileName,
				Reason: fmt.Sprintf(
					"down file doesn't match up file '%s'", up.FileName),
			}
		}
		if up.DownFileName != "" {
			return nil, &types.DuplicateNumberError{
				Number: p.number,
				Files:  []string{up.DownFileName, p.fileName},
			}
		}
		up.DownFileName = p.fileName
	}

	files := make([]*types.MigrationFile, 0, len(byNumber))
	for _, f := range byNumber {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Number < files[j].Number
	})

	return &Catalog{dir: dir, files: files}, nil
}

// Dir returns the directory the catalog was loaded from.
func (c *Catalog) Dir() string {
	return c.dir
}

// Files returns all migration files, sorted ascending by number.
func (c *Catalog) Files() []*types.MigrationFile {
	return c.files
}

// Len returns the number of migrations in the catalog.
func (c *Catalog) Len() int {
	return len(c.files)
}

// LastNumber returns the highest migration number in the catalog, or 0 if the
// catalog is empty.
func (c *Catalog) LastNumber() int {
	if len(c.files) == 0 {
		return 0
	}
	return c.files[len(c.files)-1].Number
}

// NextNumber returns the number the next created migration should use.
func (c *Catalog) NextNumber() int {
	return c.LastNumber() + 1
}

// ContainsNumber reports whether a migration with the given number exists in
// the catalog.
func (c *Catalog) ContainsNumber(n int) bool {
	for _, f := range c.files {
		if f.Number == n {
			return true
		}
	}
	return false
}

type parsedName struct {
	fileName  string
	rawNumber string
	slug      string
	mtype     string
	direction string
	number    int
}

func newParsedName(fileName string, m []string) (parsedName, error) {
	p := parsedName{
		fileName:  fileName,
		rawNumber: m[1],
		slug:      m[2],
		mtype:     m[3],
		direction: m[4],
	}

	number, err := strconv.Atoi(p.rawNumber)
	if err != nil || number < 1 {
		return p, &types.CatalogError{
			File:   fileName,
			Reason: "migration number must be a positive integer",
		}
	}
	p.number = number

	return p, nil
}

// logicalName returns the '{number}-{slug}' record key, preserving any zero
// padding in the on-disk number.
func (p parsedName) logicalName() string {
	return p.rawNumber + "-" + p.slug
}

func isSQLFile(name string) bool {
	return len(name) > 4 && name[len(name)-4:] == ".sql"
}
