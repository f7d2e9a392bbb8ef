package cli

import (
	"errors"
	"fmt"
	"time"

	actx "go.hackfix.me/automigrate/app/context"
	aerrors "go.hackfix.me/automigrate/app/errors"
	mtypes "go.hackfix.me/automigrate/migrator/types"
	"go.hackfix.me/automigrate/xtime"
)

// The History command lists applied migrations in order of application.
type History struct{}

// Run the history command.
func (c *History) Run(appCtx *actx.Context) error {
	m := newMigrator(appCtx)
	records, err := m.History(appCtx.DB.NewContext())
	if err != nil {
		var noTableErr *mtypes.NoMigrationsTableError
		if errors.As(err, &noTableErr) {
			fmt.Fprintln(appCtx.Stdout, "no migrations applied yet")
			return nil
		}
		return aerrors.NewRuntimeError("failed reading migration history", err, "")
	}
	if len(records) == 0 {
		fmt.Fprintln(appCtx.Stdout, "no migrations applied yet")
		return nil
	}

	data := make([][]string, 0, len(records))
	for _, rec := range records {
		age := xtime.FormatDuration(appCtx.TimeNow().UTC().Sub(rec.CreatedAt), time.Second)
		data = append(data, []string{
			rec.Name,
			rec.CreatedAt.UTC().Format(time.RFC3339),
			age,
		})
	}

	err = renderTable([]string{"Name", "Applied At", "Age"}, data, appCtx.Stdout)
	if err != nil {
		return aerrors.NewRuntimeError("failed rendering history table", err, "")
	}

	return nil
}
