package doctor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marcelomcd/apontador/internal/core/task"
	"github.com/marcelomcd/apontador/internal/store/catalog"
)

// CatalogReader reads cached task snapshots.
type CatalogReader interface {
	Get(ctx context.Context, month, year int) (task.Catalog, error)
}

// CatalogCheck reports whether tasks were loaded for the selected month and
// how old the snapshot is.
type CatalogCheck struct {
	reader      CatalogReader
	month, year int
	staleAfter  time.Duration
	now         func() time.Time
}

// NewCatalogCheck creates a new catalog check for month/year.
func NewCatalogCheck(reader CatalogReader, month, year int, staleAfter time.Duration) *CatalogCheck {
	return &CatalogCheck{reader: reader, month: month, year: year, staleAfter: staleAfter, now: time.Now}
}

func (c *CatalogCheck) Name() string {
	return "Task Catalog"
}

func (c *CatalogCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}
	label := fmt.Sprintf("%02d/%d", c.month, c.year)

	snap, err := c.reader.Get(ctx, c.month, c.year)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		result.Items = append(result.Items, item(label, StatusWarn, "no tasks loaded, run 'apontador tasks load'"))
		return result
	case err != nil:
		result.Items = append(result.Items, item(label, StatusFail, err.Error()))
		return result
	}

	selectable := len(snap.Selectable())
	detail := fmt.Sprintf("%d tasks, %d with balance", snap.Len(), selectable)
	switch {
	case snap.Empty():
		result.Items = append(result.Items, item(label, StatusWarn, "catalog is empty"))
	case selectable == 0:
		result.Items = append(result.Items, item(label, StatusWarn, detail))
	default:
		result.Items = append(result.Items, item(label, StatusPass, detail))
	}

	age := c.now().Sub(snap.LoadedAt)
	if c.staleAfter > 0 && age > c.staleAfter {
		result.Items = append(result.Items, item("age", StatusWarn,
			fmt.Sprintf("loaded %s ago, balances may have changed", age.Round(time.Minute))))
	} else {
		result.Items = append(result.Items, item("age", StatusPass, "loaded "+snap.LoadedAt.Format(time.DateTime)))
	}

	return result
}
