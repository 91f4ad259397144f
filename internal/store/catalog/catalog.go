// Package catalog caches task catalog snapshots per month so commands that
// reference tasks work without contacting the backend again.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marcelomcd/apontador/internal/core/kv"
	"github.com/marcelomcd/apontador/internal/core/task"
)

const namespace = "catalog"

// ErrNotFound is returned when no snapshot was cached for a month.
var ErrNotFound = errors.New("no task catalog cached for this month")

// Cache stores one catalog snapshot per month and year.
type Cache struct {
	store *kv.TypedKV[task.Catalog]
}

// New returns a Cache on top of the given KV.
func New(store kv.KV) *Cache {
	return &Cache{store: kv.Scoped[task.Catalog](store, namespace)}
}

// Key returns the cache key of a month, e.g. "2024-02".
func Key(month, year int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// Get returns the snapshot cached for month/year.
func (c *Cache) Get(ctx context.Context, month, year int) (task.Catalog, error) {
	snap, err := c.store.Get(ctx, Key(month, year))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return task.Catalog{}, ErrNotFound
		}
		return task.Catalog{}, fmt.Errorf("read catalog %s: %w", Key(month, year), err)
	}
	return snap, nil
}

// Put replaces the snapshot for the catalog's month.
func (c *Cache) Put(ctx context.Context, snap task.Catalog) error {
	if err := c.store.Set(ctx, Key(snap.Month, snap.Year), snap); err != nil {
		return fmt.Errorf("write catalog %s: %w", Key(snap.Month, snap.Year), err)
	}
	return nil
}

// Months lists the cached months, oldest first.
func (c *Cache) Months(ctx context.Context) ([]string, error) {
	return c.store.Keys(ctx)
}

// Age returns how long ago the snapshot for month/year was loaded.
func (c *Cache) Age(ctx context.Context, month, year int, now time.Time) (time.Duration, error) {
	snap, err := c.Get(ctx, month, year)
	if err != nil {
		return 0, err
	}
	return now.Sub(snap.LoadedAt), nil
}
