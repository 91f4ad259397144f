package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/marcelomcd/apontador/internal/core/kv"
	"github.com/marcelomcd/apontador/internal/core/task"
	"github.com/marcelomcd/apontador/internal/store/diskv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "2024-02", Key(2, 2024))
	assert.Equal(t, "2025-12", Key(12, 2025))
}

func TestCache(t *testing.T) {
	backends := map[string]func(t *testing.T) kv.KV{
		"memory": func(t *testing.T) kv.KV { return kv.NewMemory() },
		"diskv":  func(t *testing.T) kv.KV { return diskv.New(t.TempDir()) },
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			cache := New(open(t))
			loaded := time.Date(2024, 2, 5, 10, 0, 0, 0, time.UTC)

			_, err := cache.Get(ctx, 2, 2024)
			require.ErrorIs(t, err, ErrNotFound)

			snap := task.NewCatalog(2, 2024, []task.Task{
				{Client: "Acme", Project: "Portal", Name: "Dev", Balance: "10,0"},
				{Client: "Acme", Project: "Portal", Name: "QA", Balance: "0"},
			}, loaded)
			require.NoError(t, cache.Put(ctx, snap))
			require.NoError(t, cache.Put(ctx, task.NewCatalog(1, 2024, nil, loaded)))

			got, err := cache.Get(ctx, 2, 2024)
			require.NoError(t, err)
			assert.Equal(t, snap.Tasks, got.Tasks)
			assert.True(t, snap.LoadedAt.Equal(got.LoadedAt))

			months, err := cache.Months(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"2024-01", "2024-02"}, months)

			age, err := cache.Age(ctx, 2, 2024, loaded.Add(time.Hour))
			require.NoError(t, err)
			assert.Equal(t, time.Hour, age)
		})
	}
}
