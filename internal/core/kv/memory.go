package kv

import (
	"context"
	"encoding/json"
	"slices"
	"strings"

	"github.com/marcelomcd/apontador/pkg/kv"
)

// Memory is an in-process KV. Values round-trip through JSON so callers
// observe the same copying semantics as a disk backed store.
type Memory struct {
	data *kv.Store[string, []byte]
}

// NewMemory returns an empty in-memory KV.
func NewMemory() *Memory {
	return &Memory{data: kv.New[string, []byte]()}
}

func (m *Memory) Get(ctx context.Context, key string, dest any) error {
	raw, ok := m.data.Get(key)
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(raw, dest)
}

func (m *Memory) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data.Set(key, raw)
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.data.Delete(key)
	return nil
}

func (m *Memory) Has(ctx context.Context, key string) (bool, error) {
	_, ok := m.data.Get(key)
	return ok, nil
}

func (m *Memory) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	keys := m.data.Keys()
	keys = slices.DeleteFunc(keys, func(k string) bool { return !strings.HasPrefix(k, prefix) })
	slices.Sort(keys)
	return keys, nil
}
