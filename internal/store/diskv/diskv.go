// Package diskv implements kv.KV on a directory tree managed by diskv.
// A key "ns:name" is stored as the file <base>/ns/name.
package diskv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/marcelomcd/apontador/internal/core/kv"
	"github.com/peterbourgon/diskv/v3"
)

const cacheSizeMax = 1024 * 1024 // 1MB

// Store is a disk backed kv.KV.
type Store struct {
	d *diskv.Diskv
}

var _ kv.KV = (*Store)(nil)

// New opens a store rooted at basePath.
func New(basePath string) *Store {
	return &Store{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPath,
		InverseTransform:  pathToKey,
		CacheSizeMax:      cacheSizeMax,
	})}
}

func (s *Store) Get(ctx context.Context, key string, dest any) error {
	data, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return kv.ErrNotFound
		}
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.d.Write(key, data)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.d.Erase(key)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	return s.d.Has(key), nil
}

func (s *Store) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	for key := range s.d.Keys(ctx.Done()) {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slices.Sort(keys)
	return keys, nil
}

func keyToPath(key string) *diskv.PathKey {
	ns, name, ok := strings.Cut(key, ":")
	if !ok {
		return &diskv.PathKey{FileName: key}
	}
	return &diskv.PathKey{
		Path:     []string{ns},
		FileName: name,
	}
}

func pathToKey(pk *diskv.PathKey) string {
	if len(pk.Path) == 0 {
		return pk.FileName
	}
	return strings.Join(pk.Path, ":") + ":" + pk.FileName
}
