package jsonfile

import (
	"context"
	"sync"

	"github.com/marcelomcd/apontador/internal/core/activity"
)

// activityFile is the root JSON structure stored on disk.
type activityFile struct {
	Entries []activity.Entry `json:"entries"`
}

// ActivityStore persists the activity log, oldest entry first.
type ActivityStore struct {
	path string
	mu   sync.RWMutex
}

// NewActivityStore creates an activity store at the given path.
func NewActivityStore(path string) *ActivityStore {
	return &ActivityStore{path: path}
}

// List returns all stored entries in append order.
func (s *ActivityStore) List(ctx context.Context) ([]activity.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var file activityFile
	if _, err := readJSON(s.path, &file); err != nil {
		return nil, err
	}
	return file.Entries, nil
}

// Record appends an entry, dropping the oldest ones beyond maxEntries
// (0 keeps everything).
func (s *ActivityStore) Record(ctx context.Context, e activity.Entry, maxEntries int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var file activityFile
	if _, err := readJSON(s.path, &file); err != nil {
		return err
	}

	file.Entries = append(file.Entries, e)
	if maxEntries > 0 && len(file.Entries) > maxEntries {
		file.Entries = file.Entries[len(file.Entries)-maxEntries:]
	}

	return writeJSON(s.path, file)
}
