package client

import (
	"context"
	"sync"

	"github.com/starford/learnings/internal/models"
)

// Feed is the list view's data: the last full snapshot of entries.
// Reload always replaces the snapshot wholesale.
type Feed struct {
	backend Backend

	mu      sync.RWMutex
	entries []models.Entry
	loaded  bool
}

// NewFeed creates an empty, not yet loaded feed.
func NewFeed(backend Backend) *Feed {
	return &Feed{backend: backend}
}

// Reload fetches the full entry list. On error the previous snapshot is kept.
func (f *Feed) Reload(ctx context.Context) error {
	entries, err := f.backend.ListEntries(ctx)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.entries = entries
	f.loaded = true
	f.mu.Unlock()
	return nil
}

// Entries returns a copy of the current snapshot.
func (f *Feed) Entries() []models.Entry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

// Loaded reports whether at least one Reload succeeded.
func (f *Feed) Loaded() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loaded
}

// Find returns the entry with the given id from the snapshot.
func (f *Feed) Find(id int64) (models.Entry, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, e := range f.entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.Entry{}, false
}
