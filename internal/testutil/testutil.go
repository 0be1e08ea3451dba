// Package testutil provides shared test helpers for setting up stores.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/starford/learnings/internal/store"
)

// TestStore creates a migrated temporary SQLite store that is cleaned up
// when the test ends.
func TestStore(t *testing.T) *store.Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "learnings-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	s, err := store.Open(context.Background(), store.Options{
		Dialect: store.DialectSQLite,
		DSN:     dbFile.Name(),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// Seed inserts each content string in order and fails the test on error.
func Seed(t *testing.T, s *store.Store, contents ...string) {
	t.Helper()
	for _, c := range contents {
		if _, err := s.CreateEntry(context.Background(), c); err != nil {
			t.Fatalf("seed %q: %v", c, err)
		}
	}
}
