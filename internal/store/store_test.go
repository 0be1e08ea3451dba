package store

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/starford/learnings/internal/apperr"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	f, err := os.CreateTemp("", "learnings-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	s, err := Open(context.Background(), Options{Dialect: DialectSQLite, DSN: f.Name()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSchemaCreation(t *testing.T) {
	s := testStore(t)
	var count int
	if err := s.conn.QueryRow(`SELECT count(*) FROM learnings`).Scan(&count); err != nil {
		t.Fatalf("learnings table missing: %v", err)
	}
	if count != 0 {
		t.Errorf("fresh table has %d rows", count)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := testStore(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestListEntries_Empty(t *testing.T) {
	s := testStore(t)
	entries, err := s.ListEntries(context.Background())
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("entries = %#v, want empty non-nil slice", entries)
	}
}

func TestCreateAndList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	before := time.Now().UTC().Add(-time.Second)
	created, err := s.CreateEntry(ctx, "Learned about trees")
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected store-assigned id")
	}
	if created.CreatedAt.Before(before) {
		t.Errorf("createdAt = %v, want after %v", created.CreatedAt, before)
	}

	entries, err := s.ListEntries(ctx)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len = %d, want 1", len(entries))
	}
	got := entries[0]
	if got.ID != created.ID || got.Content != "Learned about trees" {
		t.Errorf("entry = %+v", got)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("createdAt = %v, want %v", got.CreatedAt, created.CreatedAt)
	}
}

func TestListEntries_NewestFirst(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	for _, c := range []string{"first", "second", "third"} {
		if _, err := s.CreateEntry(ctx, c); err != nil {
			t.Fatalf("CreateEntry(%q): %v", c, err)
		}
	}

	entries, err := s.ListEntries(ctx)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Content)
	}
	if strings.Join(got, ",") != "third,second,first" {
		t.Errorf("order = %v, want newest first", got)
	}
}

func TestUpdateEntry_KeepsIDAndCreatedAt(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	orig, err := s.CreateEntry(ctx, "old text")
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	updated, err := s.UpdateEntry(ctx, orig.ID, "new text")
	if err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}
	if updated.ID != orig.ID {
		t.Errorf("id = %d, want %d", updated.ID, orig.ID)
	}
	if updated.Content != "new text" {
		t.Errorf("content = %q", updated.Content)
	}
	if !updated.CreatedAt.Equal(orig.CreatedAt) {
		t.Errorf("createdAt changed: %v -> %v", orig.CreatedAt, updated.CreatedAt)
	}

	got, err := s.GetEntry(ctx, orig.ID)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if got.Content != "new text" {
		t.Errorf("persisted content = %q", got.Content)
	}
}

func TestUpdateEntry_NotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.UpdateEntry(context.Background(), 999, "nothing here")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetEntry_NotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.GetEntry(context.Background(), 42)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateEntry_ClosedStore(t *testing.T) {
	s := testStore(t)
	s.Close()
	if _, err := s.CreateEntry(context.Background(), "x"); err == nil {
		t.Fatal("expected error on closed store")
	}
}

func TestOpen_UnsupportedDialect(t *testing.T) {
	_, err := Open(context.Background(), Options{Dialect: "oracle", DSN: "x"})
	if err == nil || !strings.Contains(err.Error(), "unsupported dialect") {
		t.Errorf("err = %v", err)
	}
}

func TestRebind(t *testing.T) {
	pg := New(nil, DialectPostgres)
	if got := pg.rebind("UPDATE t SET a = ? WHERE id = ?"); got != "UPDATE t SET a = $1 WHERE id = $2" {
		t.Errorf("postgres rebind = %q", got)
	}
	lite := New(nil, DialectSQLite)
	if got := lite.rebind("SELECT ? "); got != "SELECT ? " {
		t.Errorf("sqlite rebind = %q", got)
	}
}
