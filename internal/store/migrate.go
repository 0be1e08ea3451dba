package store

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrations embed.FS

// Migrate applies all pending schema migrations for the store's dialect.
func (s *Store) Migrate(ctx context.Context) error {
	var (
		dir     string
		dialect goose.Dialect
	)
	switch s.dialect {
	case DialectPostgres:
		dir, dialect = "migrations/postgres", goose.DialectPostgres
	default:
		dir, dialect = "migrations/sqlite", goose.DialectSQLite3
	}

	fsys, err := fs.Sub(migrations, dir)
	if err != nil {
		return fmt.Errorf("store: migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(dialect, s.conn, fsys)
	if err != nil {
		return fmt.Errorf("store: migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("store: migrate up: %w", err)
	}
	for _, r := range results {
		slog.Debug("store: migration applied",
			slog.String("dialect", string(s.dialect)),
			slog.Int64("version", r.Source.Version),
			slog.String("duration", r.Duration.String()))
	}
	return nil
}
