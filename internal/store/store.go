// Package store provides the SQL-backed persistence for journal entries.
// SQLite is the default dialect; PostgreSQL is supported for hosted setups.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect names a supported SQL backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Options configures how the store connects.
type Options struct {
	Dialect Dialect
	// DSN is a file path for SQLite or a connection URL for PostgreSQL.
	DSN string
}

// Store wraps a sql.DB with entry-specific operations.
type Store struct {
	conn    *sql.DB
	dialect Dialect
}

// New wraps an already opened connection. Migrations are not applied.
func New(conn *sql.DB, dialect Dialect) *Store {
	return &Store{conn: conn, dialect: dialect}
}

// Open connects to the configured database and applies pending migrations.
func Open(ctx context.Context, opts Options) (*Store, error) {
	var (
		conn *sql.DB
		err  error
	)
	switch opts.Dialect {
	case DialectSQLite, "":
		opts.Dialect = DialectSQLite
		conn, err = sql.Open("sqlite3", sqliteDSN(opts.DSN))
	case DialectPostgres:
		conn, err = sql.Open("pgx", opts.DSN)
	default:
		return nil, fmt.Errorf("store: unsupported dialect %q", opts.Dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	s := New(conn, opts.Dialect)
	if err := s.Migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Dialect reports the backend in use.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func sqliteDSN(path string) string {
	params := url.Values{}
	params.Add("_journal_mode", "WAL")
	params.Add("_busy_timeout", "5000")
	if strings.Contains(path, "?") {
		return path + "&" + params.Encode()
	}
	return path + "?" + params.Encode()
}

// rebind rewrites ? placeholders into the form the dialect expects.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
