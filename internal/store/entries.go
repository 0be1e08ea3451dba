package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/learnings/internal/apperr"
	"github.com/starford/learnings/internal/models"
)

const (
	listEntriesQuery = `
		SELECT id, content, created_at
		FROM learnings
		ORDER BY created_at DESC, id DESC
	`

	getEntryQuery = `
		SELECT id, content, created_at
		FROM learnings
		WHERE id = ?
	`

	insertEntryQuery = `
		INSERT INTO learnings (content, created_at)
		VALUES (?, ?)
		RETURNING id
	`

	updateEntryQuery = `
		UPDATE learnings
		SET content = ?
		WHERE id = ?
	`
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ListEntries returns every entry, newest first.
func (s *Store) ListEntries(ctx context.Context) ([]models.Entry, error) {
	rows, err := s.conn.QueryContext(ctx, s.rebind(listEntriesQuery))
	if err != nil {
		return nil, fmt.Errorf("store: list entries: %w", err)
	}
	defer rows.Close()

	out := []models.Entry{}
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.Content, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan entry: %w", err)
		}
		e.CreatedAt = e.CreatedAt.UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list entries: %w", err)
	}
	return out, nil
}

// GetEntry returns the entry with the given id or apperr.ErrNotFound.
func (s *Store) GetEntry(ctx context.Context, id int64) (models.Entry, error) {
	return s.getEntry(ctx, s.conn, id)
}

// CreateEntry inserts content stamped with the current time.
// Content is stored as given; callers trim and validate it.
func (s *Store) CreateEntry(ctx context.Context, content string) (models.Entry, error) {
	e := models.Entry{
		Content:   content,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	err := s.conn.QueryRowContext(ctx, s.rebind(insertEntryQuery), e.Content, e.CreatedAt).Scan(&e.ID)
	if err != nil {
		return models.Entry{}, fmt.Errorf("store: create entry: %w", err)
	}
	return e, nil
}

// UpdateEntry replaces the content of entry id. CreatedAt is left untouched.
// It returns apperr.ErrNotFound when no row matches.
func (s *Store) UpdateEntry(ctx context.Context, id int64, content string) (models.Entry, error) {
	var out models.Entry
	err := s.withTx(ctx, func(ctx context.Context, tx queryer) error {
		res, err := tx.ExecContext(ctx, s.rebind(updateEntryQuery), content, id)
		if err != nil {
			return fmt.Errorf("store: update entry: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("store: rows affected: %w", err)
		}
		if n == 0 {
			return apperr.ErrNotFound
		}
		out, err = s.getEntry(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Entry{}, err
	}
	return out, nil
}

func (s *Store) getEntry(ctx context.Context, q queryer, id int64) (models.Entry, error) {
	var e models.Entry
	err := q.QueryRowContext(ctx, s.rebind(getEntryQuery), id).Scan(&e.ID, &e.Content, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Entry{}, apperr.ErrNotFound
		}
		return models.Entry{}, fmt.Errorf("store: get entry: %w", err)
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on error or panic.
func (s *Store) withTx(ctx context.Context, fn func(ctx context.Context, tx queryer) error) (err error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()
	return fn(ctx, tx)
}
