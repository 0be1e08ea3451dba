package client

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/starford/learnings/internal/apperr"
	"github.com/starford/learnings/internal/models"
)

// Editor is the edit surface (drawer) for revising one entry.
//
// It is closed until Open selects an entry, and carries its own saving
// flag independent of the composer. A successful save closes the surface,
// resets the buffer and reloads the feed. Dismiss discards the buffer.
// There is no conflict detection; the last save wins.
type Editor struct {
	backend Backend
	feed    *Feed
	logger  *slog.Logger

	mu       sync.Mutex
	selected *models.Entry
	buffer   string
	saving   bool
}

// NewEditor creates a closed editor. logger may be nil.
func NewEditor(backend Backend, feed *Feed, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{backend: backend, feed: feed, logger: logger}
}

// Open selects e and pre-fills the buffer with its content. It is ignored
// while a save is in flight and reports whether it applied.
func (e *Editor) Open(entry models.Entry) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.saving {
		return false
	}
	e.selected = &entry
	e.buffer = entry.Content
	return true
}

// IsOpen reports whether an entry is selected.
func (e *Editor) IsOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected != nil
}

// Selected returns the entry being edited.
func (e *Editor) Selected() (models.Entry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selected == nil {
		return models.Entry{}, false
	}
	return *e.selected, true
}

// SetBuffer replaces the edit buffer. Ignored while closed or saving.
func (e *Editor) SetBuffer(text string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selected == nil || e.saving {
		return false
	}
	e.buffer = text
	return true
}

// Buffer returns the current, untrimmed edit buffer.
func (e *Editor) Buffer() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffer
}

// Saving reports whether a save is in flight.
func (e *Editor) Saving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// CanSave reports whether Save would reach the backend.
func (e *Editor) CanSave() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected != nil && !e.saving && strings.TrimSpace(e.buffer) != ""
}

// Save writes the trimmed buffer to the selected entry.
//
// Guards: the surface must be open (apperr.ErrNotOpen), the trimmed buffer
// non-empty (apperr.ErrEmptyContent) and no save in flight
// (apperr.ErrInFlight). On backend failure the surface stays open with the
// buffer intact.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.selected == nil {
		e.mu.Unlock()
		return apperr.ErrNotOpen
	}
	content := strings.TrimSpace(e.buffer)
	if content == "" {
		e.mu.Unlock()
		return apperr.ErrEmptyContent
	}
	if e.saving {
		e.mu.Unlock()
		return apperr.ErrInFlight
	}
	e.saving = true
	id := e.selected.ID
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.saving = false
		e.mu.Unlock()
	}()

	if err := e.backend.UpdateEntry(ctx, id, content); err != nil {
		e.logger.ErrorContext(ctx, "failed to update learning",
			slog.Int64("id", id),
			slog.String("error", err.Error()))
		return err
	}

	e.mu.Lock()
	e.selected = nil
	e.buffer = ""
	e.mu.Unlock()

	if e.feed != nil {
		if err := e.feed.Reload(ctx); err != nil {
			e.logger.WarnContext(ctx, "reload after update failed", slog.String("error", err.Error()))
		}
	}
	return nil
}

// Dismiss closes the surface and discards the buffer without saving.
func (e *Editor) Dismiss() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = nil
	e.buffer = ""
}
