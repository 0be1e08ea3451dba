package client

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/starford/learnings/internal/apperr"
)

// ComposerState is the composer's submission state.
type ComposerState int

const (
	ComposerIdle ComposerState = iota
	ComposerSubmitting
)

func (s ComposerState) String() string {
	if s == ComposerSubmitting {
		return "submitting"
	}
	return "idle"
}

// Composer is the always-visible input for new entries.
//
// It moves idle -> submitting -> idle. Text is trimmed before submission;
// whitespace-only text never reaches the backend. After a successful create
// the text is cleared and the feed fully reloaded; after a failure the text
// is kept and the error is logged.
type Composer struct {
	backend Backend
	feed    *Feed
	logger  *slog.Logger

	mu    sync.Mutex
	text  string
	state ComposerState
}

// NewComposer creates an idle composer. logger may be nil.
func NewComposer(backend Backend, feed *Feed, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{backend: backend, feed: feed, logger: logger}
}

// SetText replaces the composer text. It is ignored while a submission is
// in flight, mirroring a disabled textarea, and reports whether it applied.
func (c *Composer) SetText(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == ComposerSubmitting {
		return false
	}
	c.text = text
	return true
}

// Text returns the current, untrimmed text.
func (c *Composer) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// State returns the current state.
func (c *Composer) State() ComposerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CanSubmit reports whether Submit would reach the backend.
func (c *Composer) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == ComposerIdle && strings.TrimSpace(c.text) != ""
}

// Submit creates an entry from the trimmed text.
//
// It returns apperr.ErrEmptyContent or apperr.ErrInFlight without calling
// the backend when the guard fails, and the backend error when the create
// fails. A failed reload after a successful create is only logged.
func (c *Composer) Submit(ctx context.Context) error {
	c.mu.Lock()
	content := strings.TrimSpace(c.text)
	if content == "" {
		c.mu.Unlock()
		return apperr.ErrEmptyContent
	}
	if c.state == ComposerSubmitting {
		c.mu.Unlock()
		return apperr.ErrInFlight
	}
	c.state = ComposerSubmitting
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.state = ComposerIdle
		c.mu.Unlock()
	}()

	if err := c.backend.CreateEntry(ctx, content); err != nil {
		c.logger.ErrorContext(ctx, "failed to create learning", slog.String("error", err.Error()))
		return err
	}

	c.mu.Lock()
	c.text = ""
	c.mu.Unlock()

	if c.feed != nil {
		if err := c.feed.Reload(ctx); err != nil {
			c.logger.WarnContext(ctx, "reload after create failed", slog.String("error", err.Error()))
		}
	}
	return nil
}
