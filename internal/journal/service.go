// Package journal is the domain layer between transports and the store.
package journal

import (
	"context"
	"log/slog"

	"github.com/starford/learnings/internal/models"
)

// Event kinds passed to a Notifier.
const (
	EventCreated = "created"
	EventUpdated = "updated"
)

// Repository is the persistence contract the service depends on.
type Repository interface {
	ListEntries(ctx context.Context) ([]models.Entry, error)
	GetEntry(ctx context.Context, id int64) (models.Entry, error)
	CreateEntry(ctx context.Context, content string) (models.Entry, error)
	UpdateEntry(ctx context.Context, id int64, content string) (models.Entry, error)
}

// Notifier receives a callback after every successful mutation.
type Notifier interface {
	PublishEntryEvent(kind string, id int64)
}

// Service is a thin pass-through to the repository that also fans out
// change notifications.
type Service struct {
	repo     Repository
	notifier Notifier
}

// NewService creates a journal service. notifier may be nil.
func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// ListEntries returns every entry, newest first.
func (s *Service) ListEntries(ctx context.Context) ([]models.Entry, error) {
	return s.repo.ListEntries(ctx)
}

// GetEntry returns a single entry or apperr.ErrNotFound.
func (s *Service) GetEntry(ctx context.Context, id int64) (models.Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

// CreateEntry stores content verbatim. Trimming is the caller's job.
func (s *Service) CreateEntry(ctx context.Context, content string) (models.Entry, error) {
	e, err := s.repo.CreateEntry(ctx, content)
	if err != nil {
		return models.Entry{}, err
	}
	slog.DebugContext(ctx, "journal: entry created", slog.Int64("id", e.ID))
	s.notify(EventCreated, e.ID)
	return e, nil
}

// UpdateEntry replaces the content of an existing entry.
func (s *Service) UpdateEntry(ctx context.Context, id int64, content string) (models.Entry, error) {
	e, err := s.repo.UpdateEntry(ctx, id, content)
	if err != nil {
		return models.Entry{}, err
	}
	slog.DebugContext(ctx, "journal: entry updated", slog.Int64("id", e.ID))
	s.notify(EventUpdated, e.ID)
	return e, nil
}

func (s *Service) notify(kind string, id int64) {
	if s.notifier != nil {
		s.notifier.PublishEntryEvent(kind, id)
	}
}
