// Package web serves the single-page journal UI: the entry list, the
// composer and the edit drawer, rendered on the server.
package web

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/learnings/internal/apperr"
	"github.com/starford/learnings/internal/client"
	"github.com/starford/learnings/internal/models"
)

// DateLayout renders entry dates like "March 1, 2025 at 09:30 AM".
const DateLayout = "January 2, 2006 at 03:04 PM"

// Options configures the UI.
type Options struct {
	Title    string
	Theme    Theme
	Location *time.Location
	Logger   *slog.Logger
}

// Server renders pages against a client.Backend.
type Server struct {
	backend client.Backend
	opts    Options
	tmpl    *template.Template
	shell   *shell
}

// NewServer parses the page template and prepares the static shell.
func NewServer(backend client.Backend, opts Options) (*Server, error) {
	if opts.Title == "" {
		opts.Title = "What Did You Learn?"
	}
	if opts.Theme == "" {
		opts.Theme = ThemeSystem
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	tmpl, err := template.ParseFS(assetFS, "assets/index.html")
	if err != nil {
		return nil, fmt.Errorf("web: parse template: %w", err)
	}
	sh, err := loadShell(opts.Title)
	if err != nil {
		return nil, err
	}

	return &Server{backend: backend, opts: opts, tmpl: tmpl, shell: sh}, nil
}

// Handler returns the UI routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(securityHeaders)

	r.Get("/", s.handleIndex)
	r.Post("/compose", s.handleCompose)
	r.Post("/entries/{id}/edit", s.handleEdit)

	r.Get("/manifest.webmanifest", s.shell.manifest.ServeHTTP)
	r.Get("/sw.js", s.shell.worker.ServeHTTP)
	r.Get("/static/{name}", func(w http.ResponseWriter, r *http.Request) {
		a, ok := s.shell.static[chi.URLParam(r, "name")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		a.ServeHTTP(w, r)
	})
	return r
}

type entryView struct {
	ID      int64
	Content string
	Date    string
	ISO     string
}

type composerView struct {
	Text      string
	CanSubmit bool
}

type drawerView struct {
	ID      int64
	Buffer  string
	CanSave bool
}

type pageData struct {
	Title        string
	Theme        Theme
	AssetVersion string
	LoadFailed   bool
	Entries      []entryView
	Composer     composerView
	Drawer       *drawerView
}

// page is the per-request view state: one feed, one composer, one editor.
type page struct {
	feed       *client.Feed
	composer   *client.Composer
	editor     *client.Editor
	loadFailed bool
}

func (s *Server) newPage(r *http.Request) *page {
	feed := client.NewFeed(s.backend)
	p := &page{
		feed:     feed,
		composer: client.NewComposer(s.backend, feed, s.opts.Logger),
		editor:   client.NewEditor(s.backend, feed, s.opts.Logger),
	}
	if err := feed.Reload(r.Context()); err != nil {
		s.opts.Logger.ErrorContext(r.Context(), "failed to load learnings", slog.String("error", err.Error()))
		p.loadFailed = true
	}
	return p
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	p := s.newPage(r)
	status := http.StatusOK
	if p.loadFailed {
		status = http.StatusInternalServerError
	}

	if raw := r.URL.Query().Get("edit"); raw != "" && !p.loadFailed {
		id, err := strconv.ParseInt(raw, 10, 64)
		entry, ok := p.feed.Find(id)
		if err != nil || !ok {
			status = http.StatusNotFound
		} else {
			p.editor.Open(entry)
		}
	}
	s.render(w, r, status, p)
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	p := s.newPage(r)
	p.composer.SetText(r.PostFormValue("content"))

	err := p.composer.Submit(r.Context())
	switch {
	case err == nil, errors.Is(err, apperr.ErrEmptyContent):
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		// The composer keeps the typed text; render it back.
		s.render(w, r, http.StatusInternalServerError, p)
	}
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid entry id", http.StatusBadRequest)
		return
	}

	p := s.newPage(r)
	entry, ok := p.feed.Find(id)
	if !ok {
		if p.loadFailed {
			s.render(w, r, http.StatusInternalServerError, p)
			return
		}
		s.render(w, r, http.StatusNotFound, p)
		return
	}
	p.editor.Open(entry)
	p.editor.SetBuffer(r.PostFormValue("content"))

	err = p.editor.Save(r.Context())
	switch {
	case err == nil:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, apperr.ErrEmptyContent):
		s.render(w, r, http.StatusUnprocessableEntity, p)
	case errors.Is(err, apperr.ErrNotFound):
		p.editor.Dismiss()
		s.render(w, r, http.StatusNotFound, p)
	default:
		s.render(w, r, http.StatusInternalServerError, p)
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, p *page) {
	data := pageData{
		Title:        s.opts.Title,
		Theme:        s.opts.Theme,
		AssetVersion: s.shell.version,
		LoadFailed:   p.loadFailed,
		Entries:      s.entryViews(p.feed.Entries()),
		Composer: composerView{
			Text:      p.composer.Text(),
			CanSubmit: p.composer.CanSubmit(),
		},
	}
	if sel, ok := p.editor.Selected(); ok {
		data.Drawer = &drawerView{
			ID:      sel.ID,
			Buffer:  p.editor.Buffer(),
			CanSave: p.editor.CanSave(),
		}
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		s.opts.Logger.ErrorContext(r.Context(), "render page failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) entryViews(entries []models.Entry) []entryView {
	out := make([]entryView, len(entries))
	for i, e := range entries {
		out[i] = entryView{
			ID:      e.ID,
			Content: e.Content,
			Date:    FormatDate(e.CreatedAt, s.opts.Location),
			ISO:     e.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return out
}

// FormatDate renders t in loc using DateLayout.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; base-uri 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}
