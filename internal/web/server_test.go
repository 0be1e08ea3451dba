package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/starford/learnings/internal/client"
	"github.com/starford/learnings/internal/journal"
	"github.com/starford/learnings/internal/store"
	"github.com/starford/learnings/internal/testutil"
)

func testUI(t *testing.T) (*store.Store, http.Handler) {
	t.Helper()
	s := testutil.TestStore(t)
	srv, err := NewServer(client.Local(journal.NewService(s, nil)), Options{Location: time.UTC})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s, srv.Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func postForm(t *testing.T, h http.Handler, target, content string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"content": {content}}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestIndex_EmptyPlaceholder(t *testing.T) {
	_, h := testUI(t)
	w := get(t, h, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		"What Did You Learn?",
		"No entries yet. Add your first learning below!",
		"What did you learn today?",
		`data-theme="system"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, "Edit Learning") {
		t.Error("drawer rendered without selection")
	}
}

func TestCompose_CreatesAndRedirects(t *testing.T) {
	s, h := testUI(t)

	w := postForm(t, h, "/compose", "Learned about trees")
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Fatalf("status = %d, location = %q", w.Code, w.Header().Get("Location"))
	}

	entries, err := s.ListEntries(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Content != "Learned about trees" {
		t.Fatalf("entries = %+v", entries)
	}

	body := get(t, h, "/").Body.String()
	if !strings.Contains(body, "Learned about trees") {
		t.Error("list missing new entry")
	}
	if !strings.Contains(body, FormatDate(entries[0].CreatedAt, time.UTC)) {
		t.Error("list missing formatted date")
	}
}

func TestCompose_TrimsContent(t *testing.T) {
	s, h := testUI(t)
	postForm(t, h, "/compose", "\n  spaced out  \n")

	entries, _ := s.ListEntries(context.Background())
	if len(entries) != 1 || entries[0].Content != "spaced out" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestCompose_WhitespaceCreatesNothing(t *testing.T) {
	s, h := testUI(t)
	w := postForm(t, h, "/compose", "   ")
	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d", w.Code)
	}
	entries, _ := s.ListEntries(context.Background())
	if len(entries) != 0 {
		t.Errorf("entries = %+v, want none", entries)
	}
}

// failingCreates delegates to a real backend but rejects every create.
type failingCreates struct {
	client.Backend
}

func (failingCreates) CreateEntry(context.Context, string) error {
	return errors.New("store unreachable")
}

func TestCompose_FailurePreservesText(t *testing.T) {
	s := testutil.TestStore(t)
	srv, err := NewServer(failingCreates{client.Local(journal.NewService(s, nil))}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	h := srv.Handler()

	w := postForm(t, h, "/compose", "keep <this> text")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "keep &lt;this&gt; text</textarea>") {
		t.Errorf("composer text not preserved:\n%s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "No entries yet.") {
		t.Error("expected empty list after failed create")
	}
}

func TestIndex_EditOpensDrawer(t *testing.T) {
	s, h := testUI(t)
	e, _ := s.CreateEntry(context.Background(), "old text")

	w := get(t, h, "/?edit="+strconv.FormatInt(e.ID, 10))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Edit Learning") {
		t.Fatal("drawer not open")
	}
	if !strings.Contains(body, `action="/entries/`+strconv.FormatInt(e.ID, 10)+`/edit"`) {
		t.Error("drawer form targets wrong entry")
	}
	if !strings.Contains(body, "old text</textarea>") {
		t.Error("drawer not pre-filled")
	}

	if w := get(t, h, "/?edit=999"); w.Code != http.StatusNotFound {
		t.Errorf("unknown edit id status = %d, want 404", w.Code)
	}
}

func TestEdit_SaveKeepsIDAndDate(t *testing.T) {
	s, h := testUI(t)
	orig, _ := s.CreateEntry(context.Background(), "old text")

	w := postForm(t, h, "/entries/"+strconv.FormatInt(orig.ID, 10)+"/edit", "  new text ")
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	got, err := s.GetEntry(context.Background(), orig.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "new text" || !got.CreatedAt.Equal(orig.CreatedAt) {
		t.Errorf("entry = %+v, orig = %+v", got, orig)
	}
}

func TestEdit_EmptyBufferKeepsDrawerOpen(t *testing.T) {
	s, h := testUI(t)
	orig, _ := s.CreateEntry(context.Background(), "untouched")

	w := postForm(t, h, "/entries/"+strconv.FormatInt(orig.ID, 10)+"/edit", " \t ")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Edit Learning") {
		t.Error("drawer closed on empty save")
	}
	got, _ := s.GetEntry(context.Background(), orig.ID)
	if got.Content != "untouched" {
		t.Errorf("content = %q", got.Content)
	}
}

func TestEdit_UnknownEntry(t *testing.T) {
	_, h := testUI(t)
	if w := postForm(t, h, "/entries/42/edit", "x"); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if w := postForm(t, h, "/entries/abc/edit", "x"); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestShellAssets(t *testing.T) {
	_, h := testUI(t)

	w := get(t, h, "/manifest.webmanifest")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"display": "standalone"`) {
		t.Fatalf("manifest: %d %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/manifest+json" {
		t.Errorf("manifest content-type = %q", ct)
	}

	w = get(t, h, "/sw.js")
	if w.Code != http.StatusOK || strings.Contains(w.Body.String(), "{{VERSION}}") {
		t.Errorf("service worker not versioned: %d", w.Code)
	}

	w = get(t, h, "/static/app.css")
	etag := w.Header().Get("ETag")
	if w.Code != http.StatusOK || etag == "" {
		t.Fatalf("css: %d etag=%q", w.Code, etag)
	}
	req := httptest.NewRequest(http.MethodGet, "/static/app.css", nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified {
		t.Errorf("conditional get = %d, want 304", rec.Code)
	}

	if w := get(t, h, "/static/missing.js"); w.Code != http.StatusNotFound {
		t.Errorf("missing asset = %d", w.Code)
	}
}

func TestThemeRendered(t *testing.T) {
	s := testutil.TestStore(t)
	srv, err := NewServer(client.Local(journal.NewService(s, nil)), Options{Theme: ThemeDark})
	if err != nil {
		t.Fatal(err)
	}
	if body := get(t, srv.Handler(), "/").Body.String(); !strings.Contains(body, `data-theme="dark"`) {
		t.Error("dark theme not applied")
	}
}

func TestParseTheme(t *testing.T) {
	for in, want := range map[string]Theme{"": ThemeSystem, "system": ThemeSystem, "light": ThemeLight, "dark": ThemeDark} {
		got, err := ParseTheme(in)
		if err != nil || got != want {
			t.Errorf("ParseTheme(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseTheme("neon"); err == nil {
		t.Error("expected error for unknown theme")
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2025, time.March, 1, 21, 5, 0, 0, time.UTC)
	if got := FormatDate(ts, time.UTC); got != "March 1, 2025 at 09:05 PM" {
		t.Errorf("FormatDate = %q", got)
	}
}
