// Package client holds the client side of the journal: an HTTP client for
// the JSON API, the entry feed, and the composer and edit-surface state
// machines that drive the UI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/starford/learnings/internal/apperr"
	"github.com/starford/learnings/internal/models"
)

// Backend is what the feed, composer and editor talk to. Both the HTTP
// Client and an in-process service (via Local) satisfy it.
type Backend interface {
	ListEntries(ctx context.Context) ([]models.Entry, error)
	CreateEntry(ctx context.Context, content string) error
	UpdateEntry(ctx context.Context, id int64, content string) error
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Unwrap maps 404 onto apperr.ErrNotFound so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return apperr.ErrNotFound
	}
	return nil
}

// Client calls the JSON API of a running server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a client for the server at baseURL (e.g. http://localhost:8080).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListEntries fetches every entry.
func (c *Client) ListEntries(ctx context.Context) ([]models.Entry, error) {
	var out []models.Entry
	if err := c.do(ctx, http.MethodGet, "/api/entries", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Entry{}
	}
	return out, nil
}

// CreateEntry posts a new entry.
func (c *Client) CreateEntry(ctx context.Context, content string) error {
	return c.do(ctx, http.MethodPost, "/api/entries", map[string]string{"content": content}, nil)
}

// UpdateEntry replaces the content of entry id.
func (c *Client) UpdateEntry(ctx context.Context, id int64, content string) error {
	body := map[string]any{"id": id, "content": content}
	return c.do(ctx, http.MethodPost, "/api/entries/update", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

// EntryService is the in-process domain service shape.
type EntryService interface {
	ListEntries(ctx context.Context) ([]models.Entry, error)
	CreateEntry(ctx context.Context, content string) (models.Entry, error)
	UpdateEntry(ctx context.Context, id int64, content string) (models.Entry, error)
}

// Local adapts an in-process service to Backend.
func Local(svc EntryService) Backend {
	return localBackend{svc: svc}
}

type localBackend struct {
	svc EntryService
}

func (l localBackend) ListEntries(ctx context.Context) ([]models.Entry, error) {
	return l.svc.ListEntries(ctx)
}

func (l localBackend) CreateEntry(ctx context.Context, content string) error {
	_, err := l.svc.CreateEntry(ctx, content)
	return err
}

func (l localBackend) UpdateEntry(ctx context.Context, id int64, content string) error {
	_, err := l.svc.UpdateEntry(ctx, id, content)
	return err
}
