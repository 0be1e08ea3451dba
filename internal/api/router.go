package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes.
// events, if non-nil, is mounted at GET /events.
func NewRouter(svc EntryService, events http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(NoStore)

	r.Get("/entries", h.ListEntries)
	r.Post("/entries", h.CreateEntry)
	r.Post("/entries/update", h.UpdateEntry)
	r.Put("/entries/{id}", h.ReplaceEntry)

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r
}
