package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/learnings/internal/apperr"
	"github.com/starford/learnings/internal/models"
)

// EntryService is the domain contract the handlers depend on.
type EntryService interface {
	ListEntries(ctx context.Context) ([]models.Entry, error)
	CreateEntry(ctx context.Context, content string) (models.Entry, error)
	UpdateEntry(ctx context.Context, id int64, content string) (models.Entry, error)
}

// Handler holds API route handlers.
type Handler struct {
	svc EntryService
}

// NewHandler creates a new Handler.
func NewHandler(svc EntryService) *Handler {
	return &Handler{svc: svc}
}

// ListEntries handles GET /api/entries.
//
//	@Summary	List every entry, newest first
//	@Tags		entries
//	@Produce	json
//	@Success	200	{array}	Entry
//	@Router		/entries [get]
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListEntries(r.Context())
	if err != nil {
		slog.Error("list entries failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// CreateEntry handles POST /api/entries.
//
//	@Summary	Create an entry
//	@Tags		entries
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreateEntryRequest	true	"Entry to create"
//	@Success	201		{object}	SuccessResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/entries [post]
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.svc.CreateEntry(r.Context(), req.Content); err != nil {
		slog.Error("create entry failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, SuccessResponse{Success: true})
}

// UpdateEntry handles POST /api/entries/update.
//
//	@Summary	Replace the content of an entry
//	@Tags		entries
//	@Accept		json
//	@Produce	json
//	@Param		body	body		UpdateEntryRequest	true	"Entry id and new content"
//	@Success	200		{object}	SuccessResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/entries/update [post]
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	var req UpdateEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	h.update(w, r, req)
}

// ReplaceEntry handles PUT /api/entries/{id}.
//
//	@Summary	Replace the content of an entry
//	@Tags		entries
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int					true	"Entry id"
//	@Param		body	body		CreateEntryRequest	true	"New content"
//	@Success	200		{object}	SuccessResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/entries/{id} [put]
func (h *Handler) ReplaceEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	var body CreateEntryRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	h.update(w, r, UpdateEntryRequest{ID: id, Content: body.Content})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, req UpdateEntryRequest) {
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.svc.UpdateEntry(r.Context(), req.ID, req.Content); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		slog.Error("update entry failed", slog.Int64("id", req.ID), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
