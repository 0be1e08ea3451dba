package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/learnings/internal/models"
)

// CreateEntryRequest is the body of POST /api/entries.
// Content is stored as sent; the client trims before submitting.
type CreateEntryRequest struct {
	Content string `json:"content"`
}

// Validate checks the request shape.
func (r CreateEntryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required),
	)
}

// UpdateEntryRequest is the body of POST /api/entries/update.
type UpdateEntryRequest struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

// Validate checks the request shape.
func (r UpdateEntryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Content, validation.Required),
	)
}

// Entry is a list item in the API response.
type Entry = models.Entry

// SuccessResponse acknowledges a create or update.
type SuccessResponse struct {
	Success bool `json:"success"`
}
