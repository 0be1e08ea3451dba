// Package apperr holds the sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrEmptyContent = errors.New("content is empty")
	ErrInFlight     = errors.New("request already in flight")
	ErrNotOpen      = errors.New("edit surface is not open")
)
