// Package models defines the domain types for the learnings journal.
package models

import "time"

// Entry is a single journaling note.
//
// ID is assigned by the store and never changes. CreatedAt is set once on
// insert; updates only replace Content.
type Entry struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
