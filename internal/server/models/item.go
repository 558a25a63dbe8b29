package models

import "time"

// Item is a user-owned content record. Data is the canonical payload: a JSON
// object of arbitrary string keys, including the optional "content" (raw
// problem text) and "ai_fix" (generated plan) entries.
type Item struct {
	ID        string
	UserID    string
	Title     string
	Data      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
