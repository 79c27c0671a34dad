package models

import (
	"time"

	"github.com/google/uuid"
)

// MediaItem is an entry in a user's own tracked collection for one media
// domain. Collections are private to their owner; recommendations are the
// only cross-user records.
type MediaItem struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Domain      string    `json:"domain"`
	ExternalID  string    `json:"external_id"`
	Title       string    `json:"title"`
	Creator     string    `json:"creator"`
	Platform    string    `json:"platform"`
	Genres      []string  `json:"genres"`
	ReleaseYear *int      `json:"release_year"`

	Status     string     `json:"status"` // pending, consumed, hit, miss
	Rating     *int       `json:"rating"` // 1-10, optional
	Notes      string     `json:"notes"`
	ConsumedAt *time.Time `json:"consumed_at"`

	CustomOrder int `json:"custom_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
