package models

import (
	"time"

	"github.com/google/uuid"
)

// Recommendation status constants. StatusConsumed is stored canonically;
// each media domain presents it under its own label (watched/listened/read/played).
const (
	StatusPending  = "pending"
	StatusConsumed = "consumed"
	StatusHit      = "hit"
	StatusMiss     = "miss"
)

// ValidStatus reports whether s is a recognized recommendation status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConsumed, StatusHit, StatusMiss:
		return true
	}
	return false
}

// Recommendation is a single shared row between sender and recipient.
// Both parties read the same row through opposite access filters; each can
// hide it from their own view independently via the two hidden flags.
type Recommendation struct {
	ID         uuid.UUID `json:"id"`
	FromUserID uuid.UUID `json:"from_user_id"`
	ToUserID   uuid.UUID `json:"to_user_id"`
	Domain     string    `json:"domain"`
	ExternalID string    `json:"external_id"`
	Title      string    `json:"title"`
	Creator    string    `json:"creator"` // artist, author, director or studio depending on domain
	Platform   string    `json:"platform"`
	Genres     []string  `json:"genres"`
	ReleaseYear *int     `json:"release_year"`

	Status        string `json:"status"`
	SentMessage   string `json:"sent_message"`   // set once by the sender at creation
	Comment       string `json:"comment"`        // recipient-owned
	SenderComment string `json:"sender_comment"` // sender-owned

	SentAt     time.Time  `json:"sent_at"`
	OpenedAt   *time.Time `json:"opened_at"`
	ConsumedAt *time.Time `json:"consumed_at"`

	HiddenForSender    bool `json:"-"`
	HiddenForRecipient bool `json:"-"`

	CustomOrder int `json:"custom_order"` // recipient's manual ordering

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsSender reports whether the given user sent this recommendation.
func (r *Recommendation) IsSender(userID uuid.UUID) bool {
	return r.FromUserID == userID
}

// IsRecipient reports whether the given user received this recommendation.
func (r *Recommendation) IsRecipient(userID uuid.UUID) bool {
	return r.ToUserID == userID
}

// Opened reports whether the recipient has ever viewed the recommendation.
func (r *Recommendation) Opened() bool {
	return r.OpenedAt != nil
}

// RecommendationWithUser includes counterpart display info for rendering.
// UserName/UserEmail describe the sender for incoming rows and the recipient
// for outgoing rows.
type RecommendationWithUser struct {
	Recommendation
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}
