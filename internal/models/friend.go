package models

import (
	"time"

	"github.com/google/uuid"
)

// Friendship status constants
const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipDeclined = "declined"
)

// Friendship represents a friend request between two users. Recommendations
// can only be sent across an accepted friendship.
type Friendship struct {
	ID          uuid.UUID  `json:"id"`
	RequesterID uuid.UUID  `json:"requester_id"`
	AddresseeID uuid.UUID  `json:"addressee_id"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at"`
}

// FriendRequestSummary is a pending request in either direction with the
// other user's display info.
type FriendRequestSummary struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	Direction string    `json:"direction"` // "incoming" or "outgoing"
	CreatedAt time.Time `json:"created_at"`
}

// FriendSummary aggregates one counterpart's recommendations to the viewer.
// It is always recomputed from the live rows, never stored.
type FriendSummary struct {
	UserID       uuid.UUID `json:"user_id"`
	UserName     string    `json:"user_name"`
	UserEmail    string    `json:"user_email"`
	PendingCount int       `json:"pending_count"`
	TotalCount   int       `json:"total_count"`
	HitCount     int       `json:"hit_count"`
	MissCount    int       `json:"miss_count"`
}
