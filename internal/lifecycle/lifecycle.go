// Package lifecycle owns the recommendation state machine and its
// role-based rules: who may change status, comments and visibility, and
// what a removal means for each party.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"recshelf/internal/models"
)

var (
	// ErrUnauthorized means the actor is not the role a mutation requires.
	ErrUnauthorized = errors.New("actor is not permitted to perform this action")
	// ErrNotFound means the recommendation id did not resolve.
	ErrNotFound = errors.New("recommendation not found")
	// ErrValidation means the request carried an invalid field.
	ErrValidation = errors.New("invalid recommendation input")
)

// Store is the persistence collaborator. Each mutation patches only the
// columns it owns, so concurrent writers touching disjoint fields both
// survive (field-level last-write-wins). GetRecommendation must return an
// error wrapping ErrNotFound for missing ids.
type Store interface {
	GetRecommendation(ctx context.Context, id uuid.UUID) (*models.Recommendation, error)
	StampRecommendationOpened(ctx context.Context, id uuid.UUID, openedAt time.Time) error
	UpdateRecommendationStatus(ctx context.Context, id uuid.UUID, status string, consumedAt *time.Time, comment *string) (*models.Recommendation, error)
	UpdateRecommendationSenderComment(ctx context.Context, id uuid.UUID, text string) (*models.Recommendation, error)
	HideRecommendationForRecipient(ctx context.Context, id uuid.UUID) error
	HideRecommendationForSender(ctx context.Context, id uuid.UUID) error
	DeleteRecommendation(ctx context.Context, id uuid.UUID) error
}

// Engine validates lifecycle transitions and turns them into store writes.
type Engine struct {
	store Store
}

// New creates a lifecycle engine over the given store.
func New(store Store) *Engine {
	return &Engine{store: store}
}

// MarkOpened stamps opened_at the first time the recipient views the
// record. Idempotent; opened_at is never cleared or re-stamped.
func (e *Engine) MarkOpened(ctx context.Context, actorID, id uuid.UUID) error {
	rec, err := e.store.GetRecommendation(ctx, id)
	if err != nil {
		return err
	}
	if !rec.IsRecipient(actorID) {
		return ErrUnauthorized
	}
	if rec.Opened() {
		return nil
	}
	if err := e.store.StampRecommendationOpened(ctx, id, time.Now()); err != nil {
		return fmt.Errorf("stamp opened: %w", err)
	}
	return nil
}

// SetStatus writes a new status on behalf of the recipient. Transitions are
// not forward-only: any recipient-initiated status write is accepted, so a
// hit can be revised to a miss and back. The consumption timestamp is
// stamped only on the first departure from pending; later revisions keep
// the original timestamp.
//
// comment is independent of status: nil leaves the recipient comment
// untouched, non-nil overwrites it. A comment-only update passes the
// record's current status and must not disturb status or consumed_at.
func (e *Engine) SetStatus(ctx context.Context, actorID, id uuid.UUID, status string, comment *string) (*models.Recommendation, error) {
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	rec, err := e.store.GetRecommendation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.IsRecipient(actorID) {
		return nil, ErrUnauthorized
	}

	var consumedAt *time.Time
	if status != models.StatusPending && rec.ConsumedAt == nil {
		now := time.Now()
		consumedAt = &now
	}

	updated, err := e.store.UpdateRecommendationStatus(ctx, id, status, consumedAt, comment)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	return updated, nil
}

// SetSenderComment writes the sender-owned comment. Independent of status.
func (e *Engine) SetSenderComment(ctx context.Context, actorID, id uuid.UUID, text string) (*models.Recommendation, error) {
	rec, err := e.store.GetRecommendation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.IsSender(actorID) {
		return nil, ErrUnauthorized
	}

	updated, err := e.store.UpdateRecommendationSenderComment(ctx, id, text)
	if err != nil {
		return nil, fmt.Errorf("update sender comment: %w", err)
	}
	return updated, nil
}

// Remove applies the asymmetric deletion contract:
//   - recipient: hide from the recipient's view only; the sender's sent
//     list is unaffected
//   - sender, never opened: true unsend, the row is deleted for both parties
//   - sender, already opened: hide from the sender's view only
//
// The shared row carries two independent hidden flags rather than being
// hard-deleted, because a hard delete could not honor the one-sided cases.
func (e *Engine) Remove(ctx context.Context, actorID, id uuid.UUID) error {
	rec, err := e.store.GetRecommendation(ctx, id)
	if err != nil {
		return err
	}

	switch {
	case rec.IsRecipient(actorID):
		if err := e.store.HideRecommendationForRecipient(ctx, id); err != nil {
			return fmt.Errorf("hide for recipient: %w", err)
		}
	case rec.IsSender(actorID) && !rec.Opened():
		if err := e.store.DeleteRecommendation(ctx, id); err != nil {
			return fmt.Errorf("unsend: %w", err)
		}
	case rec.IsSender(actorID):
		if err := e.store.HideRecommendationForSender(ctx, id); err != nil {
			return fmt.Errorf("hide for sender: %w", err)
		}
	default:
		return ErrUnauthorized
	}

	return nil
}
