package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"recshelf/internal/models"
)

// fakeStore keeps records in memory and mimics the field-level patch
// behavior of the real store.
type fakeStore struct {
	records map[uuid.UUID]*models.Recommendation
	failOn  string // method name that should fail, for persistence-failure tests
}

var errBoom = errors.New("persistence failure")

func newFakeStore(recs ...*models.Recommendation) *fakeStore {
	s := &fakeStore{records: make(map[uuid.UUID]*models.Recommendation)}
	for _, r := range recs {
		s.records[r.ID] = r
	}
	return s
}

func (s *fakeStore) get(id uuid.UUID) (*models.Recommendation, error) {
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *fakeStore) GetRecommendation(_ context.Context, id uuid.UUID) (*models.Recommendation, error) {
	if s.failOn == "get" {
		return nil, errBoom
	}
	rec, err := s.get(id)
	if err != nil {
		return nil, err
	}
	cp := *rec
	return &cp, nil
}

func (s *fakeStore) StampRecommendationOpened(_ context.Context, id uuid.UUID, openedAt time.Time) error {
	if s.failOn == "open" {
		return errBoom
	}
	rec, err := s.get(id)
	if err != nil {
		return err
	}
	if rec.OpenedAt == nil {
		rec.OpenedAt = &openedAt
	}
	return nil
}

func (s *fakeStore) UpdateRecommendationStatus(_ context.Context, id uuid.UUID, status string, consumedAt *time.Time, comment *string) (*models.Recommendation, error) {
	if s.failOn == "status" {
		return nil, errBoom
	}
	rec, err := s.get(id)
	if err != nil {
		return nil, err
	}
	rec.Status = status
	if rec.ConsumedAt == nil {
		rec.ConsumedAt = consumedAt
	}
	if comment != nil {
		rec.Comment = *comment
	}
	cp := *rec
	return &cp, nil
}

func (s *fakeStore) UpdateRecommendationSenderComment(_ context.Context, id uuid.UUID, text string) (*models.Recommendation, error) {
	if s.failOn == "senderComment" {
		return nil, errBoom
	}
	rec, err := s.get(id)
	if err != nil {
		return nil, err
	}
	rec.SenderComment = text
	cp := *rec
	return &cp, nil
}

func (s *fakeStore) HideRecommendationForRecipient(_ context.Context, id uuid.UUID) error {
	rec, err := s.get(id)
	if err != nil {
		return err
	}
	rec.HiddenForRecipient = true
	return nil
}

func (s *fakeStore) HideRecommendationForSender(_ context.Context, id uuid.UUID) error {
	rec, err := s.get(id)
	if err != nil {
		return err
	}
	rec.HiddenForSender = true
	return nil
}

func (s *fakeStore) DeleteRecommendation(_ context.Context, id uuid.UUID) error {
	if _, err := s.get(id); err != nil {
		return err
	}
	delete(s.records, id)
	return nil
}

func newRecommendation(sender, recipient uuid.UUID) *models.Recommendation {
	return &models.Recommendation{
		ID:         uuid.New(),
		FromUserID: sender,
		ToUserID:   recipient,
		Domain:     "moviestv",
		Title:      "Dune",
		Status:     models.StatusPending,
		SentAt:     time.Now(),
	}
}

func strptr(s string) *string { return &s }

func TestMarkOpened(t *testing.T) {
	ctx := context.Background()
	sender, recipient := uuid.New(), uuid.New()
	rec := newRecommendation(sender, recipient)
	store := newFakeStore(rec)
	engine := New(store)

	if err := engine.MarkOpened(ctx, recipient, rec.ID); err != nil {
		t.Fatalf("MarkOpened() error = %v", err)
	}
	first := store.records[rec.ID].OpenedAt
	if first == nil {
		t.Fatal("opened_at not stamped")
	}

	// Idempotent: second call keeps the original timestamp.
	if err := engine.MarkOpened(ctx, recipient, rec.ID); err != nil {
		t.Fatalf("MarkOpened() second call error = %v", err)
	}
	if store.records[rec.ID].OpenedAt != first {
		t.Error("opened_at re-stamped on second call")
	}
}

func TestMarkOpened_SenderUnauthorized(t *testing.T) {
	ctx := context.Background()
	sender, recipient := uuid.New(), uuid.New()
	rec := newRecommendation(sender, recipient)
	engine := New(newFakeStore(rec))

	if err := engine.MarkOpened(ctx, sender, rec.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestSetStatus_StampsConsumedAtOnce(t *testing.T) {
	ctx := context.Background()
	sender, recipient := uuid.New(), uuid.New()
	rec := newRecommendation(sender, recipient)
	store := newFakeStore(rec)
	engine := New(store)

	updated, err := engine.SetStatus(ctx, recipient, rec.ID, models.StatusConsumed, nil)
	if err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if updated.Status != models.StatusConsumed {
		t.Errorf("status = %q, want consumed", updated.Status)
	}
	if updated.ConsumedAt == nil {
		t.Fatal("consumed_at not stamped on departure from pending")
	}
	stamped := *updated.ConsumedAt

	// Revising hit/miss later must not re-stamp the timestamp.
	updated, err = engine.SetStatus(ctx, recipient, rec.ID, models.StatusHit, nil)
	if err != nil {
		t.Fatalf("SetStatus(hit) error = %v", err)
	}
	if !updated.ConsumedAt.Equal(stamped) {
		t.Error("consumed_at re-stamped on status revision")
	}

	updated, err = engine.SetStatus(ctx, recipient, rec.ID, models.StatusMiss, nil)
	if err != nil {
		t.Fatalf("SetStatus(miss) error = %v", err)
	}
	if updated.Status != models.StatusMiss {
		t.Errorf("status = %q, want miss (revisions are allowed)", updated.Status)
	}
}

func TestSetStatus_NonRecipientUnauthorized(t *testing.T) {
	ctx := context.Background()
	sender, recipient := uuid.New(), uuid.New()
	rec := newRecommendation(sender, recipient)
	store := newFakeStore(rec)
	engine := New(store)

	for _, actor := range []uuid.UUID{sender, uuid.New()} {
		if _, err := engine.SetStatus(ctx, actor, rec.ID, models.StatusHit, nil); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("SetStatus by non-recipient: error = %v, want ErrUnauthorized", err)
		}
	}
	if store.records[rec.ID].Status != models.StatusPending {
		t.Errorf("status mutated by unauthorized actor: %q", store.records[rec.ID].Status)
	}
}

func TestSetStatus_CommentOnlyUpdate(t *testing.T) {
	ctx := context.Background()
	sender, recipient := uuid.New(), uuid.New()
	rec := newRecommendation(sender, recipient)
	rec.Status = models.StatusHit
	now := time.Now().Add(-time.Hour)
	rec.ConsumedAt = &now
	store := newFakeStore(rec)
	engine := New(store)

	updated, err := engine.SetStatus(ctx, recipient, rec.ID, rec.Status, strptr("loved it"))
	if err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if updated.Comment != "loved it" {
		t.Errorf("comment = %q, want %q", updated.Comment, "loved it")
	}
	if updated.Status != models.StatusHit {
		t.Errorf("status = %q, comment-only update must not alter status", updated.Status)
	}
	if !updated.ConsumedAt.Equal(now) {
		t.Error("consumed_at changed by comment-only update")
	}
}

func TestSetStatus_NilCommentUntouched(t *testing.T) {
	ctx := context.Background()
	sender, recipient := uuid.New(), uuid.New()
	rec := newRecommendation(sender, recipient)
	rec.Comment = "keep me"
	store := newFakeStore(rec)
	engine := New(store)

	updated, err := engine.SetStatus(ctx, recipient, rec.ID, models.StatusConsumed, nil)
	if err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if updated.Comment != "keep me" {
		t.Errorf("comment = %q, nil comment must leave it untouched", updated.Comment)
	}
}

func TestSetStatus_InvalidStatus(t *testing.T) {
	ctx := context.Background()
	sender, recipient := uuid.New(), uuid.New()
	rec := newRecommendation(sender, recipient)
	engine := New(newFakeStore(rec))

	if _, err := engine.SetStatus(ctx, recipient, rec.ID, "watched", nil); !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want ErrValidation for non-canonical status", err)
	}
}

func TestSetStatus_NotFound(t *testing.T) {
	ctx := context.Background()
	engine := New(newFakeStore())

	if _, err := engine.SetStatus(ctx, uuid.New(), uuid.New(), models.StatusHit, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSetSenderComment(t *testing.T) {
	ctx := context.Background()
	sender, recipient := uuid.New(), uuid.New()
	rec := newRecommendation(sender, recipient)
	store := newFakeStore(rec)
	engine := New(store)

	updated, err := engine.SetSenderComment(ctx, sender, rec.ID, "thought you would")
	if err != nil {
		t.Fatalf("SetSenderComment() error = %v", err)
	}
	if updated.SenderComment != "thought you would" {
		t.Errorf("sender_comment = %q", updated.SenderComment)
	}

	if _, err := engine.SetSenderComment(ctx, recipient, rec.ID, "nope"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("recipient editing sender comment: error = %v, want ErrUnauthorized", err)
	}
}

func TestCommentsSurviveIndependently(t *testing.T) {
	// Recipient marks hit with a comment, sender later edits their own
	// comment; both fields persist on reread.
	ctx := context.Background()
	sender, recipient := uuid.New(), uuid.New()
	rec := newRecommendation(sender, recipient)
	store := newFakeStore(rec)
	engine := New(store)

	if _, err := engine.SetStatus(ctx, recipient, rec.ID, models.StatusHit, strptr("loved it")); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.SetSenderComment(ctx, sender, rec.ID, "thought you would"); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetRecommendation(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Comment != "loved it" || got.SenderComment != "thought you would" || got.Status != models.StatusHit {
		t.Errorf("reread = {status:%q comment:%q sender_comment:%q}", got.Status, got.Comment, got.SenderComment)
	}
}

func TestRemove_RecipientHidesOwnViewOnly(t *testing.T) {
	ctx := context.Background()
	sender, recipient := uuid.New(), uuid.New()
	rec := newRecommendation(sender, recipient)
	store := newFakeStore(rec)
	engine := New(store)

	if err := engine.Remove(ctx, recipient, rec.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	stored := store.records[rec.ID]
	if stored == nil {
		t.Fatal("row hard-deleted; recipient removal must only hide")
	}
	if !stored.HiddenForRecipient || stored.HiddenForSender {
		t.Errorf("flags = {sender:%v recipient:%v}, want recipient-only hide", stored.HiddenForSender, stored.HiddenForRecipient)
	}
}

func TestRemove_SenderUnsendBeforeOpened(t *testing.T) {
	ctx := context.Background()
	sender, recipient := uuid.New(), uuid.New()
	rec := newRecommendation(sender, recipient)
	store := newFakeStore(rec)
	engine := New(store)

	if err := engine.Remove(ctx, sender, rec.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok := store.records[rec.ID]; ok {
		t.Error("unopened record still exists after sender unsend")
	}
}

func TestRemove_SenderHidesAfterOpened(t *testing.T) {
	ctx := context.Background()
	sender, recipient := uuid.New(), uuid.New()
	rec := newRecommendation(sender, recipient)
	now := time.Now()
	rec.OpenedAt = &now
	store := newFakeStore(rec)
	engine := New(store)

	if err := engine.Remove(ctx, sender, rec.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	stored := store.records[rec.ID]
	if stored == nil {
		t.Fatal("opened record hard-deleted; sender removal must only hide")
	}
	if !stored.HiddenForSender || stored.HiddenForRecipient {
		t.Errorf("flags = {sender:%v recipient:%v}, want sender-only hide", stored.HiddenForSender, stored.HiddenForRecipient)
	}
}

func TestRemove_StrangerUnauthorized(t *testing.T) {
	ctx := context.Background()
	rec := newRecommendation(uuid.New(), uuid.New())
	engine := New(newFakeStore(rec))

	if err := engine.Remove(ctx, uuid.New(), rec.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestPersistenceFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	sender, recipient := uuid.New(), uuid.New()
	rec := newRecommendation(sender, recipient)
	store := newFakeStore(rec)
	store.failOn = "status"
	engine := New(store)

	_, err := engine.SetStatus(ctx, recipient, rec.ID, models.StatusHit, nil)
	if !errors.Is(err, errBoom) {
		t.Errorf("error = %v, want the wrapped persistence failure", err)
	}
	if store.records[rec.ID].Status != models.StatusPending {
		t.Error("local state mutated despite persistence failure")
	}
}
