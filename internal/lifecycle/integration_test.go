package lifecycle_test

import (
	"context"
	"errors"
	"testing"

	"recshelf/internal/db"
	"recshelf/internal/lifecycle"
	"recshelf/internal/models"
	"recshelf/internal/testutil"
)

// Exercises the full lifecycle against a real database: send, open,
// consume, rate, comment on both sides, then asymmetric removal and purge.
func TestLifecycleEndToEnd(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	engine := lifecycle.New(database)

	sender := testutil.CreateTestUser(t, database, "sender")
	recipient := testutil.CreateTestUser(t, database, "recipient")
	testutil.CreateTestFriendship(t, database, sender.ID, recipient.ID)

	rec := testutil.CreateTestRecommendation(t, database, sender.ID, recipient.ID, "books", "Dune")

	// Only the recipient can open.
	if err := engine.MarkOpened(ctx, sender.ID, rec.ID); !errors.Is(err, lifecycle.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for sender open, got %v", err)
	}
	if err := engine.MarkOpened(ctx, recipient.ID, rec.ID); err != nil {
		t.Fatalf("failed to mark opened: %v", err)
	}

	opened, err := database.GetRecommendation(ctx, rec.ID)
	if err != nil {
		t.Fatalf("failed to get recommendation: %v", err)
	}
	if opened.OpenedAt == nil {
		t.Fatal("expected opened_at to be stamped")
	}
	firstOpened := *opened.OpenedAt

	// A second open must not move the stamp.
	if err := engine.MarkOpened(ctx, recipient.ID, rec.ID); err != nil {
		t.Fatalf("repeat open failed: %v", err)
	}
	again, _ := database.GetRecommendation(ctx, rec.ID)
	if !again.OpenedAt.Equal(firstOpened) {
		t.Error("opened_at moved on repeat open")
	}

	// Consume, then rate it a hit with a note.
	updated, err := engine.SetStatus(ctx, recipient.ID, rec.ID, models.StatusConsumed, nil)
	if err != nil {
		t.Fatalf("failed to set consumed: %v", err)
	}
	if updated.ConsumedAt == nil {
		t.Fatal("expected consumed_at to be stamped")
	}
	consumedAt := *updated.ConsumedAt

	note := "loved the world-building"
	updated, err = engine.SetStatus(ctx, recipient.ID, rec.ID, models.StatusHit, &note)
	if err != nil {
		t.Fatalf("failed to set hit: %v", err)
	}
	if updated.Status != models.StatusHit || updated.Comment != note {
		t.Errorf("got status %q comment %q", updated.Status, updated.Comment)
	}
	if !updated.ConsumedAt.Equal(consumedAt) {
		t.Error("consumed_at moved on status revision")
	}

	// Sender note lives on its own column.
	updated, err = engine.SetSenderComment(ctx, sender.ID, rec.ID, "knew you would like it")
	if err != nil {
		t.Fatalf("failed to set sender comment: %v", err)
	}
	if updated.Comment != note {
		t.Error("sender comment write clobbered the recipient comment")
	}

	// Recipient removal hides only the recipient side.
	if err := engine.Remove(ctx, recipient.ID, rec.ID); err != nil {
		t.Fatalf("recipient remove failed: %v", err)
	}
	incoming, err := database.GetIncomingRecommendations(ctx, recipient.ID, "books")
	if err != nil {
		t.Fatalf("failed to list incoming: %v", err)
	}
	if len(incoming) != 0 {
		t.Errorf("expected empty inbox after removal, got %d", len(incoming))
	}
	outgoing, err := database.GetOutgoingRecommendations(ctx, sender.ID, "books")
	if err != nil {
		t.Fatalf("failed to list outgoing: %v", err)
	}
	if len(outgoing) != 1 {
		t.Errorf("expected sender to still see the row, got %d", len(outgoing))
	}

	// Sender removal after opening hides the other side; the doubly-hidden
	// row is then purged.
	if err := engine.Remove(ctx, sender.ID, rec.ID); err != nil {
		t.Fatalf("sender remove failed: %v", err)
	}
	purged, err := database.PurgeHiddenRecommendations(ctx)
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if purged != 1 {
		t.Errorf("expected 1 purged row, got %d", purged)
	}
}

// A sender removing an unopened recommendation unsends it for both parties.
func TestLifecycleUnsend(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	engine := lifecycle.New(database)

	sender := testutil.CreateTestUser(t, database, "unsend-sender")
	recipient := testutil.CreateTestUser(t, database, "unsend-recipient")
	testutil.CreateTestFriendship(t, database, sender.ID, recipient.ID)

	rec := testutil.CreateTestRecommendation(t, database, sender.ID, recipient.ID, "games", "Hades")

	if err := engine.Remove(ctx, sender.ID, rec.ID); err != nil {
		t.Fatalf("unsend failed: %v", err)
	}

	if _, err := database.GetRecommendation(ctx, rec.ID); !errors.Is(err, db.ErrRecommendationNotFound) {
		t.Errorf("expected the row to be gone, got %v", err)
	}
}
