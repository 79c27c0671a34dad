package db

import (
	"context"
	"testing"

	"recshelf/internal/models"
)

func createTestFriendship(t *testing.T, database *DB, requester, addressee *models.User, accept bool) *models.Friendship {
	t.Helper()

	ctx := context.Background()
	f := &models.Friendship{RequesterID: requester.ID, AddresseeID: addressee.ID}
	if err := database.CreateFriendRequest(ctx, f); err != nil {
		t.Fatalf("failed to create friend request: %v", err)
	}
	if accept {
		accepted, err := database.RespondToFriendRequest(ctx, f.ID, addressee.ID, models.FriendshipAccepted)
		if err != nil {
			t.Fatalf("failed to accept friend request: %v", err)
		}
		return accepted
	}
	return f
}

func TestCreateFriendRequest(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	alice := createTestUser(t, database, "fr-alice")
	bob := createTestUser(t, database, "fr-bob")

	f := createTestFriendship(t, database, alice, bob, false)
	if f.Status != models.FriendshipPending {
		t.Errorf("expected pending status, got %q", f.Status)
	}

	// Duplicate in the same direction.
	dup := &models.Friendship{RequesterID: alice.ID, AddresseeID: bob.ID}
	if err := database.CreateFriendRequest(ctx, dup); err != ErrDuplicateFriendship {
		t.Errorf("expected ErrDuplicateFriendship, got %v", err)
	}

	// Duplicate in the opposite direction is also rejected.
	reverse := &models.Friendship{RequesterID: bob.ID, AddresseeID: alice.ID}
	if err := database.CreateFriendRequest(ctx, reverse); err != ErrDuplicateFriendship {
		t.Errorf("expected ErrDuplicateFriendship for reverse direction, got %v", err)
	}
}

func TestCreateFriendRequestSelf(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	user := createTestUser(t, database, "fr-self")

	f := &models.Friendship{RequesterID: user.ID, AddresseeID: user.ID}
	if err := database.CreateFriendRequest(context.Background(), f); err != ErrSelfFriend {
		t.Errorf("expected ErrSelfFriend, got %v", err)
	}
}

func TestRespondToFriendRequest(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	alice := createTestUser(t, database, "resp-alice")
	bob := createTestUser(t, database, "resp-bob")

	f := createTestFriendship(t, database, alice, bob, false)

	// Only the addressee can respond.
	if _, err := database.RespondToFriendRequest(ctx, f.ID, alice.ID, models.FriendshipAccepted); err != ErrFriendshipNotFound {
		t.Errorf("expected ErrFriendshipNotFound for requester response, got %v", err)
	}

	accepted, err := database.RespondToFriendRequest(ctx, f.ID, bob.ID, models.FriendshipAccepted)
	if err != nil {
		t.Fatalf("RespondToFriendRequest failed: %v", err)
	}
	if accepted.Status != models.FriendshipAccepted {
		t.Errorf("expected accepted status, got %q", accepted.Status)
	}
	if accepted.RespondedAt == nil {
		t.Error("expected responded_at to be stamped")
	}

	// A settled request cannot be responded to again.
	if _, err := database.RespondToFriendRequest(ctx, f.ID, bob.ID, models.FriendshipDeclined); err != ErrFriendshipNotFound {
		t.Errorf("expected ErrFriendshipNotFound for settled request, got %v", err)
	}
}

func TestAreFriends(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	alice := createTestUser(t, database, "are-alice")
	bob := createTestUser(t, database, "are-bob")
	carol := createTestUser(t, database, "are-carol")

	createTestFriendship(t, database, alice, bob, true)
	createTestFriendship(t, database, alice, carol, false) // still pending

	friends, err := database.AreFriends(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("AreFriends failed: %v", err)
	}
	if !friends {
		t.Error("expected alice and bob to be friends in either argument order")
	}

	friends, err = database.AreFriends(ctx, alice.ID, carol.ID)
	if err != nil {
		t.Fatalf("AreFriends failed: %v", err)
	}
	if friends {
		t.Error("pending request should not count as friendship")
	}
}

func TestListFriendsAndRequests(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	alice := createTestUser(t, database, "list-alice")
	bob := createTestUser(t, database, "list-bob")
	carol := createTestUser(t, database, "list-carol")
	dave := createTestUser(t, database, "list-dave")

	createTestFriendship(t, database, alice, bob, true)
	createTestFriendship(t, database, carol, alice, false) // incoming to alice
	createTestFriendship(t, database, alice, dave, false)  // outgoing from alice

	friends, err := database.ListFriends(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListFriends failed: %v", err)
	}
	if len(friends) != 1 || friends[0].ID != bob.ID {
		t.Fatalf("expected bob as only friend, got %d results", len(friends))
	}

	requests, err := database.ListFriendRequests(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListFriendRequests failed: %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("expected 2 pending requests, got %d", len(requests))
	}

	directions := make(map[string]string)
	for _, r := range requests {
		directions[r.Direction] = r.UserName
	}
	if _, ok := directions["incoming"]; !ok {
		t.Error("expected an incoming request from carol")
	}
	if _, ok := directions["outgoing"]; !ok {
		t.Error("expected an outgoing request to dave")
	}
}

func TestDeleteFriendship(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	alice := createTestUser(t, database, "delf-alice")
	bob := createTestUser(t, database, "delf-bob")
	carol := createTestUser(t, database, "delf-carol")

	f := createTestFriendship(t, database, alice, bob, true)

	// A third party cannot remove someone else's friendship.
	if err := database.DeleteFriendship(ctx, f.ID, carol.ID); err != ErrFriendshipNotFound {
		t.Errorf("expected ErrFriendshipNotFound for third party, got %v", err)
	}

	// Either participant can.
	if err := database.DeleteFriendship(ctx, f.ID, bob.ID); err != nil {
		t.Fatalf("DeleteFriendship failed: %v", err)
	}
	if _, err := database.GetFriendshipByID(ctx, f.ID); err != ErrFriendshipNotFound {
		t.Errorf("expected friendship gone, got %v", err)
	}
}
