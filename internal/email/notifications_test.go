package email

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"recshelf/internal/models"
)

type fakeUserGetter struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeUserGetter) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func TestNewNotifier(t *testing.T) {
	cfg := testConfig()
	db := &fakeUserGetter{}

	n := NewNotifier(cfg, db)
	if n == nil {
		t.Fatal("NewNotifier returned nil")
	}
	if n.service == nil || n.templates == nil {
		t.Error("Notifier not fully initialized")
	}
}

func TestNotifyDisabledDoesNotQueryDB(t *testing.T) {
	// With SMTP unconfigured nothing should be looked up or sent. The nil
	// user map would panic on access if the notifier queried anyway.
	cfg := testConfig() // no SMTP settings
	n := NewNotifier(cfg, &fakeUserGetter{})

	rec := &models.Recommendation{ToUserID: uuid.New(), Title: "Dune"}
	sender := &models.User{Name: "Jane"}
	n.NotifyRecommendationReceived(context.Background(), rec, sender, "Books")

	f := &models.Friendship{RequesterID: uuid.New(), AddresseeID: uuid.New()}
	n.NotifyFriendRequest(context.Background(), f, sender)
	n.NotifyFriendRequestAccepted(context.Background(), f, sender)
}

func TestNotifyMissingUserIsSwallowed(t *testing.T) {
	cfg := testConfig()
	cfg.SMTPHost = "smtp.example.com"
	cfg.SMTPFrom = "noreply@example.com"

	n := NewNotifier(cfg, &fakeUserGetter{users: map[uuid.UUID]*models.User{}})

	// Recipient lookup fails; the notification is dropped without error.
	rec := &models.Recommendation{ToUserID: uuid.New(), Title: "Dune"}
	n.NotifyRecommendationReceived(context.Background(), rec, &models.User{Name: "Jane"}, "Books")
}

func TestNotifySkipsUsersWithoutEmail(t *testing.T) {
	cfg := testConfig()
	cfg.SMTPHost = "smtp.example.com"
	cfg.SMTPFrom = "noreply@example.com"

	recipientID := uuid.New()
	db := &fakeUserGetter{users: map[uuid.UUID]*models.User{
		recipientID: {ID: recipientID, Name: "No Email"},
	}}
	n := NewNotifier(cfg, db)

	// No email address on file, so nothing is sent. SendAsync dialing a
	// real SMTP server would be the failure mode if this guard broke.
	rec := &models.Recommendation{ToUserID: recipientID, Title: "Dune"}
	n.NotifyRecommendationReceived(context.Background(), rec, &models.User{Name: "Jane"}, "Books")
}
