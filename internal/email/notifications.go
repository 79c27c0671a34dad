package email

import (
	"context"
	"log"

	"github.com/google/uuid"

	"recshelf/internal/config"
	"recshelf/internal/models"
)

// UserGetter is the slice of the database the notifier needs.
type UserGetter interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Notifier sends email notifications for various events.
type Notifier struct {
	service   *Service
	templates *Templates
	cfg       *config.Config
	db        UserGetter
}

// NewNotifier creates a new email notifier.
func NewNotifier(cfg *config.Config, db UserGetter) *Notifier {
	return &Notifier{
		service:   NewService(cfg),
		templates: NewTemplates(cfg),
		cfg:       cfg,
		db:        db,
	}
}

// NotifyRecommendationReceived emails the recipient about a new
// recommendation. domainLabel is the human label for the media domain,
// e.g. "Movies & TV".
func (n *Notifier) NotifyRecommendationReceived(ctx context.Context, rec *models.Recommendation, sender *models.User, domainLabel string) {
	if !n.service.IsEnabled() {
		return
	}

	recipient, err := n.db.GetUserByID(ctx, rec.ToUserID)
	if err != nil {
		log.Printf("Failed to get recommendation recipient: %v", err)
		return
	}
	if recipient.Email == "" {
		return
	}

	subject, htmlBody, textBody := n.templates.RecommendationReceived(rec, sender, domainLabel)
	n.service.SendAsync([]string{recipient.Email}, subject, htmlBody, textBody)
}

// NotifyFriendRequest emails the addressee of a new friend request.
func (n *Notifier) NotifyFriendRequest(ctx context.Context, f *models.Friendship, requester *models.User) {
	if !n.service.IsEnabled() {
		return
	}

	addressee, err := n.db.GetUserByID(ctx, f.AddresseeID)
	if err != nil {
		log.Printf("Failed to get friend request addressee: %v", err)
		return
	}
	if addressee.Email == "" {
		return
	}

	subject, htmlBody, textBody := n.templates.FriendRequestReceived(requester)
	n.service.SendAsync([]string{addressee.Email}, subject, htmlBody, textBody)
}

// NotifyFriendRequestAccepted emails the original requester once their
// request is accepted.
func (n *Notifier) NotifyFriendRequestAccepted(ctx context.Context, f *models.Friendship, addressee *models.User) {
	if !n.service.IsEnabled() {
		return
	}

	requester, err := n.db.GetUserByID(ctx, f.RequesterID)
	if err != nil {
		log.Printf("Failed to get friend request requester: %v", err)
		return
	}
	if requester.Email == "" {
		return
	}

	subject, htmlBody, textBody := n.templates.FriendRequestAccepted(addressee)
	n.service.SendAsync([]string{requester.Email}, subject, htmlBody, textBody)
}
