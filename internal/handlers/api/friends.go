package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"recshelf/internal/db"
	"recshelf/internal/email"
	"recshelf/internal/metrics"
	"recshelf/internal/middleware"
	"recshelf/internal/models"
)

// FriendHandler handles friendship operations via JSON API.
type FriendHandler struct {
	db       *db.DB
	notifier *email.Notifier
}

// NewFriendHandler creates a new API friend handler.
func NewFriendHandler(database *db.DB, notifier *email.Notifier) *FriendHandler {
	return &FriendHandler{db: database, notifier: notifier}
}

// List returns the caller's friends.
func (h *FriendHandler) List(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	friends, err := h.db.ListFriends(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch friends")
	}
	return jsonSuccess(c, friends)
}

// Requests returns the caller's pending friend requests, both directions.
func (h *FriendHandler) Requests(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	requests, err := h.db.ListFriendRequests(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch friend requests")
	}
	return jsonSuccess(c, requests)
}

// Create sends a friend request.
func (h *FriendHandler) Create(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var body struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	f := &models.Friendship{
		RequesterID: user.ID,
		AddresseeID: body.UserID,
	}
	if err := h.db.CreateFriendRequest(c.Context(), f); err != nil {
		switch {
		case errors.Is(err, db.ErrDuplicateFriendship):
			return jsonError(c, fiber.StatusConflict, "a request between you already exists")
		case errors.Is(err, db.ErrSelfFriend):
			return jsonError(c, fiber.StatusBadRequest, "you cannot friend yourself")
		default:
			return jsonError(c, fiber.StatusInternalServerError, "failed to send friend request")
		}
	}

	metrics.RecordAction("friend", "requested")

	if h.notifier != nil {
		h.notifier.NotifyFriendRequest(c.Context(), f, user)
	}

	return jsonCreated(c, f)
}

// Respond accepts or declines a friend request addressed to the caller.
func (h *FriendHandler) Respond(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request id")
	}

	var body struct {
		Accept bool `json:"accept"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	status := models.FriendshipDeclined
	if body.Accept {
		status = models.FriendshipAccepted
	}

	f, err := h.db.RespondToFriendRequest(c.Context(), id, user.ID, status)
	if err != nil {
		if errors.Is(err, db.ErrFriendshipNotFound) {
			return jsonError(c, fiber.StatusNotFound, "friend request not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to respond to friend request")
	}

	metrics.RecordAction("friend", status)

	if body.Accept && h.notifier != nil {
		h.notifier.NotifyFriendRequestAccepted(c.Context(), f, user)
	}

	return jsonSuccess(c, f)
}

// Delete removes a friendship or withdraws a pending request.
func (h *FriendHandler) Delete(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid friendship id")
	}

	if err := h.db.DeleteFriendship(c.Context(), id, user.ID); err != nil {
		if errors.Is(err, db.ErrFriendshipNotFound) {
			return jsonError(c, fiber.StatusNotFound, "friendship not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to remove friendship")
	}

	return jsonSuccess(c, nil)
}

// Summaries returns the caller's per-friend recommendation summary rows.
func (h *FriendHandler) Summaries(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	summaries, err := h.db.GetFriendSummaries(c.Context(), user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch friend summaries")
	}
	return jsonSuccess(c, summaries)
}
