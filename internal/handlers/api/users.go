package api

import (
	"github.com/gofiber/fiber/v3"

	"recshelf/internal/db"
	"recshelf/internal/middleware"
)

// UserHandler handles user lookup via JSON API.
type UserHandler struct {
	db *db.DB
}

// NewUserHandler creates a new API user handler.
func NewUserHandler(database *db.DB) *UserHandler {
	return &UserHandler{db: database}
}

// Search finds users by name, username or email, for the add-friend box.
func (h *UserHandler) Search(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	query := c.Query("q")
	if len(query) < 2 {
		return jsonSuccess(c, []any{})
	}

	users, err := h.db.SearchUsers(c.Context(), user.ID, query, 10)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to search users")
	}
	return jsonSuccess(c, users)
}
