package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"recshelf/internal/db"
	"recshelf/internal/models"
)

// AuthMiddleware handles user authentication via sessions.
type AuthMiddleware struct {
	store *session.Store
	db    *db.DB
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(store *session.Store, db *db.DB) *AuthMiddleware {
	return &AuthMiddleware{store: store, db: db}
}

// RequireAuth ensures the user is authenticated. Browser requests are
// redirected to /login; API requests get a 401.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return m.unauthorized(c)
	}

	userSub := sess.Get("user_sub")
	if userSub == nil {
		return m.unauthorized(c)
	}

	user, err := m.db.GetUserBySub(c.Context(), userSub.(string))
	if err != nil {
		sess.Destroy()
		return m.unauthorized(c)
	}

	c.Locals("user", user)
	return c.Next()
}

// OptionalAuth loads the user if authenticated, but doesn't require authentication.
func (m *AuthMiddleware) OptionalAuth(c fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return c.Next()
	}

	userSub := sess.Get("user_sub")
	if userSub == nil {
		return c.Next()
	}

	user, err := m.db.GetUserBySub(c.Context(), userSub.(string))
	if err == nil {
		c.Locals("user", user)
	}

	return c.Next()
}

func (m *AuthMiddleware) unauthorized(c fiber.Ctx) error {
	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Authentication required",
		})
	}
	return c.Redirect().To("/login")
}

// CurrentUser returns the authenticated user set by RequireAuth or
// OptionalAuth, or nil.
func CurrentUser(c fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
