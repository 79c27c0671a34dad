package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
)

func TestRequireAuthWithoutSession(t *testing.T) {
	store := session.NewStore()
	// No session means no database lookup, so a nil DB is safe here.
	m := NewAuthMiddleware(store, nil)

	app := fiber.New()
	app.Get("/inbox", m.RequireAuth, func(c fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/api/recommendations", m.RequireAuth, func(c fiber.Ctx) error {
		return c.SendString("ok")
	})

	// Browser paths redirect to login.
	resp, err := app.Test(httptest.NewRequest("GET", "/inbox", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusFound {
		t.Errorf("expected redirect status %d, got %d", fiber.StatusFound, resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}

	// API paths get a JSON 401 instead.
	resp, err = app.Test(httptest.NewRequest("GET", "/api/recommendations", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestOptionalAuthWithoutSession(t *testing.T) {
	store := session.NewStore()
	m := NewAuthMiddleware(store, nil)

	app := fiber.New()
	app.Get("/", m.OptionalAuth, func(c fiber.Ctx) error {
		if CurrentUser(c) != nil {
			return c.SendString("user")
		}
		return c.SendString("anonymous")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
