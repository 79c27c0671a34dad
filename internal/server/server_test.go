package server

import (
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/encryptcookie"
	"github.com/gofiber/fiber/v3/middleware/session"
)

// TestEncryptCookieSessionRoundTrip verifies that the encryptcookie +
// session middleware stack survives a client replaying encrypted session
// cookies across requests, mirroring the production middleware order.
func TestEncryptCookieSessionRoundTrip(t *testing.T) {
	secret := "test-secret-that-is-long-enough-for-production"
	encryptionKey := deriveEncryptionKey(secret)

	app := fiber.New()

	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: encryptionKey,
	}))

	sessionMiddleware, _ := session.NewWithStore(session.Config{
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
	app.Use(sessionMiddleware)

	app.Post("/session-set", func(c fiber.Ctx) error {
		sess := session.FromContext(c)
		if sess == nil {
			return c.Status(500).SendString("no session")
		}
		sess.Set("user_sub", "oidc|12345")
		return c.SendString("ok")
	})
	app.Get("/session-get", func(c fiber.Ctx) error {
		sess := session.FromContext(c)
		if sess == nil {
			return c.Status(500).SendString("no session")
		}
		val, _ := sess.Get("user_sub").(string)
		return c.SendString(val)
	})

	req, _ := http.NewRequest("POST", "/session-set", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request 1 failed: %v", err)
	}
	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("request 1: expected 200, got %d: %s", resp.StatusCode, body)
	}

	cookies := resp.Cookies()
	if len(cookies) == 0 {
		t.Fatal("request 1: no cookies returned")
	}

	req2, _ := http.NewRequest("GET", "/session-get", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}

	resp2, err := app.Test(req2)
	if err != nil {
		t.Fatalf("request 2 failed (possible encryptcookie panic): %v", err)
	}
	if resp2.StatusCode != 200 {
		t.Fatalf("request 2: expected 200, got %d", resp2.StatusCode)
	}

	body, _ := io.ReadAll(resp2.Body)
	if string(body) != "oidc|12345" {
		t.Errorf("session value not preserved across requests, got %q", body)
	}
}

func TestDeriveEncryptionKey(t *testing.T) {
	k1 := deriveEncryptionKey("secret-one")
	k2 := deriveEncryptionKey("secret-one")
	k3 := deriveEncryptionKey("secret-two")

	if k1 != k2 {
		t.Error("same secret should derive the same key")
	}
	if k1 == k3 {
		t.Error("different secrets should derive different keys")
	}
	if len(k1) == 0 {
		t.Error("derived key is empty")
	}
}
