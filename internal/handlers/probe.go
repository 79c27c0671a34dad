package handlers

import (
	"github.com/gofiber/fiber/v3"

	"recshelf/internal/db"
)

// ProbeHandler handles Kubernetes health probe endpoints.
type ProbeHandler struct {
	db       *db.DB
	sessions fiber.Storage // Redis when configured, nil on the in-memory fallback
}

// NewProbeHandler creates a new probe handler.
func NewProbeHandler(database *db.DB, sessions fiber.Storage) *ProbeHandler {
	return &ProbeHandler{db: database, sessions: sessions}
}

// Liveness handles the /healthz endpoint for Kubernetes liveness probes.
// Returns 200 OK if the application is running.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Readiness handles the /readyz endpoint for Kubernetes readiness probes.
// Each dependency is reported by name: the Postgres pool holding users,
// friendships, recommendations and collections, and the Redis storage
// behind sessions and view preferences when one is configured.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	checks := fiber.Map{}
	healthy := true

	if err := h.db.Ping(c.Context()); err != nil {
		checks["postgres"] = "unreachable"
		healthy = false
	} else {
		checks["postgres"] = "ok"
	}

	if h.sessions != nil {
		if _, err := h.sessions.Get("readyz"); err != nil {
			checks["redis"] = "unreachable"
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "error",
			"checks": checks,
		})
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"checks": checks,
	})
}
