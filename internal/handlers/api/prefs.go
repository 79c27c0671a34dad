package api

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v3"

	"recshelf/internal/domain"
	"recshelf/internal/middleware"
	"recshelf/internal/models"
	"recshelf/internal/prefs"
	"recshelf/internal/validation"
)

// PrefsHandler handles per-view list preferences via JSON API. Writes are
// debounced in the store, so rapid-fire updates from a settings panel
// collapse into one persisted write.
type PrefsHandler struct {
	prefs *prefs.Store
}

// NewPrefsHandler creates a new API preferences handler.
func NewPrefsHandler(prefsStore *prefs.Store) *PrefsHandler {
	return &PrefsHandler{prefs: prefsStore}
}

// validViewID checks a view identifier like "inbox:moviestv" or
// "collection:books".
func validViewID(viewID string) bool {
	kind, slug, ok := strings.Cut(viewID, ":")
	if !ok {
		return false
	}
	if kind != "inbox" && kind != "collection" {
		return false
	}
	return domain.Valid(slug)
}

// Get returns the caller's preferences for one view.
func (h *PrefsHandler) Get(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	viewID := c.Params("view")
	if !validViewID(viewID) {
		return jsonError(c, fiber.StatusBadRequest, "unknown view")
	}

	return jsonSuccess(c, h.prefs.Load(user.ID, viewID))
}

// Put replaces the caller's preferences for one view.
func (h *PrefsHandler) Put(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	viewID := c.Params("view")
	if !validViewID(viewID) {
		return jsonError(c, fiber.StatusBadRequest, "unknown view")
	}

	var body models.ViewPreferences
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if valid, msg := validation.ValidateGenres(body.GenreFilters); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	if len(body.GenreFilters) == 0 {
		body.GenreFilters = []string{models.GenreAll}
	} else {
		body.GenreFilters = validation.NormalizeGenres(body.GenreFilters)
	}
	if body.SortBy == "" {
		body.SortBy = models.DefaultViewPreferences().SortBy
	}
	body.ItemsPerPage = validation.ClampItemsPerPage(body.ItemsPerPage)

	if err := h.prefs.Save(user.ID, viewID, body); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to save preferences")
	}
	return jsonSuccess(c, body)
}

// Delete resets the caller's preferences for one view to the defaults.
func (h *PrefsHandler) Delete(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	viewID := c.Params("view")
	if !validViewID(viewID) {
		return jsonError(c, fiber.StatusBadRequest, "unknown view")
	}

	if err := h.prefs.Reset(user.ID, viewID); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to reset preferences")
	}
	return jsonSuccess(c, models.DefaultViewPreferences())
}
