package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"recshelf/internal/db"
	"recshelf/internal/domain"
	"recshelf/internal/listview"
	"recshelf/internal/metrics"
	"recshelf/internal/middleware"
	"recshelf/internal/models"
	"recshelf/internal/prefs"
	"recshelf/internal/validation"
)

// CollectionHandler handles a user's own media collection via JSON API.
type CollectionHandler struct {
	db    *db.DB
	prefs *prefs.Store
}

// NewCollectionHandler creates a new API collection handler.
func NewCollectionHandler(database *db.DB, prefsStore *prefs.Store) *CollectionHandler {
	return &CollectionHandler{db: database, prefs: prefsStore}
}

type mediaItemBody struct {
	Domain      string   `json:"domain"`
	ExternalID  string   `json:"external_id"`
	Title       string   `json:"title"`
	Creator     string   `json:"creator"`
	Platform    string   `json:"platform"`
	Genres      []string `json:"genres"`
	ReleaseYear *int     `json:"release_year"`
	Status      string   `json:"status"`
	Rating      *int     `json:"rating"`
	Notes       string   `json:"notes"`
}

func (b *mediaItemBody) validate() (bool, string) {
	if valid, msg := validation.ValidateTitle(b.Title); !valid {
		return false, msg
	}
	if valid, msg := validation.ValidateCreator(b.Creator); !valid {
		return false, msg
	}
	if valid, msg := validation.ValidateGenres(b.Genres); !valid {
		return false, msg
	}
	if valid, msg := validation.ValidateReleaseYear(b.ReleaseYear); !valid {
		return false, msg
	}
	if valid, msg := validation.ValidateRating(b.Rating); !valid {
		return false, msg
	}
	if valid, msg := validation.ValidateComment(b.Notes); !valid {
		return false, msg
	}
	return true, ""
}

// List returns the caller's collection for one domain through the
// filter/sort/paginate pipeline.
func (h *CollectionHandler) List(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	slug := c.Query("domain", string(domain.MoviesTV))
	if !domain.Valid(slug) {
		return jsonError(c, fiber.StatusBadRequest, "unknown media domain")
	}

	items, err := h.db.GetMediaItems(c.Context(), user.ID, slug)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch collection")
	}

	state := h.listState(c, user.ID, "collection:"+slug)
	page := listview.Apply(items, state, domain.MediaItemAdapter(domain.Domain(slug)))

	return jsonSuccess(c, page)
}

func (h *CollectionHandler) listState(c fiber.Ctx, userID uuid.UUID, viewID string) listview.State {
	p := h.prefs.Load(userID, viewID)

	page := fiber.Query(c, "page", 1)
	if page < 1 {
		page = 1
	}
	state := listview.StateFrom(p, c.Query("q"), page)

	if raw := c.Query("genres"); raw != "" {
		state = state.WithGenreFilters(validation.NormalizeGenres(splitCSV(raw)))
	}
	if sort := c.Query("sort"); sort != "" {
		state.SortBy = sort
	}
	if n := fiber.Query(c, "per_page", 0); n > 0 {
		state = state.WithItemsPerPage(validation.ClampItemsPerPage(n))
	}
	return state
}

// Create adds an entry to the caller's collection.
func (h *CollectionHandler) Create(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var body mediaItemBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if !domain.Valid(body.Domain) {
		return jsonError(c, fiber.StatusBadRequest, "unknown media domain")
	}
	if valid, msg := body.validate(); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	item := &models.MediaItem{
		UserID:      user.ID,
		Domain:      body.Domain,
		ExternalID:  body.ExternalID,
		Title:       body.Title,
		Creator:     body.Creator,
		Platform:    body.Platform,
		Genres:      validation.NormalizeGenres(body.Genres),
		ReleaseYear: body.ReleaseYear,
	}
	if err := h.db.CreateMediaItem(c.Context(), item); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to add to collection")
	}

	metrics.RecordAction("collection", "added")
	return jsonCreated(c, item)
}

// mediaItemPatch is the partial-update body for an existing entry. Pointer
// fields distinguish "absent, keep the stored value" from "present, set it"
// so a status-only or rating-only update does not blank the rest.
type mediaItemPatch struct {
	Title       *string  `json:"title"`
	Creator     *string  `json:"creator"`
	Platform    *string  `json:"platform"`
	Genres      []string `json:"genres"`
	ReleaseYear *int     `json:"release_year"`
	Status      string   `json:"status"`
	Rating      *int     `json:"rating"`
	Notes       *string  `json:"notes"`
}

// apply merges the present fields onto item and validates the merged result.
func (p *mediaItemPatch) apply(item *models.MediaItem) (bool, string) {
	if p.Title != nil {
		item.Title = *p.Title
	}
	if p.Creator != nil {
		item.Creator = *p.Creator
	}
	if p.Platform != nil {
		item.Platform = *p.Platform
	}
	if p.Genres != nil {
		item.Genres = validation.NormalizeGenres(p.Genres)
	}
	if p.ReleaseYear != nil {
		item.ReleaseYear = p.ReleaseYear
	}
	if p.Rating != nil {
		item.Rating = p.Rating
	}
	if p.Notes != nil {
		item.Notes = *p.Notes
	}
	if p.Status != "" {
		if valid, msg := validation.ValidateStatus(p.Status); !valid {
			return false, msg
		}
		item.Status = p.Status
	}

	if valid, msg := validation.ValidateTitle(item.Title); !valid {
		return false, msg
	}
	if valid, msg := validation.ValidateCreator(item.Creator); !valid {
		return false, msg
	}
	if valid, msg := validation.ValidateGenres(item.Genres); !valid {
		return false, msg
	}
	if valid, msg := validation.ValidateReleaseYear(item.ReleaseYear); !valid {
		return false, msg
	}
	if valid, msg := validation.ValidateRating(item.Rating); !valid {
		return false, msg
	}
	if valid, msg := validation.ValidateComment(item.Notes); !valid {
		return false, msg
	}
	return true, ""
}

// Update patches the editable fields of a collection entry. Fields absent
// from the body keep their stored values.
func (h *CollectionHandler) Update(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid item id")
	}

	item, err := h.db.GetMediaItemByID(c.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, db.ErrMediaItemNotFound) {
			return jsonError(c, fiber.StatusNotFound, "item not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch item")
	}

	var body mediaItemPatch
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if valid, msg := body.apply(item); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	if err := h.db.UpdateMediaItem(c.Context(), item); err != nil {
		if errors.Is(err, db.ErrMediaItemNotFound) {
			return jsonError(c, fiber.StatusNotFound, "item not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to update item")
	}

	return jsonSuccess(c, item)
}

// Delete removes a collection entry.
func (h *CollectionHandler) Delete(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid item id")
	}

	if err := h.db.DeleteMediaItem(c.Context(), id, user.ID); err != nil {
		if errors.Is(err, db.ErrMediaItemNotFound) {
			return jsonError(c, fiber.StatusNotFound, "item not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete item")
	}

	metrics.RecordAction("collection", "removed")
	return jsonSuccess(c, nil)
}

// Reorder moves a collection entry immediately before another across the
// whole filtered collection and persists the minimal order changes.
func (h *CollectionHandler) Reorder(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var body struct {
		Domain string    `json:"domain"`
		SrcID  uuid.UUID `json:"src_id"`
		DstID  uuid.UUID `json:"dst_id"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if !domain.Valid(body.Domain) {
		return jsonError(c, fiber.StatusBadRequest, "unknown media domain")
	}

	items, err := h.db.GetMediaItems(c.Context(), user.ID, body.Domain)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch collection")
	}

	state := h.listState(c, user.ID, "collection:"+body.Domain)
	state.SortBy = models.SortCustom
	page := listview.Apply(items, state, domain.MediaItemAdapter(domain.Domain(body.Domain)))

	patches, err := listview.MoveBefore(page.Filtered,
		func(m models.MediaItem) uuid.UUID { return m.ID },
		func(m models.MediaItem) int { return m.CustomOrder },
		body.SrcID, body.DstID,
	)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "item not found")
	}

	if err := h.db.ApplyMediaItemOrder(c.Context(), user.ID, patches); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to save new order")
	}

	return jsonSuccess(c, patches)
}
