package api

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"recshelf/internal/config"
	"recshelf/internal/db"
	"recshelf/internal/domain"
	"recshelf/internal/email"
	"recshelf/internal/lifecycle"
	"recshelf/internal/listview"
	"recshelf/internal/metrics"
	"recshelf/internal/middleware"
	"recshelf/internal/models"
	"recshelf/internal/prefs"
	"recshelf/internal/validation"
)

// RecommendationHandler handles recommendation operations via JSON API.
type RecommendationHandler struct {
	db       *db.DB
	cfg      *config.Config
	domains  *config.DomainsConfig
	engine   *lifecycle.Engine
	prefs    *prefs.Store
	notifier *email.Notifier
}

// NewRecommendationHandler creates a new API recommendation handler.
func NewRecommendationHandler(database *db.DB, cfg *config.Config, domains *config.DomainsConfig, prefsStore *prefs.Store, notifier *email.Notifier) *RecommendationHandler {
	return &RecommendationHandler{
		db:       database,
		cfg:      cfg,
		domains:  domains,
		engine:   lifecycle.New(database),
		prefs:    prefsStore,
		notifier: notifier,
	}
}

// lifecycleError maps the lifecycle error taxonomy onto HTTP statuses.
func lifecycleError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, lifecycle.ErrUnauthorized):
		return jsonError(c, fiber.StatusForbidden, "you are not allowed to do that")
	case errors.Is(err, lifecycle.ErrNotFound):
		return jsonError(c, fiber.StatusNotFound, "recommendation not found")
	case errors.Is(err, lifecycle.ErrValidation):
		return jsonError(c, fiber.StatusBadRequest, "invalid request")
	default:
		return jsonError(c, fiber.StatusInternalServerError, "something went wrong")
	}
}

// List returns the viewer's recommendations for one domain, run through
// the filter/sort/paginate pipeline. box selects "inbox" (default) or
// "sent".
func (h *RecommendationHandler) List(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	slug := c.Query("domain", string(domain.MoviesTV))
	if !domain.Valid(slug) {
		return jsonError(c, fiber.StatusBadRequest, "unknown media domain")
	}

	if c.Query("box", "inbox") == "sent" {
		recs, err := h.db.GetOutgoingRecommendations(c.Context(), user.ID, slug)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "failed to fetch recommendations")
		}
		return jsonSuccess(c, recs)
	}

	recs, err := h.db.GetIncomingRecommendations(c.Context(), user.ID, slug)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch recommendations")
	}

	state := h.listState(c, user.ID, "inbox:"+slug)
	page := listview.Apply(recs, state, domain.RecommendationAdapter(domain.Domain(slug)))

	return jsonSuccess(c, page)
}

// listState builds the pipeline state for a list request: persisted
// preferences overlaid with per-request query parameters. Nothing is
// persisted here; preference writes go through the prefs endpoints.
func (h *RecommendationHandler) listState(c fiber.Ctx, userID uuid.UUID, viewID string) listview.State {
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

// Create sends a recommendation to a friend.
func (h *RecommendationHandler) Create(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var body struct {
		ToUserID    uuid.UUID `json:"to_user_id"`
		Domain      string    `json:"domain"`
		ExternalID  string    `json:"external_id"`
		Title       string    `json:"title"`
		Creator     string    `json:"creator"`
		Platform    string    `json:"platform"`
		Genres      []string  `json:"genres"`
		ReleaseYear *int      `json:"release_year"`
		Message     string    `json:"message"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if !domain.Valid(body.Domain) {
		return jsonError(c, fiber.StatusBadRequest, "unknown media domain")
	}
	if valid, msg := validation.ValidateTitle(body.Title); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	if valid, msg := validation.ValidateCreator(body.Creator); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	if valid, msg := validation.ValidateComment(body.Message); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	if valid, msg := validation.ValidateGenres(body.Genres); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	if valid, msg := validation.ValidateReleaseYear(body.ReleaseYear); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	// Recommendations only travel across accepted friendships.
	friends, err := h.db.AreFriends(c.Context(), user.ID, body.ToUserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to check friendship")
	}
	if !friends {
		return jsonError(c, fiber.StatusForbidden, "you can only recommend to friends")
	}

	rec := &models.Recommendation{
		FromUserID:  user.ID,
		ToUserID:    body.ToUserID,
		Domain:      body.Domain,
		ExternalID:  body.ExternalID,
		Title:       body.Title,
		Creator:     body.Creator,
		Platform:    body.Platform,
		Genres:      validation.NormalizeGenres(body.Genres),
		ReleaseYear: body.ReleaseYear,
		SentMessage: body.Message,
	}
	if err := h.db.CreateRecommendation(c.Context(), rec); err != nil {
		if errors.Is(err, db.ErrSelfRecommend) {
			return jsonError(c, fiber.StatusBadRequest, "you cannot recommend to yourself")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to create recommendation")
	}

	metrics.RecordAction("recommend", "sent")

	if h.notifier != nil {
		label := body.Domain
		if dc := h.domains.GetDomain(body.Domain); dc != nil {
			label = dc.Label
		}
		h.notifier.NotifyRecommendationReceived(c.Context(), rec, user, label)
	}

	return jsonCreated(c, rec)
}

// Open marks a recommendation as seen by its recipient. Idempotent.
func (h *RecommendationHandler) Open(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid recommendation id")
	}

	if err := h.engine.MarkOpened(c.Context(), user.ID, id); err != nil {
		return lifecycleError(c, err)
	}
	return jsonSuccess(c, nil)
}

// SetStatus updates the recipient's verdict on a recommendation and
// optionally their comment in the same request.
func (h *RecommendationHandler) SetStatus(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid recommendation id")
	}

	var body struct {
		Status  string  `json:"status"`
		Comment *string `json:"comment"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if valid, msg := validation.ValidateStatus(body.Status); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	if body.Comment != nil {
		if valid, msg := validation.ValidateComment(*body.Comment); !valid {
			return jsonError(c, fiber.StatusBadRequest, msg)
		}
	}

	rec, err := h.engine.SetStatus(c.Context(), user.ID, id, body.Status, body.Comment)
	if err != nil {
		return lifecycleError(c, err)
	}

	metrics.RecordAction("status", body.Status)
	return jsonSuccess(c, rec)
}

// SetSenderComment updates the sender's own comment on a recommendation.
func (h *RecommendationHandler) SetSenderComment(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid recommendation id")
	}

	var body struct {
		Comment string `json:"comment"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if valid, msg := validation.ValidateComment(body.Comment); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	rec, err := h.engine.SetSenderComment(c.Context(), user.ID, id, body.Comment)
	if err != nil {
		return lifecycleError(c, err)
	}
	return jsonSuccess(c, rec)
}

// Delete removes a recommendation from the caller's view. The recipient's
// delete hides their copy only; the sender's delete unsends if the
// recipient never opened it, otherwise hides the sender's copy.
func (h *RecommendationHandler) Delete(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid recommendation id")
	}

	if err := h.engine.Remove(c.Context(), user.ID, id); err != nil {
		return lifecycleError(c, err)
	}

	metrics.RecordAction("recommend", "removed")
	return jsonSuccess(c, nil)
}

// Reorder moves one recommendation immediately before another within the
// viewer's filtered inbox and persists the minimal set of order changes.
// The move spans the whole filtered collection, not just the visible page.
func (h *RecommendationHandler) Reorder(c fiber.Ctx) error {
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

	recs, err := h.db.GetIncomingRecommendations(c.Context(), user.ID, body.Domain)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch recommendations")
	}

	// Reordering operates on the filtered, custom-sorted collection.
	state := h.listState(c, user.ID, "inbox:"+body.Domain)
	state.SortBy = models.SortCustom
	page := listview.Apply(recs, state, domain.RecommendationAdapter(domain.Domain(body.Domain)))

	patches, err := listview.MoveBefore(page.Filtered,
		func(r models.RecommendationWithUser) uuid.UUID { return r.ID },
		func(r models.RecommendationWithUser) int { return r.CustomOrder },
		body.SrcID, body.DstID,
	)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "recommendation not found")
	}

	if err := h.db.ApplyRecommendationOrder(c.Context(), user.ID, patches); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to save new order")
	}

	return jsonSuccess(c, patches)
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
