package handlers

import (
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"recshelf/internal/config"
	"recshelf/internal/db"
	"recshelf/internal/domain"
	"recshelf/internal/listview"
	"recshelf/internal/middleware"
	"recshelf/internal/prefs"
	"recshelf/internal/validation"
)

// PageHandler renders the HTML pages.
type PageHandler struct {
	db      *db.DB
	cfg     *config.Config
	domains *config.DomainsConfig
	prefs   *prefs.Store
}

// NewPageHandler creates a new page handler.
func NewPageHandler(database *db.DB, cfg *config.Config, domains *config.DomainsConfig, prefsStore *prefs.Store) *PageHandler {
	return &PageHandler{db: database, cfg: cfg, domains: domains, prefs: prefsStore}
}

// Index renders the dashboard: per-friend recommendation summaries and
// pending friend requests.
func (h *PageHandler) Index(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Redirect().To("/login")
	}

	summaries, err := h.db.GetFriendSummaries(c.Context(), user.ID)
	if err != nil {
		return err
	}

	requests, err := h.db.ListFriendRequests(c.Context(), user.ID)
	if err != nil {
		return err
	}

	return c.Render("index", MergeBranding(fiber.Map{
		"Title":     "Dashboard",
		"User":      user,
		"Summaries": summaries,
		"Requests":  requests,
		"Domains":   h.domains.Domains,
	}, h.cfg))
}

// Login renders the login page.
func (h *PageHandler) Login(c fiber.Ctx) error {
	if middleware.CurrentUser(c) != nil {
		return c.Redirect().To("/")
	}
	return c.Render("login", MergeBranding(fiber.Map{
		"Title": "Login",
	}, h.cfg), "")
}

// Inbox renders the recommendations a user has received for one media
// domain, run through the filter/sort/paginate pipeline.
func (h *PageHandler) Inbox(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Redirect().To("/login")
	}

	slug := c.Query("domain", string(domain.MoviesTV))
	if !domain.Valid(slug) {
		return fiber.NewError(fiber.StatusNotFound, "unknown media domain")
	}
	d := domain.Domain(slug)

	state := h.viewState(c, user.ID, "inbox:"+slug)

	recs, err := h.db.GetIncomingRecommendations(c.Context(), user.ID, slug)
	if err != nil {
		return err
	}

	page := listview.Apply(recs, state, domain.RecommendationAdapter(d))

	return c.Render("inbox", MergeBranding(fiber.Map{
		"Title":  "Inbox",
		"User":   user,
		"Domain": h.domains.GetDomain(slug),
		"State":  state,
		"Page":   page,
	}, h.cfg))
}

// Sent renders the recommendations a user has sent, newest first.
func (h *PageHandler) Sent(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Redirect().To("/login")
	}

	slug := c.Query("domain", "")
	if slug != "" && !domain.Valid(slug) {
		return fiber.NewError(fiber.StatusNotFound, "unknown media domain")
	}

	recs, err := h.db.GetOutgoingRecommendations(c.Context(), user.ID, slug)
	if err != nil {
		return err
	}

	return c.Render("sent", MergeBranding(fiber.Map{
		"Title":           "Sent",
		"User":            user,
		"Recommendations": recs,
		"Domains":         h.domains.Domains,
		"Selected":        slug,
	}, h.cfg))
}

// Collection renders a user's own tracked collection for one media domain.
func (h *PageHandler) Collection(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Redirect().To("/login")
	}

	slug := c.Query("domain", string(domain.MoviesTV))
	if !domain.Valid(slug) {
		return fiber.NewError(fiber.StatusNotFound, "unknown media domain")
	}
	d := domain.Domain(slug)

	state := h.viewState(c, user.ID, "collection:"+slug)

	items, err := h.db.GetMediaItems(c.Context(), user.ID, slug)
	if err != nil {
		return err
	}

	page := listview.Apply(items, state, domain.MediaItemAdapter(d))

	return c.Render("collection", MergeBranding(fiber.Map{
		"Title":  "Collection",
		"User":   user,
		"Domain": h.domains.GetDomain(slug),
		"State":  state,
		"Page":   page,
	}, h.cfg))
}

// Profile renders the user's profile with friends and pending requests.
func (h *PageHandler) Profile(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Redirect().To("/login")
	}

	friends, err := h.db.ListFriends(c.Context(), user.ID)
	if err != nil {
		return err
	}

	requests, err := h.db.ListFriendRequests(c.Context(), user.ID)
	if err != nil {
		return err
	}

	return c.Render("profile", MergeBranding(fiber.Map{
		"Title":    "Profile",
		"User":     user,
		"Friends":  friends,
		"Requests": requests,
	}, h.cfg))
}

// viewState loads the persisted preferences for one view, applies any
// overrides carried in the query string, and persists changed preferences
// through the debounced store. Search and page are per-request only.
func (h *PageHandler) viewState(c fiber.Ctx, userID uuid.UUID, viewID string) listview.State {
	p := h.prefs.Load(userID, viewID)

	changed := false
	if raw := c.Query("genres"); raw != "" {
		filters := strings.Split(raw, ",")
		if ok, _ := validation.ValidateGenres(filters); ok {
			p.GenreFilters = validation.NormalizeGenres(filters)
			changed = true
		}
	}
	if sort := c.Query("sort"); sort != "" {
		p.SortBy = sort
		changed = true
	}
	if raw := c.Query("per_page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			p.ItemsPerPage = validation.ClampItemsPerPage(n)
			changed = true
		}
	}

	if changed {
		// The view still works this request if only persistence fails.
		if err := h.prefs.Save(userID, viewID, p); err != nil {
			log.Printf("Failed to save view preferences for %s: %v", viewID, err)
		}
	}

	currentPage := 1
	if n, err := strconv.Atoi(c.Query("page", "1")); err == nil && n > 0 {
		currentPage = n
	}

	state := listview.StateFrom(p, c.Query("q"), currentPage)
	if changed {
		// Changing filters or page size always lands back on page 1.
		state.CurrentPage = 1
	}
	return state
}
