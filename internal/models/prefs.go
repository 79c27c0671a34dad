package models

// SortCustom is the sort mode that enables manual reordering.
const SortCustom = "custom"

// GenreAll is the sentinel genre filter that matches every item.
const GenreAll = "all"

// ViewPreferences is the per-view slice of list state that survives across
// sessions. Free-text search and the current page deliberately do not.
type ViewPreferences struct {
	GenreFilters []string `json:"genre_filters"`
	SortBy       string   `json:"sort_by"`
	ItemsPerPage int      `json:"items_per_page"`
}

// DefaultViewPreferences returns the preferences used before a user has
// customized a view.
func DefaultViewPreferences() ViewPreferences {
	return ViewPreferences{
		GenreFilters: []string{GenreAll},
		SortBy:       SortCustom,
		ItemsPerPage: 20,
	}
}
