// Package listview turns a raw collection into a page of items:
// filter, then sort, then paginate, in that order. The engine is generic;
// each media domain supplies an Adapter with its own accessors and
// comparator table.
package listview

import (
	"sort"
	"strings"

	"recshelf/internal/models"
)

// Adapter supplies the domain-specific pieces of the pipeline for item type T.
type Adapter[T any] struct {
	// Genres returns the item's genre set for filter matching.
	Genres func(T) []string
	// SearchFields returns the strings matched by free-text search.
	SearchFields func(T) []string
	// Comparators maps a sortBy key to its comparator. Comparators are
	// applied with a stable sort so equal keys keep their input order.
	Comparators map[string]func(a, b T) int
}

// State is the view state driving one list. GenreFilters, SortBy and
// ItemsPerPage persist across sessions; SearchQuery and CurrentPage are
// per-request only.
type State struct {
	GenreFilters []string `json:"genre_filters"`
	SortBy       string   `json:"sort_by"`
	ItemsPerPage int      `json:"items_per_page"`
	SearchQuery  string   `json:"search_query"`
	CurrentPage  int      `json:"current_page"`
}

// StateFrom builds a State from persisted preferences plus the per-request
// parts.
func StateFrom(prefs models.ViewPreferences, searchQuery string, currentPage int) State {
	return State{
		GenreFilters: prefs.GenreFilters,
		SortBy:       prefs.SortBy,
		ItemsPerPage: prefs.ItemsPerPage,
		SearchQuery:  searchQuery,
		CurrentPage:  currentPage,
	}
}

// WithItemsPerPage returns a copy with the new page size and the page reset
// to 1. The reset is unconditional: staying on page 3 after the page size
// changes reads as "page 3 of 1" the moment a filter narrows the results.
func (s State) WithItemsPerPage(n int) State {
	s.ItemsPerPage = n
	s.CurrentPage = 1
	return s
}

// WithGenreFilters returns a copy with the new filters and the page reset to 1.
func (s State) WithGenreFilters(filters []string) State {
	s.GenreFilters = filters
	s.CurrentPage = 1
	return s
}

// WithSearchQuery returns a copy with the new query and the page reset to 1.
func (s State) WithSearchQuery(q string) State {
	s.SearchQuery = q
	s.CurrentPage = 1
	return s
}

// Page is one page of the pipeline output. Filtered holds the full filtered
// and sorted collection; reordering operates on it rather than on the
// visible slice, so an item can move past page boundaries.
type Page[T any] struct {
	Items       []T `json:"items"`
	Filtered    []T `json:"-"`
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
}

// Apply runs filter, sort and paginate over items and returns the requested
// page. The input slice is not modified. The requested page is clamped into
// [1, totalPages].
func Apply[T any](items []T, state State, a Adapter[T]) Page[T] {
	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if !matchesGenres(a.Genres(item), state.GenreFilters) {
			continue
		}
		if !matchesSearch(a.SearchFields(item), state.SearchQuery) {
			continue
		}
		filtered = append(filtered, item)
	}

	if cmp, ok := a.Comparators[state.SortBy]; ok {
		sort.SliceStable(filtered, func(i, j int) bool {
			return cmp(filtered[i], filtered[j]) < 0
		})
	}

	perPage := state.ItemsPerPage
	if perPage < 1 {
		perPage = models.DefaultViewPreferences().ItemsPerPage
	}

	totalPages := (len(filtered) + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	page := state.CurrentPage
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return Page[T]{
		Items:       filtered[start:end],
		Filtered:    filtered,
		TotalItems:  len(filtered),
		TotalPages:  totalPages,
		CurrentPage: page,
	}
}

// matchesGenres reports whether the item's genre set intersects the active
// filter set. The "all" sentinel (or an empty filter) passes everything.
func matchesGenres(itemGenres, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if f == models.GenreAll {
			return true
		}
	}
	for _, f := range filters {
		for _, g := range itemGenres {
			if strings.EqualFold(f, g) {
				return true
			}
		}
	}
	return false
}

// matchesSearch reports whether any field contains the query,
// case-insensitively. An empty query passes everything.
func matchesSearch(fields []string, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
