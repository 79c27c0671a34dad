// Package domain defines the four media domains and the list adapters each
// one supplies to the generic list engine. The engine never sees open-ended
// callbacks; it is parameterized over this closed set.
package domain

import (
	"strings"

	"recshelf/internal/listview"
	"recshelf/internal/models"
)

// Domain identifies one media domain.
type Domain string

const (
	MoviesTV Domain = "moviestv"
	Music    Domain = "music"
	Books    Domain = "books"
	Games    Domain = "games"
)

// All lists every supported domain.
func All() []Domain {
	return []Domain{MoviesTV, Music, Books, Games}
}

// Valid reports whether slug names a supported domain.
func Valid(slug string) bool {
	switch Domain(slug) {
	case MoviesTV, Music, Books, Games:
		return true
	}
	return false
}

// ConsumedLabel returns the domain's word for leaving pending.
func (d Domain) ConsumedLabel() string {
	switch d {
	case MoviesTV:
		return "watched"
	case Music:
		return "listened"
	case Books:
		return "read"
	case Games:
		return "played"
	}
	return "consumed"
}

// StatusLabel translates a canonical status into the domain's vocabulary.
func (d Domain) StatusLabel(status string) string {
	if status == models.StatusConsumed {
		return d.ConsumedLabel()
	}
	return status
}

// CreatorLabel returns the domain's name for the creator field.
func (d Domain) CreatorLabel() string {
	switch d {
	case Music:
		return "artist"
	case Books:
		return "author"
	case Games:
		return "studio"
	}
	return "director"
}

// statusRank orders statuses for status sorting: pending first, then
// consumed, hit, miss.
func statusRank(status string) int {
	switch status {
	case models.StatusPending:
		return 0
	case models.StatusConsumed:
		return 1
	case models.StatusHit:
		return 2
	case models.StatusMiss:
		return 3
	}
	return 4
}

func compareYears(a, b *int) int {
	av, bv := 0, 0
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av - bv
}

// RecommendationAdapter builds the list adapter for one domain's
// recommendation views.
func RecommendationAdapter(d Domain) listview.Adapter[models.RecommendationWithUser] {
	comparators := map[string]func(a, b models.RecommendationWithUser) int{
		"sent": func(a, b models.RecommendationWithUser) int {
			// Newest first.
			return b.SentAt.Compare(a.SentAt)
		},
		"title": func(a, b models.RecommendationWithUser) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		},
		"status": func(a, b models.RecommendationWithUser) int {
			return statusRank(a.Status) - statusRank(b.Status)
		},
		models.SortCustom: func(a, b models.RecommendationWithUser) int {
			return a.CustomOrder - b.CustomOrder
		},
	}

	switch d {
	case MoviesTV:
		comparators["year"] = func(a, b models.RecommendationWithUser) int {
			return compareYears(a.ReleaseYear, b.ReleaseYear)
		}
	case Music:
		comparators["artist"] = func(a, b models.RecommendationWithUser) int {
			return strings.Compare(strings.ToLower(a.Creator), strings.ToLower(b.Creator))
		}
	case Books:
		comparators["author"] = func(a, b models.RecommendationWithUser) int {
			return strings.Compare(strings.ToLower(a.Creator), strings.ToLower(b.Creator))
		}
	case Games:
		comparators["platform"] = func(a, b models.RecommendationWithUser) int {
			return strings.Compare(strings.ToLower(a.Platform), strings.ToLower(b.Platform))
		}
	}

	return listview.Adapter[models.RecommendationWithUser]{
		Genres: func(r models.RecommendationWithUser) []string { return r.Genres },
		SearchFields: func(r models.RecommendationWithUser) []string {
			return []string{r.Title, r.Creator, r.UserName}
		},
		Comparators: comparators,
	}
}

// MediaItemAdapter builds the list adapter for one domain's collection view.
func MediaItemAdapter(d Domain) listview.Adapter[models.MediaItem] {
	comparators := map[string]func(a, b models.MediaItem) int{
		"added": func(a, b models.MediaItem) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		},
		"title": func(a, b models.MediaItem) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		},
		"rating": func(a, b models.MediaItem) int {
			// Highest rating first; unrated items sink.
			av, bv := 0, 0
			if a.Rating != nil {
				av = *a.Rating
			}
			if b.Rating != nil {
				bv = *b.Rating
			}
			return bv - av
		},
		"status": func(a, b models.MediaItem) int {
			return statusRank(a.Status) - statusRank(b.Status)
		},
		models.SortCustom: func(a, b models.MediaItem) int {
			return a.CustomOrder - b.CustomOrder
		},
	}

	switch d {
	case MoviesTV:
		comparators["year"] = func(a, b models.MediaItem) int {
			return compareYears(a.ReleaseYear, b.ReleaseYear)
		}
	case Music:
		comparators["artist"] = func(a, b models.MediaItem) int {
			return strings.Compare(strings.ToLower(a.Creator), strings.ToLower(b.Creator))
		}
	case Books:
		comparators["author"] = func(a, b models.MediaItem) int {
			return strings.Compare(strings.ToLower(a.Creator), strings.ToLower(b.Creator))
		}
	case Games:
		comparators["platform"] = func(a, b models.MediaItem) int {
			return strings.Compare(strings.ToLower(a.Platform), strings.ToLower(b.Platform))
		}
	}

	return listview.Adapter[models.MediaItem]{
		Genres: func(m models.MediaItem) []string { return m.Genres },
		SearchFields: func(m models.MediaItem) []string {
			return []string{m.Title, m.Creator, m.Notes}
		},
		Comparators: comparators,
	}
}
