package validation

import (
	"strings"
	"unicode/utf8"

	"recshelf/internal/models"
)

const (
	MaxTitleLength   = 300
	MaxCreatorLength = 200
	MaxCommentLength = 2000
	MaxGenres        = 10
	MaxGenreLength   = 50

	MinItemsPerPage = 5
	MaxItemsPerPage = 100

	MinRating = 1
	MaxRating = 10

	MinReleaseYear = 1800
	MaxReleaseYear = 2100
)

// ValidateTitle checks a media title for presence and length.
func ValidateTitle(title string) (bool, string) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return false, "Title is required"
	}
	if utf8.RuneCountInString(trimmed) > MaxTitleLength {
		return false, "Title is too long"
	}
	return true, ""
}

// ValidateCreator checks the optional creator field (artist, author,
// director or studio).
func ValidateCreator(creator string) (bool, string) {
	if utf8.RuneCountInString(creator) > MaxCreatorLength {
		return false, "Creator is too long"
	}
	return true, ""
}

// ValidateComment checks a free-text comment or message.
func ValidateComment(comment string) (bool, string) {
	if utf8.RuneCountInString(comment) > MaxCommentLength {
		return false, "Comment is too long"
	}
	return true, ""
}

// ValidateStatus checks a recommendation or collection status value.
func ValidateStatus(status string) (bool, string) {
	if !models.ValidStatus(status) {
		return false, "Status must be one of: pending, consumed, hit, miss"
	}
	return true, ""
}

// ValidateGenres checks a genre list for count and per-genre length.
func ValidateGenres(genres []string) (bool, string) {
	if len(genres) > MaxGenres {
		return false, "Too many genres"
	}
	for _, g := range genres {
		if strings.TrimSpace(g) == "" {
			return false, "Genres cannot be empty"
		}
		if utf8.RuneCountInString(g) > MaxGenreLength {
			return false, "Genre is too long"
		}
	}
	return true, ""
}

// NormalizeGenres lowercases and trims genres so filters match
// case-insensitively.
func NormalizeGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		g = strings.ToLower(strings.TrimSpace(g))
		if g != "" {
			out = append(out, g)
		}
	}
	return out
}

// ValidateRating checks an optional 1-10 rating. A nil rating is valid.
func ValidateRating(rating *int) (bool, string) {
	if rating == nil {
		return true, ""
	}
	if *rating < MinRating || *rating > MaxRating {
		return false, "Rating must be between 1 and 10"
	}
	return true, ""
}

// ValidateReleaseYear checks an optional release year. A nil year is valid.
func ValidateReleaseYear(year *int) (bool, string) {
	if year == nil {
		return true, ""
	}
	if *year < MinReleaseYear || *year > MaxReleaseYear {
		return false, "Release year is out of range"
	}
	return true, ""
}

// ClampItemsPerPage forces a page size into the allowed range.
func ClampItemsPerPage(n int) int {
	if n < MinItemsPerPage {
		return MinItemsPerPage
	}
	if n > MaxItemsPerPage {
		return MaxItemsPerPage
	}
	return n
}
