// Package domain contains the core business entities for the readiculous book tracker.
package domain

import (
	"strings"
	"time"
)

// LibraryEntry represents one book in a user's personal library.
// Entries are private to their owner; every store query is scoped by UserID.
type LibraryEntry struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	Title            string     `json:"title"`
	Author           string     `json:"author"`
	Publisher        string     `json:"publisher,omitempty"`
	OriginalLanguage string     `json:"original_language,omitempty"`
	YearPublished    int        `json:"year_published,omitempty"`
	CoverURL         string     `json:"cover_url,omitempty"`
	CoverBlurhash    string     `json:"cover_blurhash,omitempty"`
	Rating           *float64   `json:"rating,omitempty"`
	Comment          string     `json:"comment,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// SeenKey returns the dedup key used to exclude books the user already has
// from recommendation results. Case-insensitive over title and author.
func (e *LibraryEntry) SeenKey() string {
	return strings.ToLower(e.Title) + "_" + strings.ToLower(e.Author)
}

// IsRated reports whether the entry carries a rating.
func (e *LibraryEntry) IsRated() bool {
	return e.Rating != nil
}

// RatingOrZero returns the rating, treating unrated entries as 0.
func (e *LibraryEntry) RatingOrZero() float64 {
	if e.Rating == nil {
		return 0
	}
	return *e.Rating
}

// OverlapsYear reports whether the entry's reading period touches the given
// calendar year. An entry with only a start date counts for its start year,
// an entry with only a finish date for its finish year.
func (e *LibraryEntry) OverlapsYear(year int) bool {
	switch {
	case e.StartedAt != nil && e.FinishedAt != nil:
		return e.StartedAt.Year() <= year && year <= e.FinishedAt.Year()
	case e.StartedAt != nil:
		return e.StartedAt.Year() == year
	case e.FinishedAt != nil:
		return e.FinishedAt.Year() == year
	default:
		return false
	}
}

// Quote is a passage saved from a library entry.
// Ownership is derived from the parent entry; quotes carry no user id.
type Quote struct {
	ID        string    `json:"id"`
	EntryID   string    `json:"entry_id"`
	Text      string    `json:"text"`
	Page      *int      `json:"page,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CalendarData is the reading calendar for one user and year.
type CalendarData struct {
	AvailableYears []int          `json:"availableYears"`
	Books          []LibraryEntry `json:"books"`
}
