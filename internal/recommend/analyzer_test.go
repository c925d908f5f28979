package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinykiri/readiculous/internal/domain"
)

func rated(title, author string, rating float64) domain.LibraryEntry {
	return domain.LibraryEntry{Title: title, Author: author, Rating: &rating}
}

func TestAnalyze_EmptyLibrary(t *testing.T) {
	profile := Analyze(nil)
	assert.True(t, profile.IsEmpty())
}

func TestAnalyze_FavoriteAuthors(t *testing.T) {
	entries := []domain.LibraryEntry{
		rated("A Wizard of Earthsea", "Ursula K. Le Guin", 5),
		rated("The Tombs of Atuan", "Ursula K. Le Guin", 4),
		rated("Kindred", "Octavia E. Butler", 5),
		rated("Skippable", "Forgettable Author", 2), // below threshold
		{Title: "Unrated", Author: "Nobody"},
	}

	profile := Analyze(entries)

	require.Len(t, profile.FavoriteAuthors, 2)
	// Butler's single 5 beats Le Guin's 4.5 average.
	assert.Equal(t, "Octavia E. Butler", profile.FavoriteAuthors[0].Name)
	assert.Equal(t, 5.0, profile.FavoriteAuthors[0].AvgRating)
	assert.Equal(t, 1, profile.FavoriteAuthors[0].Count)
	assert.Equal(t, "Ursula K. Le Guin", profile.FavoriteAuthors[1].Name)
	assert.Equal(t, 4.5, profile.FavoriteAuthors[1].AvgRating)
	assert.Equal(t, 2, profile.FavoriteAuthors[1].Count)
}

func TestAnalyze_FavoriteAuthorsCapAndTies(t *testing.T) {
	entries := []domain.LibraryEntry{
		rated("1", "First", 4),
		rated("2", "Second", 4),
		rated("3", "Third", 4),
		rated("4", "Fourth", 4),
		rated("5", "Fifth", 4),
		rated("6", "Sixth", 4),
	}

	profile := Analyze(entries)

	require.Len(t, profile.FavoriteAuthors, 5)
	// Equal averages keep first-seen order, so Sixth falls off.
	assert.Equal(t, "First", profile.FavoriteAuthors[0].Name)
	assert.Equal(t, "Fifth", profile.FavoriteAuthors[4].Name)
}

func TestAnalyze_TopPublishers(t *testing.T) {
	mk := func(publisher string, rating float64) domain.LibraryEntry {
		e := rated("t", "a", rating)
		e.Publisher = publisher
		return e
	}

	entries := []domain.LibraryEntry{
		mk("Tor", 5),
		mk("Tor", 4),
		mk("Orbit", 4.5),
		mk("Gollancz", 4),
		mk("Voyager", 4),
		mk("Ignored", 3), // below threshold
	}

	profile := Analyze(entries)

	require.Len(t, profile.TopPublishers, 3)
	assert.Equal(t, "Tor", profile.TopPublishers[0])
}

func TestAnalyze_LanguageMode(t *testing.T) {
	entries := []domain.LibraryEntry{
		{Title: "1", Author: "a", OriginalLanguage: "pl"},
		{Title: "2", Author: "a", OriginalLanguage: "en"},
		{Title: "3", Author: "a", OriginalLanguage: "pl"},
		{Title: "4", Author: "a"},
	}

	profile := Analyze(entries)
	assert.Equal(t, "pl", profile.LanguagePreference)
}

func TestAnalyze_LanguageModeTieFirstSeen(t *testing.T) {
	entries := []domain.LibraryEntry{
		{Title: "1", Author: "a", OriginalLanguage: "ja"},
		{Title: "2", Author: "a", OriginalLanguage: "fr"},
	}

	profile := Analyze(entries)
	assert.Equal(t, "ja", profile.LanguagePreference)
}

func TestAnalyze_Averages(t *testing.T) {
	five := 5.0
	entries := []domain.LibraryEntry{
		{Title: "1", Author: "a", Rating: &five, YearPublished: 1970},
		{Title: "2", Author: "a", YearPublished: 1980},
		{Title: "3", Author: "a"}, // no year, no rating
	}

	profile := Analyze(entries)

	assert.InDelta(t, 1975.0, profile.AvgYearPublished, 0.001)
	// Missing ratings count as zero over all three entries.
	assert.InDelta(t, 5.0/3.0, profile.AvgRating, 0.001)
}

func TestAnalyze_Deterministic(t *testing.T) {
	entries := []domain.LibraryEntry{
		rated("A", "X", 4),
		rated("B", "Y", 4.5),
		rated("C", "Z", 4),
	}

	first := Analyze(entries)
	second := Analyze(entries)
	assert.Equal(t, first, second)
}
