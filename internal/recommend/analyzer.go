// Package recommend derives reading preferences from a user's library and
// turns them into catalog-backed recommendations.
package recommend

import (
	"sort"
	"strings"

	"github.com/tinykiri/readiculous/internal/domain"
)

// favoriteRatingThreshold marks an entry as a signal of taste. Only books
// rated at or above it feed the author and publisher preferences.
const favoriteRatingThreshold = 4.0

const (
	maxFavoriteAuthors = 5
	maxTopPublishers   = 3
)

// Analyze derives a preference profile from a snapshot of library entries.
// It is a pure function of its input; identical snapshots always produce
// identical profiles.
func Analyze(entries []domain.LibraryEntry) domain.PreferenceProfile {
	var profile domain.PreferenceProfile
	if len(entries) == 0 {
		return profile
	}

	profile.FavoriteAuthors = favoriteAuthors(entries)
	profile.TopPublishers = topPublishers(entries)
	profile.LanguagePreference = languageMode(entries)
	profile.AvgYearPublished = avgYear(entries)
	profile.AvgRating = avgRating(entries)

	return profile
}

// favoriteAuthors groups highly-rated entries by author and ranks authors
// by their average rating.
func favoriteAuthors(entries []domain.LibraryEntry) []domain.AuthorPreference {
	type authorStats struct {
		total float64
		count int
	}

	stats := make(map[string]*authorStats)
	var order []string

	for i := range entries {
		e := &entries[i]
		if !e.IsRated() || *e.Rating < favoriteRatingThreshold {
			continue
		}
		author := strings.TrimSpace(e.Author)
		if author == "" {
			continue
		}
		s, ok := stats[author]
		if !ok {
			s = &authorStats{}
			stats[author] = s
			order = append(order, author)
		}
		s.total += *e.Rating
		s.count++
	}

	prefs := make([]domain.AuthorPreference, 0, len(order))
	for _, author := range order {
		s := stats[author]
		prefs = append(prefs, domain.AuthorPreference{
			Name:      author,
			AvgRating: s.total / float64(s.count),
			Count:     s.count,
		})
	}

	// Stable sort keeps first-seen order between equally-rated authors.
	sort.SliceStable(prefs, func(i, j int) bool {
		return prefs[i].AvgRating > prefs[j].AvgRating
	})

	if len(prefs) > maxFavoriteAuthors {
		prefs = prefs[:maxFavoriteAuthors]
	}
	return prefs
}

// topPublishers counts publishers across highly-rated entries.
func topPublishers(entries []domain.LibraryEntry) []string {
	counts := make(map[string]int)
	var order []string

	for i := range entries {
		e := &entries[i]
		if !e.IsRated() || *e.Rating < favoriteRatingThreshold {
			continue
		}
		publisher := strings.TrimSpace(e.Publisher)
		if publisher == "" {
			continue
		}
		if _, ok := counts[publisher]; !ok {
			order = append(order, publisher)
		}
		counts[publisher]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > maxTopPublishers {
		order = order[:maxTopPublishers]
	}
	return order
}

// languageMode returns the most common original language, first seen
// winning ties.
func languageMode(entries []domain.LibraryEntry) string {
	counts := make(map[string]int)
	var order []string

	for i := range entries {
		lang := strings.TrimSpace(entries[i].OriginalLanguage)
		if lang == "" {
			continue
		}
		if _, ok := counts[lang]; !ok {
			order = append(order, lang)
		}
		counts[lang]++
	}

	best := ""
	bestCount := 0
	for _, lang := range order {
		if counts[lang] > bestCount {
			best = lang
			bestCount = counts[lang]
		}
	}
	return best
}

// avgYear is the mean publication year over entries that have one.
func avgYear(entries []domain.LibraryEntry) float64 {
	total := 0
	count := 0
	for i := range entries {
		if entries[i].YearPublished > 0 {
			total += entries[i].YearPublished
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

// avgRating is the mean rating over all entries, unrated counting as 0.
func avgRating(entries []domain.LibraryEntry) float64 {
	total := 0.0
	for i := range entries {
		total += entries[i].RatingOrZero()
	}
	return total / float64(len(entries))
}
