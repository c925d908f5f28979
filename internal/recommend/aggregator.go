package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/tinykiri/readiculous/internal/domain"
	"github.com/tinykiri/readiculous/internal/normalize"
)

// CatalogSearcher is the subset of the catalog client the aggregator needs.
// Every method degrades to an empty slice on failure.
type CatalogSearcher interface {
	SearchByAuthor(ctx context.Context, author string) []domain.RecommendationCandidate
	SearchSimilar(ctx context.Context, title, author string) []domain.RecommendationCandidate
	SearchByPublisher(ctx context.Context, publisher string) []domain.RecommendationCandidate
	SearchByLanguage(ctx context.Context, language string) []domain.RecommendationCandidate
}

const (
	maxRecommendations = 20

	authorStrategySeeds  = 3
	similarStrategySeeds = 3

	keepPerAuthor    = 3
	keepPerSeed      = 2
	keepPerPublisher = 2
	keepPerLanguage  = 2
)

// Aggregator assembles recommendations from multiple catalog strategies.
type Aggregator struct {
	catalog CatalogSearcher
	logger  *slog.Logger
}

// NewAggregator creates an aggregator over a catalog searcher.
func NewAggregator(catalog CatalogSearcher, logger *slog.Logger) *Aggregator {
	return &Aggregator{catalog: catalog, logger: logger}
}

// Recommend builds a ranked recommendation list for a library snapshot.
//
// Strategies run concurrently but their results are assembled in a fixed
// order (authors, similar, publisher, language), so the output is
// deterministic for a given set of catalog responses. An empty library
// returns nil without touching the catalog.
func (a *Aggregator) Recommend(ctx context.Context, entries []domain.LibraryEntry, profile domain.PreferenceProfile) []domain.RecommendationCandidate {
	if len(entries) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(entries))
	for i := range entries {
		seen[entries[i].SeenKey()] = struct{}{}
	}

	authorSeeds := profile.FavoriteAuthors
	if len(authorSeeds) > authorStrategySeeds {
		authorSeeds = authorSeeds[:authorStrategySeeds]
	}
	similarSeeds := topRatedEntries(entries, similarStrategySeeds)

	// One result slot per author seed, per similar seed, then publisher and
	// language. Filling slots by index keeps assembly order fixed no matter
	// which goroutine finishes first.
	slots := make([][]domain.RecommendationCandidate, len(authorSeeds)+len(similarSeeds)+2)
	publisherSlot := len(authorSeeds) + len(similarSeeds)
	languageSlot := publisherSlot + 1

	var wg sync.WaitGroup

	for i, author := range authorSeeds {
		wg.Add(1)
		go func(slot int, name string) {
			defer wg.Done()
			results := a.catalog.SearchByAuthor(ctx, name)
			slots[slot] = keepCandidates(results, seen, keepPerAuthor, nil, "Other books by "+name)
		}(i, author.Name)
	}

	for i := range similarSeeds {
		wg.Add(1)
		go func(slot int, seed *domain.LibraryEntry) {
			defer wg.Done()
			results := a.catalog.SearchSimilar(ctx, seed.Title, seed.Author)
			// The query was built from the sanitized title, so editions that
			// differ only in punctuation still count as the same book.
			seedTitle := strings.ToLower(normalize.Query(seed.Title))
			seedAuthor := strings.ToLower(seed.Author)
			slots[slot] = keepCandidates(results, seen, keepPerSeed, func(c *domain.RecommendationCandidate) bool {
				// The catalog tends to return the seed book itself and other
				// editions of it; skip those along with same-author hits.
				if strings.Contains(strings.ToLower(c.Title), seedTitle) {
					return false
				}
				return strings.ToLower(c.PrimaryAuthor()) != seedAuthor
			}, fmt.Sprintf("Because you liked %q", seed.Title))
		}(len(authorSeeds)+i, &similarSeeds[i])
	}

	if len(profile.TopPublishers) > 0 {
		wg.Add(1)
		go func(publisher string) {
			defer wg.Done()
			results := a.catalog.SearchByPublisher(ctx, publisher)
			slots[publisherSlot] = keepCandidates(results, seen, keepPerPublisher, nil, "New from "+publisher)
		}(profile.TopPublishers[0])
	}

	// Users log languages in whatever form they like ("German", "eng",
	// "pt-BR"); the catalog only understands ISO 639-1 codes.
	if lang := normalize.LanguageCode(profile.LanguagePreference); lang != "" && lang != "en" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results := a.catalog.SearchByLanguage(ctx, lang)
			display := normalize.Language(lang)
			if display == "" {
				display = lang
			}
			slots[languageSlot] = keepCandidates(results, seen, keepPerLanguage, nil, "Popular in "+display)
		}()
	}

	wg.Wait()

	merged := make([]domain.RecommendationCandidate, 0, maxRecommendations)
	byID := make(map[string]struct{})
	for _, slot := range slots {
		for i := range slot {
			c := slot[i]
			if _, dup := byID[c.CatalogID]; dup {
				continue
			}
			byID[c.CatalogID] = struct{}{}
			merged = append(merged, c)
		}
	}

	// Stable sort: equally-rated candidates keep strategy order.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].AverageRating > merged[j].AverageRating
	})

	if len(merged) > maxRecommendations {
		merged = merged[:maxRecommendations]
	}

	if a.logger != nil {
		a.logger.Debug("assembled recommendations",
			"entries", len(entries),
			"results", len(merged),
		)
	}
	return merged
}

// keepCandidates filters out books already in the library, applies an
// optional strategy-specific predicate, stamps the reason, and caps the
// result.
func keepCandidates(results []domain.RecommendationCandidate, seen map[string]struct{}, max int, keep func(*domain.RecommendationCandidate) bool, reason string) []domain.RecommendationCandidate {
	kept := make([]domain.RecommendationCandidate, 0, max)
	for i := range results {
		c := results[i]
		key := strings.ToLower(c.Title) + "_" + strings.ToLower(c.PrimaryAuthor())
		if _, owned := seen[key]; owned {
			continue
		}
		if keep != nil && !keep(&c) {
			continue
		}
		c.Reason = reason
		kept = append(kept, c)
		if len(kept) == max {
			break
		}
	}
	return kept
}

// topRatedEntries returns the n highest-rated entries, first-seen order
// breaking ties. Unrated entries sort last.
func topRatedEntries(entries []domain.LibraryEntry, n int) []domain.LibraryEntry {
	sorted := make([]domain.LibraryEntry, len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RatingOrZero() > sorted[j].RatingOrZero()
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
