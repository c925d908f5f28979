package recommend

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinykiri/readiculous/internal/domain"
)

// stubCatalog returns canned results per strategy and counts calls.
type stubCatalog struct {
	byAuthor    map[string][]domain.RecommendationCandidate
	similar     map[string][]domain.RecommendationCandidate
	byPublisher map[string][]domain.RecommendationCandidate
	byLanguage  map[string][]domain.RecommendationCandidate
	calls       atomic.Int64
}

func (s *stubCatalog) SearchByAuthor(_ context.Context, author string) []domain.RecommendationCandidate {
	s.calls.Add(1)
	return s.byAuthor[author]
}

func (s *stubCatalog) SearchSimilar(_ context.Context, title, _ string) []domain.RecommendationCandidate {
	s.calls.Add(1)
	return s.similar[title]
}

func (s *stubCatalog) SearchByPublisher(_ context.Context, publisher string) []domain.RecommendationCandidate {
	s.calls.Add(1)
	return s.byPublisher[publisher]
}

func (s *stubCatalog) SearchByLanguage(_ context.Context, language string) []domain.RecommendationCandidate {
	s.calls.Add(1)
	return s.byLanguage[language]
}

func candidate(id, title, author string, avgRating float64) domain.RecommendationCandidate {
	return domain.RecommendationCandidate{
		CatalogID:     id,
		Title:         title,
		Authors:       []string{author},
		AverageRating: avgRating,
	}
}

func TestRecommend_EmptyLibrarySkipsCatalog(t *testing.T) {
	catalog := &stubCatalog{}
	agg := NewAggregator(catalog, nil)

	got := agg.Recommend(context.Background(), nil, domain.PreferenceProfile{})

	assert.Empty(t, got)
	assert.Zero(t, catalog.calls.Load())
}

func TestRecommend_AuthorStrategy(t *testing.T) {
	entries := []domain.LibraryEntry{
		rated("A Wizard of Earthsea", "Ursula K. Le Guin", 5),
	}
	profile := Analyze(entries)

	catalog := &stubCatalog{
		byAuthor: map[string][]domain.RecommendationCandidate{
			"Ursula K. Le Guin": {
				// Already on the shelf, must be dropped.
				candidate("vol-owned", "A Wizard of Earthsea", "Ursula K. Le Guin", 4.5),
				candidate("vol-1", "The Dispossessed", "Ursula K. Le Guin", 4.3),
				candidate("vol-2", "The Lathe of Heaven", "Ursula K. Le Guin", 4.1),
				candidate("vol-3", "Rocannon's World", "Ursula K. Le Guin", 3.8),
				candidate("vol-4", "Past the cap", "Ursula K. Le Guin", 3.9),
			},
		},
		similar: map[string][]domain.RecommendationCandidate{},
	}
	agg := NewAggregator(catalog, nil)

	got := agg.Recommend(context.Background(), entries, profile)

	require.Len(t, got, 3)
	for _, c := range got {
		assert.Equal(t, "Other books by Ursula K. Le Guin", c.Reason)
		assert.NotEqual(t, "vol-owned", c.CatalogID)
	}
}

func TestRecommend_SimilarStrategyExclusions(t *testing.T) {
	entries := []domain.LibraryEntry{
		rated("Roadside Picnic", "Arkady Strugatsky", 5),
	}

	catalog := &stubCatalog{
		similar: map[string][]domain.RecommendationCandidate{
			"Roadside Picnic": {
				// Another edition of the seed: title containment.
				candidate("vol-ed", "Roadside Picnic (SF Masterworks)", "Boris Strugatsky", 4.4),
				// Same author as the seed.
				candidate("vol-same", "Hard to Be a God", "Arkady Strugatsky", 4.2),
				candidate("vol-1", "Solaris", "Stanislaw Lem", 4.1),
				candidate("vol-2", "Annihilation", "Jeff VanderMeer", 4.0),
				candidate("vol-3", "Past the cap", "Someone Else", 3.9),
			},
		},
		byAuthor: map[string][]domain.RecommendationCandidate{},
	}
	agg := NewAggregator(catalog, nil)

	got := agg.Recommend(context.Background(), entries, Analyze(entries))

	var similar []domain.RecommendationCandidate
	for _, c := range got {
		if c.Reason == `Because you liked "Roadside Picnic"` {
			similar = append(similar, c)
		}
	}

	require.Len(t, similar, 2)
	assert.Equal(t, "vol-1", similar[0].CatalogID)
	assert.Equal(t, "vol-2", similar[1].CatalogID)
}

func TestRecommend_PublisherAndLanguageStrategies(t *testing.T) {
	mk := func(title string, rating float64, publisher, lang string) domain.LibraryEntry {
		e := rated(title, "Author "+title, rating)
		e.Publisher = publisher
		e.OriginalLanguage = lang
		return e
	}
	entries := []domain.LibraryEntry{
		mk("One", 5, "Tor", "pl"),
		mk("Two", 4.5, "Tor", "pl"),
	}
	profile := Analyze(entries)

	catalog := &stubCatalog{
		byAuthor: map[string][]domain.RecommendationCandidate{},
		similar:  map[string][]domain.RecommendationCandidate{},
		byPublisher: map[string][]domain.RecommendationCandidate{
			"Tor": {
				candidate("vol-p1", "Fresh Off the Press", "New Author", 4.0),
				candidate("vol-p2", "Also Fresh", "Other Author", 3.5),
				candidate("vol-p3", "Past the cap", "Third Author", 3.0),
			},
		},
		byLanguage: map[string][]domain.RecommendationCandidate{
			"pl": {
				candidate("vol-l1", "Lalka", "Boleslaw Prus", 4.6),
				candidate("vol-l2", "Ferdydurke", "Witold Gombrowicz", 4.2),
				candidate("vol-l3", "Past the cap", "Ktos Inny", 4.0),
			},
		},
	}
	agg := NewAggregator(catalog, nil)

	got := agg.Recommend(context.Background(), entries, profile)

	reasons := make(map[string]int)
	for _, c := range got {
		reasons[c.Reason]++
	}
	assert.Equal(t, 2, reasons["New from Tor"])
	assert.Equal(t, 2, reasons["Popular in Polish"])
}

func TestRecommend_LanguageNamesNormalizedToCodes(t *testing.T) {
	mk := func(title, lang string) domain.LibraryEntry {
		e := rated(title, "Author "+title, 5)
		e.OriginalLanguage = lang
		return e
	}
	entries := []domain.LibraryEntry{
		mk("Der Prozess", "German"),
		mk("Das Schloss", "German"),
	}
	profile := Analyze(entries)
	require.Equal(t, "German", profile.LanguagePreference)

	catalog := &stubCatalog{
		byAuthor: map[string][]domain.RecommendationCandidate{},
		similar:  map[string][]domain.RecommendationCandidate{},
		// Keyed by ISO code: the catalog never sees the raw stored value.
		byLanguage: map[string][]domain.RecommendationCandidate{
			"de": {candidate("vol-de", "Berlin Alexanderplatz", "Alfred Doblin", 4.3)},
		},
	}
	agg := NewAggregator(catalog, nil)

	got := agg.Recommend(context.Background(), entries, profile)

	require.Len(t, got, 1)
	assert.Equal(t, "vol-de", got[0].CatalogID)
	assert.Equal(t, "Popular in German", got[0].Reason)
}

func TestRecommend_EnglishVariantsSkipLanguageStrategy(t *testing.T) {
	for _, lang := range []string{"English", "eng", "en-US"} {
		entries := []domain.LibraryEntry{
			{Title: "One", Author: "A", OriginalLanguage: lang},
		}
		catalog := &stubCatalog{
			byLanguage: map[string][]domain.RecommendationCandidate{
				"en": {candidate("vol-en", "Should not appear", "X", 5)},
			},
		}
		agg := NewAggregator(catalog, nil)

		got := agg.Recommend(context.Background(), entries, Analyze(entries))
		for _, c := range got {
			assert.NotEqual(t, "vol-en", c.CatalogID, "language %q reached the catalog", lang)
		}
	}
}

func TestRecommend_EnglishPreferenceSkipsLanguageStrategy(t *testing.T) {
	entries := []domain.LibraryEntry{
		{Title: "One", Author: "A", OriginalLanguage: "en"},
	}
	profile := Analyze(entries)

	catalog := &stubCatalog{
		byLanguage: map[string][]domain.RecommendationCandidate{
			"en": {candidate("vol-en", "Should not appear", "X", 5)},
		},
	}
	agg := NewAggregator(catalog, nil)

	got := agg.Recommend(context.Background(), entries, profile)
	for _, c := range got {
		assert.NotEqual(t, "vol-en", c.CatalogID)
	}
}

func TestRecommend_DedupByCatalogIDFirstWins(t *testing.T) {
	entries := []domain.LibraryEntry{
		rated("Seed", "Favorite Author", 5),
	}
	profile := Analyze(entries)

	shared := candidate("vol-shared", "Crossover Hit", "Favorite Author", 4.0)
	catalog := &stubCatalog{
		byAuthor: map[string][]domain.RecommendationCandidate{
			"Favorite Author": {shared},
		},
		similar: map[string][]domain.RecommendationCandidate{
			"Seed": {candidate("vol-shared", "Crossover Hit", "Different Author", 4.0)},
		},
	}
	agg := NewAggregator(catalog, nil)

	got := agg.Recommend(context.Background(), entries, profile)

	var matches []domain.RecommendationCandidate
	for _, c := range got {
		if c.CatalogID == "vol-shared" {
			matches = append(matches, c)
		}
	}
	require.Len(t, matches, 1)
	// The author strategy slot comes first in assembly order.
	assert.Equal(t, "Other books by Favorite Author", matches[0].Reason)
}

func TestRecommend_SortedByRating(t *testing.T) {
	entries := []domain.LibraryEntry{
		rated("Seed", "Prolific Author", 5),
	}
	profile := Analyze(entries)

	var results []domain.RecommendationCandidate
	for i := 0; i < 30; i++ {
		results = append(results, candidate(
			fmt.Sprintf("vol-%d", i),
			fmt.Sprintf("Book %d", i),
			"Prolific Author",
			float64(i%7),
		))
	}
	catalog := &stubCatalog{
		byAuthor: map[string][]domain.RecommendationCandidate{"Prolific Author": results},
		similar:  map[string][]domain.RecommendationCandidate{},
	}
	agg := NewAggregator(catalog, nil)

	got := agg.Recommend(context.Background(), entries, profile)

	assert.LessOrEqual(t, len(got), maxRecommendations)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].AverageRating, got[i].AverageRating)
	}
}

func TestRecommend_Deterministic(t *testing.T) {
	entries := []domain.LibraryEntry{
		rated("One", "Author A", 5),
		rated("Two", "Author B", 4.5),
		rated("Three", "Author C", 4),
	}
	profile := Analyze(entries)

	catalog := &stubCatalog{
		byAuthor: map[string][]domain.RecommendationCandidate{
			"Author A": {candidate("vol-a", "Alpha", "Author A", 4.0)},
			"Author B": {candidate("vol-b", "Beta", "Author B", 4.0)},
			"Author C": {candidate("vol-c", "Gamma", "Author C", 4.0)},
		},
		similar: map[string][]domain.RecommendationCandidate{
			"One":   {candidate("vol-s1", "Sim One", "Someone", 4.0)},
			"Two":   {candidate("vol-s2", "Sim Two", "Someone", 4.0)},
			"Three": {candidate("vol-s3", "Sim Three", "Someone", 4.0)},
		},
	}
	agg := NewAggregator(catalog, nil)

	first := agg.Recommend(context.Background(), entries, profile)
	for i := 0; i < 10; i++ {
		again := agg.Recommend(context.Background(), entries, profile)
		require.Equal(t, first, again)
	}
}
