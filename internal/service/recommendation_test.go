package service

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinykiri/readiculous/internal/domain"
	"github.com/tinykiri/readiculous/internal/recommend"
)

// countingCatalog serves one fixed author result and counts calls.
type countingCatalog struct {
	calls atomic.Int64
}

func (c *countingCatalog) SearchByAuthor(context.Context, string) []domain.RecommendationCandidate {
	c.calls.Add(1)
	return []domain.RecommendationCandidate{{
		CatalogID:     "vol-1",
		Title:         "The Lathe of Heaven",
		Authors:       []string{"Ursula K. Le Guin"},
		AverageRating: 4.1,
	}}
}

func (c *countingCatalog) SearchSimilar(context.Context, string, string) []domain.RecommendationCandidate {
	c.calls.Add(1)
	return nil
}

func (c *countingCatalog) SearchByPublisher(context.Context, string) []domain.RecommendationCandidate {
	c.calls.Add(1)
	return nil
}

func (c *countingCatalog) SearchByLanguage(context.Context, string) []domain.RecommendationCandidate {
	c.calls.Add(1)
	return nil
}

func newRecommendationFixtures(t *testing.T) (*RecommendationService, *LibraryService, *countingCatalog) {
	t.Helper()
	deps := newTestDeps(t)
	catalog := &countingCatalog{}
	svc := NewRecommendationService(deps.store, deps.cache,
		recommend.NewAggregator(catalog, deps.logger), deps.logger)
	library := NewLibraryService(deps.store, deps.search, deps.cache, deps.storage, deps.logger)
	return svc, library, catalog
}

func TestRecommendationService_EmptyLibrary(t *testing.T) {
	svc, _, catalog := newRecommendationFixtures(t)

	recs, err := svc.GetRecommendations(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, recs.Profile.IsEmpty())
	assert.Empty(t, recs.Candidates)
	assert.Zero(t, catalog.calls.Load())
}

func TestRecommendationService_CachesResult(t *testing.T) {
	svc, library, catalog := newRecommendationFixtures(t)
	ctx := context.Background()

	rating := 5.0
	_, err := library.CreateEntry(ctx, "user-1", CreateEntryInput{
		Title:  "A Wizard of Earthsea",
		Author: "Ursula K. Le Guin",
		Rating: &rating,
	})
	require.NoError(t, err)

	first, err := svc.GetRecommendations(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, first.Candidates)
	callsAfterFirst := catalog.calls.Load()

	// Second read is served from cache without touching the catalog.
	second, err := svc.GetRecommendations(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, first.Candidates, second.Candidates)
	assert.Equal(t, callsAfterFirst, catalog.calls.Load())
}

func TestRecommendationService_LibraryWriteInvalidatesCache(t *testing.T) {
	svc, library, catalog := newRecommendationFixtures(t)
	ctx := context.Background()

	rating := 5.0
	_, err := library.CreateEntry(ctx, "user-1", CreateEntryInput{
		Title:  "A Wizard of Earthsea",
		Author: "Ursula K. Le Guin",
		Rating: &rating,
	})
	require.NoError(t, err)

	_, err = svc.GetRecommendations(ctx, "user-1")
	require.NoError(t, err)
	callsAfterFirst := catalog.calls.Load()

	// A new entry drops the cached result, so the next read recomputes.
	_, err = library.CreateEntry(ctx, "user-1", CreateEntryInput{
		Title:  "Kindred",
		Author: "Octavia E. Butler",
		Rating: &rating,
	})
	require.NoError(t, err)

	_, err = svc.GetRecommendations(ctx, "user-1")
	require.NoError(t, err)
	assert.Greater(t, catalog.calls.Load(), callsAfterFirst)
}
