package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendationsEmptyLibrary(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Get("/api/v1/users/"+aliceID+"/recommendations", authHeader(aliceToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	got := decodeData[RecommendationsResponse](t, resp)
	assert.Empty(t, got.Candidates)
	assert.Equal(t, int64(0), ts.catalog.calls.Load())
}

func TestRecommendationsFromLibrary(t *testing.T) {
	ts := newTestServer(t)

	ts.createBook(t, aliceToken, aliceID, map[string]any{
		"title":  "The Dispossessed",
		"author": "Ursula K. Le Guin",
		"rating": 5,
	})

	resp := ts.api.Get("/api/v1/users/"+aliceID+"/recommendations", authHeader(aliceToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	got := decodeData[RecommendationsResponse](t, resp)
	require.NotEmpty(t, got.Candidates)
	require.Len(t, got.Profile.FavoriteAuthors, 1)
	assert.Equal(t, "Ursula K. Le Guin", got.Profile.FavoriteAuthors[0].Name)
	for _, c := range got.Candidates {
		assert.NotEmpty(t, c.Reason)
	}

	// Second call is served from cache.
	calls := ts.catalog.calls.Load()
	resp = ts.api.Get("/api/v1/users/"+aliceID+"/recommendations", authHeader(aliceToken))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, calls, ts.catalog.calls.Load())
}
