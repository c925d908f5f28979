package catalog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient points a client at a stub catalog server.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Options{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Logger:  testLogger(),
	})
}

const volumesBody = `{
	"totalItems": 2,
	"items": [
		{
			"id": "vol-1",
			"volumeInfo": {
				"title": "The Word for World Is Forest",
				"authors": ["Ursula K. Le Guin"],
				"publisher": "Berkley",
				"publishedDate": "1976",
				"description": "A novella.",
				"language": "en",
				"averageRating": 4.1,
				"ratingsCount": 1200,
				"imageLinks": {"thumbnail": "http://covers.example.com/vol-1.jpg"}
			}
		},
		{
			"id": "vol-2",
			"volumeInfo": {}
		}
	]
}`

func TestSearchByAuthor(t *testing.T) {
	var gotQuery url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(volumesBody))
	})

	candidates := client.SearchByAuthor(context.Background(), "Ursula K. Le Guin")

	assert.Equal(t, `inauthor:"Ursula K Le Guin"`, gotQuery.Get("q"))
	assert.Equal(t, "15", gotQuery.Get("maxResults"))
	assert.Equal(t, "relevance", gotQuery.Get("orderBy"))
	assert.Equal(t, "test-key", gotQuery.Get("key"))

	require.Len(t, candidates, 2)
	assert.Equal(t, "vol-1", candidates[0].CatalogID)
	assert.Equal(t, "The Word for World Is Forest", candidates[0].Title)
	assert.Equal(t, 4.1, candidates[0].AverageRating)
}

func TestSearchSimilar(t *testing.T) {
	var gotQuery url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"totalItems":0,"items":[]}`))
	})

	client.SearchSimilar(context.Background(), "Roadside Picnic!", "Arkady Strugatsky")

	// Punctuation is stripped and the terms are combined unquoted.
	assert.Equal(t, "Roadside Picnic Arkady Strugatsky", gotQuery.Get("q"))
	assert.Equal(t, "10", gotQuery.Get("maxResults"))
	assert.Empty(t, gotQuery.Get("orderBy"))
}

func TestSearchByPublisher(t *testing.T) {
	var gotQuery url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"totalItems":0,"items":[]}`))
	})

	client.SearchByPublisher(context.Background(), "Tor Books")

	assert.Equal(t, `inpublisher:"Tor Books"`, gotQuery.Get("q"))
	assert.Equal(t, "10", gotQuery.Get("maxResults"))
	assert.Equal(t, "newest", gotQuery.Get("orderBy"))
}

func TestSearchByLanguage(t *testing.T) {
	var gotQuery url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"totalItems":0,"items":[]}`))
	})

	client.SearchByLanguage(context.Background(), "pl")

	assert.Equal(t, "pl", gotQuery.Get("langRestrict"))
	assert.Equal(t, "10", gotQuery.Get("maxResults"))
}

func TestSearch_NormalizesSparseVolumes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(volumesBody))
	})

	candidates := client.SearchByAuthor(context.Background(), "anyone")
	require.Len(t, candidates, 2)

	sparse := candidates[1]
	assert.Equal(t, "Unknown Title", sparse.Title)
	assert.Equal(t, []string{"Unknown Author"}, sparse.Authors)

	// Thumbnails are upgraded to https.
	assert.Equal(t, "https://covers.example.com/vol-1.jpg", candidates[0].ThumbnailURL)
}

func TestSearch_HTMLDescriptionBecomesMarkdown(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"totalItems": 1,
			"items": [{
				"id": "vol-1",
				"volumeInfo": {
					"title": "Styled",
					"authors": ["A"],
					"description": "<p>A <b>bold</b> claim.</p>"
				}
			}]
		}`))
	})

	candidates := client.SearchByAuthor(context.Background(), "anyone")
	require.Len(t, candidates, 1)
	assert.Equal(t, "A **bold** claim.", candidates[0].Description)
}

func TestSearch_ServerErrorReturnsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	assert.Empty(t, client.SearchByAuthor(context.Background(), "anyone"))
}

func TestSearch_MalformedBodyReturnsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": "not-a-list"`))
	})

	assert.Empty(t, client.SearchByAuthor(context.Background(), "anyone"))
}

func TestSearch_MissingAPIKeyReturnsEmpty(t *testing.T) {
	requested := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}))
	t.Cleanup(server.Close)

	client := NewClient(Options{BaseURL: server.URL, Logger: testLogger()})

	assert.Empty(t, client.SearchByAuthor(context.Background(), "anyone"))
	assert.False(t, requested, "no request should reach the catalog without a key")
}
