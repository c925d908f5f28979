package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinykiri/readiculous/internal/identity"
)

func TestMissingAuthorizationHeader(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Get("/api/v1/users/" + aliceID + "/books")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestMalformedAuthorizationHeader(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Get("/api/v1/users/"+aliceID+"/books", "Authorization: Basic abc123")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestUnknownToken(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Get("/api/v1/users/"+aliceID+"/books", authHeader("token-nobody"))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestPathUserMismatchIsForbidden(t *testing.T) {
	ts := newTestServer(t)

	// Bob's token against Alice's library.
	resp := ts.api.Get("/api/v1/users/"+aliceID+"/books", authHeader(bobToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// Writes are rejected the same way.
	resp = ts.api.Post("/api/v1/users/"+aliceID+"/books", authHeader(bobToken), map[string]any{
		"title":      "Sneaky Insert",
		"author":     "Bob",
		"started_at": time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestAuthProviderOutage(t *testing.T) {
	ts := newTestServer(t)

	down := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	down.Close()
	ts.identity = identity.NewClient(identity.Options{
		ProviderURL: down.URL,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	// A dead provider is a server-side outage, not a bad token.
	resp := ts.api.Get("/api/v1/users/"+aliceID+"/books", authHeader(aliceToken))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code, resp.Body.String())
}

func TestOwnerIsAllowed(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Get("/api/v1/users/"+aliceID+"/books", authHeader(aliceToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestForeignBookIsInvisible(t *testing.T) {
	ts := newTestServer(t)

	bookID := ts.createBook(t, aliceToken, aliceID, map[string]any{
		"title":  "Private Reading",
		"author": "A. Nonymous",
	})

	// Bob asks for Alice's book under his own user path: scoped lookup
	// reports it missing rather than leaking its existence.
	resp := ts.api.Get("/api/v1/users/"+bobID+"/books/"+bookID, authHeader(bobToken))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
