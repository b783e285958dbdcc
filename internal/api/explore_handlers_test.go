package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExploreBooks(t *testing.T) {
	ts := setupTestServer(t)
	tokenA, _ := ts.registerTestUser(t, "explorer")
	tokenB, _ := ts.registerTestUser(t, "curator")

	// Both shelve Dune; only the curator has Hyperion.
	ts.createBookViaAPI(t, tokenA, map[string]any{
		"title":   "Dune",
		"authors": []string{"Frank Herbert"},
	})
	ts.createBookViaAPI(t, tokenB, map[string]any{
		"title":   "Dune",
		"authors": []string{"Frank Herbert"},
		"tags":    []string{"sci-fi"},
	})
	ts.createBookViaAPI(t, tokenB, map[string]any{
		"title":   "Hyperion",
		"authors": []string{"Dan Simmons"},
		"tags":    []string{"sci-fi"},
	})

	resp := ts.api.Get("/api/v1/explore", bearer(tokenA))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ExploreResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Books, 1, "already-shelved books must not reappear")
	assert.Equal(t, "Hyperion", envelope.Data.Books[0].Title)
	assert.Equal(t, []string{"Dan Simmons"}, envelope.Data.Books[0].Authors)
}

func TestExploreSimilarBooks(t *testing.T) {
	ts := setupTestServer(t)
	tokenA, _ := ts.registerTestUser(t, "similarseeker")
	tokenB, _ := ts.registerTestUser(t, "fellowreader")

	ts.createBookViaAPI(t, tokenB, map[string]any{
		"title":   "Dune",
		"authors": []string{"Frank Herbert"},
		"tags":    []string{"sci-fi", "classics"},
	})
	ts.createBookViaAPI(t, tokenB, map[string]any{
		"title":   "Hyperion",
		"authors": []string{"Dan Simmons"},
		"tags":    []string{"sci-fi"},
	})
	ts.createBookViaAPI(t, tokenB, map[string]any{
		"title":   "Salt Fat Acid Heat",
		"authors": []string{"Samin Nosrat"},
		"tags":    []string{"cooking"},
	})

	resp := ts.api.Get("/api/v1/explore/similar?title=Dune&author=Frank+Herbert", bearer(tokenA))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ExploreResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Books, 1)
	assert.Equal(t, "Hyperion", envelope.Data.Books[0].Title)
}

func TestExploreSimilarBooks_UnknownAnchor(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "lonereader")

	resp := ts.api.Get("/api/v1/explore/similar?title=Nonexistent&author=Nobody", bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	var envelope testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}
