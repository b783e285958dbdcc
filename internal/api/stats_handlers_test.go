package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlibrary/onlibrary-server/internal/domain"
)

func TestGetLibraryStats(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "statnerd")

	ts.createBookViaAPI(t, token, map[string]any{
		"title":            "January Read",
		"tags":             []string{"sci-fi"},
		"finished_month":   "2024-01",
		"publication_year": 1969,
	})
	ts.createBookViaAPI(t, token, map[string]any{
		"title":            "March Read",
		"tags":             []string{"sci-fi", "favorites"},
		"finished_month":   "2024-03",
		"publication_year": 2021,
	})
	ts.createBookViaAPI(t, token, map[string]any{
		"title": "Unread",
	})

	resp := ts.api.Get("/api/v1/stats", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[domain.LibraryStats]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	stats := envelope.Data
	assert.Equal(t, 3, stats.TotalBooks)
	assert.Equal(t, 2, stats.FinishedBooks)

	// Timeline spans January through March with the gap filled.
	require.Len(t, stats.Timeline, 3)
	assert.Equal(t, "2024-01", stats.Timeline[0].Month)
	assert.Equal(t, 0, stats.Timeline[1].Count)

	decades := make(map[int]int)
	for _, d := range stats.Decades {
		decades[d.Decade] = d.Count
	}
	assert.Equal(t, 1, decades[1960])
	assert.Equal(t, 1, decades[2020])
}

func TestGetLibraryStats_YearFilter(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "yearfilter")

	ts.createBookViaAPI(t, token, map[string]any{
		"title":          "Old Finish",
		"finished_month": "2022-05",
	})
	ts.createBookViaAPI(t, token, map[string]any{
		"title":          "New Finish",
		"finished_month": "2024-05",
	})

	resp := ts.api.Get("/api/v1/stats?year=2024", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[domain.LibraryStats]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.FinishedBooks)
}

func TestGetTagCoOccurrence(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "cooccur")

	ts.createBookViaAPI(t, token, map[string]any{
		"title": "One",
		"tags":  []string{"sci-fi", "favorites"},
	})
	ts.createBookViaAPI(t, token, map[string]any{
		"title": "Two",
		"tags":  []string{"sci-fi", "favorites", "space"},
	})
	ts.createBookViaAPI(t, token, map[string]any{
		"title": "Three",
		"tags":  []string{"history"},
	})

	resp := ts.api.Get("/api/v1/stats/co-occurrence?tag=sci-fi", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[CoOccurrenceResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.Equal(t, "sci-fi", envelope.Data.Tag)
	require.NotEmpty(t, envelope.Data.CoOccurrence)
	assert.Equal(t, "favorites", envelope.Data.CoOccurrence[0].Tag)
	assert.Equal(t, 2, envelope.Data.CoOccurrence[0].Count)

	// The focus tag never co-occurs with itself.
	for _, tc := range envelope.Data.CoOccurrence {
		assert.NotEqual(t, "sci-fi", tc.Tag)
	}
}
