package api

import (
	"encoding/json/v2"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createBookViaAPI creates a book and returns its ID.
func (ts *testServer) createBookViaAPI(t *testing.T, token string, body map[string]any) int64 {
	t.Helper()

	resp := ts.api.Post("/api/v1/books", bearer(token), body)
	require.Equal(t, http.StatusOK, resp.Code, "Create book failed: %s", resp.Body.String())

	var envelope testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data.ID
}

func TestCreateAndGetBook(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "bookowner")

	id := ts.createBookViaAPI(t, token, map[string]any{
		"title":            "The Dispossessed",
		"authors":          []string{"Ursula K. Le Guin"},
		"tags":             []string{"sci-fi", "classic"},
		"finished_month":   "2024-03",
		"publication_year": 1974,
	})

	resp := ts.api.Get(fmt.Sprintf("/api/v1/books/%d", id), bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.Equal(t, "The Dispossessed", envelope.Data.Title)
	assert.Equal(t, []string{"Ursula K. Le Guin"}, envelope.Data.Authors)
	assert.Equal(t, []string{"sci-fi", "classic"}, envelope.Data.Tags)
	assert.Equal(t, "2024-03", envelope.Data.FinishedMonth)
	assert.Equal(t, 1974, envelope.Data.PublicationYear)
}

func TestCreateBook_TooManyTags(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "tagheavy")

	resp := ts.api.Post("/api/v1/books", bearer(token), map[string]any{
		"title": "Over-Tagged",
		"tags":  []string{"a", "b", "c", "d", "e", "f", "g", "h"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION", envelope.Error.Code)
}

func TestCreateBook_BadFinishedMonth(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "badmonth")

	resp := ts.api.Post("/api/v1/books", bearer(token), map[string]any{
		"title":          "Mistimed",
		"finished_month": "2024-13",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUpdateBook(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "bookeditor")

	id := ts.createBookViaAPI(t, token, map[string]any{
		"title": "Draft Title",
		"tags":  []string{"to-read"},
	})

	resp := ts.api.Put(fmt.Sprintf("/api/v1/books/%d", id), bearer(token), map[string]any{
		"title":          "Final Title",
		"tags":           []string{"finished"},
		"finished_month": "2025-01",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "Final Title", envelope.Data.Title)
	assert.Equal(t, []string{"finished"}, envelope.Data.Tags)
}

func TestDeleteBook(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "bookremover")

	id := ts.createBookViaAPI(t, token, map[string]any{"title": "Ephemeral"})

	resp := ts.api.Delete(fmt.Sprintf("/api/v1/books/%d", id), bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get(fmt.Sprintf("/api/v1/books/%d", id), bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetBook_OtherUsersBookHidden(t *testing.T) {
	ts := setupTestServer(t)
	ownerToken, _ := ts.registerTestUser(t, "realowner")
	otherToken, _ := ts.registerTestUser(t, "snoop")

	id := ts.createBookViaAPI(t, ownerToken, map[string]any{"title": "Private Copy"})

	resp := ts.api.Get(fmt.Sprintf("/api/v1/books/%d", id), bearer(otherToken))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestBrowseLibrary_SearchAndPagination(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "browser")

	for i := 0; i < 5; i++ {
		ts.createBookViaAPI(t, token, map[string]any{
			"title":   fmt.Sprintf("Novel %d", i),
			"authors": []string{"Shared Author"},
		})
	}
	ts.createBookViaAPI(t, token, map[string]any{
		"title":   "Cookbook",
		"authors": []string{"Someone Else"},
	})

	// Search narrows by title.
	resp := ts.api.Get("/api/v1/books?q=novel&sort=title", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[LibraryPageResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 5, envelope.Data.TotalBooks)
	assert.Equal(t, "Novel 0", envelope.Data.Books[0].Title)

	// Small pages.
	resp = ts.api.Get("/api/v1/books?page_size=2&page=3&sort=title", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 6, envelope.Data.TotalBooks)
	assert.Equal(t, 3, envelope.Data.TotalPages)
	assert.Len(t, envelope.Data.Books, 2)
}
