package api

import (
	"encoding/json/v2"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportLibrary_RawCSV(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "exporter")

	ts.createBookViaAPI(t, token, map[string]any{
		"title":          "Piranesi",
		"authors":        []string{"Susanna Clarke"},
		"tags":           []string{"fantasy"},
		"finished_month": "2023-08",
	})

	resp := ts.api.Get("/api/v1/export", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	// CSV leaves the server unenveloped.
	assert.Contains(t, resp.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "attachment")

	body := resp.Body.String()
	assert.False(t, strings.HasPrefix(body, "{"), "export must not be JSON")
	assert.Contains(t, body, "Piranesi")
	assert.Contains(t, body, "Susanna Clarke")
}

func TestImportLibrary_RoundTrip(t *testing.T) {
	ts := setupTestServer(t)
	exporterToken, _ := ts.registerTestUser(t, "sender")
	importerToken, _ := ts.registerTestUser(t, "receiver")

	ts.createBookViaAPI(t, exporterToken, map[string]any{
		"title":   "The Left Hand of Darkness",
		"authors": []string{"Ursula K. Le Guin"},
		"tags":    []string{"sci-fi"},
	})
	ts.createBookViaAPI(t, exporterToken, map[string]any{
		"title": "Orbital",
	})

	resp := ts.api.Get("/api/v1/export", bearer(exporterToken))
	require.Equal(t, http.StatusOK, resp.Code)
	exported := resp.Body.String()

	resp = ts.api.Post("/api/v1/import", bearer(importerToken),
		"Content-Type: text/csv",
		strings.NewReader(exported))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var result testEnvelope[ImportResultResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Data.Imported)
	assert.Equal(t, 0, result.Data.Failed)

	// The books exist in the importer's library.
	resp = ts.api.Get("/api/v1/books?sort=title", bearer(importerToken))
	require.Equal(t, http.StatusOK, resp.Code)

	var page testEnvelope[LibraryPageResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	require.Equal(t, 2, page.Data.TotalBooks)
	assert.Equal(t, "Orbital", page.Data.Books[0].Title)
}

func TestImportLibrary_EmptyBody(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "emptyhands")

	resp := ts.api.Post("/api/v1/import", bearer(token),
		"Content-Type: text/csv",
		strings.NewReader(""))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
