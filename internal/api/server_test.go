package api

import (
	"encoding/hex"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlibrary/onlibrary-server/internal/auth"
	"github.com/onlibrary/onlibrary-server/internal/service"
	"github.com/onlibrary/onlibrary-server/internal/sse"
	"github.com/onlibrary/onlibrary-server/internal/store"
	"github.com/onlibrary/onlibrary-server/internal/transfer"
)

// testEnvelope mirrors the response envelope for test assertions.
type testEnvelope[T any] struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
}

// testServer bundles the API server with a humatest client.
type testServer struct {
	*Server
	api humatest.TestAPI
}

// setupTestServer creates a fully wired server on a temp database.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	logger := slog.New(slog.DiscardHandler)

	st, err := store.New(dbPath, logger, store.NewNoopEmitter())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(
		hex.EncodeToString(authKey),
		15*time.Minute,
		30*24*time.Hour,
	)
	require.NoError(t, err)

	sessionService := service.NewSessionService(st, tokenService, logger)
	profileService := service.NewProfileService(st, logger)
	authService := service.NewAuthService(st, tokenService, sessionService, profileService, logger)

	services := &Services{
		Auth:     authService,
		Session:  sessionService,
		Book:     service.NewBookService(st, logger),
		Library:  service.NewLibraryService(st, logger),
		Tag:      service.NewTagService(st, logger),
		List:     service.NewListService(st, logger),
		Stats:    service.NewStatsService(st, logger),
		Profile:  profileService,
		Social:   service.NewSocialService(st, logger),
		Explore:  service.NewExploreService(st, logger),
		Metadata: service.NewMetadataService(nil, nil, logger),
		Transfer: transfer.NewService(st, logger),
	}

	sseManager := sse.NewManager(logger)
	sseHandler := sse.NewHandler(sseManager, logger, authService)

	server := NewServer(st, services, sseHandler, logger)

	return &testServer{
		Server: server,
		api:    humatest.Wrap(t, server.api),
	}
}

// registerTestUser creates an account through the API and returns its
// token and user ID. Usernames must be unique per server.
func (ts *testServer) registerTestUser(t *testing.T, username string) (token, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    username + "@example.com",
		"username": username,
		"password": "CorrectHorse9!",
	})
	require.Equal(t, http.StatusOK, resp.Code, "Register failed: %s", resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	return envelope.Data.AccessToken, envelope.Data.User.ID
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[HealthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.True(t, envelope.Success)
	assert.Equal(t, "healthy", envelope.Data.Status)
	assert.Equal(t, "healthy", envelope.Data.Components["database"].Status)
	assert.Equal(t, "healthy", envelope.Data.Components["sse"].Status)
}

func TestRoutes_RequireAuth(t *testing.T) {
	ts := setupTestServer(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/users/me"},
		{http.MethodGet, "/api/v1/books"},
		{http.MethodGet, "/api/v1/tags"},
		{http.MethodGet, "/api/v1/lists"},
		{http.MethodGet, "/api/v1/stats"},
		{http.MethodGet, "/api/v1/export"},
		{http.MethodGet, "/api/v1/profile"},
		{http.MethodGet, "/api/v1/friends"},
		{http.MethodGet, "/api/v1/explore"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			resp := ts.api.Do(route.method, route.path)
			assert.Equal(t, http.StatusUnauthorized, resp.Code)

			var envelope testEnvelope[any]
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
			assert.False(t, envelope.Success)
			require.NotNil(t, envelope.Error)
			assert.Equal(t, "UNAUTHORIZED", envelope.Error.Code)
		})
	}
}

func TestEnvelope_VersionOnEveryResponse(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "versioncheck")

	resp := ts.api.Get("/api/v1/books", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[LibraryPageResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.V)
	assert.True(t, envelope.Success)
}

func TestAuthRateLimit(t *testing.T) {
	ts := setupTestServer(t)

	// All attempts come from the same forwarded IP. The burst is 10,
	// so a tight loop of bad logins must eventually hit 429.
	limited := false
	for i := 0; i < 30; i++ {
		resp := ts.api.Post("/api/v1/auth/login",
			"X-Forwarded-For: 203.0.113.7",
			map[string]any{
				"email":    fmt.Sprintf("nobody%d@example.com", i),
				"password": "wrong-password",
			})
		if resp.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited, "expected rate limiter to trip within 30 attempts")
}
