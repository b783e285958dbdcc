package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/onlibrary/onlibrary-server/internal/domain"
	"github.com/onlibrary/onlibrary-server/internal/store"
)

// newTestStore opens a throwaway Badger store for one test.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(t.TempDir(), slog.New(slog.DiscardHandler), store.NewNoopEmitter())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// mustCreateBook seeds one book directly through the store.
func mustCreateBook(t *testing.T, s *store.Store, ownerID string, id int64, title string, tags ...string) *domain.Book {
	t.Helper()

	book := &domain.Book{
		ID:      id,
		OwnerID: ownerID,
		Title:   title,
		Tags:    tags,
	}
	require.NoError(t, s.CreateBook(context.Background(), book))
	return book
}
