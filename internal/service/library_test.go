package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlibrary/onlibrary-server/internal/domain"
)

func TestBrowse_Pagination(t *testing.T) {
	st := newTestStore(t)
	svc := NewLibraryService(st, testLogger())
	ctx := context.Background()

	for i := range 120 {
		mustCreateBook(t, st, "usr-1", int64(i+1), fmt.Sprintf("Book %03d", i))
	}

	page, err := svc.Browse(ctx, "usr-1", LibraryParams{Sort: SortOldest, Page: 1, PageSize: 50})
	require.NoError(t, err)
	assert.Equal(t, 120, page.TotalBooks)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Books, 50)

	// Page 3 holds the last 20 items.
	page, err = svc.Browse(ctx, "usr-1", LibraryParams{Sort: SortOldest, Page: 3, PageSize: 50})
	require.NoError(t, err)
	assert.Len(t, page.Books, 20)
	assert.Equal(t, "Book 100", page.Books[0].Title)
	assert.Equal(t, "Book 119", page.Books[19].Title)
}

func TestBrowse_OutOfRangePageClampsToFirst(t *testing.T) {
	st := newTestStore(t)
	svc := NewLibraryService(st, testLogger())
	ctx := context.Background()

	mustCreateBook(t, st, "usr-1", 1, "Only Book")

	page, err := svc.Browse(ctx, "usr-1", LibraryParams{Page: 99, PageSize: 50})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Books, 1)
}

func TestBrowse_EmptyLibrary(t *testing.T) {
	st := newTestStore(t)
	svc := NewLibraryService(st, testLogger())

	page, err := svc.Browse(context.Background(), "usr-1", LibraryParams{})
	require.NoError(t, err)
	assert.Equal(t, 0, page.TotalBooks)
	assert.Equal(t, 1, page.TotalPages)
	assert.Empty(t, page.Books)
}

func TestBrowse_SearchAndSort(t *testing.T) {
	st := newTestStore(t)
	svc := NewLibraryService(st, testLogger())
	ctx := context.Background()

	b1 := mustCreateBook(t, st, "usr-1", 1, "Dune")
	b1.Authors = []string{"Frank Herbert"}
	require.NoError(t, st.UpdateBook(ctx, b1))

	b2 := mustCreateBook(t, st, "usr-1", 2, "Annihilation")
	b2.Authors = []string{"Jeff VanderMeer"}
	require.NoError(t, st.UpdateBook(ctx, b2))

	b3 := mustCreateBook(t, st, "usr-1", 3, "Children of Dune")
	b3.Authors = []string{"Frank Herbert"}
	require.NoError(t, st.UpdateBook(ctx, b3))

	page, err := svc.Browse(ctx, "usr-1", LibraryParams{Query: "dune", Sort: SortTitle})
	require.NoError(t, err)
	require.Len(t, page.Books, 2)
	assert.Equal(t, "Children of Dune", page.Books[0].Title)
	assert.Equal(t, "Dune", page.Books[1].Title)

	// Author search hits too.
	page, err = svc.Browse(ctx, "usr-1", LibraryParams{Query: "VANDERMEER", Sort: SortNewest})
	require.NoError(t, err)
	require.Len(t, page.Books, 1)
	assert.Equal(t, "Annihilation", page.Books[0].Title)
}

func TestBrowse_UnknownSort(t *testing.T) {
	st := newTestStore(t)
	svc := NewLibraryService(st, testLogger())

	_, err := svc.Browse(context.Background(), "usr-1", LibraryParams{Sort: "rating"})
	assert.Error(t, err)
}

func TestSortBooks_NewestFirst(t *testing.T) {
	books := []*domain.Book{
		{ID: 10, Title: "old"},
		{ID: 30, Title: "new"},
		{ID: 20, Title: "mid"},
	}
	require.NoError(t, SortBooks(books, SortNewest))
	assert.Equal(t, int64(30), books[0].ID)
	assert.Equal(t, int64(10), books[2].ID)
}
