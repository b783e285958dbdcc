package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlibrary/onlibrary-server/internal/domain"
	domainerrors "github.com/onlibrary/onlibrary-server/internal/errors"
)

func TestCreateBook(t *testing.T) {
	svc := NewBookService(newTestStore(t), testLogger())
	ctx := context.Background()

	book, err := svc.CreateBook(ctx, "usr-1", CreateBookInput{
		Title:           "The Dispossessed",
		Authors:         []string{"Ursula K. Le Guin"},
		Tags:            []string{"sci-fi", "classic"},
		FinishedMonth:   "2024-05",
		PublicationYear: 1974,
	})
	require.NoError(t, err)
	assert.NotZero(t, book.ID)
	assert.Equal(t, "usr-1", book.OwnerID)

	got, err := svc.GetBook(ctx, "usr-1", book.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Dispossessed", got.Title)
}

func TestCreateBook_RequiresTitle(t *testing.T) {
	svc := NewBookService(newTestStore(t), testLogger())

	_, err := svc.CreateBook(context.Background(), "usr-1", CreateBookInput{})
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeValidation, derr.Code)
}

func TestCreateBook_TagCap(t *testing.T) {
	svc := NewBookService(newTestStore(t), testLogger())

	_, err := svc.CreateBook(context.Background(), "usr-1", CreateBookInput{
		Title: "Overtagged",
		Tags:  []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8"},
	})
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeValidation, derr.Code)
}

func TestCreateBook_NormalizesTags(t *testing.T) {
	svc := NewBookService(newTestStore(t), testLogger())

	book, err := svc.CreateBook(context.Background(), "usr-1", CreateBookInput{
		Title: "Tidy",
		Tags:  []string{" sci-fi ", "", "sci-fi", "classic"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"sci-fi", "classic"}, book.Tags)
}

func TestCreateBook_FinishedMonthFormat(t *testing.T) {
	svc := NewBookService(newTestStore(t), testLogger())
	ctx := context.Background()

	for _, bad := range []string{"2024-13", "05-2024", "2024/05"} {
		_, err := svc.CreateBook(ctx, "usr-1", CreateBookInput{
			Title:         "Bad Month",
			FinishedMonth: bad,
		})
		assert.Error(t, err, "finished_month %q should be rejected", bad)
	}
}

func TestCreateBook_ConcurrentIDsStayDistinct(t *testing.T) {
	svc := NewBookService(newTestStore(t), testLogger())
	ctx := context.Background()

	// Creations inside one millisecond collide on the timestamp ID and
	// must be bumped apart.
	seen := make(map[int64]bool)
	for i := 0; i < 20; i++ {
		book, err := svc.CreateBook(ctx, "usr-1", CreateBookInput{Title: "Burst"})
		require.NoError(t, err)
		assert.False(t, seen[book.ID], "duplicate ID %d", book.ID)
		seen[book.ID] = true
	}
}

func TestUpdateBook(t *testing.T) {
	st := newTestStore(t)
	svc := NewBookService(st, testLogger())
	ctx := context.Background()

	mustCreateBook(t, st, "usr-1", 1, "Draft", "old")

	updated, err := svc.UpdateBook(ctx, "usr-1", 1, UpdateBookInput{
		Title: "Final",
		Tags:  []string{"new"},
		Notes: "revised",
	})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, []string{"new"}, updated.Tags)

	_, err = svc.UpdateBook(ctx, "usr-1", 999, UpdateBookInput{Title: "Ghost"})
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeNotFound, derr.Code)
}

func TestDeleteBook(t *testing.T) {
	st := newTestStore(t)
	svc := NewBookService(st, testLogger())
	ctx := context.Background()

	mustCreateBook(t, st, "usr-1", 1, "Short-lived")

	require.NoError(t, svc.DeleteBook(ctx, "usr-1", 1))

	err := svc.DeleteBook(ctx, "usr-1", 1)
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeNotFound, derr.Code)
}

func TestGetBook_OwnerScoped(t *testing.T) {
	st := newTestStore(t)
	svc := NewBookService(st, testLogger())
	ctx := context.Background()

	mustCreateBook(t, st, "usr-1", 1, "Mine")

	_, err := svc.GetBook(ctx, "usr-2", 1)
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeNotFound, derr.Code)
}

func TestNormalizedTags(t *testing.T) {
	assert.Empty(t, domain.NormalizedTags(nil))
	assert.Equal(t, []string{"a", "b"}, domain.NormalizedTags([]string{"a", " b ", "a", ""}))
}
