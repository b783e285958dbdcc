package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlibrary/onlibrary-server/internal/domain"
	domainerrors "github.com/onlibrary/onlibrary-server/internal/errors"
	"github.com/onlibrary/onlibrary-server/internal/store"
)

// seedExploreBook creates a fully specified book for cross-library tests.
func seedExploreBook(t *testing.T, s *store.Store, ownerID string, id int64, title, author string, createdAt time.Time, tags ...string) *domain.Book {
	t.Helper()

	book := &domain.Book{
		ID:        id,
		OwnerID:   ownerID,
		Title:     title,
		Authors:   []string{author},
		Tags:      tags,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, s.CreateBook(context.Background(), book))
	return book
}

func exploreTitles(books []*domain.Book) []string {
	titles := make([]string, 0, len(books))
	for _, b := range books {
		titles = append(titles, b.Title)
	}
	return titles
}

func TestDiscover_DedupesAndExcludesOwnLibrary(t *testing.T) {
	st := newTestStore(t)
	svc := NewExploreService(st, testLogger())
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	// The requester already shelves Dune.
	seedExploreBook(t, st, "usr-a", 1, "Dune", "Frank Herbert", base)
	// Two other users shelve Dune too; one of them also has Hyperion.
	seedExploreBook(t, st, "usr-b", 1, "Dune", "Frank Herbert", base.Add(1*time.Hour))
	seedExploreBook(t, st, "usr-b", 2, "Hyperion", "Dan Simmons", base.Add(2*time.Hour))
	seedExploreBook(t, st, "usr-c", 1, "dune", "frank herbert", base.Add(3*time.Hour))
	seedExploreBook(t, st, "usr-c", 2, "Piranesi", "Susanna Clarke", base.Add(4*time.Hour))

	feed, err := svc.Discover(context.Background(), "usr-a", "", 0)
	require.NoError(t, err)

	// Dune is deduplicated away entirely (the requester owns it, case
	// notwithstanding); the rest arrive newest first.
	assert.Equal(t, []string{"Piranesi", "Hyperion"}, exploreTitles(feed))
}

func TestDiscover_QueryAndLimit(t *testing.T) {
	st := newTestStore(t)
	svc := NewExploreService(st, testLogger())
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	seedExploreBook(t, st, "usr-b", 1, "Hyperion", "Dan Simmons", base.Add(1*time.Hour), "sci-fi")
	seedExploreBook(t, st, "usr-b", 2, "The Fall of Hyperion", "Dan Simmons", base.Add(2*time.Hour), "sci-fi")
	seedExploreBook(t, st, "usr-b", 3, "Middlemarch", "George Eliot", base.Add(3*time.Hour))

	feed, err := svc.Discover(context.Background(), "usr-a", "hyperion", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"The Fall of Hyperion", "Hyperion"}, exploreTitles(feed))

	// A tag substring matches as well.
	feed, err = svc.Discover(context.Background(), "usr-a", "sci-fi", 0)
	require.NoError(t, err)
	assert.Len(t, feed, 2)

	feed, err = svc.Discover(context.Background(), "usr-a", "", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Middlemarch"}, exploreTitles(feed))
}

func TestDiscover_RespectsOwnerPrivacy(t *testing.T) {
	st := newTestStore(t)
	svc := NewExploreService(st, testLogger())
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	// usr-b hides one book behind a private tag.
	profileB := domain.NewUserProfile("usr-b", "reader-b")
	profileB.PrivateTag = "private"
	require.NoError(t, st.SaveUserProfile(ctx, profileB))
	seedExploreBook(t, st, "usr-b", 1, "Public Pick", "A. Author", base.Add(1*time.Hour))
	seedExploreBook(t, st, "usr-b", 2, "Secret Diary", "A. Author", base.Add(2*time.Hour), "private")

	// usr-c shares nothing at all.
	profileC := domain.NewUserProfile("usr-c", "reader-c")
	profileC.ShowBooksToFriends = false
	require.NoError(t, st.SaveUserProfile(ctx, profileC))
	seedExploreBook(t, st, "usr-c", 1, "Invisible", "B. Author", base.Add(3*time.Hour))

	feed, err := svc.Discover(ctx, "usr-a", "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Public Pick"}, exploreTitles(feed))
}

func TestSimilar_RankedBySharedTags(t *testing.T) {
	st := newTestStore(t)
	svc := NewExploreService(st, testLogger())
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	// usr-b shelves the anchor plus three more books.
	seedExploreBook(t, st, "usr-b", 1, "Dune", "Frank Herbert", base, "sci-fi", "classics")
	seedExploreBook(t, st, "usr-b", 2, "Hyperion", "Dan Simmons", base.Add(1*time.Hour), "sci-fi", "classics")
	seedExploreBook(t, st, "usr-b", 3, "Foundation", "Isaac Asimov", base.Add(2*time.Hour), "sci-fi")
	seedExploreBook(t, st, "usr-b", 4, "Salt Fat Acid Heat", "Samin Nosrat", base.Add(3*time.Hour), "cooking")
	// usr-c shelves the anchor but nothing tagged like it.
	seedExploreBook(t, st, "usr-c", 1, "Dune", "Frank Herbert", base, "sci-fi")

	similar, err := svc.Similar(context.Background(), "usr-a", "Dune", "Frank Herbert", 0)
	require.NoError(t, err)

	// Two shared tags beat one; the anchor itself and unrelated books
	// never appear.
	assert.Equal(t, []string{"Hyperion", "Foundation"}, exploreTitles(similar))
}

func TestSimilar_ExcludesRequesterLibrary(t *testing.T) {
	st := newTestStore(t)
	svc := NewExploreService(st, testLogger())
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	seedExploreBook(t, st, "usr-a", 1, "Foundation", "Isaac Asimov", base, "sci-fi")
	seedExploreBook(t, st, "usr-b", 1, "Dune", "Frank Herbert", base, "sci-fi")
	seedExploreBook(t, st, "usr-b", 2, "Foundation", "Isaac Asimov", base.Add(1*time.Hour), "sci-fi")
	seedExploreBook(t, st, "usr-b", 3, "Hyperion", "Dan Simmons", base.Add(2*time.Hour), "sci-fi")

	similar, err := svc.Similar(context.Background(), "usr-a", "Dune", "Frank Herbert", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hyperion"}, exploreTitles(similar))
}

func TestSimilar_UnknownAnchor(t *testing.T) {
	st := newTestStore(t)
	svc := NewExploreService(st, testLogger())

	_, err := svc.Similar(context.Background(), "usr-a", "Nonexistent", "Nobody", 0)
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeNotFound, derr.Code)
}

func TestSimilar_UntaggedAnchorYieldsNothing(t *testing.T) {
	st := newTestStore(t)
	svc := NewExploreService(st, testLogger())
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	seedExploreBook(t, st, "usr-b", 1, "Dune", "Frank Herbert", base)
	seedExploreBook(t, st, "usr-b", 2, "Hyperion", "Dan Simmons", base.Add(1*time.Hour), "sci-fi")

	similar, err := svc.Similar(context.Background(), "usr-a", "Dune", "Frank Herbert", 0)
	require.NoError(t, err)
	assert.Empty(t, similar)
}
