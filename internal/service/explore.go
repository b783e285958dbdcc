package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/onlibrary/onlibrary-server/internal/domain"
	domainerrors "github.com/onlibrary/onlibrary-server/internal/errors"
	"github.com/onlibrary/onlibrary-server/internal/store"
)

const (
	// DefaultDiscoverLimit caps the cross-library feed when no limit is given.
	DefaultDiscoverLimit = 100
	// DefaultSimilarLimit caps the similar-books result when no limit is given.
	DefaultSimilarLimit = 50
)

// ExploreService surfaces books from other users' libraries: a deduplicated
// discovery feed, and a tag-based "readers of X also shelved" query.
type ExploreService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewExploreService creates a new explore service.
func NewExploreService(store *store.Store, logger *slog.Logger) *ExploreService {
	return &ExploreService{
		store:  store,
		logger: logger,
	}
}

// Discover returns books from other users' libraries, newest first,
// deduplicated by (title, first author) and excluding editions the
// requesting user already shelves. A non-empty query narrows the feed
// by case-insensitive substring over title, authors, publisher, and
// tags. Books hidden by their owner's private tag never appear.
func (s *ExploreService) Discover(ctx context.Context, userID, query string, limit int) ([]*domain.Book, error) {
	if limit <= 0 {
		limit = DefaultDiscoverLimit
	}

	all, err := s.store.ListAllBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all books: %w", err)
	}

	owned, err := s.ownedEditions(ctx, userID)
	if err != nil {
		return nil, err
	}

	hidden := newPrivateTagCache(s.store)

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	needle := strings.ToLower(strings.TrimSpace(query))
	seen := make(map[string]bool)
	feed := make([]*domain.Book, 0, limit)

	for _, book := range all {
		if book.OwnerID == userID {
			continue
		}
		suppressed, err := hidden.hides(ctx, book)
		if err != nil {
			return nil, err
		}
		if suppressed {
			continue
		}
		key := editionKey(book.Title, book.FirstAuthor())
		if seen[key] || owned[key] {
			continue
		}
		if needle != "" && !matchesExploreQuery(book, needle) {
			continue
		}
		seen[key] = true
		feed = append(feed, book)
		if len(feed) == limit {
			break
		}
	}

	return feed, nil
}

// Similar finds books shelved by other users who also shelve the anchor
// book, ranked by how many tags they share with it. The anchor is
// addressed by (title, first author); its tag set is the union over
// every copy found. Returns NotFound when no other user shelves the
// anchor, and an empty slice when the anchor carries no tags.
func (s *ExploreService) Similar(ctx context.Context, userID, title, author string, limit int) ([]*domain.Book, error) {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}

	all, err := s.store.ListAllBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all books: %w", err)
	}

	anchorKey := editionKey(title, author)
	anchorTags := make(map[string]bool)
	holders := make(map[string]bool)
	found := false

	for _, book := range all {
		if editionKey(book.Title, book.FirstAuthor()) != anchorKey {
			continue
		}
		found = true
		for _, tag := range book.Tags {
			anchorTags[tag] = true
		}
		if book.OwnerID != userID {
			holders[book.OwnerID] = true
		}
	}
	if !found {
		return nil, domainerrors.NotFound("no library shelves that book")
	}
	if len(anchorTags) == 0 || len(holders) == 0 {
		return []*domain.Book{}, nil
	}

	owned, err := s.ownedEditions(ctx, userID)
	if err != nil {
		return nil, err
	}

	hidden := newPrivateTagCache(s.store)

	type scored struct {
		book    *domain.Book
		matches int
	}
	var candidates []scored

	for _, book := range all {
		if !holders[book.OwnerID] {
			continue
		}
		matches := 0
		for _, tag := range book.Tags {
			if anchorTags[tag] {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		suppressed, err := hidden.hides(ctx, book)
		if err != nil {
			return nil, err
		}
		if suppressed {
			continue
		}
		candidates = append(candidates, scored{book: book, matches: matches})
	}

	// Most shared tags first; newest first among equals.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].matches != candidates[j].matches {
			return candidates[i].matches > candidates[j].matches
		}
		return candidates[i].book.CreatedAt.After(candidates[j].book.CreatedAt)
	})

	seen := make(map[string]bool)
	similar := make([]*domain.Book, 0, limit)
	for _, c := range candidates {
		key := editionKey(c.book.Title, c.book.FirstAuthor())
		if key == anchorKey || seen[key] || owned[key] {
			continue
		}
		seen[key] = true
		similar = append(similar, c.book)
		if len(similar) == limit {
			break
		}
	}

	return similar, nil
}

// ownedEditions returns the (title, first author) keys of the user's
// own library, used to keep already-shelved books out of explore views.
func (s *ExploreService) ownedEditions(ctx context.Context, userID string) (map[string]bool, error) {
	books, err := s.store.ListBooksByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list own books: %w", err)
	}
	owned := make(map[string]bool, len(books))
	for _, book := range books {
		owned[editionKey(book.Title, book.FirstAuthor())] = true
	}
	return owned, nil
}

// editionKey identifies a book across libraries by lowercase title and
// first author, the same identity the metadata merge uses.
func editionKey(title, firstAuthor string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "\x00" + strings.ToLower(strings.TrimSpace(firstAuthor))
}

func matchesExploreQuery(book *domain.Book, needle string) bool {
	if strings.Contains(strings.ToLower(book.Title), needle) {
		return true
	}
	for _, a := range book.Authors {
		if strings.Contains(strings.ToLower(a), needle) {
			return true
		}
	}
	if strings.Contains(strings.ToLower(book.Publisher), needle) {
		return true
	}
	for _, t := range book.Tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

// privateTagCache resolves owner profiles once per owner while walking
// the cross-library book set.
type privateTagCache struct {
	store    *store.Store
	profiles map[string]*domain.UserProfile
}

func newPrivateTagCache(st *store.Store) *privateTagCache {
	return &privateTagCache{
		store:    st,
		profiles: make(map[string]*domain.UserProfile),
	}
}

// hides reports whether the book's owner suppresses it via their
// private tag. Owners without a profile hide nothing.
func (c *privateTagCache) hides(ctx context.Context, book *domain.Book) (bool, error) {
	profile, ok := c.profiles[book.OwnerID]
	if !ok {
		var err error
		profile, err = c.store.GetUserProfile(ctx, book.OwnerID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return false, fmt.Errorf("get owner profile: %w", err)
			}
			profile = nil
		}
		c.profiles[book.OwnerID] = profile
	}
	if profile == nil {
		return false, nil
	}
	return profile.HidesBook(book), nil
}
