package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/onlibrary/onlibrary-server/internal/domain"
	domainerrors "github.com/onlibrary/onlibrary-server/internal/errors"
	"github.com/onlibrary/onlibrary-server/internal/store"
)

// DefaultPageSize is the number of books per library page.
const DefaultPageSize = 50

// SortOrder enumerates the supported library sort modes.
type SortOrder string

const (
	// SortTitle orders by title, lexicographic.
	SortTitle SortOrder = "title"
	// SortAuthor orders by first author, lexicographic.
	SortAuthor SortOrder = "author"
	// SortOldest orders by creation, oldest first.
	SortOldest SortOrder = "oldest"
	// SortNewest orders by creation, newest first.
	SortNewest SortOrder = "newest"
)

// LibraryService provides the derived read views over a user's books:
// search, sort, and pagination. All views are pure functions of the
// current snapshot and the request parameters.
type LibraryService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewLibraryService creates a new library service.
func NewLibraryService(store *store.Store, logger *slog.Logger) *LibraryService {
	return &LibraryService{
		store:  store,
		logger: logger,
	}
}

// LibraryParams selects and orders a page of the library view.
type LibraryParams struct {
	Query    string
	Sort     SortOrder
	Page     int // 1-based
	PageSize int
}

// LibraryPage is one page of the filtered, sorted library.
type LibraryPage struct {
	Books      []*domain.Book `json:"books"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalBooks int            `json:"total_books"`
	TotalPages int            `json:"total_pages"`
}

// Browse returns one page of the owner's library, filtered by the
// search query and ordered by the sort mode. An out-of-range page
// clamps to the first page.
func (s *LibraryService) Browse(ctx context.Context, ownerID string, params LibraryParams) (*LibraryPage, error) {
	if params.PageSize <= 0 {
		params.PageSize = DefaultPageSize
	}
	if params.Sort == "" {
		params.Sort = SortNewest
	}

	books, err := s.store.ListBooksByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	filtered := FilterBooks(books, params.Query)
	if err := SortBooks(filtered, params.Sort); err != nil {
		return nil, err
	}

	total := len(filtered)
	totalPages := (total + params.PageSize - 1) / params.PageSize
	if totalPages == 0 {
		totalPages = 1
	}

	page := params.Page
	if page < 1 || page > totalPages {
		page = 1
	}

	start := (page - 1) * params.PageSize
	end := min(start+params.PageSize, total)
	items := filtered[start:end]

	return &LibraryPage{
		Books:      items,
		Page:       page,
		PageSize:   params.PageSize,
		TotalBooks: total,
		TotalPages: totalPages,
	}, nil
}

// FilterBooks returns the books matching the case-insensitive substring
// query. An empty query matches everything. The input slice is not
// modified.
func FilterBooks(books []*domain.Book, query string) []*domain.Book {
	if query == "" {
		return append([]*domain.Book(nil), books...)
	}
	matched := make([]*domain.Book, 0, len(books))
	for _, book := range books {
		if book.MatchesQuery(query) {
			matched = append(matched, book)
		}
	}
	return matched
}

// SortBooks orders books in place by the given mode. The store already
// delivers creation order, so "oldest" is a no-op and "newest" a
// reversal; both are restated as ID comparisons for clarity.
func SortBooks(books []*domain.Book, order SortOrder) error {
	switch order {
	case SortTitle:
		sort.SliceStable(books, func(i, j int) bool {
			return strings.ToLower(books[i].Title) < strings.ToLower(books[j].Title)
		})
	case SortAuthor:
		sort.SliceStable(books, func(i, j int) bool {
			return strings.ToLower(books[i].FirstAuthor()) < strings.ToLower(books[j].FirstAuthor())
		})
	case SortOldest:
		sort.SliceStable(books, func(i, j int) bool {
			return books[i].ID < books[j].ID
		})
	case SortNewest:
		sort.SliceStable(books, func(i, j int) bool {
			return books[i].ID > books[j].ID
		})
	default:
		return domainerrors.Validationf("unknown sort order %q", order)
	}
	return nil
}
