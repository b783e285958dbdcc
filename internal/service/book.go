package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/onlibrary/onlibrary-server/internal/domain"
	domainerrors "github.com/onlibrary/onlibrary-server/internal/errors"
	"github.com/onlibrary/onlibrary-server/internal/store"
)

// BookService orchestrates single-book operations.
// Every call is scoped to the owner; there is no cross-user book access here.
type BookService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store *store.Store, logger *slog.Logger) *BookService {
	return &BookService{
		store:  store,
		logger: logger,
	}
}

// CreateBookInput contains the fields a user supplies for a new book.
type CreateBookInput struct {
	Title           string   `json:"title" validate:"required,max=500"`
	Authors         []string `json:"authors"`
	ISBN            string   `json:"isbn,omitempty" validate:"max=20"`
	CoverURL        string   `json:"cover_url,omitempty" validate:"omitempty,url"`
	Publisher       string   `json:"publisher,omitempty" validate:"max=200"`
	Tags            []string `json:"tags,omitempty"`
	FinishedMonth   string   `json:"finished_month,omitempty" validate:"omitempty,len=7"`
	PublicationYear int      `json:"publication_year,omitempty"`
	Notes           string   `json:"notes,omitempty" validate:"max=5000"`
}

// UpdateBookInput mirrors CreateBookInput for full-record updates.
type UpdateBookInput = CreateBookInput

// CreateBook creates a new book for the owner. The book ID is derived
// from the creation time; on the (rare) same-millisecond collision the
// ID is bumped until a free slot is found.
func (s *BookService) CreateBook(ctx context.Context, ownerID string, input CreateBookInput) (*domain.Book, error) {
	if err := validate.Struct(input); err != nil {
		return nil, formatValidationError(err)
	}

	tags := domain.NormalizedTags(input.Tags)
	if len(tags) > domain.MaxTagsPerBook {
		return nil, domainerrors.Validationf("a book can carry at most %d tags", domain.MaxTagsPerBook)
	}
	if err := validateFinishedMonth(input.FinishedMonth); err != nil {
		return nil, err
	}

	now := time.Now()
	book := &domain.Book{
		ID:              domain.NewBookID(now),
		OwnerID:         ownerID,
		Title:           input.Title,
		Authors:         input.Authors,
		ISBN:            input.ISBN,
		CoverURL:        input.CoverURL,
		Publisher:       input.Publisher,
		Tags:            tags,
		FinishedMonth:   input.FinishedMonth,
		PublicationYear: input.PublicationYear,
		Notes:           input.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// Two creations in the same millisecond collide on the ID; walk
	// forward until the store accepts it. Creation order is preserved.
	for {
		err := s.store.CreateBook(ctx, book)
		if err == nil {
			break
		}
		if errors.Is(err, store.ErrBookExists) {
			book.ID++
			continue
		}
		return nil, fmt.Errorf("create book: %w", err)
	}

	return book, nil
}

// GetBook retrieves a single book owned by the user.
func (s *BookService) GetBook(ctx context.Context, ownerID string, bookID int64) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, ownerID, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// UpdateBook replaces the editable fields of an existing book.
// The 7-tag cap applies here; bulk tag operations bypass it.
func (s *BookService) UpdateBook(ctx context.Context, ownerID string, bookID int64, input UpdateBookInput) (*domain.Book, error) {
	if err := validate.Struct(input); err != nil {
		return nil, formatValidationError(err)
	}

	tags := domain.NormalizedTags(input.Tags)
	if len(tags) > domain.MaxTagsPerBook {
		return nil, domainerrors.Validationf("a book can carry at most %d tags", domain.MaxTagsPerBook)
	}
	if err := validateFinishedMonth(input.FinishedMonth); err != nil {
		return nil, err
	}

	book, err := s.GetBook(ctx, ownerID, bookID)
	if err != nil {
		return nil, err
	}

	book.Title = input.Title
	book.Authors = input.Authors
	book.ISBN = input.ISBN
	book.CoverURL = input.CoverURL
	book.Publisher = input.Publisher
	book.Tags = tags
	book.FinishedMonth = input.FinishedMonth
	book.PublicationYear = input.PublicationYear
	book.Notes = input.Notes
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}
	return book, nil
}

// DeleteBook removes a book. List references to it are left dangling
// and filtered on the read path.
func (s *BookService) DeleteBook(ctx context.Context, ownerID string, bookID int64) error {
	// Surface not-found so the API can 404 instead of silently succeeding.
	if _, err := s.GetBook(ctx, ownerID, bookID); err != nil {
		return err
	}
	if err := s.store.DeleteBook(ctx, ownerID, bookID); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}

// validateFinishedMonth checks the "YYYY-MM" format when the field is set.
func validateFinishedMonth(value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse("2006-01", value); err != nil {
		return domainerrors.Validation("finished_month must be in YYYY-MM format")
	}
	return nil
}
