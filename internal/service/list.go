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

// ListService manages user-curated book lists. The whole BookIDs
// sequence is persisted on every mutation; concurrent edits resolve
// last-write-wins.
type ListService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewListService creates a new list service.
func NewListService(store *store.Store, logger *slog.Logger) *ListService {
	return &ListService{
		store:  store,
		logger: logger,
	}
}

// ListView is a BookList with dangling references resolved for display.
type ListView struct {
	List *domain.BookList `json:"list"`
	// Books carries the resolved books in list order. IDs referencing
	// deleted books are filtered here, never repaired in storage.
	Books []*domain.Book `json:"books"`
}

// CreateList creates a new named list for the owner.
func (s *ListService) CreateList(ctx context.Context, ownerID, name, coverURL string) (*domain.BookList, error) {
	if err := validateListName(name); err != nil {
		return nil, err
	}

	now := time.Now()
	list := &domain.BookList{
		ID:        domain.NewBookID(now),
		OwnerID:   ownerID,
		Name:      name,
		CoverURL:  coverURL,
		BookIDs:   []int64{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	for {
		err := s.store.CreateList(ctx, list)
		if err == nil {
			break
		}
		if errors.Is(err, store.ErrListExists) {
			list.ID++
			continue
		}
		return nil, fmt.Errorf("create list: %w", err)
	}
	return list, nil
}

// GetList retrieves one list with its books resolved in order.
func (s *ListService) GetList(ctx context.Context, ownerID string, listID int64) (*ListView, error) {
	list, err := s.store.GetList(ctx, ownerID, listID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("list not found")
		}
		return nil, fmt.Errorf("get list: %w", err)
	}
	return s.resolve(ctx, list)
}

// ListLists returns all of the owner's lists, oldest first, resolved.
func (s *ListService) ListLists(ctx context.Context, ownerID string) ([]*ListView, error) {
	lists, err := s.store.ListListsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}

	views := make([]*ListView, 0, len(lists))
	for _, list := range lists {
		view, err := s.resolve(ctx, list)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// RenameList changes a list's name and cover.
func (s *ListService) RenameList(ctx context.Context, ownerID string, listID int64, name, coverURL string) (*domain.BookList, error) {
	if err := validateListName(name); err != nil {
		return nil, err
	}

	list, err := s.getRaw(ctx, ownerID, listID)
	if err != nil {
		return nil, err
	}

	list.Name = name
	list.CoverURL = coverURL
	list.Touch()
	if err := s.store.UpdateList(ctx, list); err != nil {
		return nil, fmt.Errorf("update list: %w", err)
	}
	return list, nil
}

// DeleteList removes a list. The books it referenced are untouched.
func (s *ListService) DeleteList(ctx context.Context, ownerID string, listID int64) error {
	if _, err := s.getRaw(ctx, ownerID, listID); err != nil {
		return err
	}
	if err := s.store.DeleteList(ctx, ownerID, listID); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}

// AppendBook adds a book to the end of the list. Appending a book
// already present is a no-op, not an error. The book must exist in the
// owner's library at append time.
func (s *ListService) AppendBook(ctx context.Context, ownerID string, listID, bookID int64) (*domain.BookList, error) {
	list, err := s.getRaw(ctx, ownerID, listID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetBook(ctx, ownerID, bookID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	if list.Append(bookID) {
		list.Touch()
		if err := s.store.UpdateList(ctx, list); err != nil {
			return nil, fmt.Errorf("update list: %w", err)
		}
	}
	return list, nil
}

// RemoveBook removes the first occurrence of the book from the list.
func (s *ListService) RemoveBook(ctx context.Context, ownerID string, listID, bookID int64) (*domain.BookList, error) {
	list, err := s.getRaw(ctx, ownerID, listID)
	if err != nil {
		return nil, err
	}

	if list.Remove(bookID) {
		list.Touch()
		if err := s.store.UpdateList(ctx, list); err != nil {
			return nil, fmt.Errorf("update list: %w", err)
		}
	}
	return list, nil
}

// ReorderBooks moves the entry at fromIndex to toIndex (move semantics:
// remove then insert). Both indices are validated against the current
// sequence length.
func (s *ListService) ReorderBooks(ctx context.Context, ownerID string, listID int64, fromIndex, toIndex int) (*domain.BookList, error) {
	list, err := s.getRaw(ctx, ownerID, listID)
	if err != nil {
		return nil, err
	}

	if err := list.Reorder(fromIndex, toIndex); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}
	list.Touch()
	if err := s.store.UpdateList(ctx, list); err != nil {
		return nil, fmt.Errorf("update list: %w", err)
	}
	return list, nil
}

func (s *ListService) getRaw(ctx context.Context, ownerID string, listID int64) (*domain.BookList, error) {
	list, err := s.store.GetList(ctx, ownerID, listID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("list not found")
		}
		return nil, fmt.Errorf("get list: %w", err)
	}
	return list, nil
}

// resolve loads the list's books in order, dropping dangling IDs.
func (s *ListService) resolve(ctx context.Context, list *domain.BookList) (*ListView, error) {
	books := make([]*domain.Book, 0, len(list.BookIDs))
	for _, bookID := range list.BookIDs {
		book, err := s.store.GetBook(ctx, list.OwnerID, bookID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue // Deleted book; reference stays in storage
			}
			return nil, fmt.Errorf("resolve list book %d: %w", bookID, err)
		}
		books = append(books, book)
	}
	return &ListView{List: list, Books: books}, nil
}

func validateListName(name string) error {
	if name == "" {
		return domainerrors.Validation("list name is required")
	}
	if len(name) > domain.MaxListNameLength {
		return domainerrors.Validationf("list name exceeds %d characters", domain.MaxListNameLength)
	}
	return nil
}
