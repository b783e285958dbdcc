package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/onlibrary/onlibrary-server/internal/domain"
	"github.com/onlibrary/onlibrary-server/internal/sse"
)

const bookPrefix = "book:"

var (
	// ErrBookNotFound is returned when a book cannot be found.
	ErrBookNotFound = ErrNotFound.WithMessage("book not found")
	// ErrBookExists is returned when creating a book whose ID is taken.
	ErrBookExists = ErrAlreadyExists.WithMessage("book already exists")
)

// bookKeySuffix builds the per-owner suffix for a book key.
// Book IDs are zero-padded to 20 digits so Badger's lexicographic
// iteration order matches numeric (creation) order.
func bookKeySuffix(ownerID string, bookID int64) string {
	return fmt.Sprintf("%s:%020d", ownerID, bookID)
}

// CreateBook creates a new book keyed by (owner, book ID).
// Returns ErrBookExists if the ID is already taken for this owner.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := buildKey(bookPrefix, bookKeySuffix(book.OwnerID, book.ID))
	defer releaseKey(key)

	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrBookExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check book exists: %w", err)
		}

		data, err := json.Marshal(book)
		if err != nil {
			return fmt.Errorf("marshal book: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("book created",
			"id", book.ID,
			"title", book.Title,
			"owner_id", book.OwnerID,
		)
	}
	s.eventEmitter.Emit(sse.NewBookCreatedEvent(book))
	return nil
}

// GetBook retrieves one book by (owner, book ID).
func (s *Store) GetBook(ctx context.Context, ownerID string, bookID int64) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := buildKey(bookPrefix, bookKeySuffix(ownerID, bookID))
	defer releaseKey(key)

	var book domain.Book
	if err := s.get(key, &book); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

// UpdateBook overwrites an existing book. The whole record is written as
// one unit; the store is the serialization point and the last write wins.
// Returns ErrBookNotFound if the book does not exist.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := buildKey(bookPrefix, bookKeySuffix(book.OwnerID, book.ID))
	defer releaseKey(key)

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrBookNotFound
			}
			return fmt.Errorf("check book exists: %w", err)
		}

		data, err := json.Marshal(book)
		if err != nil {
			return fmt.Errorf("marshal book: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	s.eventEmitter.Emit(sse.NewBookUpdatedEvent(book))
	return nil
}

// DeleteBook removes one book. Idempotent: deleting a missing book is
// not an error. Lists referencing the book are left untouched; dangling
// references are filtered at read time.
func (s *Store) DeleteBook(ctx context.Context, ownerID string, bookID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := buildKey(bookPrefix, bookKeySuffix(ownerID, bookID))
	defer releaseKey(key)

	existed, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check book exists: %w", err)
	}
	if !existed {
		return nil
	}

	if err := s.delete(key); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("book deleted", "id", bookID, "owner_id", ownerID)
	}
	s.eventEmitter.Emit(sse.NewBookDeletedEvent(ownerID, bookID, time.Now()))
	return nil
}

// ListBooksByOwner returns all books for one owner, ordered by ID
// ascending (oldest first). The zero-padded key layout makes the prefix
// scan deliver that order for free.
func (s *Store) ListBooksByOwner(ctx context.Context, ownerID string) ([]*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(bookPrefix + ownerID + ":")
	var books []*domain.Book

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var book domain.Book
				if err := json.Unmarshal(val, &book); err != nil {
					return err
				}
				books = append(books, &book)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	return books, nil
}

// ListAllBooks returns every book across all owners. Keys are ordered
// by (owner, ID), so callers wanting newest-first re-sort by CreatedAt.
func (s *Store) ListAllBooks(ctx context.Context) ([]*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(bookPrefix)
	var books []*domain.Book

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var book domain.Book
				if err := json.Unmarshal(val, &book); err != nil {
					return err
				}
				books = append(books, &book)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list all books: %w", err)
	}

	return books, nil
}

// CountBooksByOwner returns the number of books an owner has, without
// unmarshaling values.
func (s *Store) CountBooksByOwner(ctx context.Context, ownerID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	prefix := []byte(bookPrefix + ownerID + ":")
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false // We only need keys

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}

	return count, nil
}

// DeleteBooksForOwner removes all books for an owner.
// Used by demo reset and account deletion.
func (s *Store) DeleteBooksForOwner(ctx context.Context, ownerID string) (int, error) {
	books, err := s.ListBooksByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	for _, book := range books {
		if err := s.DeleteBook(ctx, ownerID, book.ID); err != nil {
			return 0, fmt.Errorf("delete book %d: %w", book.ID, err)
		}
	}
	return len(books), nil
}
