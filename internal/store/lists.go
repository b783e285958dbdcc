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

const listPrefix = "list:"

var (
	// ErrListNotFound is returned when a book list cannot be found.
	ErrListNotFound = ErrNotFound.WithMessage("list not found")
	// ErrListExists is returned when creating a list whose ID is taken.
	ErrListExists = ErrAlreadyExists.WithMessage("list already exists")
)

// listKeySuffix builds the per-owner suffix for a list key.
// Same zero-padded layout as books, so iteration order is creation order.
func listKeySuffix(ownerID string, listID int64) string {
	return fmt.Sprintf("%s:%020d", ownerID, listID)
}

// CreateList creates a new book list keyed by (owner, list ID).
func (s *Store) CreateList(ctx context.Context, list *domain.BookList) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := buildKey(listPrefix, listKeySuffix(list.OwnerID, list.ID))
	defer releaseKey(key)

	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrListExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check list exists: %w", err)
		}

		data, err := json.Marshal(list)
		if err != nil {
			return fmt.Errorf("marshal list: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("list created",
			"id", list.ID,
			"name", list.Name,
			"owner_id", list.OwnerID,
			"book_count", len(list.BookIDs),
		)
	}
	s.eventEmitter.Emit(sse.NewListCreatedEvent(list))
	return nil
}

// GetList retrieves one list by (owner, list ID).
func (s *Store) GetList(ctx context.Context, ownerID string, listID int64) (*domain.BookList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := buildKey(listPrefix, listKeySuffix(ownerID, listID))
	defer releaseKey(key)

	var list domain.BookList
	if err := s.get(key, &list); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("get list: %w", err)
	}
	return &list, nil
}

// UpdateList overwrites an existing list. The whole BookIDs sequence is
// persisted as one unit; there is no partial or incremental persistence
// and concurrent edits resolve last-write-wins.
func (s *Store) UpdateList(ctx context.Context, list *domain.BookList) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := buildKey(listPrefix, listKeySuffix(list.OwnerID, list.ID))
	defer releaseKey(key)

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrListNotFound
			}
			return fmt.Errorf("check list exists: %w", err)
		}

		data, err := json.Marshal(list)
		if err != nil {
			return fmt.Errorf("marshal list: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	s.eventEmitter.Emit(sse.NewListUpdatedEvent(list))
	return nil
}

// DeleteList removes one list. Idempotent.
func (s *Store) DeleteList(ctx context.Context, ownerID string, listID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := buildKey(listPrefix, listKeySuffix(ownerID, listID))
	defer releaseKey(key)

	existed, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check list exists: %w", err)
	}
	if !existed {
		return nil
	}

	if err := s.delete(key); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("list deleted", "id", listID, "owner_id", ownerID)
	}
	s.eventEmitter.Emit(sse.NewListDeletedEvent(ownerID, listID, time.Now()))
	return nil
}

// ListListsByOwner returns all lists for one owner, oldest first.
func (s *Store) ListListsByOwner(ctx context.Context, ownerID string) ([]*domain.BookList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(listPrefix + ownerID + ":")
	var lists []*domain.BookList

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var list domain.BookList
				if err := json.Unmarshal(val, &list); err != nil {
					return err
				}
				lists = append(lists, &list)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list book lists: %w", err)
	}

	return lists, nil
}

// DeleteListsForOwner removes all lists for an owner.
// Used by demo reset and account deletion.
func (s *Store) DeleteListsForOwner(ctx context.Context, ownerID string) (int, error) {
	lists, err := s.ListListsByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	for _, list := range lists {
		if err := s.DeleteList(ctx, ownerID, list.ID); err != nil {
			return 0, fmt.Errorf("delete list %d: %w", list.ID, err)
		}
	}
	return len(lists), nil
}
