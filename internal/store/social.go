package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/onlibrary/onlibrary-server/internal/domain"
	"github.com/onlibrary/onlibrary-server/internal/sse"
)

const (
	friendRequestPrefix   = "freq:"
	requestByToPrefix     = "idx:requests:to:"   // For listing a user's inbox
	requestByFromPrefix   = "idx:requests:from:" // For listing a user's outbox
	friendshipPrefix      = "friendship:"
	friendshipByUser      = "idx:friendships:user:" // For listing a user's friends
)

var (
	// ErrFriendRequestNotFound is returned when a friend request cannot be found.
	ErrFriendRequestNotFound = ErrNotFound.WithMessage("friend request not found")
	// ErrFriendshipNotFound is returned when a friendship cannot be found.
	ErrFriendshipNotFound = ErrNotFound.WithMessage("friendship not found")
	// ErrFriendshipExists is returned when the pair is already connected.
	ErrFriendshipExists = ErrAlreadyExists.WithMessage("already friends")
)

// CreateFriendRequest persists a new friend request and notifies the
// recipient over SSE. Both direction indexes are written in the same
// transaction as the record.
func (s *Store) CreateFriendRequest(ctx context.Context, req *domain.FriendRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(friendRequestPrefix + req.ID)
	toKey := []byte(requestByToPrefix + req.ToUserID + ":" + req.ID)
	fromKey := []byte(requestByFromPrefix + req.FromUserID + ":" + req.ID)

	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrAlreadyExists.WithMessage("friend request already exists")
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check request exists: %w", err)
		}

		data, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("marshal friend request: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}
		if err := txn.Set(toKey, []byte(req.ID)); err != nil {
			return err
		}
		return txn.Set(fromKey, []byte(req.ID))
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("friend request created",
			"id", req.ID,
			"from", req.FromUserID,
			"to", req.ToUserID,
		)
	}
	s.eventEmitter.Emit(sse.NewFriendRequestReceivedEvent(req))
	return nil
}

// GetFriendRequest retrieves a friend request by ID.
func (s *Store) GetFriendRequest(ctx context.Context, id string) (*domain.FriendRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var req domain.FriendRequest
	if err := s.get([]byte(friendRequestPrefix+id), &req); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrFriendRequestNotFound
		}
		return nil, fmt.Errorf("get friend request: %w", err)
	}
	return &req, nil
}

// UpdateFriendRequest overwrites an existing request. When the status
// transitions to accepted, the original sender is notified over SSE.
func (s *Store) UpdateFriendRequest(ctx context.Context, req *domain.FriendRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(friendRequestPrefix + req.ID)

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrFriendRequestNotFound
			}
			return fmt.Errorf("check request exists: %w", err)
		}

		data, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("marshal friend request: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	if req.Status == domain.FriendRequestAccepted {
		s.eventEmitter.Emit(sse.NewFriendRequestAcceptedEvent(req))
	}
	return nil
}

// DeleteFriendRequest removes a request and its direction indexes.
// Idempotent when the record is already gone.
func (s *Store) DeleteFriendRequest(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req, err := s.GetFriendRequest(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, k := range [][]byte{
			[]byte(friendRequestPrefix + id),
			[]byte(requestByToPrefix + req.ToUserID + ":" + id),
			[]byte(requestByFromPrefix + req.FromUserID + ":" + id),
		} {
			if err := txn.Delete(k); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	})
}

// ListFriendRequestsTo returns all requests addressed to a user.
func (s *Store) ListFriendRequestsTo(ctx context.Context, userID string) ([]*domain.FriendRequest, error) {
	return s.listFriendRequests(ctx, requestByToPrefix+userID+":")
}

// ListFriendRequestsFrom returns all requests a user has sent.
func (s *Store) ListFriendRequestsFrom(ctx context.Context, userID string) ([]*domain.FriendRequest, error) {
	return s.listFriendRequests(ctx, requestByFromPrefix+userID+":")
}

func (s *Store) listFriendRequests(ctx context.Context, idxPrefix string) ([]*domain.FriendRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids, err := s.collectIndexValues([]byte(idxPrefix))
	if err != nil {
		return nil, fmt.Errorf("list friend requests: %w", err)
	}

	requests := make([]*domain.FriendRequest, 0, len(ids))
	for _, id := range ids {
		req, err := s.GetFriendRequest(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue // Stale index entry
			}
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// FindPendingRequestBetween returns a pending request connecting the two
// users in either direction, or ErrFriendRequestNotFound.
func (s *Store) FindPendingRequestBetween(ctx context.Context, userA, userB string) (*domain.FriendRequest, error) {
	inbox, err := s.ListFriendRequestsTo(ctx, userA)
	if err != nil {
		return nil, err
	}
	outbox, err := s.ListFriendRequestsFrom(ctx, userA)
	if err != nil {
		return nil, err
	}

	for _, req := range append(inbox, outbox...) {
		if req.IsPending() && req.Involves(userB) {
			return req, nil
		}
	}
	return nil, ErrFriendRequestNotFound
}

// CreateFriendship persists a friendship and one index entry per member.
func (s *Store) CreateFriendship(ctx context.Context, f *domain.Friendship) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(friendshipPrefix + f.ID)

	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrFriendshipExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check friendship exists: %w", err)
		}

		data, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("marshal friendship: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}
		if err := txn.Set([]byte(friendshipByUser+f.UserA+":"+f.ID), []byte(f.ID)); err != nil {
			return err
		}
		return txn.Set([]byte(friendshipByUser+f.UserB+":"+f.ID), []byte(f.ID))
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("friendship created", "id", f.ID)
	}
	return nil
}

// GetFriendship retrieves a friendship by its canonical pair ID.
func (s *Store) GetFriendship(ctx context.Context, id string) (*domain.Friendship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var f domain.Friendship
	if err := s.get([]byte(friendshipPrefix+id), &f); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrFriendshipNotFound
		}
		return nil, fmt.Errorf("get friendship: %w", err)
	}
	return &f, nil
}

// DeleteFriendship removes a friendship and notifies the remaining
// party. removedBy is the user who initiated the removal.
func (s *Store) DeleteFriendship(ctx context.Context, id, removedBy string) error {
	f, err := s.GetFriendship(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, k := range [][]byte{
			[]byte(friendshipPrefix + id),
			[]byte(friendshipByUser + f.UserA + ":" + id),
			[]byte(friendshipByUser + f.UserB + ":" + id),
		} {
			if err := txn.Delete(k); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("friendship removed", "id", id, "removed_by", removedBy)
	}
	s.eventEmitter.Emit(sse.NewFriendRemovedEvent(id, removedBy, f.OtherUser(removedBy)))
	return nil
}

// ListFriendshipsForUser returns all friendships a user is part of.
func (s *Store) ListFriendshipsForUser(ctx context.Context, userID string) ([]*domain.Friendship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids, err := s.collectIndexValues([]byte(friendshipByUser + userID + ":"))
	if err != nil {
		return nil, fmt.Errorf("list friendships: %w", err)
	}

	friendships := make([]*domain.Friendship, 0, len(ids))
	for _, id := range ids {
		f, err := s.GetFriendship(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue // Stale index entry
			}
			return nil, err
		}
		friendships = append(friendships, f)
	}
	return friendships, nil
}

// AreFriends reports whether a canonical friendship exists for the pair.
func (s *Store) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	_, err := s.GetFriendship(ctx, domain.FriendshipID(userA, userB))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// collectIndexValues scans an index prefix and returns the stored values.
func (s *Store) collectIndexValues(prefix []byte) ([]string, error) {
	var values []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				values = append(values, string(val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return values, nil
}
