package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/onlibrary/onlibrary-server/internal/domain"
	domainerrors "github.com/onlibrary/onlibrary-server/internal/errors"
	"github.com/onlibrary/onlibrary-server/internal/id"
	"github.com/onlibrary/onlibrary-server/internal/store"
)

// SocialService manages friend requests, friendships, and the friend
// library view.
type SocialService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewSocialService creates a new social service.
func NewSocialService(store *store.Store, logger *slog.Logger) *SocialService {
	return &SocialService{
		store:  store,
		logger: logger,
	}
}

// Friend is a friendship resolved to the other party's profile.
type Friend struct {
	FriendshipID string              `json:"friendship_id"`
	Profile      *domain.UserProfile `json:"profile"`
	Since        time.Time           `json:"since"`
}

// SendFriendRequest creates a pending request from one user to another,
// addressed by username.
func (s *SocialService) SendFriendRequest(ctx context.Context, fromUserID, toUsername string) (*domain.FriendRequest, error) {
	target, err := s.store.GetProfileByUsername(ctx, toUsername)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("no user with that username")
		}
		return nil, fmt.Errorf("resolve username: %w", err)
	}

	if target.UserID == fromUserID {
		return nil, domainerrors.Validation("you cannot send a friend request to yourself")
	}

	// Already friends?
	already, err := s.store.AreFriends(ctx, fromUserID, target.UserID)
	if err != nil {
		return nil, fmt.Errorf("check friendship: %w", err)
	}
	if already {
		return nil, domainerrors.Conflict("you are already friends")
	}

	// A pending request in either direction blocks a new one.
	if _, err := s.store.FindPendingRequestBetween(ctx, fromUserID, target.UserID); err == nil {
		return nil, domainerrors.Conflict("a friend request is already pending")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check pending request: %w", err)
	}

	requestID, err := id.Generate("req")
	if err != nil {
		return nil, fmt.Errorf("generate request ID: %w", err)
	}

	now := time.Now()
	request := &domain.FriendRequest{
		ID:         requestID,
		FromUserID: fromUserID,
		ToUserID:   target.UserID,
		Status:     domain.FriendRequestPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateFriendRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("create friend request: %w", err)
	}
	return request, nil
}

// AcceptFriendRequest accepts a pending request. Only the recipient may
// accept; accepting creates the friendship.
func (s *SocialService) AcceptFriendRequest(ctx context.Context, userID, requestID string) (*domain.Friendship, error) {
	request, err := s.getPendingRequestFor(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}

	request.Status = domain.FriendRequestAccepted
	request.UpdatedAt = time.Now()
	if err := s.store.UpdateFriendRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("update friend request: %w", err)
	}

	friendship := domain.NewFriendship(request.FromUserID, request.ToUserID)
	if err := s.store.CreateFriendship(ctx, friendship); err != nil {
		if !errors.Is(err, store.ErrAlreadyExists) {
			return nil, fmt.Errorf("create friendship: %w", err)
		}
		// Pair connected through a parallel request; the accept stands.
	}
	return friendship, nil
}

// DeclineFriendRequest declines a pending request. Only the recipient
// may decline.
func (s *SocialService) DeclineFriendRequest(ctx context.Context, userID, requestID string) error {
	request, err := s.getPendingRequestFor(ctx, userID, requestID)
	if err != nil {
		return err
	}

	request.Status = domain.FriendRequestDeclined
	request.UpdatedAt = time.Now()
	if err := s.store.UpdateFriendRequest(ctx, request); err != nil {
		return fmt.Errorf("update friend request: %w", err)
	}
	return nil
}

// ListIncomingRequests returns the user's pending inbox.
func (s *SocialService) ListIncomingRequests(ctx context.Context, userID string) ([]*domain.FriendRequest, error) {
	requests, err := s.store.ListFriendRequestsTo(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list incoming requests: %w", err)
	}
	return pendingOnly(requests), nil
}

// ListOutgoingRequests returns the user's pending sent requests.
func (s *SocialService) ListOutgoingRequests(ctx context.Context, userID string) ([]*domain.FriendRequest, error) {
	requests, err := s.store.ListFriendRequestsFrom(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list outgoing requests: %w", err)
	}
	return pendingOnly(requests), nil
}

// ListFriends returns the user's friends with their profiles resolved.
func (s *SocialService) ListFriends(ctx context.Context, userID string) ([]*Friend, error) {
	friendships, err := s.store.ListFriendshipsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friendships: %w", err)
	}

	friends := make([]*Friend, 0, len(friendships))
	for _, f := range friendships {
		profile, err := s.store.GetUserProfile(ctx, f.OtherUser(userID))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue // Account without a profile; nothing to show
			}
			return nil, fmt.Errorf("get friend profile: %w", err)
		}
		friends = append(friends, &Friend{
			FriendshipID: f.ID,
			Profile:      profile,
			Since:        f.CreatedAt,
		})
	}
	return friends, nil
}

// Unfriend removes the friendship between the user and the other party.
func (s *SocialService) Unfriend(ctx context.Context, userID, otherUserID string) error {
	friendshipID := domain.FriendshipID(userID, otherUserID)
	if _, err := s.store.GetFriendship(ctx, friendshipID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("you are not friends with that user")
		}
		return fmt.Errorf("get friendship: %w", err)
	}
	if err := s.store.DeleteFriendship(ctx, friendshipID, userID); err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}
	return nil
}

// FriendLibrary returns the books a friend has chosen to share.
// Visible only between friends, only when the friend's profile allows
// it, and never including books carrying the friend's private tag.
func (s *SocialService) FriendLibrary(ctx context.Context, userID, friendUserID string) ([]*domain.Book, error) {
	areFriends, err := s.store.AreFriends(ctx, userID, friendUserID)
	if err != nil {
		return nil, fmt.Errorf("check friendship: %w", err)
	}
	if !areFriends {
		return nil, domainerrors.Forbidden("you are not friends with that user")
	}

	profile, err := s.store.GetUserProfile(ctx, friendUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Forbidden("this library is private")
		}
		return nil, fmt.Errorf("get friend profile: %w", err)
	}
	if !profile.ShowBooksToFriends {
		return nil, domainerrors.Forbidden("this library is private")
	}

	books, err := s.store.ListBooksByOwner(ctx, friendUserID)
	if err != nil {
		return nil, fmt.Errorf("list friend books: %w", err)
	}

	visible := make([]*domain.Book, 0, len(books))
	for _, book := range books {
		if profile.HidesBook(book) {
			continue
		}
		visible = append(visible, book)
	}
	return visible, nil
}

func (s *SocialService) getPendingRequestFor(ctx context.Context, userID, requestID string) (*domain.FriendRequest, error) {
	request, err := s.store.GetFriendRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("friend request not found")
		}
		return nil, fmt.Errorf("get friend request: %w", err)
	}
	if request.ToUserID != userID {
		return nil, domainerrors.Forbidden("only the recipient can respond to a friend request")
	}
	if !request.IsPending() {
		return nil, domainerrors.Conflict("friend request already responded to")
	}
	return request, nil
}

func pendingOnly(requests []*domain.FriendRequest) []*domain.FriendRequest {
	pending := make([]*domain.FriendRequest, 0, len(requests))
	for _, r := range requests {
		if r.IsPending() {
			pending = append(pending, r)
		}
	}
	return pending
}
