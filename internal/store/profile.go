package store

import (
	"context"
	"errors"

	"github.com/onlibrary/onlibrary-server/internal/domain"
	"github.com/onlibrary/onlibrary-server/internal/sse"
)

// ErrProfileNotFound is returned when a user has no profile yet.
var ErrProfileNotFound = ErrNotFound.WithMessage("profile not found")

// ErrUsernameTaken is returned when the requested username is in use.
var ErrUsernameTaken = ErrAlreadyExists.WithMessage("username already taken")

// GetUserProfile retrieves the profile for a user ID.
func (s *Store) GetUserProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	profile, err := s.Profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

// GetProfileByUsername retrieves a profile by username.
// The lookup is case-insensitive via the username index transform.
func (s *Store) GetProfileByUsername(ctx context.Context, username string) (*domain.UserProfile, error) {
	profile, err := s.Profiles.GetByIndex(ctx, "username", username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

// SaveUserProfile creates or updates a profile and broadcasts the change.
// An index conflict on the username surfaces as ErrUsernameTaken.
func (s *Store) SaveUserProfile(ctx context.Context, profile *domain.UserProfile) error {
	err := s.Profiles.Update(ctx, profile.UserID, profile)
	if errors.Is(err, ErrNotFound) {
		err = s.Profiles.Create(ctx, profile.UserID, profile)
	}
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return ErrUsernameTaken
		}
		return err
	}

	if s.logger != nil {
		s.logger.Info("profile saved", "user_id", profile.UserID, "username", profile.Username)
	}
	s.eventEmitter.Emit(sse.NewProfileUpdatedEvent(profile))
	return nil
}
