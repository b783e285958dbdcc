package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/onlibrary/onlibrary-server/internal/domain"
	domainerrors "github.com/onlibrary/onlibrary-server/internal/errors"
	"github.com/onlibrary/onlibrary-server/internal/store"
)

// ProfileService manages the public-facing user profiles.
type ProfileService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(store *store.Store, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		store:  store,
		logger: logger,
	}
}

// UpdateProfileInput contains the user-editable profile fields.
type UpdateProfileInput struct {
	Username           string `json:"username" validate:"required,min=3,max=30,alphanum"`
	DisplayName        string `json:"display_name" validate:"max=100"`
	ImageURL           string `json:"image_url,omitempty" validate:"omitempty,url"`
	Tagline            string `json:"tagline,omitempty" validate:"max=60"`
	ShowBooksToFriends bool   `json:"show_books_to_friends"`
	PrivateTag         string `json:"private_tag,omitempty"`
}

// CreateProfile creates the initial profile for a new account.
func (s *ProfileService) CreateProfile(ctx context.Context, userID, username, displayName string) (*domain.UserProfile, error) {
	profile := domain.NewUserProfile(userID, username)
	profile.DisplayName = displayName

	if err := s.store.SaveUserProfile(ctx, profile); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			return nil, domainerrors.AlreadyExists("username already taken")
		}
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return profile, nil
}

// GetProfile retrieves a user's own profile.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	profile, err := s.store.GetUserProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("profile not found")
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// GetProfileByUsername resolves a profile by its public username,
// case-insensitively.
func (s *ProfileService) GetProfileByUsername(ctx context.Context, username string) (*domain.UserProfile, error) {
	profile, err := s.store.GetProfileByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("profile not found")
		}
		return nil, fmt.Errorf("get profile by username: %w", err)
	}
	return profile, nil
}

// UpdateProfile replaces the editable fields of a user's profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.UserProfile, error) {
	if err := validate.Struct(input); err != nil {
		return nil, formatValidationError(err)
	}

	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.Username = input.Username
	profile.DisplayName = input.DisplayName
	profile.ImageURL = input.ImageURL
	profile.Tagline = input.Tagline
	profile.ShowBooksToFriends = input.ShowBooksToFriends
	profile.PrivateTag = input.PrivateTag
	profile.Touch()

	if err := s.store.SaveUserProfile(ctx, profile); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			return nil, domainerrors.AlreadyExists("username already taken")
		}
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return profile, nil
}
