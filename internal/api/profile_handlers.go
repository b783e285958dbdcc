package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/onlibrary/onlibrary-server/internal/domain"
	"github.com/onlibrary/onlibrary-server/internal/service"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getOwnProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profile",
		Summary:     "Get own profile",
		Description: "Returns the authenticated user's public profile and privacy settings",
		Tags:        []string{"Profiles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetOwnProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/profile",
		Summary:     "Update profile",
		Description: "Updates the authenticated user's profile, including the friend visibility toggle and private tag",
		Tags:        []string{"Profiles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProfileByUsername",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles/{username}",
		Summary:     "Look up profile",
		Description: "Returns another user's public profile by username",
		Tags:        []string{"Profiles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetProfileByUsername)
}

// === DTOs ===

// ProfileResponse contains a user's profile as seen by its owner.
type ProfileResponse struct {
	UserID             string    `json:"user_id" doc:"Owning user ID"`
	Username           string    `json:"username" doc:"Unique lowercase username"`
	DisplayName        string    `json:"display_name" doc:"Display name"`
	ImageURL           string    `json:"image_url,omitempty" doc:"Avatar URL"`
	Tagline            string    `json:"tagline,omitempty" doc:"Short bio line"`
	ShowBooksToFriends bool      `json:"show_books_to_friends" doc:"Whether friends may browse this library"`
	PrivateTag         string    `json:"private_tag,omitempty" doc:"Books carrying this tag are hidden from friends"`
	CreatedAt          time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt          time.Time `json:"updated_at" doc:"Last update time"`
}

// PublicProfileResponse contains the fields of a profile visible to
// other users. Privacy settings stay private.
type PublicProfileResponse struct {
	UserID      string    `json:"user_id" doc:"Owning user ID"`
	Username    string    `json:"username" doc:"Unique lowercase username"`
	DisplayName string    `json:"display_name" doc:"Display name"`
	ImageURL    string    `json:"image_url,omitempty" doc:"Avatar URL"`
	Tagline     string    `json:"tagline,omitempty" doc:"Short bio line"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
}

// ProfileOutput wraps the owner's view for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

// PublicProfileOutput wraps the public view for Huma.
type PublicProfileOutput struct {
	Body PublicProfileResponse
}

// GetOwnProfileInput contains parameters for fetching the own profile.
type GetOwnProfileInput struct {
	Authorization string `header:"Authorization"`
}

// UpdateProfileRequest is the request body for a profile update.
type UpdateProfileRequest struct {
	Username           string `json:"username" validate:"required,min=3,max=30,alphanum" doc:"Unique username"`
	DisplayName        string `json:"display_name,omitempty" validate:"max=100" doc:"Display name"`
	ImageURL           string `json:"image_url,omitempty" validate:"omitempty,url" doc:"Avatar URL"`
	Tagline            string `json:"tagline,omitempty" validate:"max=60" doc:"Short bio line"`
	ShowBooksToFriends bool   `json:"show_books_to_friends" doc:"Whether friends may browse this library"`
	PrivateTag         string `json:"private_tag,omitempty" doc:"Books carrying this tag are hidden from friends"`
}

// UpdateProfileInput wraps the update request for Huma.
type UpdateProfileInput struct {
	Authorization string `header:"Authorization"`
	Body          UpdateProfileRequest
}

// GetProfileByUsernameInput contains the username to look up.
type GetProfileByUsernameInput struct {
	Authorization string `header:"Authorization"`
	Username      string `path:"username" doc:"Username to look up"`
}

// === Handlers ===

func (s *Server) handleGetOwnProfile(ctx context.Context, input *GetOwnProfileInput) (*ProfileOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: mapProfile(profile)}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*ProfileOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.UpdateProfile(ctx, userID, service.UpdateProfileInput{
		Username:           input.Body.Username,
		DisplayName:        input.Body.DisplayName,
		ImageURL:           input.Body.ImageURL,
		Tagline:            input.Body.Tagline,
		ShowBooksToFriends: input.Body.ShowBooksToFriends,
		PrivateTag:         input.Body.PrivateTag,
	})
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: mapProfile(profile)}, nil
}

func (s *Server) handleGetProfileByUsername(ctx context.Context, input *GetProfileByUsernameInput) (*PublicProfileOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.GetProfileByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}

	return &PublicProfileOutput{Body: mapPublicProfile(profile)}, nil
}

// === Helpers ===

func mapProfile(p *domain.UserProfile) ProfileResponse {
	return ProfileResponse{
		UserID:             p.UserID,
		Username:           p.Username,
		DisplayName:        p.DisplayName,
		ImageURL:           p.ImageURL,
		Tagline:            p.Tagline,
		ShowBooksToFriends: p.ShowBooksToFriends,
		PrivateTag:         p.PrivateTag,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func mapPublicProfile(p *domain.UserProfile) PublicProfileResponse {
	return PublicProfileResponse{
		UserID:      p.UserID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		ImageURL:    p.ImageURL,
		Tagline:     p.Tagline,
		CreatedAt:   p.CreatedAt,
	}
}
