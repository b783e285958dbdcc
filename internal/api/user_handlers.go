package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's account",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateDisplayName",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update display name",
		Description: "Changes the authenticated user's display name",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateDisplayName)
}

// GetCurrentUserInput contains parameters for fetching the current user.
type GetCurrentUserInput struct {
	Authorization string `header:"Authorization"`
}

// UserOutput wraps the user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// UpdateDisplayNameRequest is the request body for a display name change.
type UpdateDisplayNameRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=1,max=100" doc:"New display name"`
}

// UpdateDisplayNameInput wraps the request for Huma.
type UpdateDisplayNameInput struct {
	Authorization string `header:"Authorization"`
	Body          UpdateDisplayNameRequest
}

func (s *Server) handleGetCurrentUser(ctx context.Context, input *GetCurrentUserInput) (*UserOutput, error) {
	user, err := s.requireUser(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	return &UserOutput{
		Body: UserResponse{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			IsRoot:      user.IsRoot,
			IsDemo:      user.IsDemo,
			CreatedAt:   user.CreatedAt,
			UpdatedAt:   user.UpdatedAt,
			LastLoginAt: user.LastLoginAt,
		},
	}, nil
}

func (s *Server) handleUpdateDisplayName(ctx context.Context, input *UpdateDisplayNameInput) (*UserOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Auth.UpdateDisplayName(ctx, userID, input.Body.DisplayName)
	if err != nil {
		return nil, err
	}

	return &UserOutput{
		Body: UserResponse{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			IsRoot:      user.IsRoot,
			IsDemo:      user.IsDemo,
			CreatedAt:   user.CreatedAt,
			UpdatedAt:   user.UpdatedAt,
			LastLoginAt: user.LastLoginAt,
		},
	}, nil
}
