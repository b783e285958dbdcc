package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/onlibrary/onlibrary-server/internal/domain"
	"github.com/onlibrary/onlibrary-server/internal/service"
)

func (s *Server) registerSocialRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "sendFriendRequest",
		Method:      http.MethodPost,
		Path:        "/api/v1/friends/requests",
		Summary:     "Send friend request",
		Description: "Sends a friend request to another user, addressed by username",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSendFriendRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "listIncomingFriendRequests",
		Method:      http.MethodGet,
		Path:        "/api/v1/friends/requests/incoming",
		Summary:     "List incoming requests",
		Description: "Returns pending friend requests addressed to the authenticated user",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListIncomingRequests)

	huma.Register(s.api, huma.Operation{
		OperationID: "listOutgoingFriendRequests",
		Method:      http.MethodGet,
		Path:        "/api/v1/friends/requests/outgoing",
		Summary:     "List outgoing requests",
		Description: "Returns pending friend requests the authenticated user has sent",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListOutgoingRequests)

	huma.Register(s.api, huma.Operation{
		OperationID: "acceptFriendRequest",
		Method:      http.MethodPost,
		Path:        "/api/v1/friends/requests/{id}/accept",
		Summary:     "Accept friend request",
		Description: "Accepts a pending request addressed to the authenticated user and creates the friendship",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAcceptFriendRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "declineFriendRequest",
		Method:      http.MethodPost,
		Path:        "/api/v1/friends/requests/{id}/decline",
		Summary:     "Decline friend request",
		Description: "Declines a pending request. The sender may send a new one afterwards.",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeclineFriendRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFriends",
		Method:      http.MethodGet,
		Path:        "/api/v1/friends",
		Summary:     "List friends",
		Description: "Returns the authenticated user's friends with their profiles",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListFriends)

	huma.Register(s.api, huma.Operation{
		OperationID: "unfriend",
		Method:      http.MethodDelete,
		Path:        "/api/v1/friends/{userID}",
		Summary:     "Remove friend",
		Description: "Dissolves the friendship with the given user",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnfriend)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFriendLibrary",
		Method:      http.MethodGet,
		Path:        "/api/v1/friends/{userID}/books",
		Summary:     "Browse a friend's library",
		Description: "Returns a friend's books, honoring their visibility toggle and private tag",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetFriendLibrary)
}

// === DTOs ===

// FriendRequestResponse contains one friend request.
type FriendRequestResponse struct {
	ID         string    `json:"id" doc:"Request ID"`
	FromUserID string    `json:"from_user_id" doc:"Sender"`
	ToUserID   string    `json:"to_user_id" doc:"Recipient"`
	Status     string    `json:"status" doc:"pending, accepted, or declined"`
	CreatedAt  time.Time `json:"created_at" doc:"Creation time"`
}

// FriendRequestOutput wraps one request for Huma.
type FriendRequestOutput struct {
	Body FriendRequestResponse
}

// FriendRequestListResponse contains pending requests.
type FriendRequestListResponse struct {
	Requests []FriendRequestResponse `json:"requests" doc:"Pending requests, oldest first"`
}

// FriendRequestListOutput wraps the request list for Huma.
type FriendRequestListOutput struct {
	Body FriendRequestListResponse
}

// SendFriendRequestRequest is the request body for sending a request.
type SendFriendRequestRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30" doc:"Recipient's username"`
}

// SendFriendRequestInput wraps the send request for Huma.
type SendFriendRequestInput struct {
	Authorization string `header:"Authorization"`
	Body          SendFriendRequestRequest
}

// FriendRequestListInput contains parameters for listing requests.
type FriendRequestListInput struct {
	Authorization string `header:"Authorization"`
}

// FriendRequestActionInput identifies the request to accept or decline.
type FriendRequestActionInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Request ID"`
}

// FriendResponse contains one friend with their profile.
type FriendResponse struct {
	FriendshipID string                `json:"friendship_id" doc:"Friendship ID"`
	Profile      PublicProfileResponse `json:"profile" doc:"Friend's public profile"`
	Since        time.Time             `json:"since" doc:"When the friendship was formed"`
}

// FriendListResponse contains the user's friends.
type FriendListResponse struct {
	Friends []FriendResponse `json:"friends" doc:"Friends with profiles"`
}

// FriendListOutput wraps the friend list for Huma.
type FriendListOutput struct {
	Body FriendListResponse
}

// FriendshipResponse contains the friendship created by an accept.
type FriendshipResponse struct {
	ID        string    `json:"id" doc:"Friendship ID"`
	UserA     string    `json:"user_a" doc:"One side of the pair"`
	UserB     string    `json:"user_b" doc:"Other side of the pair"`
	CreatedAt time.Time `json:"created_at" doc:"When the friendship was formed"`
}

// FriendshipOutput wraps the friendship for Huma.
type FriendshipOutput struct {
	Body FriendshipResponse
}

// ListFriendsInput contains parameters for listing friends.
type ListFriendsInput struct {
	Authorization string `header:"Authorization"`
}

// FriendTargetInput identifies the friend a request acts on.
type FriendTargetInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"Friend's user ID"`
}

// FriendLibraryResponse contains the visible portion of a friend's library.
type FriendLibraryResponse struct {
	Books []BookResponse `json:"books" doc:"Visible books, newest first"`
}

// FriendLibraryOutput wraps the friend library for Huma.
type FriendLibraryOutput struct {
	Body FriendLibraryResponse
}

// === Handlers ===

func (s *Server) handleSendFriendRequest(ctx context.Context, input *SendFriendRequestInput) (*FriendRequestOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	req, err := s.services.Social.SendFriendRequest(ctx, userID, input.Body.Username)
	if err != nil {
		return nil, err
	}

	return &FriendRequestOutput{Body: mapFriendRequest(req)}, nil
}

func (s *Server) handleListIncomingRequests(ctx context.Context, input *FriendRequestListInput) (*FriendRequestListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	requests, err := s.services.Social.ListIncomingRequests(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &FriendRequestListOutput{Body: mapFriendRequestList(requests)}, nil
}

func (s *Server) handleListOutgoingRequests(ctx context.Context, input *FriendRequestListInput) (*FriendRequestListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	requests, err := s.services.Social.ListOutgoingRequests(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &FriendRequestListOutput{Body: mapFriendRequestList(requests)}, nil
}

func (s *Server) handleAcceptFriendRequest(ctx context.Context, input *FriendRequestActionInput) (*FriendshipOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	friendship, err := s.services.Social.AcceptFriendRequest(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &FriendshipOutput{
		Body: FriendshipResponse{
			ID:        friendship.ID,
			UserA:     friendship.UserA,
			UserB:     friendship.UserB,
			CreatedAt: friendship.CreatedAt,
		},
	}, nil
}

func (s *Server) handleDeclineFriendRequest(ctx context.Context, input *FriendRequestActionInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Social.DeclineFriendRequest(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Request declined"}}, nil
}

func (s *Server) handleListFriends(ctx context.Context, input *ListFriendsInput) (*FriendListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	friends, err := s.services.Social.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]FriendResponse, len(friends))
	for i, f := range friends {
		resp[i] = mapFriend(f)
	}

	return &FriendListOutput{Body: FriendListResponse{Friends: resp}}, nil
}

func (s *Server) handleUnfriend(ctx context.Context, input *FriendTargetInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Social.Unfriend(ctx, userID, input.UserID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Friend removed"}}, nil
}

func (s *Server) handleGetFriendLibrary(ctx context.Context, input *FriendTargetInput) (*FriendLibraryOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Social.FriendLibrary(ctx, userID, input.UserID)
	if err != nil {
		return nil, err
	}

	resp := make([]BookResponse, len(books))
	for i, b := range books {
		resp[i] = mapBookResponse(b)
	}

	return &FriendLibraryOutput{Body: FriendLibraryResponse{Books: resp}}, nil
}

// === Helpers ===

func mapFriendRequest(r *domain.FriendRequest) FriendRequestResponse {
	return FriendRequestResponse{
		ID:         r.ID,
		FromUserID: r.FromUserID,
		ToUserID:   r.ToUserID,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt,
	}
}

func mapFriendRequestList(requests []*domain.FriendRequest) FriendRequestListResponse {
	resp := make([]FriendRequestResponse, len(requests))
	for i, r := range requests {
		resp[i] = mapFriendRequest(r)
	}
	return FriendRequestListResponse{Requests: resp}
}

func mapFriend(f *service.Friend) FriendResponse {
	return FriendResponse{
		FriendshipID: f.FriendshipID,
		Profile:      mapPublicProfile(f.Profile),
		Since:        f.Since,
	}
}
