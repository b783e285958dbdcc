package domain

import "time"

// FriendRequestStatus tracks the lifecycle of a directed friend request.
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestDeclined FriendRequestStatus = "declined"
)

// FriendRequest is a directed request from one user to another.
// Only the recipient may accept or decline it.
type FriendRequest struct {
	ID         string              `json:"id"`
	FromUserID string              `json:"from_user_id"`
	ToUserID   string              `json:"to_user_id"`
	Status     FriendRequestStatus `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// IsPending reports whether the request is still awaiting a response.
func (r *FriendRequest) IsPending() bool {
	return r.Status == FriendRequestPending
}

// Involves reports whether userID is either side of the request.
func (r *FriendRequest) Involves(userID string) bool {
	return r.FromUserID == userID || r.ToUserID == userID
}

// Friendship is the undirected record created when a request is accepted.
// Its identifier is the sorted pair of participant IDs joined with "_",
// which enforces at most one friendship per unordered pair.
type Friendship struct {
	ID        string    `json:"id"`
	UserA     string    `json:"user_a"` // Lexicographically smaller ID
	UserB     string    `json:"user_b"`
	CreatedAt time.Time `json:"created_at"`
}

// FriendshipID returns the canonical identifier for the unordered pair.
func FriendshipID(userID1, userID2 string) string {
	if userID1 > userID2 {
		userID1, userID2 = userID2, userID1
	}
	return userID1 + "_" + userID2
}

// NewFriendship creates the friendship record for two users.
func NewFriendship(userID1, userID2 string) *Friendship {
	if userID1 > userID2 {
		userID1, userID2 = userID2, userID1
	}
	return &Friendship{
		ID:        userID1 + "_" + userID2,
		UserA:     userID1,
		UserB:     userID2,
		CreatedAt: time.Now(),
	}
}

// Involves reports whether userID is a participant.
func (f *Friendship) Involves(userID string) bool {
	return f.UserA == userID || f.UserB == userID
}

// OtherUser returns the participant that is not userID, or empty if
// userID is not a participant.
func (f *Friendship) OtherUser(userID string) string {
	switch userID {
	case f.UserA:
		return f.UserB
	case f.UserB:
		return f.UserA
	default:
		return ""
	}
}
