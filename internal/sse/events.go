// Package sse implements Server-Sent Events for real-time library updates and event broadcasting.
package sse

import (
	"time"

	"github.com/onlibrary/onlibrary-server/internal/domain"
)

// We use SSE for server-to-client communication only, since every client
// interaction follows a request/response pattern. The subscription stream
// replaces client polling: a mutation lands in the store, the store emits,
// and every connected client for that owner re-renders.

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventBookCreated represents a book creation event.
	EventBookCreated EventType = "book.created"
	// EventBookUpdated represents a book update event.
	EventBookUpdated EventType = "book.updated"
	// EventBookDeleted represents a book deletion event.
	EventBookDeleted EventType = "book.deleted"

	// EventListCreated represents a book list creation event.
	EventListCreated EventType = "list.created"
	// EventListUpdated represents a book list update event, including reorders.
	EventListUpdated EventType = "list.updated"
	// EventListDeleted represents a book list deletion event.
	EventListDeleted EventType = "list.deleted"

	// EventProfileUpdated represents a profile change visible to friends.
	EventProfileUpdated EventType = "profile.updated"

	// EventFriendRequestReceived is delivered to the recipient of a new request.
	EventFriendRequestReceived EventType = "friend.request_received"
	// EventFriendRequestAccepted is delivered to the original sender.
	EventFriendRequestAccepted EventType = "friend.request_accepted"
	// EventFriendRemoved is delivered to the remaining party of a removed friendship.
	EventFriendRemoved EventType = "friend.removed"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"

	// EventDemoReset announces that demo data was restored to its seed state.
	EventDemoReset EventType = "demo.reset"

	// EventUserRegistered announces a new account. Only sent to admin users.
	EventUserRegistered EventType = "user.registered"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"` // Event-specific data as JSON object
	Type      EventType `json:"type"`

	// UserID filters delivery to a specific user's clients.
	// Empty string means "broadcast to all" (not sent to the client).
	UserID string `json:"-"`
}

// BookEventData is the data payload for book create/update events.
type BookEventData struct {
	Book *domain.Book `json:"book"`
}

// BookDeletedEventData is the data payload for book delete events.
type BookDeletedEventData struct {
	DeletedAt time.Time `json:"deleted_at"`
	BookID    int64     `json:"book_id"`
}

// ListEventData is the data payload for list create/update events.
type ListEventData struct {
	List *domain.BookList `json:"list"`
}

// ListDeletedEventData is the data payload for list delete events.
type ListDeletedEventData struct {
	DeletedAt time.Time `json:"deleted_at"`
	ListID    int64     `json:"list_id"`
}

// ProfileEventData is the data payload for profile events.
type ProfileEventData struct {
	Profile *domain.UserProfile `json:"profile"`
}

// FriendRequestEventData is the data payload for friend request events.
type FriendRequestEventData struct {
	Request *domain.FriendRequest `json:"request"`
}

// FriendRemovedEventData is the data payload for friend removal events.
type FriendRemovedEventData struct {
	FriendshipID string `json:"friendship_id"`
	RemovedBy    string `json:"removed_by"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// DemoResetEventData is the data payload for demo reset events.
type DemoResetEventData struct {
	ResetAt time.Time `json:"reset_at"`
}

// UserRegisteredEventData is the data payload for user registration events.
type UserRegisteredEventData struct {
	User *domain.User `json:"user"`
}

// NewBookCreatedEvent creates a book.created event scoped to the owner.
func NewBookCreatedEvent(book *domain.Book) Event {
	return Event{
		Type:      EventBookCreated,
		Data:      BookEventData{Book: book},
		Timestamp: time.Now(),
		UserID:    book.OwnerID,
	}
}

// NewBookUpdatedEvent creates a book.updated event scoped to the owner.
func NewBookUpdatedEvent(book *domain.Book) Event {
	return Event{
		Type:      EventBookUpdated,
		Data:      BookEventData{Book: book},
		Timestamp: time.Now(),
		UserID:    book.OwnerID,
	}
}

// NewBookDeletedEvent creates a book.deleted event scoped to the owner.
func NewBookDeletedEvent(ownerID string, bookID int64, deletedAt time.Time) Event {
	return Event{
		Type: EventBookDeleted,
		Data: BookDeletedEventData{
			BookID:    bookID,
			DeletedAt: deletedAt,
		},
		Timestamp: time.Now(),
		UserID:    ownerID,
	}
}

// NewListCreatedEvent creates a list.created event scoped to the owner.
func NewListCreatedEvent(list *domain.BookList) Event {
	return Event{
		Type:      EventListCreated,
		Data:      ListEventData{List: list},
		Timestamp: time.Now(),
		UserID:    list.OwnerID,
	}
}

// NewListUpdatedEvent creates a list.updated event scoped to the owner.
func NewListUpdatedEvent(list *domain.BookList) Event {
	return Event{
		Type:      EventListUpdated,
		Data:      ListEventData{List: list},
		Timestamp: time.Now(),
		UserID:    list.OwnerID,
	}
}

// NewListDeletedEvent creates a list.deleted event scoped to the owner.
func NewListDeletedEvent(ownerID string, listID int64, deletedAt time.Time) Event {
	return Event{
		Type: EventListDeleted,
		Data: ListDeletedEventData{
			ListID:    listID,
			DeletedAt: deletedAt,
		},
		Timestamp: time.Now(),
		UserID:    ownerID,
	}
}

// NewProfileUpdatedEvent creates a profile.updated event scoped to the owner.
func NewProfileUpdatedEvent(profile *domain.UserProfile) Event {
	return Event{
		Type:      EventProfileUpdated,
		Data:      ProfileEventData{Profile: profile},
		Timestamp: time.Now(),
		UserID:    profile.UserID,
	}
}

// NewFriendRequestReceivedEvent creates a friend.request_received event for the recipient.
func NewFriendRequestReceivedEvent(request *domain.FriendRequest) Event {
	return Event{
		Type:      EventFriendRequestReceived,
		Data:      FriendRequestEventData{Request: request},
		Timestamp: time.Now(),
		UserID:    request.ToUserID,
	}
}

// NewFriendRequestAcceptedEvent creates a friend.request_accepted event for the sender.
func NewFriendRequestAcceptedEvent(request *domain.FriendRequest) Event {
	return Event{
		Type:      EventFriendRequestAccepted,
		Data:      FriendRequestEventData{Request: request},
		Timestamp: time.Now(),
		UserID:    request.FromUserID,
	}
}

// NewFriendRemovedEvent creates a friend.removed event for the remaining party.
func NewFriendRemovedEvent(friendshipID, removedBy, notifyUserID string) Event {
	return Event{
		Type: EventFriendRemoved,
		Data: FriendRemovedEventData{
			FriendshipID: friendshipID,
			RemovedBy:    removedBy,
		},
		Timestamp: time.Now(),
		UserID:    notifyUserID,
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}

// NewDemoResetEvent creates a demo.reset broadcast event.
func NewDemoResetEvent(resetAt time.Time) Event {
	return Event{
		Type:      EventDemoReset,
		Data:      DemoResetEventData{ResetAt: resetAt},
		Timestamp: time.Now(),
	}
}

// NewUserRegisteredEvent creates a user.registered event for admin users.
func NewUserRegisteredEvent(user *domain.User) Event {
	return Event{
		Type:      EventUserRegistered,
		Data:      UserRegisteredEventData{User: user},
		Timestamp: time.Now(),
	}
}
