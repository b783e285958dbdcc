package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFriendshipID_SortedPair(t *testing.T) {
	assert.Equal(t, "usr-a_usr-b", FriendshipID("usr-a", "usr-b"))
	assert.Equal(t, "usr-a_usr-b", FriendshipID("usr-b", "usr-a"))
}

func TestNewFriendship_CanonicalOrder(t *testing.T) {
	f := NewFriendship("usr-b", "usr-a")

	assert.Equal(t, "usr-a_usr-b", f.ID)
	assert.Equal(t, "usr-a", f.UserA)
	assert.Equal(t, "usr-b", f.UserB)
}

func TestFriendship_OtherUser(t *testing.T) {
	f := NewFriendship("usr-a", "usr-b")

	assert.Equal(t, "usr-b", f.OtherUser("usr-a"))
	assert.Equal(t, "usr-a", f.OtherUser("usr-b"))
	assert.Equal(t, "", f.OtherUser("usr-c"))
}

func TestProfile_HidesBook(t *testing.T) {
	book := &Book{Title: "Secret", Tags: []string{"private", "fiction"}}
	other := &Book{Title: "Public", Tags: []string{"fiction"}}

	p := &UserProfile{ShowBooksToFriends: true, PrivateTag: "private"}
	assert.True(t, p.HidesBook(book))
	assert.False(t, p.HidesBook(other))

	hidden := &UserProfile{ShowBooksToFriends: false}
	assert.True(t, hidden.HidesBook(other))

	open := &UserProfile{ShowBooksToFriends: true}
	assert.False(t, open.HidesBook(book))
}
