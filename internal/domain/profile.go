package domain

import "time"

// MaxTaglineLength caps the profile tagline.
const MaxTaglineLength = 60

// UserProfile contains user customization and privacy settings.
// Stored separately from User to keep auth concerns separate from social features.
type UserProfile struct {
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"` // Unique, lowercase
	DisplayName string    `json:"display_name"`
	ImageURL    string    `json:"image_url,omitempty"`
	Tagline     string    `json:"tagline,omitempty"` // Max 60 characters

	// Privacy controls for friend views.
	ShowBooksToFriends bool   `json:"show_books_to_friends"`
	PrivateTag         string `json:"private_tag,omitempty"` // Books carrying this tag are hidden from friends

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserProfile creates a default profile for a user.
func NewUserProfile(userID, username string) *UserProfile {
	now := time.Now()
	return &UserProfile{
		UserID:             userID,
		Username:           username,
		ShowBooksToFriends: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Touch updates the UpdatedAt timestamp to the current time.
func (p *UserProfile) Touch() {
	p.UpdatedAt = time.Now()
}

// HidesBook reports whether this profile's privacy settings hide the
// given book from friend views.
func (p *UserProfile) HidesBook(b *Book) bool {
	if !p.ShowBooksToFriends {
		return true
	}
	return p.PrivateTag != "" && b.HasTag(p.PrivateTag)
}
