package domain

import (
	"fmt"
	"slices"
	"time"
)

// MaxListNameLength caps BookList names.
const MaxListNameLength = 50

// BookList represents a user-curated ordered list of book references.
// Order is the list's defining attribute. BookIDs may reference books
// that no longer exist; dangling references are tolerated and filtered
// at read time, never repaired in place.
type BookList struct {
	ID        int64     `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"` // Max 50 characters
	CoverURL  string    `json:"cover_url,omitempty"`
	BookIDs   []int64   `json:"book_ids"` // Ordered; order is significant
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp to the current time.
func (l *BookList) Touch() {
	l.UpdatedAt = time.Now()
}

// Contains reports whether bookID appears in the list.
func (l *BookList) Contains(bookID int64) bool {
	return slices.Contains(l.BookIDs, bookID)
}

// Append adds bookID to the end of the list. Appending an ID already
// present is a no-op; de-duplication happens only at this boundary,
// the stored sequence itself can still carry duplicates introduced
// elsewhere. Returns false on the no-op.
func (l *BookList) Append(bookID int64) bool {
	if l.Contains(bookID) {
		return false
	}
	l.BookIDs = append(l.BookIDs, bookID)
	l.UpdatedAt = time.Now()
	return true
}

// Remove drops the first occurrence of bookID, collapsing the sequence.
// Returns false if the ID was not present.
func (l *BookList) Remove(bookID int64) bool {
	idx := slices.Index(l.BookIDs, bookID)
	if idx < 0 {
		return false
	}
	l.BookIDs = slices.Delete(l.BookIDs, idx, idx+1)
	l.UpdatedAt = time.Now()
	return true
}

// Reorder moves the element at fromIndex to toIndex with standard move
// semantics: remove then insert, shifting intermediate elements by one.
// Both indices must be valid positions in the current sequence.
func (l *BookList) Reorder(fromIndex, toIndex int) error {
	n := len(l.BookIDs)
	if fromIndex < 0 || fromIndex >= n {
		return fmt.Errorf("from index %d out of range [0,%d)", fromIndex, n)
	}
	if toIndex < 0 || toIndex >= n {
		return fmt.Errorf("to index %d out of range [0,%d)", toIndex, n)
	}
	if fromIndex == toIndex {
		return nil
	}
	id := l.BookIDs[fromIndex]
	l.BookIDs = slices.Delete(l.BookIDs, fromIndex, fromIndex+1)
	l.BookIDs = slices.Insert(l.BookIDs, toIndex, id)
	l.UpdatedAt = time.Now()
	return nil
}
