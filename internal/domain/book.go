// Package domain contains the core business entities and domain logic for the OnLibrary book tracker.
package domain

import (
	"slices"
	"strings"
	"time"
)

// MaxTagsPerBook caps the tag set on single-book edits.
// Bulk tag operations may exceed this: a book can already be at the cap
// when a merge or conditional add touches it.
const MaxTagsPerBook = 7

// Book represents a single cataloged book owned by one user.
// IDs are creation-ordered Unix-millisecond values, unique per owner,
// so sorting by ID ascending yields oldest-first.
type Book struct {
	ID              int64     `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Title           string    `json:"title"`
	Authors         []string  `json:"authors"` // Display order matters
	ISBN            string    `json:"isbn,omitempty"`
	CoverURL        string    `json:"cover_url,omitempty"`
	Publisher       string    `json:"publisher,omitempty"`
	Tags            []string  `json:"tags"`                     // Set semantics, stored as a sequence
	FinishedMonth   string    `json:"finished_month,omitempty"` // "YYYY-MM"
	PublicationYear int       `json:"publication_year,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewBookID returns a creation-ordered book identifier.
func NewBookID(now time.Time) int64 {
	return now.UnixMilli()
}

// Touch updates the UpdatedAt timestamp to the current time.
func (b *Book) Touch() {
	b.UpdatedAt = time.Now()
}

// FirstAuthor returns the primary author, or empty if none recorded.
func (b *Book) FirstAuthor() string {
	if len(b.Authors) == 0 {
		return ""
	}
	return b.Authors[0]
}

// HasTag reports whether the book carries tag, matched by exact equality.
func (b *Book) HasTag(tag string) bool {
	return slices.Contains(b.Tags, tag)
}

// HasAnyTag reports whether the book carries at least one of tags.
func (b *Book) HasAnyTag(tags []string) bool {
	for _, t := range tags {
		if b.HasTag(t) {
			return true
		}
	}
	return false
}

// RenameTag replaces oldTag with newTag in the book's tag set, preserving
// the relative order of all other tags. If newTag is already present the
// rename degrades to removing oldTag so no duplicate is introduced.
// Returns false if the book does not carry oldTag.
func (b *Book) RenameTag(oldTag, newTag string) bool {
	idx := slices.Index(b.Tags, oldTag)
	if idx < 0 {
		return false
	}
	if oldTag == newTag {
		return true // Identity rename leaves the set unchanged
	}
	if slices.Contains(b.Tags, newTag) {
		b.Tags = slices.Delete(b.Tags, idx, idx+1)
	} else {
		b.Tags[idx] = newTag
	}
	return true
}

// RemoveTag removes tag from the book's tag set, preserving the relative
// order of remaining tags. Returns false if the tag was not present.
func (b *Book) RemoveTag(tag string) bool {
	idx := slices.Index(b.Tags, tag)
	if idx < 0 {
		return false
	}
	b.Tags = slices.Delete(b.Tags, idx, idx+1)
	return true
}

// MergeTags removes every tag in sourceTags and ensures targetTag is
// present (set union, no duplicates). Returns false if the book carries
// none of sourceTags.
func (b *Book) MergeTags(sourceTags []string, targetTag string) bool {
	if !b.HasAnyTag(sourceTags) {
		return false
	}
	kept := make([]string, 0, len(b.Tags))
	for _, t := range b.Tags {
		if t != targetTag && slices.Contains(sourceTags, t) {
			continue
		}
		kept = append(kept, t)
	}
	if !slices.Contains(kept, targetTag) {
		kept = append(kept, targetTag)
	}
	b.Tags = kept
	return true
}

// AddTag appends tag if not already present. Returns false when the tag
// was already there (idempotent).
func (b *Book) AddTag(tag string) bool {
	if b.HasTag(tag) {
		return false
	}
	b.Tags = append(b.Tags, tag)
	return true
}

// NormalizedTags returns the tag set with surrounding whitespace trimmed,
// empties dropped, and duplicates removed, preserving first-seen order.
func NormalizedTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// MatchesQuery reports whether the book matches a case-insensitive
// substring search across title, joined authors, joined tags, and notes.
// A book matches if any field matches.
func (b *Book) MatchesQuery(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(b.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(strings.Join(b.Authors, " ")), q) {
		return true
	}
	if strings.Contains(strings.ToLower(strings.Join(b.Tags, " ")), q) {
		return true
	}
	return strings.Contains(strings.ToLower(b.Notes), q)
}
