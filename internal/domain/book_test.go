package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewBookID_CreationOrdered(t *testing.T) {
	earlier := NewBookID(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	later := NewBookID(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.Less(t, earlier, later)
}

func TestRenameTag_ReplacesInPlace(t *testing.T) {
	b := &Book{Tags: []string{"fiction", "scifi", "owned"}}

	changed := b.RenameTag("scifi", "science-fiction")

	assert.True(t, changed)
	assert.Equal(t, []string{"fiction", "science-fiction", "owned"}, b.Tags)
}

func TestRenameTag_IdentityLeavesSetUnchanged(t *testing.T) {
	b := &Book{Tags: []string{"fiction", "scifi"}}

	changed := b.RenameTag("scifi", "scifi")

	assert.True(t, changed)
	assert.Equal(t, []string{"fiction", "scifi"}, b.Tags)
}

func TestRenameTag_TargetAlreadyPresent(t *testing.T) {
	// Rename degrades to removing the old tag so no duplicate appears.
	b := &Book{Tags: []string{"scifi", "fiction", "owned"}}

	changed := b.RenameTag("scifi", "fiction")

	assert.True(t, changed)
	assert.Equal(t, []string{"fiction", "owned"}, b.Tags)
}

func TestRenameTag_NotPresent(t *testing.T) {
	b := &Book{Tags: []string{"fiction"}}

	changed := b.RenameTag("scifi", "science-fiction")

	assert.False(t, changed)
	assert.Equal(t, []string{"fiction"}, b.Tags)
}

func TestRemoveTag_PreservesRelativeOrder(t *testing.T) {
	b := &Book{Tags: []string{"a", "b", "c", "d"}}

	changed := b.RemoveTag("b")

	assert.True(t, changed)
	assert.Equal(t, []string{"a", "c", "d"}, b.Tags)
	assert.False(t, b.HasTag("b"))
}

func TestMergeTags_RemovesSourcesAndEnsuresTarget(t *testing.T) {
	b := &Book{Tags: []string{"sf", "fiction", "sci-fi"}}

	changed := b.MergeTags([]string{"sf", "sci-fi"}, "scifi")

	assert.True(t, changed)
	assert.Equal(t, []string{"fiction", "scifi"}, b.Tags)
}

func TestMergeTags_TargetInSources(t *testing.T) {
	// The target survives even when listed among the sources.
	b := &Book{Tags: []string{"scifi", "sf"}}

	changed := b.MergeTags([]string{"sf", "scifi"}, "scifi")

	assert.True(t, changed)
	assert.Equal(t, []string{"scifi"}, b.Tags)
}

func TestMergeTags_NoDuplicates(t *testing.T) {
	b := &Book{Tags: []string{"sf", "scifi"}}

	b.MergeTags([]string{"sf"}, "scifi")

	assert.Equal(t, []string{"scifi"}, b.Tags)
}

func TestMergeTags_NoSourcePresent(t *testing.T) {
	b := &Book{Tags: []string{"fiction"}}

	changed := b.MergeTags([]string{"sf"}, "scifi")

	assert.False(t, changed)
	assert.Equal(t, []string{"fiction"}, b.Tags)
}

func TestAddTag_Idempotent(t *testing.T) {
	b := &Book{Tags: []string{"fiction"}}

	assert.True(t, b.AddTag("owned"))
	assert.False(t, b.AddTag("owned"))
	assert.Equal(t, []string{"fiction", "owned"}, b.Tags)
}

func TestMatchesQuery_CaseInsensitiveAcrossFields(t *testing.T) {
	b := &Book{
		Title:   "The Dispossessed",
		Authors: []string{"Ursula K. Le Guin"},
		Tags:    []string{"scifi", "utopia"},
		Notes:   "Anarres and Urras",
	}

	assert.True(t, b.MatchesQuery("dispossessed"))
	assert.True(t, b.MatchesQuery("LE GUIN"))
	assert.True(t, b.MatchesQuery("utopia"), "query matching only a tag must still surface the book")
	assert.True(t, b.MatchesQuery("urras"))
	assert.False(t, b.MatchesQuery("dragons"))
	assert.True(t, b.MatchesQuery(""), "empty query matches everything")
}

func TestFirstAuthor(t *testing.T) {
	assert.Equal(t, "", (&Book{}).FirstAuthor())
	assert.Equal(t, "A", (&Book{Authors: []string{"A", "B"}}).FirstAuthor())
}
