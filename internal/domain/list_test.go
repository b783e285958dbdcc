package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_AddsToEnd(t *testing.T) {
	l := &BookList{BookIDs: []int64{1, 2}}

	added := l.Append(3)

	assert.True(t, added)
	assert.Equal(t, []int64{1, 2, 3}, l.BookIDs)
}

func TestAppend_ExistingIDIsNoOp(t *testing.T) {
	l := &BookList{BookIDs: []int64{1, 2, 3}}

	added := l.Append(2)

	assert.False(t, added)
	assert.Equal(t, []int64{1, 2, 3}, l.BookIDs)
}

func TestRemove_CollapsesSequence(t *testing.T) {
	l := &BookList{BookIDs: []int64{1, 2, 3}}

	removed := l.Remove(2)

	assert.True(t, removed)
	assert.Equal(t, []int64{1, 3}, l.BookIDs)
}

func TestRemove_Missing(t *testing.T) {
	l := &BookList{BookIDs: []int64{1, 3}}

	removed := l.Remove(9)

	assert.False(t, removed)
	assert.Equal(t, []int64{1, 3}, l.BookIDs)
}

func TestReorder_MoveSemantics(t *testing.T) {
	// [a,b,c,d] with move 0 -> 2 gives [b,c,a,d].
	l := &BookList{BookIDs: []int64{10, 20, 30, 40}}

	err := l.Reorder(0, 2)

	require.NoError(t, err)
	assert.Equal(t, []int64{20, 30, 10, 40}, l.BookIDs)
}

func TestReorder_MoveBackward(t *testing.T) {
	l := &BookList{BookIDs: []int64{10, 20, 30, 40}}

	err := l.Reorder(3, 1)

	require.NoError(t, err)
	assert.Equal(t, []int64{10, 40, 20, 30}, l.BookIDs)
}

func TestReorder_SameIndexIsNoOp(t *testing.T) {
	l := &BookList{BookIDs: []int64{10, 20, 30}}

	err := l.Reorder(1, 1)

	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30}, l.BookIDs)
}

func TestReorder_IndexOutOfRange(t *testing.T) {
	l := &BookList{BookIDs: []int64{10, 20, 30}}

	assert.Error(t, l.Reorder(-1, 1))
	assert.Error(t, l.Reorder(0, 3))
	assert.Error(t, l.Reorder(3, 0))
	assert.Equal(t, []int64{10, 20, 30}, l.BookIDs)
}
