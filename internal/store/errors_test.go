package store

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivedSentinels_MatchBase(t *testing.T) {
	assert.True(t, errors.Is(ErrBookNotFound, ErrNotFound))
	assert.True(t, errors.Is(ErrListNotFound, ErrNotFound))
	assert.True(t, errors.Is(ErrProfileNotFound, ErrNotFound))
	assert.True(t, errors.Is(ErrFriendRequestNotFound, ErrNotFound))
	assert.True(t, errors.Is(ErrFriendshipNotFound, ErrNotFound))
	assert.True(t, errors.Is(ErrBookExists, ErrAlreadyExists))
	assert.True(t, errors.Is(ErrListExists, ErrAlreadyExists))
	assert.True(t, errors.Is(ErrUsernameTaken, ErrAlreadyExists))
	assert.True(t, errors.Is(ErrFriendshipExists, ErrAlreadyExists))
}

func TestDerivedSentinels_StillMatchThemselves(t *testing.T) {
	assert.True(t, errors.Is(ErrBookNotFound, ErrBookNotFound))
	assert.False(t, errors.Is(ErrBookNotFound, ErrAlreadyExists))
	assert.False(t, errors.Is(ErrBookNotFound, ErrListNotFound))
}

func TestWithCause_KeepsSentinelLineage(t *testing.T) {
	cause := fmt.Errorf("disk on fire")
	err := ErrBookNotFound.WithCause(cause)

	assert.True(t, errors.Is(err, ErrBookNotFound))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, http.StatusNotFound, err.HTTPCode())
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestWithMessage_WrappedFurther(t *testing.T) {
	err := fmt.Errorf("load list: %w", ErrListNotFound)

	assert.True(t, errors.Is(err, ErrListNotFound))
	assert.True(t, errors.Is(err, ErrNotFound))

	var storeErr *Error
	assert.True(t, errors.As(err, &storeErr))
	assert.Equal(t, http.StatusNotFound, storeErr.HTTPCode())
}
