package store

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestStore opens a throwaway Badger store for one test.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.TempDir(), slog.New(slog.DiscardHandler), NewNoopEmitter())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

// captureEmitter records emitted events for assertions.
type captureEmitter struct {
	events []any
}

func (c *captureEmitter) Emit(event any) {
	c.events = append(c.events, event)
}
