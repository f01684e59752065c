package autoreview

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("second holder is refused until release", func(t *testing.T) {
		l := NewMemoryLocker()
		unlock, ok, err := l.TryLock(ctx, "k", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		_, ok, err = l.TryLock(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, unlock(ctx))
		_, ok, err = l.TryLock(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("expired lease can be taken over and the old unlock is a no-op", func(t *testing.T) {
		l := NewMemoryLocker()
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		l.now = func() time.Time { return now }

		staleUnlock, ok, err := l.TryLock(ctx, "k", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		now = now.Add(2 * time.Minute)
		_, ok, err = l.TryLock(ctx, "k", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, staleUnlock(ctx))
		_, ok, err = l.TryLock(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok, "the new holder keeps its lease")
	})

	t.Run("keys are independent", func(t *testing.T) {
		l := NewMemoryLocker()
		_, ok, _ := l.TryLock(ctx, "a", time.Minute)
		require.True(t, ok)
		_, ok, _ = l.TryLock(ctx, "b", time.Minute)
		assert.True(t, ok)
	})
}
