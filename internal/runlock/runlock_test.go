package runlock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()

	require.NoError(t, l.Acquire(ctx, "fact-pembelian", "run-1"))
	require.ErrorIs(t, l.Acquire(ctx, "fact-pembelian", "run-2"), ErrLocked)
	require.NoError(t, l.Acquire(ctx, "fact-total-hutang", "run-2"))

	// Only the holder releases.
	require.NoError(t, l.Release(ctx, "fact-pembelian", "run-2"))
	require.ErrorIs(t, l.Acquire(ctx, "fact-pembelian", "run-3"), ErrLocked)

	require.NoError(t, l.Release(ctx, "fact-pembelian", "run-1"))
	require.NoError(t, l.Acquire(ctx, "fact-pembelian", "run-3"))
}
