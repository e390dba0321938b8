package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolReserve(t *testing.T) {
	pool := NewPool(nil, 1)

	release, err := pool.Reserve(context.Background())
	require.NoError(t, err)

	// the only slot is taken, so a second holder has to wait
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = pool.Reserve(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release()

	again, err := pool.Reserve(context.Background())
	require.NoError(t, err)
	defer again()

	assert.Len(t, pool.slots, 0, "a double release must not mint a slot")
}

func TestPoolAcquireWaitsForReservedSlot(t *testing.T) {
	pool := NewPool(nil, 1)
	release, err := pool.Reserve(context.Background())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = pool.Acquire(ctx, ContextOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
