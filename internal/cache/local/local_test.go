package local

import (
	"context"
	"testing"
	"time"

	"github.com/alanyoungcy/betledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockManager(t *testing.T) {
	lm := NewLockManager()
	ctx := context.Background()

	unlock, err := lm.Acquire(ctx, "wager:1", time.Minute)
	require.NoError(t, err)

	_, err = lm.Acquire(ctx, "wager:1", time.Minute)
	assert.ErrorIs(t, err, domain.ErrLockHeld)

	unlock()
	unlock()

	unlock2, err := lm.Acquire(ctx, "wager:1", time.Minute)
	require.NoError(t, err)
	unlock2()
}

func TestLockExpires(t *testing.T) {
	lm := NewLockManager()
	now := time.Now()
	lm.now = func() time.Time { return now }

	_, err := lm.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	_, err = lm.Acquire(context.Background(), "k", time.Second)
	assert.NoError(t, err)
}

func TestSignalBusFanOut(t *testing.T) {
	bus := NewSignalBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := bus.Subscribe(ctx, domain.ChannelWagers)
	require.NoError(t, err)
	b, err := bus.Subscribe(ctx, domain.ChannelWagers)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, domain.ChannelWagers, []byte("hello")))
	assert.Equal(t, []byte("hello"), <-a)
	assert.Equal(t, []byte("hello"), <-b)

	cancel()
	_, open := <-a
	assert.False(t, open)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter()
	now := time.Now()
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, "ip", 3, time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := rl.Allow(ctx, "ip", 3, time.Second)
	assert.False(t, ok)

	now = now.Add(1100 * time.Millisecond)
	ok, _ = rl.Allow(ctx, "ip", 3, time.Second)
	assert.True(t, ok)
}

func TestQuoteCacheExpiry(t *testing.T) {
	c := NewQuoteCache(time.Second)
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", domain.Quote{CombinedOddsAmerican: 264}))
	q, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 264, q.CombinedOddsAmerican)

	now = now.Add(2 * time.Second)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
