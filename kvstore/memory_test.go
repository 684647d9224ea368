package kvstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestMemory(t *testing.T) (*fakeClock, *Memory) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewMemory(WithClock(clock.Now))
	t.Cleanup(m.Close)
	return clock, m
}

func TestMemorySetGetExpire(t *testing.T) {
	clock, m := newTestMemory(t)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "otp_cooldown:a@example.com", "true", 60*time.Second))

	ok, err := m.Exists(ctx, "otp_cooldown:a@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	clock.Advance(60 * time.Second)

	_, err = m.Get(ctx, "otp_cooldown:a@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryIncrRefreshesTTL(t *testing.T) {
	clock, m := newTestMemory(t)
	ctx := context.Background()

	n, err := m.Incr(ctx, "c", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	clock.Advance(59 * time.Minute)
	n, err = m.Incr(ctx, "c", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	clock.Advance(59 * time.Minute)
	count, err := GetInt(ctx, m, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	clock.Advance(2 * time.Minute)
	count, err = GetInt(ctx, m, "c")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMemoryIncrAfterExpiryRestarts(t *testing.T) {
	clock, m := newTestMemory(t)
	ctx := context.Background()

	_, err := m.Incr(ctx, "c", time.Minute)
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)

	n, err := m.Incr(ctx, "c", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryDel(t *testing.T) {
	_, m := newTestMemory(t)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, m.Set(ctx, "b", "1", time.Minute))
	require.NoError(t, m.Del(ctx, "a", "b"))

	for _, k := range []string{"a", "b"} {
		ok, err := m.Exists(ctx, k)
		require.NoError(t, err)
		assert.False(t, ok, k)
	}
}

func TestMemoryRejectsNonPositiveTTL(t *testing.T) {
	_, m := newTestMemory(t)

	assert.ErrorIs(t, m.Set(context.Background(), "a", "1", 0), ErrInvalidTTL)
	_, err := m.Incr(context.Background(), "a", -time.Second)
	assert.ErrorIs(t, err, ErrInvalidTTL)
}

func TestMemorySweepRemovesExpired(t *testing.T) {
	clock, m := newTestMemory(t)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", "1", time.Second))
	clock.Advance(2 * time.Second)
	m.sweep()

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.entries)
}
