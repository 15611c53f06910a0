package redlock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return client, mr
}

func TestLock(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()
	rl := NewRedLock(client, "test", WithTTL(time.Second), WithMaxRetries(2), WithRetryDelay(time.Millisecond))

	_, err := rl.Locker("")
	assert.ErrorIs(t, err, ErrEmptyKey)

	a, err := rl.Locker("table1")
	require.NoError(t, err)
	b, err := rl.Locker("table1")
	require.NoError(t, err)
	assert.Equal(t, "test:lock:table1", a.Key())
	assert.NotEqual(t, a.Value(), b.Value())

	t.Run("exclusive", func(t *testing.T) {
		ok, err := a.TryLock(ctx)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = b.TryLock(ctx)
		require.NoError(t, err)
		assert.False(t, ok)

		assert.ErrorIs(t, b.Lock(ctx), ErrNotAcquired)
		assert.ErrorIs(t, b.Unlock(ctx), ErrNotHeld)
		assert.ErrorIs(t, b.Refresh(ctx, time.Minute), ErrNotHeld)
	})

	t.Run("refresh", func(t *testing.T) {
		require.NoError(t, a.Refresh(ctx, time.Minute))
		assert.Equal(t, time.Minute, mr.TTL(a.Key()))
	})

	t.Run("unlock", func(t *testing.T) {
		require.NoError(t, a.Unlock(ctx))
		assert.False(t, mr.Exists(a.Key()))
		assert.ErrorIs(t, a.Unlock(ctx), ErrNotHeld)
		require.NoError(t, b.Lock(ctx))
		require.NoError(t, b.Unlock(ctx))
	})

	t.Run("expired", func(t *testing.T) {
		require.NoError(t, a.Lock(ctx))
		mr.FastForward(2 * time.Second)
		ok, err := b.TryLock(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.ErrorIs(t, a.Unlock(ctx), ErrNotHeld)
		require.NoError(t, b.Unlock(ctx))
	})
}

func TestLockContextCancel(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	rl := NewRedLock(client, "test", WithMaxRetries(100), WithRetryDelay(time.Second))
	holder, err := rl.Locker("t")
	require.NoError(t, err)
	require.NoError(t, holder.Lock(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	waiter, err := rl.Locker("t")
	require.NoError(t, err)
	assert.ErrorIs(t, waiter.Lock(ctx), context.DeadlineExceeded)
}

func TestWithLock(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()
	rl := NewRedLock(client, "test", WithMaxRetries(0))

	errBoom := errors.New("boom")
	err := rl.WithLock(ctx, "t", func(ctx context.Context) error {
		assert.True(t, mr.Exists("test:lock:t"))

		// 持有期间其他调用拿不到锁
		inner := rl.WithLock(ctx, "t", func(context.Context) error { return nil })
		assert.ErrorIs(t, inner, ErrNotAcquired)
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	assert.False(t, mr.Exists("test:lock:t"))
}
