package redislock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocker(t *testing.T) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewLocker(client, "carlock:", 5*time.Second), mr
}

func TestAcquire_Exclusive(t *testing.T) {
	locker, mr := newLocker(t)
	ctx := context.Background()

	lock, err := locker.Acquire(ctx, "1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("carlock:1"))

	_, err = locker.Acquire(ctx, "1")
	assert.ErrorIs(t, err, ErrLockHeld)

	other, err := locker.Acquire(ctx, "2")
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, lock.Release(ctx))
	assert.False(t, mr.Exists("carlock:1"))

	_, err = locker.Acquire(ctx, "1")
	assert.NoError(t, err)
}

func TestRelease_DoesNotDropForeignLock(t *testing.T) {
	locker, mr := newLocker(t)
	ctx := context.Background()

	lock, err := locker.Acquire(ctx, "1")
	require.NoError(t, err)

	// блокировка истекла и была захвачена другим владельцем
	mr.FastForward(6 * time.Second)
	_, err = locker.Acquire(ctx, "1")
	require.NoError(t, err)

	require.NoError(t, lock.Release(ctx))
	assert.True(t, mr.Exists("carlock:1"))
}

func TestWithLock_ReleasesAfterRun(t *testing.T) {
	locker, mr := newLocker(t)
	ctx := context.Background()

	called := false
	err := locker.WithLock(ctx, "7", func(ctx context.Context) error {
		called = true
		assert.True(t, mr.Exists("carlock:7"))
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
	assert.False(t, mr.Exists("carlock:7"))
}
