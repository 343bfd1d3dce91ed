package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-concert-ticket-platform/internal/config"
)

func newTestRedis(t *testing.T) *goredis.Client {
	t.Helper()
	client := NewClient(&config.RedisConfig{Host: "localhost", Port: "6379"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := Ping(ctx, client); err != nil {
		client.Close()
		t.Skip("Redis not available")
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestLockManager_AcquireLock(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()
	manager := NewLockManager(client)

	t.Run("ロックを取得できる", func(t *testing.T) {
		lock, err := manager.AcquireLock(ctx, "test-lock-1", 5*time.Second)
		require.NoError(t, err)
		require.NotNil(t, lock)
		defer lock.Release(ctx)
	})

	t.Run("同じキーのロックは取得できない", func(t *testing.T) {
		lock1, err := manager.AcquireLock(ctx, "test-lock-2", 5*time.Second)
		require.NoError(t, err)
		defer lock1.Release(ctx)

		lock2, err := manager.AcquireLock(ctx, "test-lock-2", 5*time.Second)
		assert.ErrorIs(t, err, ErrLockNotAcquired)
		assert.Nil(t, lock2)
	})

	t.Run("解放後は再取得できる", func(t *testing.T) {
		lock1, err := manager.AcquireLock(ctx, "test-lock-3", 5*time.Second)
		require.NoError(t, err)

		require.NoError(t, lock1.Release(ctx))

		lock2, err := manager.AcquireLock(ctx, "test-lock-3", 5*time.Second)
		require.NoError(t, err)
		defer lock2.Release(ctx)
	})

	t.Run("リトライで取得できる", func(t *testing.T) {
		lock1, err := manager.AcquireLock(ctx, "test-lock-4", 500*time.Millisecond)
		require.NoError(t, err)

		go func() {
			time.Sleep(300 * time.Millisecond)
			lock1.Release(ctx)
		}()

		lock2, err := manager.AcquireLockWithRetry(ctx, "test-lock-4", 5*time.Second, 5, 100*time.Millisecond)
		require.NoError(t, err)
		require.NotNil(t, lock2)
		defer lock2.Release(ctx)
	})
}

func TestDistributedLock_Extend(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()
	manager := NewLockManager(client)

	lock, err := manager.AcquireLock(ctx, "test-lock-extend", 500*time.Millisecond)
	require.NoError(t, err)
	defer lock.Release(ctx)

	require.NoError(t, lock.Extend(ctx, 5*time.Second))

	// 元のTTLを過ぎてもロックは保持されている
	time.Sleep(700 * time.Millisecond)
	_, err = manager.AcquireLock(ctx, "test-lock-extend", time.Second)
	assert.ErrorIs(t, err, ErrLockNotAcquired)
}

func TestDistributedLock_ReleaseOnlyOwnLock(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()
	manager := NewLockManager(client)

	// 期限切れで他者が取り直したロックを、古い保持者は解放できない
	lock1, err := manager.AcquireLock(ctx, "test-lock-owner", 300*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(500 * time.Millisecond)

	lock2, err := manager.AcquireLock(ctx, "test-lock-owner", 5*time.Second)
	require.NoError(t, err)
	defer lock2.Release(ctx)

	assert.Error(t, lock1.Release(ctx))
}
