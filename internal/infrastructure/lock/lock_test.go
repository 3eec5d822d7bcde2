package lock

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryLock_RejectsSecondHolder(t *testing.T) {
	l := NewMemoryLock(time.Minute)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "session-1")
	require.NoError(t, err)
	assert.True(t, l.Held("session-1"))

	_, err = l.Acquire(ctx, "session-1")
	assert.ErrorIs(t, err, ErrLocked)

	// other keys are independent
	releaseOther, err := l.Acquire(ctx, "session-2")
	require.NoError(t, err)
	require.NoError(t, releaseOther(ctx))

	require.NoError(t, release(ctx))
	require.NoError(t, release(ctx))
	assert.False(t, l.Held("session-1"))

	_, err = l.Acquire(ctx, "session-1")
	assert.NoError(t, err)
}

func TestMemoryLock_ExpiredLockCanBeTakenOver(t *testing.T) {
	l := NewMemoryLock(time.Second)
	// a holder that stopped refreshing, as after a crash
	l.refresh = 0
	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	staleRelease, err := l.Acquire(ctx, "s")
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	freshRelease, err := l.Acquire(ctx, "s")
	require.NoError(t, err)

	// the stale holder must not drop the new holder's lock
	require.NoError(t, staleRelease(ctx))
	assert.True(t, l.Held("s"))

	require.NoError(t, freshRelease(ctx))
	assert.False(t, l.Held("s"))
}

func TestMemoryLock_HeldBeyondTTLUntilReleased(t *testing.T) {
	l := NewMemoryLock(150 * time.Millisecond)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "long-export")
	require.NoError(t, err)

	time.Sleep(450 * time.Millisecond)
	assert.True(t, l.Held("long-export"))
	_, err = l.Acquire(ctx, "long-export")
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, release(ctx))
	assert.False(t, l.Held("long-export"))
}

func TestMemoryLock_ExtendRefusesLostLock(t *testing.T) {
	l := NewMemoryLock(time.Second)
	l.refresh = 0
	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := l.Acquire(ctx, "s")
	require.NoError(t, err)
	assert.True(t, l.extend("s", 1))
	assert.False(t, l.extend("s", 2))

	now = now.Add(2 * time.Second)
	assert.False(t, l.extend("s", 1))
}

func TestMemoryLock_ConcurrentAcquire(t *testing.T) {
	l := NewMemoryLock(time.Minute)
	var wins atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Acquire(context.Background(), "hot"); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestRedisLock(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	l, err := NewRedisLock(ctx, RedisConfig{Addr: addr, TTL: time.Second}, zap.NewNop())
	require.NoError(t, err)
	defer l.Close()

	key := "test-" + uuid.NewString()
	release, err := l.Acquire(ctx, key)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, key)
	assert.ErrorIs(t, err, ErrLocked)

	// refreshed past the TTL while held
	time.Sleep(1500 * time.Millisecond)
	_, err = l.Acquire(ctx, key)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, release(ctx))
	release2, err := l.Acquire(ctx, key)
	require.NoError(t, err)
	require.NoError(t, release2(ctx))
}
