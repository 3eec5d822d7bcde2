package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLock keeps locks in process memory.
type MemoryLock struct {
	mu      sync.Mutex
	held    map[string]memoryEntry
	now     func() time.Time
	ttl     time.Duration
	refresh time.Duration
	seq     uint64
}

type memoryEntry struct {
	token   uint64
	expires time.Time
}

// NewMemoryLock creates an in-process lock table.
func NewMemoryLock(ttl time.Duration) *MemoryLock {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryLock{
		held:    make(map[string]memoryEntry),
		now:     time.Now,
		ttl:     ttl,
		refresh: refreshInterval(ttl),
	}
}

// Acquire takes the lock for key or returns ErrLocked. The lock stays held past
// its TTL until released.
func (l *MemoryLock) Acquire(_ context.Context, key string) (ReleaseFunc, error) {
	l.mu.Lock()
	now := l.now()
	if e, ok := l.held[key]; ok && now.Before(e.expires) {
		l.mu.Unlock()
		return nil, ErrLocked
	}

	l.seq++
	token := l.seq
	l.held[key] = memoryEntry{token: token, expires: now.Add(l.ttl)}
	refresh := l.refresh
	l.mu.Unlock()

	stop := keepAlive(refresh, func() bool { return l.extend(key, token) })

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			stop()
			l.mu.Lock()
			defer l.mu.Unlock()
			// an expired lock may have been taken over by another holder
			if e, ok := l.held[key]; ok && e.token == token {
				delete(l.held, key)
			}
		})
		return nil
	}, nil
}

// extend pushes the expiry of a lock still owned by token
func (l *MemoryLock) extend(key string, token uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	e, ok := l.held[key]
	if !ok || e.token != token || !now.Before(e.expires) {
		return false
	}
	e.expires = now.Add(l.ttl)
	l.held[key] = e
	return true
}

// Held reports whether key is currently locked.
func (l *MemoryLock) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.held[key]
	return ok && l.now().Before(e.expires)
}
