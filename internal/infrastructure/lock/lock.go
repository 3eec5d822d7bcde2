// Package lock provides the per-session export guard. A held lock means an export for
// that session is in flight; a second Acquire fails with ErrLocked until release.
//
// A holder keeps its lock alive by refreshing the TTL every third of it until release,
// so an export may run longer than the TTL. The TTL only bounds how long a holder that
// died without releasing can block the session.
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/garyjia/field-report/internal/application/port"
)

// ErrLocked is returned when the key is already held
var ErrLocked = port.ErrLocked

// DefaultTTL bounds how long a crashed holder can block a session.
const DefaultTTL = 2 * time.Minute

// ReleaseFunc gives up a held lock. Calling it more than once is safe.
type ReleaseFunc = func(ctx context.Context) error

func refreshInterval(ttl time.Duration) time.Duration {
	return ttl / 3
}

// keepAlive calls extend every interval until the returned stop func runs or extend
// reports the lock as lost. A non-positive interval disables refreshing.
func keepAlive(interval time.Duration, extend func() bool) (stop func()) {
	if interval <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if !extend() {
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-exited
		})
	}
}
