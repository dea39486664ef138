// Package maintenance runs the background expiry sweep: the reference
// server blocks a dedicated thread on a condition variable woken once a
// second; here a context-cancelable ticker goroutine serves the same
// purpose.
package maintenance

import (
	"context"
	"log"
	"time"
)

// Expirer is implemented by *store.Storage.
type Expirer interface {
	CleanupExpired() int
}

// Sweeper periodically removes expired entries from an Expirer.
type Sweeper struct {
	store    Expirer
	interval time.Duration
}

// New creates a Sweeper with the given tick interval (the reference
// server uses one second).
func New(store Expirer, interval time.Duration) *Sweeper {
	return &Sweeper{store: store, interval: interval}
}

// Run blocks, sweeping on each tick, until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.store.CleanupExpired(); n > 0 {
				log.Printf("maintenance: swept %d expired key(s)", n)
			}
		}
	}
}
