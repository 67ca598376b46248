package llmclient

import (
	"sync"
	"time"
)

// spacing is the minimum gap enforced between successive rate-limiter
// acquisitions across every Client and every Game in the process.
const spacing = 3 * time.Second

// RateLimiter is a single mutex-guarded "next-allowed-at" timestamp
// shared by every outbound chat call in the process, so that ordered
// acquisitions are monotonically spaced by at least spacing — a fair
// wait primitive, not a per-request queue.
type RateLimiter struct {
	mu     sync.Mutex
	nextAt time.Time
}

// NewRateLimiter returns a limiter ready to grant its first acquisition
// immediately.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{}
}

// Acquire blocks until it is this caller's turn to proceed, then
// reserves the next slot. Acquisitions are granted in the order they
// arrive at the lock.
func (r *RateLimiter) Acquire() {
	r.mu.Lock()
	now := time.Now()
	var wait time.Duration
	if now.Before(r.nextAt) {
		wait = r.nextAt.Sub(now)
		r.nextAt = r.nextAt.Add(spacing)
	} else {
		r.nextAt = now.Add(spacing)
	}
	r.mu.Unlock()

	if wait > 0 {
		time.Sleep(wait)
	}
}
