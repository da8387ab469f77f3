// Package resilience implements the small pieces of failure-handling
// spec §7 calls out that aren't already covered by a library in the
// example pack: a timed circuit breaker for DependencyUnavailable, and
// bounded exponential backoff for BusTransientError.
package resilience

import (
	"sync"
	"time"
)

// Breaker is a minimal open/closed circuit breaker keyed by a failure
// threshold and a fixed 30s break duration (spec §7:
// "DependencyUnavailable (circuit-break 30 s, use fallback)"). It is
// grounded on the TTL-cached health check in
// internal/storage/weaviate/client.go's Ready method, generalized from a
// read-only health cache into a trip/reset state machine.
type Breaker struct {
	mu            sync.Mutex
	failThreshold int
	breakFor      time.Duration
	consecutive   int
	openUntil     time.Time
}

// NewBreaker constructs a Breaker that trips after failThreshold
// consecutive failures and stays open for breakFor.
func NewBreaker(failThreshold int, breakFor time.Duration) *Breaker {
	if failThreshold <= 0 {
		failThreshold = 3
	}
	if breakFor <= 0 {
		breakFor = 30 * time.Second
	}
	return &Breaker{failThreshold: failThreshold, breakFor: breakFor}
}

// Allow reports whether a call should be attempted. When the breaker is
// open it returns false so the caller can go straight to its fallback
// without paying for another timeout.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return time.Now().After(b.openUntil)
}

// RecordSuccess resets the failure count and closes the breaker.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutive = 0
	b.openUntil = time.Time{}
}

// RecordFailure increments the failure count and, once the threshold is
// reached, opens the breaker for breakFor.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutive++
	if b.consecutive >= b.failThreshold {
		b.openUntil = time.Now().Add(b.breakFor)
	}
}

// Open reports whether the breaker is currently tripped.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return time.Now().Before(b.openUntil)
}
