// Package ratelimit provides a keyed token-bucket limiter for guarding
// validation traffic per caller identifier.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultPoints = 10
	defaultWindow = time.Second

	// Idle buckets older than this are dropped by the sweep.
	staleAfter = 10 * time.Minute
)

// Limiter tracks one token bucket per identifier. Each bucket refills at
// points/window and holds at most points tokens, so a quiet caller can
// burst up to the full allowance at once.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	limit rate.Limit
	burst int

	lastSweep time.Time
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// New constructs a Limiter allowing points events per window, with safe
// defaults when inputs are invalid.
func New(points int, window time.Duration) *Limiter {
	if points <= 0 {
		points = defaultPoints
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &Limiter{
		buckets:   make(map[string]*bucket),
		limit:     rate.Limit(float64(points) / window.Seconds()),
		burst:     points,
		lastSweep: time.Now(),
	}
}

// Allow reports whether one event for identifier should be permitted now.
// Unknown identifiers get a fresh, full bucket.
func (l *Limiter) Allow(identifier string) bool {
	return l.AllowAt(time.Now(), identifier)
}

// AllowAt is Allow with an explicit clock.
func (l *Limiter) AllowAt(now time.Time, identifier string) bool {
	l.mu.Lock()
	b, ok := l.buckets[identifier]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[identifier] = b
	}
	b.lastSeen = now
	l.sweepLocked(now)
	l.mu.Unlock()

	return b.lim.AllowN(now, 1)
}

// sweepLocked drops buckets not seen for staleAfter. A stale bucket is
// full again anyway, so dropping it changes no decisions.
func (l *Limiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < staleAfter {
		return
	}
	l.lastSweep = now

	cut := now.Add(-staleAfter)
	for id, b := range l.buckets {
		if b.lastSeen.Before(cut) {
			delete(l.buckets, id)
		}
	}
}

// Len reports the number of tracked identifiers (tests).
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
