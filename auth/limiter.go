package auth

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// limiterIdle is how long an address can stay quiet before its bucket is dropped.
const limiterIdle = 10 * time.Minute

// LoginLimiter throttles login attempts per client address with a token
// bucket per address.
type LoginLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	rate      rate.Limit
	burst     int
	clock     clockwork.Clock
	cleanupAt time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginLimiter creates a limiter allowing perSecond sustained attempts
// and burst attempts back to back from each address.
func NewLoginLimiter(perSecond float64, burst int, clock clockwork.Clock) *LoginLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &LoginLimiter{
		limiters:  make(map[string]*limiterEntry),
		rate:      rate.Limit(perSecond),
		burst:     burst,
		clock:     clock,
		cleanupAt: clock.Now().Add(limiterIdle),
	}
}

// Allow reports whether addr may attempt a login now, consuming a token if so.
func (l *LoginLimiter) Allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if now.After(l.cleanupAt) {
		l.cleanup(now)
		l.cleanupAt = now.Add(limiterIdle)
	}

	entry, ok := l.limiters[addr]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[addr] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// Tracked returns the number of addresses with a live bucket.
func (l *LoginLimiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// cleanup must be called with mu held.
func (l *LoginLimiter) cleanup(now time.Time) {
	cutoff := now.Add(-limiterIdle)
	for addr, entry := range l.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(l.limiters, addr)
		}
	}
}
