package throttle

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultDelay is the minimum inter-request delay applied per host when the
// caller doesn't configure one. Scraping politely is the default posture.
const DefaultDelay = 5 * time.Second

// Throttle paces outbound requests per host: between the start of two
// consecutive dispatches to the same host at least the configured delay
// elapses, no matter how many goroutines fetch concurrently. Hosts are
// independent; waiting on one host never delays another.
//
// Each host gets a rate.Limiter with burst 1, whose reservation is the
// atomic check-and-update on the host's last-dispatch timestamp: two
// concurrent callers can never both pass the wait check.
type Throttle struct {
	mu          sync.RWMutex
	delay       time.Duration
	hostLimiter map[string]*rate.Limiter
}

// New creates a throttle with the given minimum per-host delay. A zero
// delay disables throttling entirely.
func New(delay time.Duration) *Throttle {
	if delay < 0 {
		delay = 0
	}
	return &Throttle{
		delay:       delay,
		hostLimiter: make(map[string]*rate.Limiter),
	}
}

// Acquire blocks until the caller may dispatch to the host, claiming the
// host's next dispatch slot. It returns early with ctx.Err() if the context
// is cancelled while waiting.
func (t *Throttle) Acquire(ctx context.Context, host string) error {
	limiter := t.limiter(host)
	if limiter == nil {
		// Throttling disabled; still honor cancellation.
		return ctx.Err()
	}
	return limiter.Wait(ctx)
}

// Delay returns the configured minimum inter-request delay.
func (t *Throttle) Delay() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.delay
}

// SetDelay applies a new delay and rebuilds the per-host limiters. Existing
// waiters keep the pacing they reserved under the old delay.
func (t *Throttle) SetDelay(delay time.Duration) {
	if delay < 0 {
		delay = 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.delay = delay
	for host := range t.hostLimiter {
		delete(t.hostLimiter, host)
	}
}

// limiter returns the host's limiter, creating it lazily. Returns nil when
// throttling is disabled.
func (t *Throttle) limiter(host string) *rate.Limiter {
	t.mu.RLock()
	if t.delay == 0 {
		t.mu.RUnlock()
		return nil
	}
	if lim, ok := t.hostLimiter[host]; ok {
		t.mu.RUnlock()
		return lim
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.delay == 0 {
		return nil
	}
	// Double-check after acquiring write lock
	if lim, ok := t.hostLimiter[host]; ok {
		return lim
	}

	lim := rate.NewLimiter(rate.Every(t.delay), 1)
	t.hostLimiter[host] = lim
	return lim
}
