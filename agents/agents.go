// Package agents manages a pool of User-Agent strings for scraping clients
// that rotate identity. Agents that a remote host rejects are put on a
// cooldown so the next request presents a different one.
package agents

import (
	"sync"
	"time"
)

// Provider supplies the agent strings to rotate through.
type Provider interface {
	Agents() []string
}

// StaticProvider returns a fixed list of agents.
type StaticProvider []string

func (p StaticProvider) Agents() []string {
	return p
}

// Rotator cycles through the provider's agents round-robin, skipping agents
// in failure cooldown. A sole agent is always eligible: with nothing to
// rotate to, sitting out the cooldown would only stall the client.
type Rotator struct {
	provider Provider
	cooldown time.Duration

	mu         sync.Mutex
	next       int
	lastFailed map[string]time.Time
}

// DefaultCooldown is how long a failed agent sits out before it is offered
// again.
const DefaultCooldown = 5 * time.Minute

// NewRotator creates a rotator over the provider's agents. A zero cooldown
// falls back to DefaultCooldown.
func NewRotator(provider Provider, cooldown time.Duration) *Rotator {
	if cooldown == 0 {
		cooldown = DefaultCooldown
	}
	return &Rotator{
		provider:   provider,
		cooldown:   cooldown,
		lastFailed: make(map[string]time.Time),
	}
}

// Next returns the next eligible agent, or "" when the provider has none.
func (r *Rotator) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	agents := r.provider.Agents()
	if len(agents) == 0 {
		return ""
	}
	if len(agents) == 1 {
		return agents[0]
	}

	for offset := 0; offset < len(agents); offset++ {
		agent := agents[(r.next+offset)%len(agents)]
		if r.inCooldown(agent) {
			continue
		}
		r.next = (r.next + offset + 1) % len(agents)
		return agent
	}

	// Everything is cooling down; round-robin regardless.
	agent := agents[r.next%len(agents)]
	r.next = (r.next + 1) % len(agents)
	return agent
}

// MarkFailed puts an agent on cooldown, typically after a 429 or 403 from
// the remote host.
func (r *Rotator) MarkFailed(agent string) {
	if agent == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastFailed[agent] = time.Now()
}

func (r *Rotator) inCooldown(agent string) bool {
	if lastFailTime, exists := r.lastFailed[agent]; exists {
		return time.Since(lastFailTime) < r.cooldown
	}
	return false
}
