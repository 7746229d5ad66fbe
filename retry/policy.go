package retry

import (
	"math/rand"
	"time"
)

// Default policy values. A deliberately small attempt ceiling: a host that
// fails three paced attempts in a row is unlikely to recover within one
// logical request's lifetime.
const (
	DefaultMaxAttempts = 3
	DefaultBaseBackoff = 1 * time.Second
	DefaultMultiplier  = 2.0
	DefaultMaxBackoff  = 30 * time.Second
	DefaultJitter      = 0.5
)

// DefaultRetryStatuses lists the status codes retried when the caller
// doesn't configure a set.
var DefaultRetryStatuses = []int{429, 500, 502, 503, 504}

// Policy configures how failures are retried
type Policy struct {
	// MaxAttempts bounds the total number of dispatches per logical
	// request, the first attempt included.
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseBackoff time.Duration `yaml:"base_backoff" json:"base_backoff"`
	// Multiplier grows the backoff exponentially between attempts; must be
	// greater than 1 for the growth to be real.
	Multiplier float64       `yaml:"multiplier" json:"multiplier"`
	MaxBackoff time.Duration `yaml:"max_backoff" json:"max_backoff"`
	// Jitter is the maximum random fraction added on top of the computed
	// backoff, in [0, 1]. Zero disables jitter.
	Jitter        float64 `yaml:"jitter" json:"jitter"`
	RetryStatuses []int   `yaml:"retry_statuses" json:"retry_statuses"`

	retrySet map[int]bool
}

func (p *Policy) ApplyDefaults() {
	if p.MaxAttempts == 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseBackoff == 0 {
		p.BaseBackoff = DefaultBaseBackoff
	}
	if p.Multiplier == 0 {
		p.Multiplier = DefaultMultiplier
	}
	if p.MaxBackoff == 0 {
		p.MaxBackoff = DefaultMaxBackoff
	}
	if p.Jitter == 0 {
		p.Jitter = DefaultJitter
	}
	if p.RetryStatuses == nil {
		p.RetryStatuses = append([]int(nil), DefaultRetryStatuses...)
	}
	p.retrySet = make(map[int]bool, len(p.RetryStatuses))
	for _, code := range p.RetryStatuses {
		p.retrySet[code] = true
	}
}

// RetryableStatus reports whether the status code is in the retry set.
func (p *Policy) RetryableStatus(statusCode int) bool {
	if p.retrySet != nil {
		return p.retrySet[statusCode]
	}
	for _, code := range p.RetryStatuses {
		if code == statusCode {
			return true
		}
	}
	return false
}

// Backoff returns the delay to sleep before retry number attempt (1 for the
// first retry): BaseBackoff × Multiplier^(attempt-1), clamped to MaxBackoff,
// plus a uniform random jitter fraction. Growth before jitter is
// non-decreasing across attempts.
func (p *Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	// Cap the exponent so the float math can't overflow into a negative
	// duration.
	if attempt > 30 {
		attempt = 30
	}

	backoff := time.Duration(float64(p.BaseBackoff) * pow(p.Multiplier, attempt-1))
	if backoff < 0 || backoff > p.MaxBackoff {
		backoff = p.MaxBackoff
	}

	jitter := p.Jitter
	if jitter < 0 {
		jitter = 0
	}
	if jitter > 1 {
		jitter = 1
	}
	if jitter > 0 && backoff > 0 {
		extra := time.Duration(float64(backoff) * jitter * rand.Float64())
		if backoff+extra <= p.MaxBackoff {
			backoff += extra
		} else {
			backoff = p.MaxBackoff
		}
	}

	return backoff
}

func pow(base float64, exponent int) float64 {
	result := 1.0
	for i := 0; i < exponent; i++ {
		result *= base
	}
	return result
}
