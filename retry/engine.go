package retry

import (
	"context"
	"errors"
	"time"

	"github.com/status-im/fetch-common/cache"
	"github.com/status-im/fetch-common/logging"
	"github.com/status-im/fetch-common/models"
	"github.com/status-im/fetch-common/throttle"
)

// Transport is the capability that actually performs network I/O: given a
// request, it returns a response or a transport-level error. The engine is
// agnostic to how it is implemented and never inspects which implementation
// is active. Timeouts and connection errors must be reported, not
// swallowed.
type Transport interface {
	Send(ctx context.Context, req *models.Request) (*models.Response, error)
}

// Validator inspects an otherwise successful response and rejects it when
// it doesn't carry the expected content. A rejection is retried like any
// transient failure.
type Validator func(res *models.Response) error

// StatusHandler receives diagnostic events from the engine. Implementations
// typically feed metrics or logs; the Noop default discards everything.
type StatusHandler interface {
	// OnRequest reports the outcome class of a finished attempt:
	// "cache_hit", "success", "retryable", "error".
	OnRequest(status string)
	// OnRetry fires before each retry attempt.
	OnRetry()
	// OnCacheError reports a cache persistence failure that did not fail
	// the request.
	OnCacheError(err error)
}

// NoopStatusHandler discards all events.
type NoopStatusHandler struct{}

func (NoopStatusHandler) OnRequest(status string) {}
func (NoopStatusHandler) OnRetry()                {}
func (NoopStatusHandler) OnCacheError(err error)  {}

// Engine orchestrates one logical request: it consults the cache, paces and
// dispatches through the transport, classifies the outcome, and retries
// transient failures with exponential backoff. Safe for concurrent use.
type Engine struct {
	store           cache.Store
	throttle        *throttle.Throttle
	transport       Transport
	policy          Policy
	validator       Validator
	logger          logging.Logger
	handler         StatusHandler
	ignoredHeaders  []string
	dispatchTimeout time.Duration
	failOnStatus    bool
}

// Option is a functional option for configuring the engine
type Option func(*Engine)

// WithValidator installs a response content validator.
func WithValidator(validator Validator) Option {
	return func(e *Engine) {
		e.validator = validator
	}
}

// WithLogger sets the logger for the engine
func WithLogger(logger logging.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStatusHandler sets the diagnostics collaborator
func WithStatusHandler(handler StatusHandler) Option {
	return func(e *Engine) {
		e.handler = handler
	}
}

// WithIgnoredHeaders overrides the headers excluded from fingerprints.
func WithIgnoredHeaders(names []string) Option {
	return func(e *Engine) {
		e.ignoredHeaders = names
	}
}

// WithDispatchTimeout bounds each individual transport dispatch. A timeout
// is classified as a transport failure and follows the normal retry path.
func WithDispatchTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		e.dispatchTimeout = timeout
	}
}

// WithoutStatusFailures makes the engine return responses with any status
// code outside the retry set instead of failing on 4xx/5xx.
func WithoutStatusFailures() Option {
	return func(e *Engine) {
		e.failOnStatus = false
	}
}

// NewEngine creates a retry engine over the given collaborators.
func NewEngine(store cache.Store, thr *throttle.Throttle, transport Transport, policy Policy, opts ...Option) *Engine {
	policy.ApplyDefaults()

	e := &Engine{
		store:        store,
		throttle:     thr,
		transport:    transport,
		policy:       policy,
		logger:       logging.Noop{},
		handler:      NoopStatusHandler{},
		failOnStatus: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the engine's effective retry policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// DoOptions carries the per-request knobs of a single Do call.
type DoOptions struct {
	// Fingerprint overrides the computed cache key when non-zero.
	Fingerprint models.Fingerprint
	// NoCache disables both cache lookup and cache population.
	NoCache bool
	// Refresh skips the cache lookup but still records the fresh response.
	Refresh bool
	// SkipThrottle bypasses per-host pacing. Redirect hops use this: the
	// remote host itself asked for the follow-up request.
	SkipThrottle bool
}

// Do runs one logical request to completion: replay from cache on a hit,
// otherwise paced dispatch attempts with exponential backoff until success,
// a non-retryable failure, the attempt ceiling, or cancellation.
func (e *Engine) Do(ctx context.Context, req *models.Request, opts DoOptions) (*models.Response, error) {
	fp := opts.Fingerprint
	if fp.IsZero() {
		computed, err := models.ComputeFingerprint(req, e.ignoredHeaders)
		if err != nil {
			return nil, err
		}
		fp = computed
	}

	if !opts.NoCache && !opts.Refresh {
		if entry, ok := e.store.Lookup(fp); ok {
			e.handler.OnRequest("cache_hit")
			e.logger.Debug("Replaying cached response", "key", fp.String())
			res := entry.Response.Clone()
			res.FromCache = true
			return res, nil
		}
	}

	host := req.Host()
	var lastErr error

	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			e.handler.OnRetry()
			backoff := e.policy.Backoff(attempt - 1)
			e.logger.Debug("Backing off before retry",
				"host", host,
				"attempt", attempt,
				"max_attempts", e.policy.MaxAttempts,
				"backoff", backoff,
				"last_error", lastErr)
			if err := sleepCtx(ctx, backoff); err != nil {
				return nil, err
			}
		}

		if !opts.SkipThrottle {
			if err := e.throttle.Acquire(ctx, host); err != nil {
				return nil, err
			}
		}

		res, err := e.dispatch(ctx, req)
		if err != nil {
			// Caller cancellation propagates immediately, bypassing retry.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			e.handler.OnRequest("error")
		} else {
			lastErr = e.evaluate(res)
			if lastErr == nil {
				e.handler.OnRequest("success")
				if !opts.NoCache {
					if storeErr := e.store.Store(fp, models.NewEntry(res)); storeErr != nil {
						// The caller already has a valid response; surface
						// the failure for diagnostics only.
						e.logger.Warn("Failed to record response in cache", "key", fp.String(), "error", storeErr)
						e.handler.OnCacheError(storeErr)
					}
				}
				return res, nil
			}
			e.handler.OnRequest("retryable")
		}

		if !e.policy.IsRetryable(lastErr) {
			return nil, lastErr
		}
	}

	return nil, &RetryExhausted{
		Attempts: e.policy.MaxAttempts,
		Host:     host,
		Last:     lastErr,
	}
}

// dispatch performs one transport attempt under the per-dispatch timeout,
// wrapping connectivity failures as TransportError.
func (e *Engine) dispatch(ctx context.Context, req *models.Request) (*models.Response, error) {
	sendCtx := ctx
	if e.dispatchTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, e.dispatchTimeout)
		defer cancel()
	}

	start := time.Now()
	res, err := e.transport.Send(sendCtx, req)
	if err != nil {
		var transportErr *TransportError
		if errors.As(err, &transportErr) {
			return nil, transportErr
		}
		return nil, &TransportError{Host: req.Host(), Err: err}
	}

	if res.Elapsed == 0 {
		res.Elapsed = time.Since(start)
	}
	return res, nil
}

// evaluate classifies a received response: nil for success, StatusError or
// ValidationError otherwise.
func (e *Engine) evaluate(res *models.Response) error {
	if e.policy.RetryableStatus(res.StatusCode) {
		return &StatusError{
			StatusCode: res.StatusCode,
			Status:     res.Status,
			Snippet:    bodySnippet(res.Body),
		}
	}
	if e.failOnStatus && res.StatusCode >= 400 {
		return &StatusError{
			StatusCode: res.StatusCode,
			Status:     res.Status,
			Snippet:    bodySnippet(res.Body),
		}
	}
	if e.validator != nil {
		if err := e.validator(res); err != nil {
			var validationErr *ValidationError
			if errors.As(err, &validationErr) {
				return validationErr
			}
			return &ValidationError{Err: err}
		}
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

const maxSnippetLen = 200

func bodySnippet(body []byte) string {
	if len(body) > maxSnippetLen {
		return string(body[:maxSnippetLen])
	}
	return string(body)
}
