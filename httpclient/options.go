package httpclient

import (
	"github.com/status-im/fetch-common/agents"
	"github.com/status-im/fetch-common/cache"
	"github.com/status-im/fetch-common/logging"
	"github.com/status-im/fetch-common/models"
	"github.com/status-im/fetch-common/retry"
)

// Option is a functional option for configuring the client
type Option func(*Client)

// WithLogger sets the logger for the client and the components it builds
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithStore overrides the cache store built from configuration. The caller
// keeps ownership of stores it injects; Close will not close them.
func WithStore(store cache.Store) Option {
	return func(c *Client) {
		c.store = store
		c.ownsStore = false
	}
}

// WithTransport overrides the default net/http transport, e.g. with a Pool
// or a custom backend.
func WithTransport(transport retry.Transport) Option {
	return func(c *Client) {
		c.transport = transport
	}
}

// WithValidator installs a response content validator applied to every
// request.
func WithValidator(validator retry.Validator) Option {
	return func(c *Client) {
		c.validator = validator
	}
}

// WithStatusHandler sets the diagnostics collaborator
func WithStatusHandler(handler retry.StatusHandler) Option {
	return func(c *Client) {
		c.handler = handler
	}
}

// WithCacheMetrics sets the metrics recorder passed to the stores the
// client builds from configuration.
func WithCacheMetrics(metrics cache.MetricsRecorder) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithAgentRotator draws the User-Agent of each request from a rotating
// pool instead of the configured static value.
func WithAgentRotator(rotator *agents.Rotator) Option {
	return func(c *Client) {
		c.agents = rotator
	}
}

// requestOptions carries the per-request knobs of one Fetch call.
type requestOptions struct {
	noCache     bool
	refresh     bool
	fingerprint models.Fingerprint
}

// RequestOption is a functional option for a single request
type RequestOption func(*requestOptions)

// WithNoCache disables cache lookup and population for this request.
func WithNoCache() RequestOption {
	return func(o *requestOptions) {
		o.noCache = true
	}
}

// WithRefresh ignores any cached entry and overwrites it with the fresh
// response.
func WithRefresh() RequestOption {
	return func(o *requestOptions) {
		o.refresh = true
	}
}

// WithCacheKey replaces the computed fingerprint by a caller-chosen key,
// e.g. "listings/page-2". Useful when request bodies carry noise (timestamps,
// session tokens) that shouldn't affect cache identity.
func WithCacheKey(key string) RequestOption {
	return func(o *requestOptions) {
		o.fingerprint = models.KeyFromString(key)
	}
}
