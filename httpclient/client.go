// Package httpclient is the client facade of the fetch layer. It wires the
// response cache, the per-host throttle and the retry engine around a
// pluggable transport, and exposes the conventional request-by-verb
// surface.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/status-im/fetch-common/agents"
	"github.com/status-im/fetch-common/cache"
	"github.com/status-im/fetch-common/cache/disk"
	"github.com/status-im/fetch-common/cache/memory"
	"github.com/status-im/fetch-common/cache/noop"
	redisstore "github.com/status-im/fetch-common/cache/redis"
	"github.com/status-im/fetch-common/logging"
	"github.com/status-im/fetch-common/models"
	"github.com/status-im/fetch-common/retry"
	"github.com/status-im/fetch-common/throttle"
)

// Client is a caching, throttling, retrying HTTP client for scraping and
// data-collection workloads. Identical requests replay from the cache
// without touching the network; requests that do go out are paced per host
// and retried on transient failures. Safe for concurrent use.
type Client struct {
	cfg       *Config
	logger    logging.Logger
	metrics   cache.MetricsRecorder
	store     cache.Store
	ownsStore bool
	throttle  *throttle.Throttle
	transport retry.Transport
	validator retry.Validator
	handler   retry.StatusHandler
	agents    *agents.Rotator
	engine    *retry.Engine
}

// New creates a client from configuration. Options override the components
// the configuration would build.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	c := &Client{
		cfg:       cfg,
		logger:    logging.Noop{},
		metrics:   cache.NoopMetrics{},
		ownsStore: true,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.transport == nil {
		c.transport = NewHTTPTransport(cfg.Transport)
	}
	if c.store == nil {
		store, err := c.buildStore()
		if err != nil {
			return nil, err
		}
		c.store = store
	}
	c.throttle = throttle.New(cfg.CourtesyDelay)

	engineOpts := []retry.Option{
		retry.WithLogger(c.logger),
		retry.WithDispatchTimeout(cfg.Transport.RequestTimeout),
	}
	if c.validator != nil {
		engineOpts = append(engineOpts, retry.WithValidator(c.validator))
	}
	if c.handler != nil {
		engineOpts = append(engineOpts, retry.WithStatusHandler(c.handler))
	}
	if cfg.IgnoredHeaders != nil {
		engineOpts = append(engineOpts, retry.WithIgnoredHeaders(cfg.IgnoredHeaders))
	}
	if cfg.AllowErrorResponses {
		engineOpts = append(engineOpts, retry.WithoutStatusFailures())
	}
	c.engine = retry.NewEngine(c.store, c.throttle, c.transport, cfg.Retry, engineOpts...)

	return c, nil
}

// Get fetches a URL with the GET method.
func (c *Client) Get(ctx context.Context, rawURL string, opts ...RequestOption) (*models.Response, error) {
	return c.Do(ctx, "GET", rawURL, nil, opts...)
}

// Post fetches a URL with the POST method and the given body.
func (c *Client) Post(ctx context.Context, rawURL string, body []byte, opts ...RequestOption) (*models.Response, error) {
	return c.Do(ctx, "POST", rawURL, body, opts...)
}

// Do fetches a URL with an arbitrary method and body.
func (c *Client) Do(ctx context.Context, method, rawURL string, body []byte, opts ...RequestOption) (*models.Response, error) {
	return c.Fetch(ctx, &models.Request{Method: method, URL: rawURL, Body: body}, opts...)
}

// Fetch runs one logical request through cache, throttle and retry,
// following redirects unless disabled. The returned response has
// FromCache set when it was replayed without touching the network.
func (c *Client) Fetch(ctx context.Context, req *models.Request, opts ...RequestOption) (*models.Response, error) {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}

	req = req.Clone()
	agent := c.applyUserAgent(req)

	fp := ro.fingerprint
	if fp.IsZero() {
		computed, err := models.ComputeFingerprint(req, c.cfg.IgnoredHeaders)
		if err != nil {
			return nil, err
		}
		fp = computed
	}

	res, err := c.engine.Do(ctx, req, retry.DoOptions{
		Fingerprint: fp,
		NoCache:     ro.noCache,
		Refresh:     ro.refresh,
	})
	if err != nil {
		c.noteAgentFailure(agent, err)
		return nil, err
	}

	if c.cfg.DisableRedirects {
		return res, nil
	}
	return c.followRedirects(ctx, req, res, fp, ro)
}

// Throttle exposes the per-host throttle, e.g. for sharing it with code
// that performs out-of-band requests to the same hosts.
func (c *Client) Throttle() *throttle.Throttle {
	return c.throttle
}

// Close releases the cache store, unless it was injected by the caller.
func (c *Client) Close() error {
	if c.ownsStore && c.store != nil {
		return c.store.Close()
	}
	return nil
}

// followRedirects walks a redirect chain. Each hop is dispatched through
// the engine under the next sequence number of the original fingerprint, so
// replaying the chain from cache needs no network at all. Hops skip the
// courtesy delay: the remote host itself asked for the follow-up.
func (c *Client) followRedirects(ctx context.Context, req *models.Request, res *models.Response, fp models.Fingerprint, ro requestOptions) (*models.Response, error) {
	var history []*models.Response
	hop := req

	for res.IsRedirect() {
		if len(history) >= c.cfg.MaxRedirects {
			return nil, fmt.Errorf("exceeded %d redirects fetching %s", c.cfg.MaxRedirects, req.URL)
		}

		nextURL, err := resolveLocation(hop.URL, res.Headers.Get("Location"))
		if err != nil {
			return nil, err
		}

		next := &models.Request{Method: "GET", URL: nextURL, Headers: hop.Headers.Clone()}
		if res.StatusCode == 307 || res.StatusCode == 308 {
			next.Method = hop.Method
			next.Body = append([]byte(nil), hop.Body...)
		}

		history = append(history, res)
		fp = fp.NextInSequence()

		res, err = c.engine.Do(ctx, next, retry.DoOptions{
			Fingerprint:  fp,
			NoCache:      ro.noCache,
			Refresh:      ro.refresh,
			SkipThrottle: true,
		})
		if err != nil {
			return nil, err
		}
		hop = next
	}

	if len(history) > 0 {
		res = res.Clone()
		res.History = history
	}
	return res, nil
}

// applyUserAgent injects the client identity when the request doesn't carry
// one, returning the agent used so failures can be reported to the rotator.
func (c *Client) applyUserAgent(req *models.Request) string {
	if req.Headers.Has("User-Agent") {
		return ""
	}

	agent := ""
	if c.agents != nil {
		agent = c.agents.Next()
	}
	if agent == "" {
		agent = c.cfg.UserAgent
	}
	req.Headers.Set("User-Agent", agent)
	return agent
}

// noteAgentFailure puts the agent on cooldown when the host rejected the
// client's identity.
func (c *Client) noteAgentFailure(agent string, err error) {
	if c.agents == nil || agent == "" {
		return
	}
	var statusErr *retry.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == 429 || statusErr.StatusCode == 403 {
			c.agents.MarkFailed(agent)
		}
	}
}

func (c *Client) buildStore() (cache.Store, error) {
	switch c.cfg.CacheBackend {
	case BackendDisk:
		return disk.New(&c.cfg.Disk, disk.WithLogger(c.logger), disk.WithMetrics(c.metrics))
	case BackendMemory:
		return memory.New(&c.cfg.Memory, memory.WithLogger(c.logger), memory.WithMetrics(c.metrics))
	case BackendRedis:
		client, err := redisstore.NewClient(&c.cfg.Redis, c.logger)
		if err != nil {
			return nil, err
		}
		return redisstore.New(&c.cfg.Redis, client,
			redisstore.WithLogger(c.logger), redisstore.WithMetrics(c.metrics)), nil
	case BackendNone, "":
		return noop.New(), nil
	default:
		return nil, fmt.Errorf("unknown cache_backend %q", c.cfg.CacheBackend)
	}
}

func resolveLocation(baseURL, location string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid redirect base URL %q: %w", baseURL, err)
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("invalid redirect location %q: %w", location, err)
	}
	return base.ResolveReference(ref).String(), nil
}
