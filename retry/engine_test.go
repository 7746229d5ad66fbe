package retry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/status-im/fetch-common/cache"
	"github.com/status-im/fetch-common/models"
	"github.com/status-im/fetch-common/throttle"
)

// fakeTransport replays a scripted sequence of outcomes and records every
// dispatched request.
type fakeTransport struct {
	mu       sync.Mutex
	script   []outcome
	requests []*models.Request
}

type outcome struct {
	res *models.Response
	err error
}

func respond(status int, body string) outcome {
	return outcome{res: &models.Response{StatusCode: status, Body: []byte(body)}}
}

func fail(err error) outcome {
	return outcome{err: err}
}

func (f *fakeTransport) Send(ctx context.Context, req *models.Request) (*models.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if len(f.script) == 0 {
		return nil, errors.New("unscripted request")
	}
	next := f.script[0]
	if len(f.script) > 1 {
		f.script = f.script[1:]
	}
	if next.err != nil {
		return nil, next.err
	}
	return next.res.Clone(), nil
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// fakeStore is an in-memory Store keyed by fingerprint string.
type fakeStore struct {
	mu       sync.Mutex
	entries  map[string]*models.Entry
	storeErr error
	stores   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]*models.Entry)}
}

func (s *fakeStore) Lookup(fp models.Fingerprint) (*models.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[fp.String()]
	return entry, ok
}

func (s *fakeStore) Store(fp models.Fingerprint, entry *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stores++
	if s.storeErr != nil {
		return s.storeErr
	}
	s.entries[fp.String()] = entry
	return nil
}

func (s *fakeStore) Delete(fp models.Fingerprint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, fp.String())
}

func (s *fakeStore) Close() error { return nil }

var _ cache.Store = (*fakeStore)(nil)

// recordingHandler counts the engine's diagnostic events.
type recordingHandler struct {
	mu          sync.Mutex
	statuses    []string
	retries     int
	cacheErrors []error
}

func (h *recordingHandler) OnRequest(status string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func (h *recordingHandler) OnRetry() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.retries++
}

func (h *recordingHandler) OnCacheError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cacheErrors = append(h.cacheErrors, err)
}

func fastPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
		Multiplier:  2.0,
		MaxBackoff:  5 * time.Millisecond,
		Jitter:      -1,
	}
}

func newTestEngine(store cache.Store, transport Transport, opts ...Option) *Engine {
	return NewEngine(store, throttle.New(0), transport, fastPolicy(), opts...)
}

func testRequest() *models.Request {
	return models.NewRequest("https://example.com/page")
}

func TestEngine_SuccessFirstAttempt(t *testing.T) {
	transport := &fakeTransport{script: []outcome{respond(200, "hello")}}
	store := newFakeStore()
	handler := &recordingHandler{}
	engine := newTestEngine(store, transport, WithStatusHandler(handler))

	res, err := engine.Do(context.Background(), testRequest(), DoOptions{})

	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, []byte("hello"), res.Body)
	assert.False(t, res.FromCache)
	assert.Equal(t, 1, transport.calls())
	assert.Equal(t, 1, store.stores)
	assert.Equal(t, []string{"success"}, handler.statuses)
}

func TestEngine_ReplayFromCache(t *testing.T) {
	transport := &fakeTransport{script: []outcome{respond(200, "fresh")}}
	store := newFakeStore()
	engine := newTestEngine(store, transport)

	first, err := engine.Do(context.Background(), testRequest(), DoOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, transport.calls())

	second, err := engine.Do(context.Background(), testRequest(), DoOptions{})
	require.NoError(t, err)

	// Replay is byte-identical and touches the network zero times.
	assert.Equal(t, 1, transport.calls())
	assert.True(t, second.FromCache)
	assert.Equal(t, first.StatusCode, second.StatusCode)
	assert.Equal(t, first.Body, second.Body)

	// Mutating the replayed body must not corrupt the cached entry.
	second.Body[0] = 'X'
	third, err := engine.Do(context.Background(), testRequest(), DoOptions{})
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh"), third.Body)
}

func TestEngine_FailTwiceThenSucceed(t *testing.T) {
	transport := &fakeTransport{script: []outcome{
		respond(503, "unavailable"),
		fail(errors.New("connection reset")),
		respond(200, "finally"),
	}}
	store := newFakeStore()
	handler := &recordingHandler{}
	engine := newTestEngine(store, transport, WithStatusHandler(handler))

	res, err := engine.Do(context.Background(), testRequest(), DoOptions{})

	require.NoError(t, err)
	assert.Equal(t, []byte("finally"), res.Body)
	assert.Equal(t, 3, transport.calls())
	assert.Equal(t, 2, handler.retries)
	// Only the successful response gets cached.
	assert.Equal(t, 1, store.stores)
	entry, ok := store.Lookup(mustFingerprint(t, testRequest()))
	require.True(t, ok)
	assert.Equal(t, []byte("finally"), entry.Response.Body)
}

func TestEngine_RetryExhausted(t *testing.T) {
	transport := &fakeTransport{script: []outcome{respond(500, "broken")}}
	store := newFakeStore()
	engine := newTestEngine(store, transport)

	res, err := engine.Do(context.Background(), testRequest(), DoOptions{})

	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, 3, transport.calls())

	var exhausted *RetryExhausted
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Equal(t, "example.com", exhausted.Host)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 500, statusErr.StatusCode)

	// Failures never populate the cache.
	assert.Equal(t, 0, store.stores)
}

func TestEngine_NonRetryableStatusFailsImmediately(t *testing.T) {
	transport := &fakeTransport{script: []outcome{respond(404, "not found")}}
	engine := newTestEngine(newFakeStore(), transport)

	_, err := engine.Do(context.Background(), testRequest(), DoOptions{})

	require.Error(t, err)
	assert.Equal(t, 1, transport.calls())

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 404, statusErr.StatusCode)
	assert.Equal(t, "not found", statusErr.Snippet)

	var exhausted *RetryExhausted
	assert.False(t, errors.As(err, &exhausted))
}

func TestEngine_PermanentTransportErrorFailsImmediately(t *testing.T) {
	transport := &fakeTransport{script: []outcome{
		fail(&TransportError{Host: "example.com", Err: errors.New("unsupported scheme"), Permanent: true}),
	}}
	engine := newTestEngine(newFakeStore(), transport)

	_, err := engine.Do(context.Background(), testRequest(), DoOptions{})

	require.Error(t, err)
	assert.Equal(t, 1, transport.calls())
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.True(t, transportErr.Permanent)
}

func TestEngine_WithoutStatusFailures(t *testing.T) {
	transport := &fakeTransport{script: []outcome{respond(404, "not found")}}
	store := newFakeStore()
	engine := newTestEngine(store, transport, WithoutStatusFailures())

	res, err := engine.Do(context.Background(), testRequest(), DoOptions{})

	require.NoError(t, err)
	assert.Equal(t, 404, res.StatusCode)
	// The outcome is a legitimate response, so it is recorded.
	assert.Equal(t, 1, store.stores)
}

func TestEngine_RetryableStatusStillRetriedWithoutStatusFailures(t *testing.T) {
	transport := &fakeTransport{script: []outcome{
		respond(429, "slow down"),
		respond(200, "ok"),
	}}
	engine := newTestEngine(newFakeStore(), transport, WithoutStatusFailures())

	res, err := engine.Do(context.Background(), testRequest(), DoOptions{})

	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, 2, transport.calls())
}

func TestEngine_ValidatorAlwaysRejects(t *testing.T) {
	transport := &fakeTransport{script: []outcome{respond(200, "<html>captcha</html>")}}
	store := newFakeStore()
	engine := newTestEngine(store, transport, WithValidator(func(res *models.Response) error {
		return &ValidationError{Reason: "captcha page"}
	}))

	_, err := engine.Do(context.Background(), testRequest(), DoOptions{})

	require.Error(t, err)
	assert.Equal(t, 3, transport.calls())

	var exhausted *RetryExhausted
	require.ErrorAs(t, err, &exhausted)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "captcha page", validationErr.Reason)

	// A response that never validated must never be replayable.
	assert.Equal(t, 0, store.stores)
}

func TestEngine_ValidatorRejectsThenPasses(t *testing.T) {
	transport := &fakeTransport{script: []outcome{
		respond(200, "captcha"),
		respond(200, "real content"),
	}}
	store := newFakeStore()
	engine := newTestEngine(store, transport, WithValidator(func(res *models.Response) error {
		if string(res.Body) == "captcha" {
			return errors.New("captcha page")
		}
		return nil
	}))

	res, err := engine.Do(context.Background(), testRequest(), DoOptions{})

	require.NoError(t, err)
	assert.Equal(t, []byte("real content"), res.Body)
	assert.Equal(t, 2, transport.calls())
	assert.Equal(t, 1, store.stores)
}

func TestEngine_CancellationDuringBackoff(t *testing.T) {
	transport := &fakeTransport{script: []outcome{respond(503, "unavailable")}}
	policy := fastPolicy()
	policy.BaseBackoff = 5 * time.Second
	engine := NewEngine(newFakeStore(), throttle.New(0), transport, policy)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := engine.Do(ctx, testRequest(), DoOptions{})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, transport.calls())
	assert.Less(t, time.Since(start), time.Second)
}

func TestEngine_CancellationDuringDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	transport := &fakeTransport{script: []outcome{fail(errors.New("interrupted"))}}
	engine := newTestEngine(newFakeStore(), transport)

	cancel()
	_, err := engine.Do(ctx, testRequest(), DoOptions{})

	assert.ErrorIs(t, err, context.Canceled)
	var exhausted *RetryExhausted
	assert.False(t, errors.As(err, &exhausted))
}

func TestEngine_NoCache(t *testing.T) {
	transport := &fakeTransport{script: []outcome{respond(200, "live")}}
	store := newFakeStore()
	engine := newTestEngine(store, transport)

	_, err := engine.Do(context.Background(), testRequest(), DoOptions{NoCache: true})
	require.NoError(t, err)
	_, err = engine.Do(context.Background(), testRequest(), DoOptions{NoCache: true})
	require.NoError(t, err)

	assert.Equal(t, 2, transport.calls())
	assert.Equal(t, 0, store.stores)
}

func TestEngine_RefreshOverwritesEntry(t *testing.T) {
	transport := &fakeTransport{script: []outcome{
		respond(200, "stale"),
		respond(200, "fresh"),
	}}
	store := newFakeStore()
	engine := newTestEngine(store, transport)

	_, err := engine.Do(context.Background(), testRequest(), DoOptions{})
	require.NoError(t, err)

	res, err := engine.Do(context.Background(), testRequest(), DoOptions{Refresh: true})
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh"), res.Body)
	assert.Equal(t, 2, transport.calls())

	// The refreshed entry replaced the stale one.
	replay, err := engine.Do(context.Background(), testRequest(), DoOptions{})
	require.NoError(t, err)
	assert.True(t, replay.FromCache)
	assert.Equal(t, []byte("fresh"), replay.Body)
}

func TestEngine_CacheStoreFailureDoesNotFailRequest(t *testing.T) {
	transport := &fakeTransport{script: []outcome{respond(200, "ok")}}
	store := newFakeStore()
	store.storeErr = errors.New("disk full")
	handler := &recordingHandler{}
	engine := newTestEngine(store, transport, WithStatusHandler(handler))

	res, err := engine.Do(context.Background(), testRequest(), DoOptions{})

	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)
	require.Len(t, handler.cacheErrors, 1)
	assert.ErrorContains(t, handler.cacheErrors[0], "disk full")
}

func TestEngine_ExplicitFingerprintKeysTheCache(t *testing.T) {
	transport := &fakeTransport{script: []outcome{respond(200, "keyed")}}
	store := newFakeStore()
	engine := newTestEngine(store, transport)
	fp := models.KeyFromString("listings/page-2")

	_, err := engine.Do(context.Background(), testRequest(), DoOptions{Fingerprint: fp})
	require.NoError(t, err)

	entry, ok := store.Lookup(fp)
	require.True(t, ok)
	assert.Equal(t, []byte("keyed"), entry.Response.Body)

	// A different request replays under the same explicit key.
	other := models.NewRequest("https://example.com/other")
	res, err := engine.Do(context.Background(), other, DoOptions{Fingerprint: fp})
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, 1, transport.calls())
}

func TestEngine_ThrottlePacesAttempts(t *testing.T) {
	delay := 40 * time.Millisecond
	transport := &fakeTransport{script: []outcome{respond(200, "ok")}}
	engine := NewEngine(newFakeStore(), throttle.New(delay), transport, fastPolicy())

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := engine.Do(context.Background(), testRequest(), DoOptions{NoCache: true})
		require.NoError(t, err)
	}

	assert.GreaterOrEqual(t, time.Since(start), 2*delay)
}

func TestEngine_SkipThrottle(t *testing.T) {
	transport := &fakeTransport{script: []outcome{respond(200, "ok")}}
	engine := NewEngine(newFakeStore(), throttle.New(time.Hour), transport, fastPolicy())

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := engine.Do(context.Background(), testRequest(), DoOptions{NoCache: true, SkipThrottle: true})
		require.NoError(t, err)
	}

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 3, transport.calls())
}

func TestEngine_InvalidURL(t *testing.T) {
	transport := &fakeTransport{}
	engine := newTestEngine(newFakeStore(), transport)

	_, err := engine.Do(context.Background(), models.NewRequest("not a url"), DoOptions{})

	assert.Error(t, err)
	assert.Equal(t, 0, transport.calls())
}

func TestEngine_StampsElapsed(t *testing.T) {
	transport := &fakeTransport{script: []outcome{respond(200, "ok")}}
	engine := newTestEngine(newFakeStore(), transport)

	res, err := engine.Do(context.Background(), testRequest(), DoOptions{})

	require.NoError(t, err)
	assert.Greater(t, res.Elapsed, time.Duration(0))
}

func mustFingerprint(t *testing.T, req *models.Request) models.Fingerprint {
	t.Helper()
	fp, err := models.ComputeFingerprint(req, nil)
	require.NoError(t, err)
	return fp
}
