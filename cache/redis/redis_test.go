package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/status-im/fetch-common/cache"
	"github.com/status-im/fetch-common/models"
)

func newTestStore(t *testing.T, cfg *cache.RedisConfig) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	if cfg == nil {
		cfg = &cache.RedisConfig{}
	}
	cfg.URL = "redis://" + mr.Addr()

	client, err := NewClient(cfg, nil)
	require.NoError(t, err)

	s := New(cfg, client)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func testEntry(body string) *models.Entry {
	return models.NewEntry(&models.Response{
		StatusCode: 200,
		Status:     "200 OK",
		Headers:    models.Headers{{Name: "Content-Type", Value: "text/html"}},
		Body:       []byte(body),
	})
}

func testFingerprint(t *testing.T, url string) models.Fingerprint {
	t.Helper()
	fp, err := models.ComputeFingerprint(models.NewRequest(url), nil)
	require.NoError(t, err)
	return fp
}

func TestRedisStore_StoreAndLookup(t *testing.T) {
	s, _ := newTestStore(t, nil)
	fp := testFingerprint(t, "https://example.com/page")

	require.NoError(t, s.Store(fp, testEntry("hello")))

	entry, found := s.Lookup(fp)
	require.True(t, found)
	assert.Equal(t, 200, entry.Response.StatusCode)
	assert.Equal(t, []byte("hello"), entry.Response.Body)
	assert.Equal(t, "text/html", entry.Response.Headers.Get("Content-Type"))
}

func TestRedisStore_LookupMiss(t *testing.T) {
	s, _ := newTestStore(t, nil)

	_, found := s.Lookup(testFingerprint(t, "https://example.com/absent"))
	assert.False(t, found)
}

func TestRedisStore_OverwriteReplacesEntry(t *testing.T) {
	s, _ := newTestStore(t, nil)
	fp := testFingerprint(t, "https://example.com/page")

	require.NoError(t, s.Store(fp, testEntry("old")))
	require.NoError(t, s.Store(fp, testEntry("new")))

	entry, found := s.Lookup(fp)
	require.True(t, found)
	assert.Equal(t, []byte("new"), entry.Response.Body)
}

func TestRedisStore_Delete(t *testing.T) {
	s, _ := newTestStore(t, nil)
	fp := testFingerprint(t, "https://example.com/page")

	require.NoError(t, s.Store(fp, testEntry("hello")))
	s.Delete(fp)

	_, found := s.Lookup(fp)
	assert.False(t, found)
}

func TestRedisStore_TTL(t *testing.T) {
	s, mr := newTestStore(t, &cache.RedisConfig{TTL: time.Minute})
	fp := testFingerprint(t, "https://example.com/page")

	require.NoError(t, s.Store(fp, testEntry("hello")))
	assert.Greater(t, mr.TTL(fp.String()), time.Duration(0))

	mr.FastForward(2 * time.Minute)

	_, found := s.Lookup(fp)
	assert.False(t, found)
}

func TestRedisStore_NoTTLByDefault(t *testing.T) {
	s, mr := newTestStore(t, nil)
	fp := testFingerprint(t, "https://example.com/page")

	require.NoError(t, s.Store(fp, testEntry("hello")))
	assert.Equal(t, time.Duration(0), mr.TTL(fp.String()))
}

func TestRedisStore_CorruptEntryIsEvicted(t *testing.T) {
	s, mr := newTestStore(t, nil)
	fp := testFingerprint(t, "https://example.com/page")

	require.NoError(t, mr.Set(fp.String(), "not a cache entry"))

	_, found := s.Lookup(fp)
	assert.False(t, found)
	assert.False(t, mr.Exists(fp.String()))
}

func TestRedisStore_ConnectionLossDegradesToMiss(t *testing.T) {
	s, mr := newTestStore(t, nil)
	fp := testFingerprint(t, "https://example.com/page")
	require.NoError(t, s.Store(fp, testEntry("hello")))

	mr.Close()

	_, found := s.Lookup(fp)
	assert.False(t, found)

	err := s.Store(fp, testEntry("again"))
	require.Error(t, err)
	var cacheErr *cache.CacheError
	assert.ErrorAs(t, err, &cacheErr)
}

func TestNewClient_BadURL(t *testing.T) {
	_, err := NewClient(&cache.RedisConfig{URL: "redis://127.0.0.1:1"}, nil)
	assert.Error(t, err)
}

func TestNewClient_SelectsDatabaseFromPath(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &cache.RedisConfig{URL: "redis://" + mr.Addr() + "/2"}

	client, err := NewClient(cfg, nil)
	require.NoError(t, err)
	defer client.Close()

	s := New(cfg, client)
	fp := testFingerprint(t, "https://example.com/page")
	require.NoError(t, s.Store(fp, testEntry("hello")))

	assert.True(t, mr.DB(2).Exists(fp.String()))
	assert.False(t, mr.DB(0).Exists(fp.String()))
}
