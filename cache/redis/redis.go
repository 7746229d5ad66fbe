package redis

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/status-im/fetch-common/cache"
	"github.com/status-im/fetch-common/logging"
	"github.com/status-im/fetch-common/models"
)

// Ensure Store implements cache.Store
var _ cache.Store = (*Store)(nil)

// Client defines the Redis client operations the store needs. Narrowing the
// interface keeps the store testable against fakes.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// Store is the Redis-backed cache backend, useful when several collector
// processes share one replay cache.
type Store struct {
	client  Client
	cfg     *cache.RedisConfig
	logger  logging.Logger
	metrics cache.MetricsRecorder
}

// Option is a functional option for configuring the Redis store
type Option func(*Store)

// WithLogger sets the logger for the Redis store
func WithLogger(logger logging.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics recorder for the Redis store
func WithMetrics(metrics cache.MetricsRecorder) Option {
	return func(s *Store) {
		s.metrics = metrics
	}
}

// New creates a Redis store with the provided client
func New(cfg *cache.RedisConfig, client Client, opts ...Option) *Store {
	cfg.ApplyDefaults()

	s := &Store{
		client:  client,
		cfg:     cfg,
		logger:  logging.Noop{},
		metrics: cache.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Lookup retrieves the entry for the fingerprint. Connection and decode
// failures degrade to misses.
func (s *Store) Lookup(fp models.Fingerprint) (*models.Entry, bool) {
	defer s.metrics.TimeOperation("lookup", "redis")()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Connection.ReadTimeout)
	defer cancel()

	key := fp.String()
	blob, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("Redis cache get failed", "key", key, "error", err)
			s.metrics.RecordError("redis", "read")
		}
		s.metrics.RecordMiss("redis")
		return nil, false
	}

	entry, err := models.DecodeEntry(blob)
	if err != nil {
		s.logger.Error("Failed to decode Redis cache entry, evicting", "key", key, "error", err)
		s.metrics.RecordError("redis", "decode")
		s.client.Del(context.Background(), key)
		return nil, false
	}

	s.metrics.RecordHit("redis", entry.Age())
	return entry, true
}

// Store records the entry, applying the configured TTL (zero means the
// entry never expires)
func (s *Store) Store(fp models.Fingerprint, entry *models.Entry) error {
	defer s.metrics.TimeOperation("store", "redis")()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Connection.SendTimeout)
	defer cancel()

	key := fp.String()
	blob := models.EncodeEntry(entry)

	if err := s.client.Set(ctx, key, blob, s.cfg.TTL).Err(); err != nil {
		s.logger.Warn("Failed to set Redis cache entry", "key", key, "error", err)
		s.metrics.RecordError("redis", "write")
		return &cache.CacheError{Op: "store", Key: key, Err: err}
	}

	s.metrics.RecordSet("redis", len(blob))
	return nil
}

// Delete removes the entry for the fingerprint
func (s *Store) Delete(fp models.Fingerprint) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Connection.SendTimeout)
	defer cancel()

	if err := s.client.Del(ctx, fp.String()).Err(); err != nil {
		s.logger.Warn("Failed to delete Redis cache entry", "key", fp.String(), "error", err)
	}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}
