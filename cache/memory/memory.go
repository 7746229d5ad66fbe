package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/status-im/fetch-common/cache"
	"github.com/status-im/fetch-common/logging"
	"github.com/status-im/fetch-common/models"
	"github.com/status-im/fetch-common/scheduler"
)

// Ensure Store implements cache.Store
var _ cache.Store = (*Store)(nil)

// Store is the explicitly ephemeral in-memory backend on BigCache. It
// trades the durability guarantee of the disk store for speed, and is only
// selected when configuration asks for it.
type Store struct {
	cache            *bigcache.BigCache
	logger           logging.Logger
	metrics          cache.MetricsRecorder
	metricsScheduler *scheduler.Scheduler
	maxEntrySize     int
}

// Option is a functional option for configuring the memory store
type Option func(*Store)

// WithLogger sets the logger for the memory store
func WithLogger(logger logging.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics recorder for the memory store
func WithMetrics(metrics cache.MetricsRecorder) Option {
	return func(s *Store) {
		s.metrics = metrics
	}
}

// New creates a memory store. Entries never expire on their own; BigCache
// only evicts under memory pressure, which is acceptable for an ephemeral
// mode.
func New(cfg *cache.MemoryConfig, opts ...Option) (*Store, error) {
	cfg.ApplyDefaults()

	config := bigcache.DefaultConfig(10 * time.Minute)
	config.HardMaxCacheSize = cfg.SizeMB
	config.Verbose = false
	config.MaxEntrySize = cfg.MaxEntrySize
	config.Shards = cfg.Shards

	c, err := bigcache.New(context.Background(), config)
	if err != nil {
		return nil, err
	}

	s := &Store{
		cache:        c,
		logger:       logging.Noop{},
		metrics:      cache.NoopMetrics{},
		maxEntrySize: cfg.MaxEntrySize,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.startMetricsCollection()

	return s, nil
}

// Lookup retrieves the entry for the fingerprint, if present
func (s *Store) Lookup(fp models.Fingerprint) (*models.Entry, bool) {
	defer s.metrics.TimeOperation("lookup", "memory")()

	key := fp.String()
	blob, err := s.cache.Get(key)
	if err != nil {
		s.metrics.RecordMiss("memory")
		return nil, false
	}

	entry, err := models.DecodeEntry(blob)
	if err != nil {
		s.logger.Warn("Failed to decode memory cache entry, evicting", "key", key, "error", err)
		s.metrics.RecordError("memory", "decode")
		_ = s.cache.Delete(key)
		return nil, false
	}

	s.metrics.RecordHit("memory", entry.Age())
	return entry, true
}

// Store records the entry, overwriting any previous one for the fingerprint
func (s *Store) Store(fp models.Fingerprint, entry *models.Entry) error {
	defer s.metrics.TimeOperation("store", "memory")()

	key := fp.String()
	blob := models.EncodeEntry(entry)

	if len(blob) > s.maxEntrySize {
		s.logger.Warn("Cache entry too large for memory store, skipping",
			"key", key,
			"size", len(blob),
			"max_size", s.maxEntrySize)
		s.metrics.RecordError("memory", "entry_too_large")
		return &cache.CacheError{Op: "store", Key: key, Err: fmt.Errorf("entry size %d exceeds max %d", len(blob), s.maxEntrySize)}
	}

	if err := s.cache.Set(key, blob); err != nil {
		s.logger.Error("Failed to set memory cache entry", "key", key, "error", err)
		s.metrics.RecordError("memory", "upstream")
		return &cache.CacheError{Op: "store", Key: key, Err: err}
	}

	s.metrics.RecordSet("memory", len(blob))
	return nil
}

// Delete removes the entry for the fingerprint
func (s *Store) Delete(fp models.Fingerprint) {
	_ = s.cache.Delete(fp.String())
}

// Close stops metrics collection and releases the cache
func (s *Store) Close() error {
	s.stopMetricsCollection()

	return s.cache.Close()
}

// startMetricsCollection starts periodic metrics collection
func (s *Store) startMetricsCollection() {
	s.metricsScheduler = scheduler.New(30*time.Second, s.updateMetrics)
	s.metricsScheduler.Start()

	s.updateMetrics()
}

// stopMetricsCollection stops periodic metrics collection
func (s *Store) stopMetricsCollection() {
	if s.metricsScheduler != nil {
		s.metricsScheduler.Stop()
	}
}

// updateMetrics updates cache capacity metrics
func (s *Store) updateMetrics() {
	stats := s.cache.Stats()
	capacity := int64(s.cache.Capacity())
	used := int64(stats.Hits + stats.Misses)

	s.metrics.UpdateCapacity("memory", capacity, used)
}
