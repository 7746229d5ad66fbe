package disk

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/status-im/fetch-common/cache"
	"github.com/status-im/fetch-common/logging"
	"github.com/status-im/fetch-common/models"
	"github.com/status-im/fetch-common/scheduler"
)

// Ensure Store implements cache.Store
var _ cache.Store = (*Store)(nil)

// Store is the durable on-disk backend. Each entry lives in its own gzip
// blob under the root directory, fanned out by fingerprint prefix. Writes go
// through a temp file and rename, so a crash mid-write never leaves a
// corrupt entry behind.
type Store struct {
	cfg     *cache.DiskConfig
	logger  logging.Logger
	metrics cache.MetricsRecorder
	pruner  *scheduler.Scheduler
}

// Option is a functional option for configuring the disk store
type Option func(*Store)

// WithLogger sets the logger for the disk store
func WithLogger(logger logging.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics recorder for the disk store
func WithMetrics(metrics cache.MetricsRecorder) Option {
	return func(s *Store) {
		s.metrics = metrics
	}
}

// New creates a disk store rooted at cfg.Dir. When MaxAge is configured, a
// background pruner removes entries past their age on every PruneInterval.
func New(cfg *cache.DiskConfig, opts ...Option) (*Store, error) {
	cfg.ApplyDefaults()
	if cfg.Dir == "" {
		return nil, errors.New("disk cache: dir is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("disk cache: %w", err)
	}

	s := &Store{
		cfg:     cfg,
		logger:  logging.Noop{},
		metrics: cache.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.MaxAge > 0 {
		s.pruner = scheduler.New(cfg.PruneInterval, s.Prune)
		s.pruner.Start()
	}

	return s, nil
}

// Lookup reads the entry for the fingerprint. Any I/O or decode failure is
// treated as a miss so the caller can proceed to the transport.
func (s *Store) Lookup(fp models.Fingerprint) (*models.Entry, bool) {
	defer s.metrics.TimeOperation("lookup", "disk")()

	path := s.filePath(fp)
	info, err := os.Stat(path)
	if err != nil {
		s.metrics.RecordMiss("disk")
		return nil, false
	}
	if s.cfg.MaxAge > 0 && time.Since(info.ModTime()) > s.cfg.MaxAge {
		s.metrics.RecordMiss("disk")
		return nil, false
	}

	blob, err := s.readBlob(path)
	if err != nil {
		s.logger.Warn("Failed to read disk cache entry", "path", path, "error", err)
		s.metrics.RecordError("disk", "read")
		return nil, false
	}

	entry, err := models.DecodeEntry(blob)
	if err != nil {
		s.logger.Warn("Failed to decode disk cache entry, evicting", "path", path, "error", err)
		s.metrics.RecordError("disk", "decode")
		_ = os.Remove(path)
		return nil, false
	}

	s.metrics.RecordHit("disk", entry.Age())
	return entry, true
}

// Store durably persists the entry before returning. The previous entry for
// the fingerprint, if any, is replaced atomically.
func (s *Store) Store(fp models.Fingerprint, entry *models.Entry) error {
	defer s.metrics.TimeOperation("store", "disk")()

	path := s.filePath(fp)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		s.metrics.RecordError("disk", "write")
		return &cache.CacheError{Op: "store", Key: fp.String(), Err: err}
	}

	blob := models.EncodeEntry(entry)
	if err := s.writeBlob(path, blob); err != nil {
		s.metrics.RecordError("disk", "write")
		return &cache.CacheError{Op: "store", Key: fp.String(), Err: err}
	}

	s.metrics.RecordSet("disk", len(blob))
	return nil
}

// Delete removes the entry for the fingerprint
func (s *Store) Delete(fp models.Fingerprint) {
	_ = os.Remove(s.filePath(fp))
}

// Close stops the background pruner
func (s *Store) Close() error {
	if s.pruner != nil {
		s.pruner.Stop()
	}
	return nil
}

// Prune removes all entries older than MaxAge and any directories left
// empty. It is a no-op when MaxAge is unset.
func (s *Store) Prune() {
	if s.cfg.MaxAge == 0 {
		return
	}

	cutoff := time.Now().Add(-s.cfg.MaxAge)
	parents := make(map[string]bool)

	err := filepath.WalkDir(s.cfg.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".gz" {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err == nil {
				parents[filepath.Dir(path)] = true
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("Disk cache prune walk failed", "dir", s.cfg.Dir, "error", err)
		s.metrics.RecordError("disk", "prune")
		return
	}

	for dir := range parents {
		for dir != s.cfg.Dir {
			// Remove fails on non-empty directories, which is exactly the
			// stopping condition.
			if err := os.Remove(dir); err != nil {
				break
			}
			dir = filepath.Dir(dir)
		}
	}
}

func (s *Store) filePath(fp models.Fingerprint) string {
	parts := fp.PathParts()
	return filepath.Join(append([]string{s.cfg.Dir}, parts...)...) + ".gz"
}

func (s *Store) readBlob(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader, err := gzip.NewReader(file)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

func (s *Store) writeBlob(path string, blob []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	writer := gzip.NewWriter(tmp)
	if _, err := writer.Write(blob); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
