package multi

import (
	"github.com/status-im/fetch-common/cache"
	"github.com/status-im/fetch-common/logging"
	"github.com/status-im/fetch-common/models"
)

// Ensure Store implements cache.Store
var _ cache.Store = (*Store)(nil)

// Store composes several cache backends into one tiered store. Lookups try
// each backend in order and the first hit wins; stores write through to all
// of them. A typical composition is a fast ephemeral memory store in front
// of the durable disk store.
type Store struct {
	stores            []cache.Store
	logger            logging.Logger
	enablePropagation bool
}

// Option is a functional option for configuring the tiered store
type Option func(*Store)

// WithLogger sets the logger for the tiered store
func WithLogger(logger logging.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a tiered store over the given backends, ordered fastest
// first. When enablePropagation is set, a hit in a later backend is copied
// into the faster ones in front of it.
func New(stores []cache.Store, enablePropagation bool, opts ...Option) *Store {
	s := &Store{
		stores:            stores,
		logger:            logging.Noop{},
		enablePropagation: enablePropagation,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup returns the entry from the first backend that has it
func (s *Store) Lookup(fp models.Fingerprint) (*models.Entry, bool) {
	if len(s.stores) == 0 {
		s.logger.Warn("No backends available for lookup", "key", fp.String())
		return nil, false
	}

	for i, backend := range s.stores {
		entry, found := backend.Lookup(fp)
		if !found {
			continue
		}
		if i > 0 && s.enablePropagation {
			s.propagate(fp, entry, i)
		}
		return entry, true
	}

	return nil, false
}

// Store writes the entry through to every backend. The write is considered
// failed only if all backends reject it; the last error is reported then.
func (s *Store) Store(fp models.Fingerprint, entry *models.Entry) error {
	if len(s.stores) == 0 {
		s.logger.Warn("No backends available for store", "key", fp.String())
		return nil
	}

	var lastErr error
	stored := false
	for _, backend := range s.stores {
		if err := backend.Store(fp, entry); err != nil {
			s.logger.Warn("Backend store failed", "key", fp.String(), "error", err)
			lastErr = err
			continue
		}
		stored = true
	}
	if !stored {
		return lastErr
	}
	return nil
}

// Delete removes the entry from every backend
func (s *Store) Delete(fp models.Fingerprint) {
	for _, backend := range s.stores {
		backend.Delete(fp)
	}
}

// Close closes every backend, returning the first error encountered
func (s *Store) Close() error {
	var firstErr error
	for _, backend := range s.stores {
		if err := backend.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// StoreCount returns the number of composed backends
func (s *Store) StoreCount() int {
	return len(s.stores)
}

// propagate copies a hit from backend hitIndex into the faster backends in
// front of it. Propagation failures are logged and otherwise ignored.
func (s *Store) propagate(fp models.Fingerprint, entry *models.Entry, hitIndex int) {
	for i := 0; i < hitIndex; i++ {
		if err := s.stores[i].Store(fp, entry); err != nil {
			s.logger.Debug("Failed to propagate entry to faster backend",
				"key", fp.String(), "backend_index", i, "error", err)
		}
	}
}
