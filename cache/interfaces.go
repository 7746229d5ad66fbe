package cache

import (
	"time"

	"github.com/status-im/fetch-common/models"
)

//go:generate mockgen -package=mock -source=interfaces.go -destination=mock/store.go

// Store is the contract for response cache backends. Implementations must be
// safe for concurrent use; callers never need external locking.
type Store interface {
	// Lookup returns the entry recorded for the fingerprint, if any. It is
	// a pure read. A backend I/O failure degrades to a miss so the request
	// can still proceed to the transport.
	Lookup(fp models.Fingerprint) (*models.Entry, bool)

	// Store persists the entry, overwriting any previous entry for the same
	// fingerprint. Durable backends must not return before the entry is
	// safely written. A returned error is non-fatal to the request that
	// produced the response, but is surfaced for diagnostics.
	Store(fp models.Fingerprint, entry *models.Entry) error

	// Delete removes the entry for the fingerprint, if present.
	Delete(fp models.Fingerprint)

	// Close releases backend resources.
	Close() error
}

// MetricsRecorder is the contract for recording cache metrics. Users can
// implement this to integrate with their metrics system (Prometheus, etc.).
type MetricsRecorder interface {
	RecordHit(backend string, itemAge time.Duration)
	RecordMiss(backend string)
	RecordSet(backend string, dataSize int)
	RecordError(backend, kind string)
	UpdateCapacity(backend string, capacity, used int64)
	TimeOperation(operation, backend string) func()
}

// NoopMetrics is a no-operation metrics recorder that discards all metrics.
type NoopMetrics struct{}

func (NoopMetrics) RecordHit(backend string, itemAge time.Duration)     {}
func (NoopMetrics) RecordMiss(backend string)                           {}
func (NoopMetrics) RecordSet(backend string, dataSize int)              {}
func (NoopMetrics) RecordError(backend, kind string)                    {}
func (NoopMetrics) UpdateCapacity(backend string, capacity, used int64) {}
func (NoopMetrics) TimeOperation(operation, backend string) func()      { return func() {} }
