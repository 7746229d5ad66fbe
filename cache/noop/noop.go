package noop

import (
	"github.com/status-im/fetch-common/cache"
	"github.com/status-im/fetch-common/models"
)

// Ensure Store implements cache.Store
var _ cache.Store = (*Store)(nil)

// Store is a no-operation cache for clients that run with caching disabled.
// Every lookup is a miss and stores discard their input.
type Store struct{}

// New creates a no-operation store
func New() *Store {
	return &Store{}
}

func (*Store) Lookup(fp models.Fingerprint) (*models.Entry, bool) {
	return nil, false
}

func (*Store) Store(fp models.Fingerprint, entry *models.Entry) error {
	return nil
}

func (*Store) Delete(fp models.Fingerprint) {
}

func (*Store) Close() error {
	return nil
}
