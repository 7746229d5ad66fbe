package cache

import "fmt"

// CacheError reports a persistence I/O failure. Lookup failures degrade to
// cache misses; store failures are surfaced for diagnostics but never fail
// the request that produced the response.
type CacheError struct {
	Op  string // "lookup", "store", "delete"
	Key string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
