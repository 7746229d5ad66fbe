package models

import "time"

// Response is the outcome of a dispatched request. It is immutable once
// constructed and may be shared read-only between the cache and callers.
type Response struct {
	StatusCode int
	Status     string // e.g. "200 OK"; may be empty when a transport doesn't report it
	Headers    Headers
	Body       []byte
	Elapsed    time.Duration
	FromCache  bool

	// History holds the redirect responses that led to this one, oldest
	// first, when redirect following is enabled.
	History []*Response
}

// Clone returns a deep copy. Replay hands out clones so that one caller
// mutating a body slice can never corrupt the cached entry.
func (r *Response) Clone() *Response {
	out := &Response{
		StatusCode: r.StatusCode,
		Status:     r.Status,
		Headers:    r.Headers.Clone(),
		Elapsed:    r.Elapsed,
		FromCache:  r.FromCache,
	}
	if r.Body != nil {
		out.Body = append([]byte(nil), r.Body...)
	}
	if r.History != nil {
		out.History = append([]*Response(nil), r.History...)
	}
	return out
}

// IsRedirect reports whether the response is a redirect that carries a
// Location header.
func (r *Response) IsRedirect() bool {
	switch r.StatusCode {
	case 301, 302, 303, 307, 308:
		return r.Headers.Has("Location")
	}
	return false
}

// Entry is a recorded response as persisted by a cache store.
type Entry struct {
	Response  *Response
	CreatedAt time.Time
}

// NewEntry wraps a response for storage, stamping the creation time.
func NewEntry(res *Response) *Entry {
	return &Entry{Response: res, CreatedAt: time.Now()}
}

// Age returns how long ago the entry was recorded.
func (e *Entry) Age() time.Duration {
	return time.Since(e.CreatedAt)
}
