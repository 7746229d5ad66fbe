package models

import (
	"fmt"
	"net/url"
	"strings"
)

// Request is a logical HTTP request as formulated by user code, before any
// transport-specific preparation.
type Request struct {
	Method  string
	URL     string
	Headers Headers
	Body    []byte
}

// NewRequest builds a GET request for the given URL.
func NewRequest(rawURL string) *Request {
	return &Request{Method: "GET", URL: rawURL}
}

// Clone returns a deep copy of the request.
func (r *Request) Clone() *Request {
	out := &Request{
		Method:  r.Method,
		URL:     r.URL,
		Headers: r.Headers.Clone(),
	}
	if r.Body != nil {
		out.Body = append([]byte(nil), r.Body...)
	}
	return out
}

// Host returns the lower-cased hostname of the request URL, without port.
// Throttling keys on this value.
func (r *Request) Host() string {
	parsed, err := url.Parse(r.URL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

// Normalize returns a copy in canonical form: upper-cased method (GET when
// empty), lower-cased scheme and host, default port stripped. Query
// parameter order is preserved as given, since reordering it would change
// the bytes actually sent on the wire.
func (r *Request) Normalize() (*Request, error) {
	out := r.Clone()

	out.Method = strings.ToUpper(strings.TrimSpace(out.Method))
	if out.Method == "" {
		out.Method = "GET"
	}

	parsed, err := url.Parse(out.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid request URL %q: %w", out.URL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("request URL %q is not absolute", out.URL)
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	if host, port, ok := strings.Cut(parsed.Host, ":"); ok {
		if (parsed.Scheme == "http" && port == "80") || (parsed.Scheme == "https" && port == "443") {
			parsed.Host = host
		}
	}
	if parsed.Path == "" {
		parsed.Path = "/"
	}

	out.URL = parsed.String()
	return out, nil
}
