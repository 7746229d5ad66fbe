package retry

import (
	"errors"
	"fmt"
)

// TransportError reports a connectivity-level failure: connection refused,
// timeout, TLS handshake, DNS. Retryable unless the transport marked it
// Permanent.
type TransportError struct {
	Host      string
	Err       error
	Permanent bool
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error for host %s: %v", e.Host, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError reports that an HTTP response was obtained but its status code
// marks it as a failure. Retryable when the code is in the configured retry
// set.
type StatusError struct {
	StatusCode int
	Status     string
	// Snippet holds the start of the response body for diagnostics.
	Snippet string
}

func (e *StatusError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Snippet)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// ValidationError reports that a response was well-formed HTTP but the
// caller-supplied validator rejected its content. Always retryable: the next
// attempt may return the expected data.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("response validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("response validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// RetryExhausted is the terminal error surfaced after every allowed attempt is
// spent on retryable failures. It preserves the precipitating error so
// callers can distinguish a rate-limited host from content that never
// validated.
type RetryExhausted struct {
	Attempts int
	Host     string
	Last     error
}

func (e *RetryExhausted) Error() string {
	return fmt.Sprintf("gave up on host %s after %d attempts, last error: %v", e.Host, e.Attempts, e.Last)
}

func (e *RetryExhausted) Unwrap() error {
	return e.Last
}

// IsRetryable classifies an error against the policy. Transport errors not
// marked permanent, status errors whose code is in the retry set, and
// validation errors are retryable; everything else, including cancellation,
// is not.
func (p *Policy) IsRetryable(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return !transportErr.Permanent
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return p.RetryableStatus(statusErr.StatusCode)
	}

	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
