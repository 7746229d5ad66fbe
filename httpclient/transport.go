package httpclient

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"sort"
	"time"

	"github.com/status-im/fetch-common/models"
	"github.com/status-im/fetch-common/retry"
)

// Ensure HTTPTransport implements retry.Transport
var _ retry.Transport = (*HTTPTransport)(nil)

// TransportOptions configures the net/http transport backend
type TransportOptions struct {
	ConnectionTimeout time.Duration `yaml:"connection_timeout" json:"connection_timeout"` // timeout for establishing a connection
	RequestTimeout    time.Duration `yaml:"request_timeout" json:"request_timeout"`       // total request timeout including reading the response
}

// DefaultTransportOptions returns default transport options
func DefaultTransportOptions() TransportOptions {
	return TransportOptions{
		ConnectionTimeout: 10 * time.Second,
		RequestTimeout:    60 * time.Second,
	}
}

func (o *TransportOptions) ApplyDefaults() {
	defaults := DefaultTransportOptions()
	if o.ConnectionTimeout == 0 {
		o.ConnectionTimeout = defaults.ConnectionTimeout
	}
	if o.RequestTimeout == 0 {
		o.RequestTimeout = defaults.RequestTimeout
	}
}

// HTTPTransport is the default transport capability, backed by net/http.
// Redirects are not followed here; the client facade follows them so that
// every hop goes through the cache and the retry engine.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates a transport with the given timeouts
func NewHTTPTransport(opts TransportOptions) *HTTPTransport {
	opts.ApplyDefaults()

	return &HTTPTransport{
		client: &http.Client{
			Timeout: opts.RequestTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: opts.ConnectionTimeout,
				}).DialContext,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Send performs one HTTP exchange. The response body is read fully into
// memory; connectivity failures come back as errors for the engine to
// classify.
func (t *HTTPTransport) Send(ctx context.Context, req *models.Request) (*models.Response, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, &retry.TransportError{Host: req.Host(), Err: err, Permanent: true}
	}
	for _, field := range req.Headers {
		httpReq.Header.Add(field.Name, field.Value)
	}

	start := time.Now()
	httpRes, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpRes.Body.Close()

	resBody, err := io.ReadAll(httpRes.Body)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}

	return &models.Response{
		StatusCode: httpRes.StatusCode,
		Status:     httpRes.Status,
		Headers:    flattenHeader(httpRes.Header),
		Body:       resBody,
		Elapsed:    elapsed,
	}, nil
}

// flattenHeader converts an http.Header map into the ordered representation
// the cache stores. net/http loses the relative order of distinct header
// names, so names are sorted for determinism; values of a repeated name
// keep their wire order.
func flattenHeader(header http.Header) models.Headers {
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)

	var out models.Headers
	for _, name := range names {
		for _, value := range header[name] {
			out.Add(name, value)
		}
	}
	return out
}
