package httpclient

import (
	"context"
	"sync/atomic"

	"github.com/status-im/fetch-common/models"
	"github.com/status-im/fetch-common/retry"
)

// Ensure Pool implements retry.Transport
var _ retry.Transport = (*Pool)(nil)

// Pool rotates dispatches round-robin across several transports. Useful
// when a scraping run spreads load over multiple egress identities (proxy
// endpoints, differently fingerprinted backends). Safe for concurrent use.
type Pool struct {
	transports []retry.Transport
	next       atomic.Uint64
}

// NewPool creates a rotating pool over the given transports. Panics if the
// list is empty, which is a configuration bug rather than a runtime
// condition.
func NewPool(transports ...retry.Transport) *Pool {
	if len(transports) == 0 {
		panic("httpclient: pool needs at least one transport")
	}
	return &Pool{transports: transports}
}

// Send dispatches through the next transport in rotation.
func (p *Pool) Send(ctx context.Context, req *models.Request) (*models.Response, error) {
	idx := p.next.Add(1) - 1
	transport := p.transports[idx%uint64(len(p.transports))]
	return transport.Send(ctx, req)
}

// Size returns the number of pooled transports.
func (p *Pool) Size() int {
	return len(p.transports)
}
