// Package batch fetches large URL sets in polite chunks. Scraping jobs
// often hold thousands of URLs; dispatching them in bounded chunks with an
// inter-chunk pause keeps memory flat and avoids hammering upstreams beyond
// what the per-host throttle already enforces.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/status-im/fetch-common/models"
)

// Chunker splits item lists into chunks bounded by item count and total
// string length, pausing between chunks.
type Chunker struct {
	maxItems int
	maxChars int
	delay    time.Duration
}

// NewChunker creates a chunker. maxItems bounds the number of items per
// chunk; maxChars, when positive, additionally bounds the summed length of
// the items (useful when URLs end up concatenated into one upstream query).
func NewChunker(maxItems, maxChars int, delay time.Duration) *Chunker {
	return &Chunker{maxItems: maxItems, maxChars: maxChars, delay: delay}
}

// Chunks splits items into chunks honoring both limits. An item longer
// than maxChars still gets a chunk of its own rather than being dropped.
func (c *Chunker) Chunks(items []string) [][]string {
	if len(items) == 0 || c.maxItems <= 0 {
		return nil
	}

	var chunks [][]string
	for start := 0; start < len(items); {
		end := start
		length := 0
		for end < len(items) && (end-start) < c.maxItems {
			if c.maxChars > 0 && length+len(items[end]) > c.maxChars {
				break
			}
			length += len(items[end])
			end++
		}
		if end == start {
			end = start + 1
		}
		chunks = append(chunks, items[start:end])
		start = end
	}
	return chunks
}

func (c *Chunker) pause(ctx context.Context) error {
	if c.delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.delay):
		return nil
	}
}

// Map runs fetch on each chunk and merges the resulting maps. The first
// failing chunk aborts the batch.
func Map[T any](ctx context.Context, c *Chunker, items []string, fetch func(context.Context, []string) (map[string]T, error)) (map[string]T, error) {
	merged := make(map[string]T)
	for i, chunk := range c.Chunks(items) {
		if i > 0 {
			if err := c.pause(ctx); err != nil {
				return nil, err
			}
		}
		part, err := fetch(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch chunk: %w", err)
		}
		for k, v := range part {
			merged[k] = v
		}
	}
	return merged, nil
}

// Slice runs fetch on each chunk and concatenates the results in order.
func Slice[T any](ctx context.Context, c *Chunker, items []string, fetch func(context.Context, []string) ([]T, error)) ([]T, error) {
	var merged []T
	for i, chunk := range c.Chunks(items) {
		if i > 0 {
			if err := c.pause(ctx); err != nil {
				return nil, err
			}
		}
		part, err := fetch(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch chunk: %w", err)
		}
		merged = append(merged, part...)
	}
	return merged, nil
}

// FetchResponses fetches every URL through get, keyed by URL. get is
// typically a bound Client.Get. URLs within a chunk are fetched
// sequentially so the per-host throttle stays effective.
func FetchResponses(ctx context.Context, c *Chunker, urls []string, get func(context.Context, string) (*models.Response, error)) (map[string]*models.Response, error) {
	return Map(ctx, c, urls, func(ctx context.Context, chunk []string) (map[string]*models.Response, error) {
		out := make(map[string]*models.Response, len(chunk))
		for _, u := range chunk {
			res, err := get(ctx, u)
			if err != nil {
				return nil, fmt.Errorf("fetching %s: %w", u, err)
			}
			out[u] = res
		}
		return out, nil
	})
}
