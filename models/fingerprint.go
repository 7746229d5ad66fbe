package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// DefaultIgnoredHeaders lists headers excluded from fingerprint computation
// by default. Excluding User-Agent means the client identity can change
// without invalidating the whole cache.
var DefaultIgnoredHeaders = []string{"User-Agent"}

// fingerprintHexLen is the number of hex chars kept from the digest. 64 bits
// keeps collision odds negligible while staying short enough to read in file
// listings and logs.
const fingerprintHexLen = 16

var unsafePathChars = regexp.MustCompile(`[^\w\-]`)

// Fingerprint deterministically identifies a cache-equivalent request. It is
// either computed from a request digest or supplied by the caller as a
// slash-separated key. Sequence distinguishes the hops of a redirect chain
// that share one logical key.
type Fingerprint struct {
	Parts    []string
	Sequence int
}

// ComputeFingerprint derives the fingerprint of a request from its method,
// normalized URL, cache-relevant headers and body. The computation is pure:
// two logically identical requests always produce the same fingerprint.
// Headers named in ignoredHeaders (nil means DefaultIgnoredHeaders) do not
// participate.
func ComputeFingerprint(req *Request, ignoredHeaders []string) (Fingerprint, error) {
	normalized, err := req.Normalize()
	if err != nil {
		return Fingerprint{}, err
	}

	if ignoredHeaders == nil {
		ignoredHeaders = DefaultIgnoredHeaders
	}
	ignored := make(map[string]bool, len(ignoredHeaders))
	for _, name := range ignoredHeaders {
		ignored[CanonicalName(name)] = true
	}

	digest := sha256.New()
	fmt.Fprintf(digest, "%s\n%s\n", normalized.Method, normalized.URL)
	for _, field := range normalized.Headers.Canonical() {
		if ignored[field.Name] {
			continue
		}
		fmt.Fprintf(digest, "%s: %s\n", field.Name, field.Value)
	}
	digest.Write([]byte{'\n'})
	digest.Write(normalized.Body)

	hexed := hex.EncodeToString(digest.Sum(nil))[:fingerprintHexLen]
	// Split into a short prefix and a remainder so disk stores fan out into
	// subdirectories instead of one flat directory of thousands of files.
	return Fingerprint{Parts: []string{hexed[:3], hexed[3:]}}, nil
}

// KeyFromString parses a caller-chosen cache key, e.g. "listings/page-2".
func KeyFromString(key string) Fingerprint {
	return Fingerprint{Parts: strings.Split(strings.Trim(key, "/"), "/")}
}

// PathParts returns the parts escaped for use as filesystem path segments.
// Dots are escaped too, so a ".N" suffix on the last part unambiguously
// marks a sequence number and directory traversal is impossible.
func (f Fingerprint) PathParts() []string {
	parts := make([]string, len(f.Parts))
	for i, part := range f.Parts {
		parts[i] = unsafePathChars.ReplaceAllStringFunc(part, func(m string) string {
			return fmt.Sprintf("%%%02X", m[0])
		})
	}
	if f.Sequence > 0 && len(parts) > 0 {
		parts[len(parts)-1] += fmt.Sprintf(".%d", f.Sequence)
	}
	return parts
}

// String renders the fingerprint as a single slash-separated key, usable as
// a store key for any backend. Slashes never survive escaping, so the
// rendering is unambiguous.
func (f Fingerprint) String() string {
	return strings.Join(f.PathParts(), "/")
}

// NextInSequence returns the fingerprint of the next hop in a redirect
// chain.
func (f Fingerprint) NextInSequence() Fingerprint {
	parts := append([]string(nil), f.Parts...)
	return Fingerprint{Parts: parts, Sequence: f.Sequence + 1}
}

// IsZero reports whether the fingerprint is unset.
func (f Fingerprint) IsZero() bool {
	return len(f.Parts) == 0
}
