package models

import (
	"net/textproto"
	"sort"
	"strings"
)

// Header is a single header field. Order and duplicates matter for replay,
// so headers are kept as a slice rather than a map.
type Header struct {
	Name  string
	Value string
}

// Headers holds an ordered list of header fields. Lookups are
// case-insensitive; insertion order and duplicate keys (e.g. repeated
// Set-Cookie) are preserved.
type Headers []Header

// CanonicalName normalizes a header name the way it is compared and cached.
func CanonicalName(name string) string {
	return textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(name))
}

// Get returns the first value for the given name, or "" if absent.
func (h Headers) Get(name string) string {
	canonical := CanonicalName(name)
	for _, field := range h {
		if CanonicalName(field.Name) == canonical {
			return field.Value
		}
	}
	return ""
}

// GetAll returns all values for the given name, in order.
func (h Headers) GetAll(name string) []string {
	canonical := CanonicalName(name)
	var values []string
	for _, field := range h {
		if CanonicalName(field.Name) == canonical {
			values = append(values, field.Value)
		}
	}
	return values
}

// Has reports whether any field with the given name is present.
func (h Headers) Has(name string) bool {
	canonical := CanonicalName(name)
	for _, field := range h {
		if CanonicalName(field.Name) == canonical {
			return true
		}
	}
	return false
}

// Add appends a field, keeping any existing fields with the same name.
func (h *Headers) Add(name, value string) {
	*h = append(*h, Header{Name: name, Value: value})
}

// Set replaces all fields with the given name by a single field. The new
// field takes the position of the first replaced one, or is appended if the
// name was absent.
func (h *Headers) Set(name, value string) {
	canonical := CanonicalName(name)
	out := (*h)[:0]
	inserted := false
	for _, field := range *h {
		if CanonicalName(field.Name) == canonical {
			if !inserted {
				out = append(out, Header{Name: name, Value: value})
				inserted = true
			}
			continue
		}
		out = append(out, field)
	}
	if !inserted {
		out = append(out, Header{Name: name, Value: value})
	}
	*h = out
}

// Del removes all fields with the given name.
func (h *Headers) Del(name string) {
	canonical := CanonicalName(name)
	out := (*h)[:0]
	for _, field := range *h {
		if CanonicalName(field.Name) == canonical {
			continue
		}
		out = append(out, field)
	}
	*h = out
}

// Clone returns a deep copy.
func (h Headers) Clone() Headers {
	if h == nil {
		return nil
	}
	out := make(Headers, len(h))
	copy(out, h)
	return out
}

// Canonical returns a copy with canonical names, sorted by name then value.
// This is the form that feeds fingerprint computation, so that header
// ordering and casing never change a request's identity.
func (h Headers) Canonical() Headers {
	out := make(Headers, 0, len(h))
	for _, field := range h {
		out = append(out, Header{Name: CanonicalName(field.Name), Value: field.Value})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Value < out[j].Value
	})
	return out
}
