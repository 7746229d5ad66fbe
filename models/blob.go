package models

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cache entries are serialized to a blob that loosely mimics the HTTP
// exchange as it travels on the wire: a metadata line, the response status
// line, headers one per line in their original order (duplicates kept as
// separate lines), a blank line, then the raw body bytes. The format
// round-trips status, headers and body losslessly and stays convenient to
// eyeball when debugging a cache directory by hand.

const blobEOL = "\r\n"

// EncodeEntry serializes a cache entry to its storage blob.
func EncodeEntry(entry *Entry) []byte {
	var buf bytes.Buffer
	res := entry.Response

	fmt.Fprintf(&buf, "FETCH %d %d%s", entry.CreatedAt.UnixNano(), int64(res.Elapsed), blobEOL)
	status := res.Status
	if status == "" {
		status = strconv.Itoa(res.StatusCode)
	}
	fmt.Fprintf(&buf, "HTTP %s%s", status, blobEOL)
	for _, field := range res.Headers {
		fmt.Fprintf(&buf, "%s: %s%s", field.Name, field.Value, blobEOL)
	}
	buf.WriteString(blobEOL)
	buf.Write(res.Body)

	return buf.Bytes()
}

// DecodeEntry parses a storage blob back into a cache entry. A blob that
// doesn't parse is reported as an error so stores can treat it as a miss and
// evict it.
func DecodeEntry(blob []byte) (*Entry, error) {
	rest := blob

	line, rest, err := nextLine(rest)
	if err != nil {
		return nil, err
	}
	var createdNano, elapsedNano int64
	if _, err := fmt.Sscanf(line, "FETCH %d %d", &createdNano, &elapsedNano); err != nil {
		return nil, fmt.Errorf("malformed entry metadata line %q: %w", line, err)
	}

	line, rest, err = nextLine(rest)
	if err != nil {
		return nil, err
	}
	statusLine, ok := strings.CutPrefix(line, "HTTP ")
	if !ok {
		return nil, fmt.Errorf("malformed status line %q", line)
	}
	codeStr, _, _ := strings.Cut(statusLine, " ")
	statusCode, err := strconv.Atoi(codeStr)
	if err != nil {
		return nil, fmt.Errorf("malformed status code in %q: %w", line, err)
	}

	var headers Headers
	for {
		line, rest, err = nextLine(rest)
		if err != nil {
			return nil, err
		}
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ": ")
		if !ok {
			return nil, fmt.Errorf("malformed header line %q", line)
		}
		headers.Add(name, value)
	}

	res := &Response{
		StatusCode: statusCode,
		Status:     statusLine,
		Headers:    headers,
		Body:       append([]byte(nil), rest...),
		Elapsed:    time.Duration(elapsedNano),
	}
	return &Entry{Response: res, CreatedAt: time.Unix(0, createdNano)}, nil
}

func nextLine(data []byte) (string, []byte, error) {
	idx := bytes.Index(data, []byte(blobEOL))
	if idx < 0 {
		return "", nil, fmt.Errorf("truncated entry blob")
	}
	return string(data[:idx]), data[idx+len(blobEOL):], nil
}
