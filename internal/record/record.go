// Package record provides the ambient record source and entry sink
// collaborators the core rewriting engine is built against.
package record

import (
	"context"
	"errors"
	"io"
)

// Record is one entry read from a WARC file: enough metadata to drive
// media-class inference and status-code policy.
type Record struct {
	// TargetURI is the record's WARC-Target-URI.
	TargetURI string
	// ResourceType is the record's WARC-Resource-Type, when present.
	ResourceType string
	// StatusCode is the HTTP status line's code, for records of type
	// "response"; zero when not applicable.
	StatusCode int
	// ContentType is the declared HTTP Content-Type header, used as a
	// fallback signal for media-class inference.
	ContentType string
	// ContentEncoding is the declared HTTP Content-Encoding header
	// ("gzip", "br", or empty).
	ContentEncoding string
	// Location is the declared HTTP Location header, present on redirect
	// responses (status in {301, 302, 306, 307}).
	Location string
	// Payload lazily yields the record's HTTP payload bytes, still
	// encoded per ContentEncoding.
	Payload func() ([]byte, error)
}

// AliasTarget returns the record's redirect target, when it has one.
func (r Record) AliasTarget() (string, bool) {
	if r.Location == "" {
		return "", false
	}
	return r.Location, true
}

// ErrEndOfStream is returned by Stream.Next when no more records remain.
var ErrEndOfStream = errors.New("record: end of stream")

// Stream iterates WARC records. Implementations may be re-read from the
// start for pass 1 and pass 2.
type Stream interface {
	// Next returns the next record, or ErrEndOfStream.
	Next(ctx context.Context) (Record, error)
	// Reset rewinds the stream for a second pass.
	Reset() error
	// Close releases any underlying resources.
	Close() error
}

// EntrySink accepts the rewritten output of pass 2.
type EntrySink interface {
	// Write stores content at canonicalPath, honoring first-writer-wins.
	// Returns (wrote=false) without error when the path was already
	// written by an earlier record.
	Write(canonicalPath string, content []byte, mediaTypeHint string) (wrote bool, err error)
	// Alias records canonicalPath as a redirect to target. Returns
	// (wrote=false) when canonicalPath was already written or aliased.
	Alias(canonicalPath string, target string) (wrote bool, err error)
}

// SliceStream is an in-memory Stream backed by a fixed slice, used by
// tests and by any caller that has already materialized its records.
type SliceStream struct {
	records []Record
	pos     int
}

// NewSliceStream builds a SliceStream over records.
func NewSliceStream(records []Record) *SliceStream {
	return &SliceStream{records: records}
}

// Next implements Stream.
func (s *SliceStream) Next(ctx context.Context) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if s.pos >= len(s.records) {
		return Record{}, ErrEndOfStream
	}
	r := s.records[s.pos]
	s.pos++
	return r, nil
}

// Reset implements Stream.
func (s *SliceStream) Reset() error {
	s.pos = 0
	return nil
}

// Close implements Stream.
func (s *SliceStream) Close() error { return nil }

// MemorySink is an in-memory EntrySink, used by tests.
type MemorySink struct {
	Entries map[string][]byte
	Aliases map[string]string
}

// NewMemorySink builds an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		Entries: make(map[string][]byte),
		Aliases: make(map[string]string),
	}
}

// Write implements EntrySink.
func (s *MemorySink) Write(canonicalPath string, content []byte, _ string) (bool, error) {
	if _, exists := s.Entries[canonicalPath]; exists {
		return false, nil
	}
	if _, exists := s.Aliases[canonicalPath]; exists {
		return false, nil
	}
	s.Entries[canonicalPath] = content
	return true, nil
}

// Alias implements EntrySink.
func (s *MemorySink) Alias(canonicalPath, target string) (bool, error) {
	if _, exists := s.Entries[canonicalPath]; exists {
		return false, nil
	}
	if _, exists := s.Aliases[canonicalPath]; exists {
		return false, nil
	}
	s.Aliases[canonicalPath] = target
	return true, nil
}

var _ io.Closer = (*SliceStream)(nil)
