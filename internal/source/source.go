// Package source provides the random-access byte source the checker reads
// a hive through. A Source is acquired once at startup and released once on
// exit; every read is positioned, so nothing here is seekable in the
// streaming sense and nothing is ever mutated.
package source

import (
	"errors"
	"fmt"
)

// ErrShortRead is returned when fewer bytes are available than requested.
var ErrShortRead = errors.New("source: short read")

// Source is a read-only, random-access view of a hive file's bytes.
type Source struct {
	data   []byte
	closer func() error
}

// Open maps path into memory for random access. The mapping (or, on
// platforms without mmap support, a full in-memory copy) is released by
// Close.
func Open(path string) (*Source, error) {
	data, closer, err := mapFile(path)
	if err != nil {
		return nil, err
	}
	return &Source{data: data, closer: closer}, nil
}

// FromBytes wraps an already-loaded buffer as a Source, for tests and for
// callers that already hold the file's contents in memory.
func FromBytes(data []byte) *Source {
	return &Source{data: data, closer: func() error { return nil }}
}

// Size returns the total number of bytes available from the source.
func (s *Source) Size() int64 {
	return int64(len(s.data))
}

// ReadAt returns exactly n bytes starting at the given absolute file
// offset. It fails with ErrShortRead when fewer bytes are available,
// matching the byte reader contract in spec §4.1: the source need not be
// seekable in a streaming sense, but every read must be fully satisfied or
// rejected outright, never silently truncated.
func (s *Source) ReadAt(off int64, n int) ([]byte, error) {
	if off < 0 || n < 0 {
		return nil, fmt.Errorf("source: %w (offset %d, length %d)", ErrShortRead, off, n)
	}
	end := off + int64(n)
	if end > int64(len(s.data)) {
		return nil, fmt.Errorf("source: %w (offset %d, length %d, size %d)", ErrShortRead, off, n, len(s.data))
	}
	return s.data[off:end], nil
}

// Close releases the underlying mapping. It is safe to call once; the
// result of a second call is undefined and callers must not do so.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
