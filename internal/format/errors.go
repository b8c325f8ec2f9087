package format

import "errors"

var (
	// ErrSignatureMismatch indicates a structure had an unexpected magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrZeroSize indicates a cell header declared a size of zero, which is
	// illegal regardless of the allocated/free sign bit.
	ErrZeroSize = errors.New("format: zero cell size")
)
