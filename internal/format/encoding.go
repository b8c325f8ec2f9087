package format

import (
	"encoding/binary"
	"fmt"
)

// CheckedReadU16 reads a little-endian uint16 at off, failing with
// ErrTruncated instead of panicking when the buffer is too short.
func CheckedReadU16(b []byte, off int) (uint16, error) {
	if off < 0 || off+2 > len(b) {
		return 0, fmt.Errorf("%w (offset %d, have %d)", ErrTruncated, off, len(b))
	}
	return binary.LittleEndian.Uint16(b[off : off+2]), nil
}

// CheckedReadU32 reads a little-endian uint32 at off.
func CheckedReadU32(b []byte, off int) (uint32, error) {
	if off < 0 || off+4 > len(b) {
		return 0, fmt.Errorf("%w (offset %d, have %d)", ErrTruncated, off, len(b))
	}
	return binary.LittleEndian.Uint32(b[off : off+4]), nil
}

// CheckedReadI32 reads a little-endian signed int32 at off.
func CheckedReadI32(b []byte, off int) (int32, error) {
	v, err := CheckedReadU32(b, off)
	return int32(v), err
}

// CheckedReadU64 reads a little-endian uint64 at off.
func CheckedReadU64(b []byte, off int) (uint64, error) {
	if off < 0 || off+8 > len(b) {
		return 0, fmt.Errorf("%w (offset %d, have %d)", ErrTruncated, off, len(b))
	}
	return binary.LittleEndian.Uint64(b[off : off+8]), nil
}
