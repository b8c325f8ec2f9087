package format

import (
	"bytes"
	"fmt"
)

// HBIN describes a hive bin header (0x20 bytes, little-endian):
//
//	Offset  Size  Field
//	0x00    4     'h' 'b' 'i' 'n'
//	0x04    4     Offset from first bin (must equal this bin's own data-space offset)
//	0x08    4     Size of this bin, a multiple of 0x1000
//	0x0C    8     Two sentinel/reserved dwords
//	0x14    8     NT FILETIME
//	0x1C    4     Size echo
type HBIN struct {
	OffsetFromFirst uint32
	Size            uint32
}

// ParseHBIN decodes the HBIN header at the start of b (which must begin
// exactly at the bin's data-space offset).
func ParseHBIN(b []byte) (HBIN, error) {
	if len(b) < HBINHeaderSize {
		return HBIN{}, fmt.Errorf("hbin: %w (have %d, need %d)", ErrTruncated, len(b), HBINHeaderSize)
	}
	if !bytes.Equal(b[:4], HBINSignature) {
		return HBIN{}, fmt.Errorf("hbin: %w", ErrSignatureMismatch)
	}
	off, _ := CheckedReadU32(b, 0x04)
	size, _ := CheckedReadU32(b, 0x08)
	return HBIN{OffsetFromFirst: off, Size: size}, nil
}
