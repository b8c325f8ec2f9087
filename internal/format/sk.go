package format

import (
	"bytes"
	"fmt"
)

// SKRecord models a security-descriptor record's fixed fields. The
// descriptor bytes themselves are opaque to this checker (see spec
// Non-goals): only the doubly-linked prev/next ring and the declared size
// are validated.
type SKRecord struct {
	PrevOffset       uint32
	NextOffset       uint32
	UsageCount       uint32
	DescriptorLength uint32
}

// DecodeSK decodes an SK record payload.
func DecodeSK(b []byte) (SKRecord, error) {
	if len(b) < SKMinSize {
		return SKRecord{}, fmt.Errorf("sk: %w (have %d, need %d)", ErrTruncated, len(b), SKMinSize)
	}
	if !bytes.Equal(b[:SignatureSize], SKSignature) {
		return SKRecord{}, fmt.Errorf("sk: %w", ErrSignatureMismatch)
	}

	prev, err := CheckedReadU32(b, SKPrevOffset)
	if err != nil {
		return SKRecord{}, fmt.Errorf("sk prev: %w", err)
	}
	next, err := CheckedReadU32(b, SKNextOffset)
	if err != nil {
		return SKRecord{}, fmt.Errorf("sk next: %w", err)
	}
	usage, err := CheckedReadU32(b, SKUsageCountOffset)
	if err != nil {
		return SKRecord{}, fmt.Errorf("sk usage count: %w", err)
	}
	length, err := CheckedReadU32(b, SKDescriptorLengthOffset)
	if err != nil {
		return SKRecord{}, fmt.Errorf("sk descriptor length: %w", err)
	}

	return SKRecord{
		PrevOffset:       prev,
		NextOffset:       next,
		UsageCount:       usage,
		DescriptorLength: length,
	}, nil
}
