package format

import "fmt"

// ListHeader is the common 4-byte header shared by lf/lh/li/ri records: a
// 2-byte tag followed by a 2-byte entry count.
type ListHeader struct {
	Tag   [SignatureSize]byte
	Count uint16
}

// DecodeListHeader decodes the header shared by subkey-list and indirect
// records. b must be the cell payload (starting at the tag).
func DecodeListHeader(b []byte) (ListHeader, error) {
	if len(b) < ListHeaderSize {
		return ListHeader{}, fmt.Errorf("list header: %w", ErrTruncated)
	}
	count, _ := CheckedReadU16(b, SignatureSize)
	var tag [SignatureSize]byte
	copy(tag[:], b[:SignatureSize])
	return ListHeader{Tag: tag, Count: count}, nil
}

// LFEntry is one lf-list entry: an NK offset plus the first 4 bytes of its
// name, stored for a cheap integrity cross-check against the real name.
type LFEntry struct {
	Offset uint32
	Prefix [4]byte
}

// DecodeLFEntries decodes count entries from the lf payload that follows
// the list header (stride LFEntrySize).
func DecodeLFEntries(b []byte, count uint16) ([]LFEntry, error) {
	need := int(count) * LFEntrySize
	if len(b) < need {
		return nil, fmt.Errorf("lf entries: %w (need %d, have %d)", ErrTruncated, need, len(b))
	}
	out := make([]LFEntry, count)
	for i := range out {
		base := i * LFEntrySize
		off, _ := CheckedReadU32(b, base)
		out[i].Offset = off
		copy(out[i].Prefix[:], b[base+4:base+8])
	}
	return out, nil
}

// LHEntry is one lh-list entry: an NK offset plus the stored base-37 name
// hash (see internal/names.Hash37 for the expected computation).
type LHEntry struct {
	Offset uint32
	Hash   uint32
}

// DecodeLHEntries decodes count entries from the lh payload that follows
// the list header (stride LFEntrySize; lh shares lf's 8-byte stride).
func DecodeLHEntries(b []byte, count uint16) ([]LHEntry, error) {
	need := int(count) * LFEntrySize
	if len(b) < need {
		return nil, fmt.Errorf("lh entries: %w (need %d, have %d)", ErrTruncated, need, len(b))
	}
	out := make([]LHEntry, count)
	for i := range out {
		base := i * LFEntrySize
		off, _ := CheckedReadU32(b, base)
		hash, _ := CheckedReadU32(b, base+4)
		out[i].Offset = off
		out[i].Hash = hash
	}
	return out, nil
}

// DecodeOffsetEntries decodes count bare 32-bit offsets (stride
// OffsetFieldSize), used for li subkey lists, ri indirect lists, and value
// lists alike.
func DecodeOffsetEntries(b []byte, count uint32) ([]uint32, error) {
	need := int(count) * OffsetFieldSize
	if len(b) < need {
		return nil, fmt.Errorf("offset entries: %w (need %d, have %d)", ErrTruncated, need, len(b))
	}
	out := make([]uint32, count)
	for i := range out {
		v, _ := CheckedReadU32(b, i*OffsetFieldSize)
		out[i] = v
	}
	return out, nil
}
