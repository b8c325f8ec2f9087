package format

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Header captures the fields of the REGF header this checker validates.
//
//	Offset  Size  Field
//	0x000   4     'r' 'e' 'g' 'f'
//	0x004   4     Sentinel A
//	0x008   4     Sentinel B (must equal sentinel A)
//	0x00C   8     Last-write FILETIME
//	0x014   4     Version word 0 (expect 1)
//	0x018   4     Version word 1 (expect 3 or 5; the hive's minor version)
//	0x01C   4     Version word 2 (expect 0)
//	0x020   4     Version word 3 (expect 1)
//	0x024   4     Root key data-space offset
//	0x028   4     Data-region size, a multiple of 0x1000
//	0x02C   4     Clustering factor
//	0x030   0x40  UTF-16LE description
//	0x1FC   4     XOR checksum of the first 0x1FC bytes as 127 LE dwords
type Header struct {
	Sentinel1      uint32
	Sentinel2      uint32
	Version0       uint32
	Version1       uint32 // minor version: 3 or 5
	Version2       uint32
	Version3       uint32
	RootCellOffset uint32
	DataSize       uint32
	Description    []byte // raw 0x40-byte UTF-16LE field
	Checksum       uint32
}

// ParseHeader decodes the fixed-layout fields of a REGF header. It does not
// validate their values; see the header validator in internal/check for
// that. It fails only when b is shorter than a full header
// (ErrTruncated) or does not start with the "regf" magic
// (ErrSignatureMismatch).
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("regf header: %w (have %d, need %d)", ErrTruncated, len(b), HeaderSize)
	}
	if !bytes.Equal(b[REGFSignatureOffset:REGFSignatureOffset+4], REGFSignature) {
		return Header{}, fmt.Errorf("regf header: %w", ErrSignatureMismatch)
	}
	s1, _ := CheckedReadU32(b, REGFSentinel1Offset)
	s2, _ := CheckedReadU32(b, REGFSentinel2Offset)
	v0, _ := CheckedReadU32(b, REGFVersion0Offset)
	v1, _ := CheckedReadU32(b, REGFVersion1Offset)
	v2, _ := CheckedReadU32(b, REGFVersion2Offset)
	v3, _ := CheckedReadU32(b, REGFVersion3Offset)
	root, _ := CheckedReadU32(b, REGFRootCellOffset)
	dataSize, _ := CheckedReadU32(b, REGFDataSizeOffset)
	checksum, _ := CheckedReadU32(b, REGFChecksumOffset)

	return Header{
		Sentinel1:      s1,
		Sentinel2:      s2,
		Version0:       v0,
		Version1:       v1,
		Version2:       v2,
		Version3:       v3,
		RootCellOffset: root,
		DataSize:       dataSize,
		Description:    append([]byte(nil), b[REGFDescriptionOffset:REGFDescriptionOffset+REGFDescriptionSize]...),
		Checksum:       checksum,
	}, nil
}

// Checksum computes the XOR of the first REGFChecksumRegionLen bytes of b,
// viewed as REGFChecksumDwordCount little-endian 32-bit words. The caller
// must ensure len(b) >= REGFChecksumRegionLen.
func Checksum(b []byte) uint32 {
	var hash uint32
	for i := 0; i < REGFChecksumDwordCount; i++ {
		hash ^= binary.LittleEndian.Uint32(b[i*4 : i*4+4])
	}
	return hash
}
