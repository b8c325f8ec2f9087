package check

import (
	"encoding/binary"

	"github.com/wbaan/regfcheck/internal/format"
)

// subkeySpec describes one subkey to embed in a synthetic hive, keyed by its
// ASCII name. Names are kept ASCII so the "compressed name" / lf-prefix /
// lh-hash checks all have a well-defined raw-byte input.
type subkeySpec struct {
	name string
}

// hiveOpts controls the handful of header/record fields the tests flip one
// at a time.
type hiveOpts struct {
	version1          uint32 // minor version; defaults to 5
	listKind          string // "lh" (default) or "lf"
	subkeys           []subkeySpec
	rootSubkeyCount   int32 // 0 (the default) means "use len(subkeys)"
	corruptChecksum   bool
	binOffsetMismatch bool
}

// buildHive assembles a single-bin, single-root hive as a byte slice ready
// to feed to source.FromBytes. It is deliberately minimal: one root nk, one
// self-ringed sk per key, an optional subkey list, and a trailing free cell
// padding the bin out to 0x1000.
func buildHive(opts hiveOpts) []byte {
	if opts.version1 == 0 {
		opts.version1 = 5
	}
	if opts.rootSubkeyCount == 0 {
		opts.rootSubkeyCount = int32(len(opts.subkeys))
	}

	const binSize = 0x1000
	bin := make([]byte, binSize)
	copy(bin[0:4], format.HBINSignature)
	// OffsetFromFirst @ 0x04, Size @ 0x08 in the hbin header.
	offsetFromFirst := uint32(0)
	if opts.binOffsetMismatch {
		offsetFromFirst = 0x1000
	}
	binary.LittleEndian.PutUint32(bin[0x04:], offsetFromFirst)
	binary.LittleEndian.PutUint32(bin[0x08:], binSize)

	cursor := uint32(format.HBINHeaderSize)

	putCell := func(payload []byte) uint32 {
		off := cursor
		total := format.CellHeaderSize + len(payload)
		binary.LittleEndian.PutUint32(bin[off:], uint32(int32(-total)))
		copy(bin[off+uint32(format.CellHeaderSize):], payload)
		cursor += uint32(total)
		return off
	}

	rootOff := cursor
	rootSKOff := rootOff + uint32(format.CellHeaderSize+format.NKFixedHeaderSize+len("root"))

	// sk records form a ring; a lone sk in a synthetic hive points to itself
	// both ways.
	skPayload := make([]byte, format.SKHeaderSize)
	copy(skPayload[:format.SignatureSize], format.SKSignature)
	binary.LittleEndian.PutUint32(skPayload[format.SKPrevOffset:], rootSKOff)
	binary.LittleEndian.PutUint32(skPayload[format.SKNextOffset:], rootSKOff)

	var listOff uint32
	var subkeyOffsets []uint32

	if len(opts.subkeys) > 0 {
		// Subkeys are written first so the list can reference their real
		// offsets; the list itself follows last.
		rootPayloadPlaceholder := make([]byte, format.NKFixedHeaderSize+len("root"))
		_ = putCell(rootPayloadPlaceholder) // reserve root nk's slot
		_ = putCell(skPayload)              // reserve root sk's slot

		for _, sk := range opts.subkeys {
			subOff := cursor
			subNK := make([]byte, format.NKFixedHeaderSize+len(sk.name))
			copy(subNK[:format.SignatureSize], format.NKSignature)
			binary.LittleEndian.PutUint16(subNK[format.NKTypeOffset:], format.NKTypeNormal)
			binary.LittleEndian.PutUint32(subNK[format.NKParentOffset:], rootOff)
			binary.LittleEndian.PutUint32(subNK[format.NKSubkeyListOffset:], format.InvalidOffset)
			binary.LittleEndian.PutUint32(subNK[format.NKValueListOffset:], format.InvalidOffset)
			binary.LittleEndian.PutUint32(subNK[format.NKClassNameOffset:], format.InvalidOffset)
			binary.LittleEndian.PutUint16(subNK[format.NKNameLenOffset:], uint16(len(sk.name)))
			copy(subNK[format.NKNameOffset:], sk.name)
			subNKOff := putCell(subNK)
			subkeyOffsets = append(subkeyOffsets, subNKOff)

			subSK := make([]byte, format.SKHeaderSize)
			copy(subSK[:format.SignatureSize], format.SKSignature)
			subSKOff := subOff + uint32(format.CellHeaderSize+len(subNK))
			binary.LittleEndian.PutUint32(subSK[format.SKPrevOffset:], subSKOff)
			binary.LittleEndian.PutUint32(subSK[format.SKNextOffset:], subSKOff)
			putCell(subSK)
			binary.LittleEndian.PutUint32(subNK[format.NKSKOffset:], subSKOff)
			// subNK was already copied into bin by putCell; patch the sk
			// offset field in place since it depends on subSKOff.
			skFieldOff := subNKOff + uint32(format.CellHeaderSize+format.NKSKOffset)
			binary.LittleEndian.PutUint32(bin[skFieldOff:], subSKOff)
		}

		kind := opts.listKind
		if kind == "" {
			kind = "lh"
		}
		stride := 8
		// Pass 2 requires the entry table to fit within the payload minus 8
		// bytes, so the list carries 4 bytes of slack past its entries.
		const listSlack = 4
		listPayload := make([]byte, format.ListHeaderSize+len(subkeyOffsets)*stride+listSlack)
		copy(listPayload[:format.SignatureSize], kind)
		binary.LittleEndian.PutUint16(listPayload[format.SignatureSize:], uint16(len(subkeyOffsets)))
		for i, sub := range opts.subkeys {
			base := format.ListHeaderSize + i*stride
			binary.LittleEndian.PutUint32(listPayload[base:], subkeyOffsets[i])
			switch kind {
			case "lf":
				copy(listPayload[base+4:base+8], []byte(sub.name))
			case "lh":
				binary.LittleEndian.PutUint32(listPayload[base+4:], Hash37ForTest(sub.name))
			}
		}
		listOff = putCell(listPayload)

		// Backfill the root nk and sk cells now that listOff is known.
		rootNK := make([]byte, format.NKFixedHeaderSize+len("root"))
		copy(rootNK[:format.SignatureSize], format.NKSignature)
		binary.LittleEndian.PutUint16(rootNK[format.NKTypeOffset:], format.NKTypeRoot)
		binary.LittleEndian.PutUint32(rootNK[format.NKParentOffset:], 0)
		binary.LittleEndian.PutUint32(rootNK[format.NKSubkeyCountOffset:], uint32(int32(opts.rootSubkeyCount)))
		binary.LittleEndian.PutUint32(rootNK[format.NKSubkeyListOffset:], listOff)
		binary.LittleEndian.PutUint32(rootNK[format.NKValueListOffset:], format.InvalidOffset)
		binary.LittleEndian.PutUint32(rootNK[format.NKSKOffset:], rootSKOff)
		binary.LittleEndian.PutUint32(rootNK[format.NKClassNameOffset:], format.InvalidOffset)
		binary.LittleEndian.PutUint16(rootNK[format.NKNameLenOffset:], uint16(len("root")))
		copy(rootNK[format.NKNameOffset:], "root")
		copy(bin[rootOff+uint32(format.CellHeaderSize):], rootNK)
		copy(bin[rootSKOff+uint32(format.CellHeaderSize):], skPayload)
	} else {
		rootNK := make([]byte, format.NKFixedHeaderSize+len("root"))
		copy(rootNK[:format.SignatureSize], format.NKSignature)
		binary.LittleEndian.PutUint16(rootNK[format.NKTypeOffset:], format.NKTypeRoot)
		binary.LittleEndian.PutUint32(rootNK[format.NKParentOffset:], 0)
		binary.LittleEndian.PutUint32(rootNK[format.NKSubkeyCountOffset:], uint32(opts.rootSubkeyCount))
		binary.LittleEndian.PutUint32(rootNK[format.NKSubkeyListOffset:], format.InvalidOffset)
		binary.LittleEndian.PutUint32(rootNK[format.NKValueListOffset:], format.InvalidOffset)
		binary.LittleEndian.PutUint32(rootNK[format.NKSKOffset:], rootSKOff)
		binary.LittleEndian.PutUint32(rootNK[format.NKClassNameOffset:], format.InvalidOffset)
		binary.LittleEndian.PutUint16(rootNK[format.NKNameLenOffset:], uint16(len("root")))
		copy(rootNK[format.NKNameOffset:], "root")
		_ = putCell(rootNK)
		_ = putCell(skPayload)
	}

	// Pad the remainder of the bin with one free (positive-size) cell.
	remaining := binSize - int(cursor)
	binary.LittleEndian.PutUint32(bin[cursor:], uint32(int32(remaining)))

	header := make([]byte, format.HeaderSize)
	copy(header[format.REGFSignatureOffset:], format.REGFSignature)
	binary.LittleEndian.PutUint32(header[format.REGFSentinel1Offset:], 1)
	binary.LittleEndian.PutUint32(header[format.REGFSentinel2Offset:], 1)
	binary.LittleEndian.PutUint32(header[format.REGFVersion0Offset:], 1)
	binary.LittleEndian.PutUint32(header[format.REGFVersion1Offset:], opts.version1)
	binary.LittleEndian.PutUint32(header[format.REGFVersion2Offset:], 0)
	binary.LittleEndian.PutUint32(header[format.REGFVersion3Offset:], 1)
	binary.LittleEndian.PutUint32(header[format.REGFRootCellOffset:], rootOff)
	binary.LittleEndian.PutUint32(header[format.REGFDataSizeOffset:], binSize)
	checksum := format.Checksum(header)
	if opts.corruptChecksum {
		checksum ^= 0xFFFFFFFF
	}
	binary.LittleEndian.PutUint32(header[format.REGFChecksumOffset:], checksum)

	full := make([]byte, 0, len(header)+len(bin))
	full = append(full, header...)
	full = append(full, bin...)
	return full
}

// Hash37ForTest computes the same base-37 hash as names.Hash37, written out
// separately here for test fixture construction rather than calling into
// the names package.
func Hash37ForTest(name string) uint32 {
	var hash uint32
	for _, c := range []byte(name) {
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		hash = hash*37 + uint32(c)
	}
	return hash
}
