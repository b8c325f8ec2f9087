// Package format houses low-level decoders for the Windows Registry hive
// file format. The goal is to keep the parsing focused, allocation-free
// where possible, and independent from the validation layer so it can
// orchestrate the data in whatever order each checking pass requires.
//
// Decoding never fails on content, only on insufficient slice length: a
// decoder that sees a well-formed-but-wrong value returns it for the caller
// to judge, it does not reject it itself. Bounds failures return
// ErrTruncated; signature mismatches return ErrSignatureMismatch.
package format

var (
	// REGFSignature is the four-byte signature at the start of every hive file.
	REGFSignature = []byte{'r', 'e', 'g', 'f'}

	// HBINSignature is the four-byte signature at the beginning of each hive bin.
	HBINSignature = []byte{'h', 'b', 'i', 'n'}

	// NKSignature identifies an NK (Named Key) cell payload.
	NKSignature = []byte{'n', 'k'}

	// VKSignature identifies a VK (Value Key) cell payload.
	VKSignature = []byte{'v', 'k'}

	// LFSignature, LHSignature, and LISignature identify subkey list variants.
	// LF/LH carry a name hint per entry (4-byte prefix, or 32-bit hash); LI is
	// a bare list of offsets.
	LFSignature = []byte{'l', 'f'}
	LHSignature = []byte{'l', 'h'}
	LISignature = []byte{'l', 'i'}

	// RISignature identifies an RI (indirect) subkey list: a list of offsets
	// to further LF/LH/LI lists, used once a key has many subkeys.
	RISignature = []byte{'r', 'i'}

	// SKSignature identifies a security descriptor (SK) cell.
	SKSignature = []byte{'s', 'k'}
)

const (
	// HeaderSize is the size of the REGF header in bytes (one memory page).
	HeaderSize = 4096

	// HBINHeaderSize is the size of the HBIN header in bytes.
	HBINHeaderSize = 0x20

	// CellHeaderSize is the number of bytes used by the cell header
	// preceding every allocation (free or in-use) within an HBIN.
	CellHeaderSize = 4

	// HiveDataBase is the absolute file offset where the data area (and
	// hence data-space offset 0) begins.
	HiveDataBase = 0x1000

	// HBINAlignment is the required alignment of hive bins: 4 KiB.
	HBINAlignment = 0x1000

	// SignatureSize is the size of the 2-byte tag at the start of a cell
	// payload (NK, VK, SK, LF, LH, LI, RI all share this convention).
	SignatureSize = 2

	// ListHeaderSize is the size of a subkey/value list header: a 2-byte
	// signature followed by a 2-byte entry count. Value lists have no such
	// header; they are a bare array of offsets.
	ListHeaderSize = 4

	// OffsetFieldSize is the size of a cell-reference field (uint32).
	OffsetFieldSize = 4

	// LFEntrySize is the size of each LF/LH list entry: a 4-byte offset
	// plus a 4-byte name hint (prefix bytes for LF, hash for LH).
	LFEntrySize = 8

	// InvalidOffset is the 32-bit sentinel (-1) marking an absent offset.
	InvalidOffset = 0xFFFFFFFF
)

// ============================================================================
// NK Record (Named Key) Constants
// ============================================================================
const (
	NKSignatureOffset   = 0x00 // USHORT, "nk"
	NKTypeOffset        = 0x02 // USHORT, type/flags word (0x20/0x2C/0x10 expected)
	NKLastWriteOffset   = 0x04 // LARGE_INTEGER / FILETIME (8 bytes)
	NKAccessBitsOffset  = 0x0C // ULONG, Spare/AccessBits, unused by this checker
	NKParentOffset      = 0x10 // ULONG, offset of parent NK
	NKSubkeyCountOffset = 0x14 // ULONG, stable subkey count
	NKUK2Offset         = 0x18 // ULONG, unused (volatile subkey count)
	NKSubkeyListOffset  = 0x1C // ULONG, offset of subkey list (lf/lh/li/ri)
	NKUK3Offset         = 0x20 // LONG, unused
	NKValueCountOffset  = 0x24 // ULONG, value count
	NKValueListOffset   = 0x28 // LONG, offset of value list
	NKSKOffset          = 0x2C // LONG, offset of sk record
	NKClassNameOffset   = 0x30 // LONG, offset of class name data
	// NKUK4Offset..NKUK4Offset+0x14 (5 ULONGs): unused.
	NKUK4Offset      = 0x34
	NKNameLenOffset  = 0x48 // USHORT, key-name length in bytes
	NKClassLenOffset = 0x4A // USHORT, class-name length in bytes
	NKNameOffset     = 0x4C // start of inline key-name bytes

	// NKFixedHeaderSize is the size of the fixed NK layout before the
	// variable-length name; also the minimum valid NK payload size.
	NKFixedHeaderSize = NKNameOffset
	NKMinSize         = NKFixedHeaderSize

	// NK type-word sentinels. Normal keys carry KEY_COMP_NAME (0x20) when
	// their name is stored as ASCII; the root key additionally carries
	// KEY_HIVE_ENTRY|KEY_NO_DELETE (0x2C); a symlink key is 0x10.
	NKTypeNormal  = 0x20
	NKTypeRoot    = 0x2C
	NKTypeSymlink = 0x10

	// NKFlagCompressedName is the bit within the type word indicating the
	// key name is stored as single-byte (ASCII/ANSI) rather than UTF-16LE.
	NKFlagCompressedName = 0x20
)

// ============================================================================
// VK Record (Value Key) Constants
// ============================================================================
const (
	VKSignatureOffset = 0x00 // USHORT, "vk"
	VKNameLenOffset   = 0x02 // USHORT, value-name length in bytes
	VKDataLenOffset   = 0x04 // ULONG, data length; high bit = inline marker
	VKDataOffOffset   = 0x08 // LONG, data offset, or inline data if high bit set
	VKTypeOffset      = 0x0C // ULONG, REG_* type code
	VKFlagsOffset     = 0x10 // USHORT, flags
	VKSpareOffset     = 0x12 // USHORT, unused
	VKNameOffset      = 0x14 // start of inline value-name bytes

	VKMinSize = VKNameOffset

	// VKFlagASCIIName marks the name as stored in ASCII rather than UTF-16LE.
	VKFlagASCIIName = 0x0001

	// VKDataInlineBit, set in DataLength, means the data (up to 4 bytes)
	// is stored directly in the DataOffset field rather than referencing
	// another cell.
	VKDataInlineBit  = 0x80000000
	VKDataLengthMask = 0x7FFFFFFF

	// VKMaxKnownType is the highest value type this checker recognizes
	// without warning (REG_NONE..REG_QWORD, 0x0 through 0xB).
	VKMaxKnownType = 0x0B
)

// ============================================================================
// SK Record (Security Descriptor) Constants
// ============================================================================
const (
	SKSignatureOffset        = 0x00 // USHORT, "sk"
	SKReservedOffset         = 0x02 // USHORT, unused
	SKPrevOffset             = 0x04 // LONG, previous sk in the ring
	SKNextOffset             = 0x08 // LONG, next sk in the ring
	SKUsageCountOffset       = 0x0C // ULONG, reference count
	SKDescriptorLengthOffset = 0x10 // ULONG, size of descriptor bytes that follow
	SKDescriptorOffset       = 0x14 // start of inline descriptor bytes

	SKHeaderSize = SKDescriptorOffset
	SKMinSize    = SKHeaderSize
)

// ============================================================================
// REGF Header Constants
// ============================================================================
const (
	REGFSignatureOffset    = 0x000 // 4 bytes, "regf"
	REGFSentinel1Offset    = 0x004 // ULONG, sentinel A
	REGFSentinel2Offset    = 0x008 // ULONG, sentinel B (must equal sentinel A)
	REGFTimestampOffset    = 0x00C // 8 bytes, NT FILETIME
	REGFVersion0Offset     = 0x014 // ULONG, expected 1
	REGFVersion1Offset     = 0x018 // ULONG, expected 3 or 5 (minor version)
	REGFVersion2Offset     = 0x01C // ULONG, expected 0
	REGFVersion3Offset     = 0x020 // ULONG, expected 1
	REGFRootCellOffset     = 0x024 // ULONG, data-space offset of the root NK
	REGFDataSizeOffset     = 0x028 // ULONG, total size of the data region
	REGFClusterOffset      = 0x02C // ULONG, clustering factor, unused
	REGFDescriptionOffset  = 0x030 // 0x40 bytes, UTF-16LE description
	REGFDescriptionSize    = 0x40
	REGFChecksumOffset     = 0x1FC // ULONG, XOR checksum of the first 0x1FC bytes
	REGFChecksumRegionLen  = 0x1FC
	REGFChecksumDwordCount = REGFChecksumRegionLen / 4 // 127

	// REGFRootOffsetWarnThreshold: root offsets beyond this are unusual but
	// tolerated (warning only).
	REGFRootOffsetWarnThreshold = 0x100
	// REGFRootOffsetMin is the smallest tolerated root offset (below the
	// first bin's header would already be corrupt).
	REGFRootOffsetMin = 0x20
)

// ============================================================================
// Registry Value Data Type Codes (subset this checker recognizes by name)
// ============================================================================
const (
	REGNone     uint32 = 0x0
	REGSZ       uint32 = 0x1
	REGExpandSZ uint32 = 0x2
	REGBinary   uint32 = 0x3
	REGDWORD    uint32 = 0x4
	REGDWORDBE  uint32 = 0x5
	REGLink     uint32 = 0x6
	REGMultiSZ  uint32 = 0x7
	REGQWORD    uint32 = 0xB
)
