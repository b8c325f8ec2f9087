package check

import (
	"errors"

	"github.com/wbaan/regfcheck/internal/format"
	"github.com/wbaan/regfcheck/internal/source"
)

// maxSaneCellSize is the logical-size threshold above which an allocated
// cell is treated as corrupt rather than merely large: reading its payload
// is skipped entirely.
const maxSaneCellSize = 32768

// ScanBins runs spec §4.5 (Pass 2): walks every hbin in data-space order,
// walks its cells, and runs the intrinsic validator for each allocated
// record. It never aborts the run; every finding only sets the sink's
// error flag.
func ScanBins(src *source.Source, hdr HeaderInfo, sink *Sink) {
	sink.Banner("Pass 2")

	for i := uint32(0); uint64(i)*format.HBINAlignment < uint64(hdr.DataSize); {
		binOffset := int64(i) * format.HBINAlignment

		hb, ok := scanBinHeader(src, hdr, binOffset, i, sink)
		if !ok {
			return
		}

		scanBinCells(src, hdr, binOffset, hb, sink)

		pages := hb.Size / format.HBINAlignment
		if pages == 0 {
			pages = 1
		}
		i += pages
	}
}

func scanBinHeader(src *source.Source, hdr HeaderInfo, binOffset int64, index uint32, sink *Sink) (format.HBIN, bool) {
	b, err := src.ReadAt(AbsOffset(binOffset), format.HBINHeaderSize)
	if err != nil {
		sink.Errorf("short read while reading hbin header at 0x%x", AbsOffset(binOffset))
		return format.HBIN{}, false
	}
	hb, err := format.ParseHBIN(b)
	if err != nil {
		sink.Errorf("hbin at 0x%x has invalid signature", AbsOffset(binOffset))
		return format.HBIN{}, false
	}
	if int64(hb.OffsetFromFirst) != binOffset {
		sink.Errorf("hbin offset-from-first 0x%x does not match its own position 0x%x", hb.OffsetFromFirst, AbsOffset(binOffset))
		return format.HBIN{}, false
	}
	if hb.Size == 0 || hb.Size%format.HBINAlignment != 0 {
		sink.Errorf("hbin size 0x%x at 0x%x is not a positive multiple of 0x1000", hb.Size, AbsOffset(binOffset))
		return format.HBIN{}, false
	}
	return hb, true
}

func scanBinCells(src *source.Source, hdr HeaderInfo, binOffset int64, hb format.HBIN, sink *Sink) {
	cellOff := binOffset + format.HBINHeaderSize
	binEnd := binOffset + int64(hb.Size)

	for cellOff < binEnd {
		abs := AbsOffset(cellOff)
		raw, err := src.ReadAt(abs, format.CellHeaderSize)
		if err != nil {
			sink.Errorf("short read while reading cell header at 0x%x", abs)
			return
		}
		cell, err := format.ParseCellHeader(raw)
		if err != nil {
			if errors.Is(err, format.ErrZeroSize) {
				sink.Errorf("cell size is zero at 0x%x", abs)
			} else {
				sink.Errorf("short read while reading cell header at 0x%x", abs)
			}
			return
		}

		if cellOff+int64(cell.Size) > binEnd {
			sink.Errorf("cell at 0x%x extends beyond its hbin boundary", abs)
			return
		}

		if !cell.Allocated {
			cellOff += int64(cell.Size)
			continue
		}

		if cell.Size > maxSaneCellSize {
			sink.Errorf("hbin data record size (0x%x) is suspiciously large at 0x%x", cell.Size, abs)
			return
		}

		payloadAbs := abs + format.CellHeaderSize
		payloadSize := cell.Size - format.CellHeaderSize
		payload, err := src.ReadAt(payloadAbs, payloadSize)
		if err != nil {
			sink.Errorf("short read while reading cell payload at 0x%x", abs)
			return
		}

		validateCell(payload, cellOff, hdr, sink)

		cellOff += int64(cell.Size)
	}
}

// validateCell dispatches on the cell's 2-byte tag and runs the record's
// intrinsic checks (spec §4.5). Unknown tags are silently skipped.
func validateCell(payload []byte, cellOff int64, hdr HeaderInfo, sink *Sink) {
	tag := format.CellTag(payload)
	switch tag {
	case [format.SignatureSize]byte{'n', 'k'}:
		validateNK(payload, cellOff, hdr, sink)
	case [format.SignatureSize]byte{'v', 'k'}:
		validateVK(payload, cellOff, sink)
	case [format.SignatureSize]byte{'s', 'k'}:
		validateSK(payload, cellOff, sink)
	case [format.SignatureSize]byte{'l', 'f'}:
		validateList(payload, cellOff, hdr, "lf", 8, sink)
	case [format.SignatureSize]byte{'l', 'h'}:
		validateList(payload, cellOff, hdr, "lh", 8, sink)
	case [format.SignatureSize]byte{'l', 'i'}:
		validateList(payload, cellOff, hdr, "li", 4, sink)
	case [format.SignatureSize]byte{'r', 'i'}:
		validateList(payload, cellOff, hdr, "ri", 4, sink)
	}
}

func validateNK(payload []byte, cellOff int64, hdr HeaderInfo, sink *Sink) {
	abs := AbsOffset(cellOff)
	nk, err := format.DecodeNK(payload)
	if err != nil {
		sink.Errorf("Too long keyname length value (0x%x)", abs)
		return
	}

	if !nk.IsNormal() && !nk.IsRoot() && !nk.IsSymlink() {
		sink.Warningf("this key is of unknown (0x%x) type (0x%x)", nk.Type, abs)
	}
	if nk.IsRoot() && uint32(cellOff) != hdr.RootOffset {
		sink.Errorf("Encountered unexpected root key (0x%x)", abs)
	}
	if !nk.IsRoot() && nk.ParentOffset == 0 {
		sink.Errorf("this key has no parent and is no root key (0x%x)", abs)
		return
	}
	if nk.SubkeyCount > 0 && nk.SubkeyListOffset == format.InvalidOffset {
		sink.Errorf("this key has subkeys, but no listing (0x%x)", abs)
		return
	}
	if nk.SubkeyListOffset == 0 || nk.ValueListOffset == 0 || nk.ClassNameOffset == 0 {
		sink.Errorf("this key has a 0x00 offset, this is illegal (0x%x)", abs)
		return
	}
	if nk.ClassNameLength > 0 && nk.ClassNameOffset == format.InvalidOffset {
		sink.Errorf("this key has a class name length, but no offset (0x%x)", abs)
		return
	}
	if nk.ValueCount > 0 && nk.ValueListOffset == format.InvalidOffset {
		sink.Errorf("this key has values, but no listing (0x%x)", abs)
		return
	}
	if nk.SKOffset == 0 || nk.SKOffset == format.InvalidOffset {
		sink.Errorf("this key has no sk record (0x%x)", abs)
	}
}

func validateVK(payload []byte, cellOff int64, sink *Sink) {
	abs := AbsOffset(cellOff)
	vk, err := format.DecodeVK(payload)
	if err != nil {
		sink.Errorf("Value name length too high (0x%x)", abs)
		return
	}
	if !vk.DataInline() && (vk.DataOffset == 0 || vk.DataOffset == format.InvalidOffset) {
		sink.Errorf("Invalid data offset at vk record (0x%x)", abs)
	}
	if vk.Type > format.VKMaxKnownType {
		sink.Warningf("You have an unknown value type (0x%x) 0x%x", vk.Type, abs)
	}
}

func validateSK(payload []byte, cellOff int64, sink *Sink) {
	abs := AbsOffset(cellOff)
	sk, err := format.DecodeSK(payload)
	if err != nil {
		sink.Errorf("short read while reading sk record (0x%x)", abs)
		return
	}

	offset := uint32(cellOff)
	selfPrev := sk.PrevOffset == offset
	selfNext := sk.NextOffset == offset
	if (selfPrev || selfNext) && sk.PrevOffset != sk.NextOffset {
		sink.Errorf("One sk offset points to self, the other doesn't (0x%x)", abs)
		return
	}
	if sk.PrevOffset == 0 || sk.PrevOffset == format.InvalidOffset ||
		sk.NextOffset == 0 || sk.NextOffset == format.InvalidOffset {
		sink.Errorf("illegal prev/next sk offset (0x%x)", abs)
		return
	}
	if int(sk.DescriptorLength) > len(payload)-0x10 {
		sink.Errorf("sk size value stretches beyond end of hbin data block (0x%x)", abs)
	}
}

// validateList checks the shared lf/lh/li/ri invariants (spec §4.5): a
// sane key count and entry-table footprint, and every entry offset
// non-zero. lh additionally warns when found in a pre-XP (minor version 3)
// hive.
func validateList(payload []byte, cellOff int64, hdr HeaderInfo, kind string, stride int, sink *Sink) {
	abs := AbsOffset(cellOff)
	lh, err := format.DecodeListHeader(payload)
	if err != nil {
		sink.Errorf("short read while reading %s list header (0x%x)", kind, abs)
		return
	}

	if kind == "lh" && hdr.MinorVersion == 3 {
		sink.Warningf("lh records should not exist in windows NT4/2k registries (0x%x)", abs)
	}

	const listFootprintReserve = 8
	available := len(payload) - listFootprintReserve
	if int(lh.Count) > available/stride {
		sink.Errorf("Size doesn't match key count (0x%x)", abs)
		return
	}
	if lh.Count == 0 || lh.Count == 0xFFFF {
		sink.Errorf("No key count (0x%x)", abs)
		return
	}

	entries := payload[format.ListHeaderSize:]
	var offsets []uint32
	if stride == 8 {
		if kind == "lh" {
			lhEntries, err := format.DecodeLHEntries(entries, lh.Count)
			if err != nil {
				sink.Errorf("short read while reading %s entries (0x%x)", kind, abs)
				return
			}
			for _, e := range lhEntries {
				offsets = append(offsets, e.Offset)
			}
		} else {
			lfEntries, err := format.DecodeLFEntries(entries, lh.Count)
			if err != nil {
				sink.Errorf("short read while reading %s entries (0x%x)", kind, abs)
				return
			}
			for _, e := range lfEntries {
				offsets = append(offsets, e.Offset)
			}
		}
	} else {
		decoded, err := format.DecodeOffsetEntries(entries, uint32(lh.Count))
		if err != nil {
			sink.Errorf("short read while reading %s entries (0x%x)", kind, abs)
			return
		}
		offsets = decoded
	}

	for _, off := range offsets {
		if off == 0 || int32(off) < 0 {
			sink.Errorf("No valid offset (0x%x) in this %s record (0x%x)", off, kind, abs)
			return
		}
	}
}
