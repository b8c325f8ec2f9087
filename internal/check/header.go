package check

import (
	"errors"

	"github.com/wbaan/regfcheck/internal/format"
	"github.com/wbaan/regfcheck/internal/source"
)

const hiveDataBase = format.HiveDataBase

// HeaderInfo carries the header fields later passes need: the minor
// version (to judge whether lh records are in-era) and the root offset (to
// confirm root-key uniqueness).
type HeaderInfo struct {
	MinorVersion uint32
	RootOffset   uint32
	DataSize     uint32
}

// ValidateHeader runs spec §4.4 (Pass 1) against the hive's first 4096
// bytes. It returns ok=false when any step 1-5/7 failure occurred; the
// caller must abort the run without running Pass 2/3 in that case.
func ValidateHeader(src *source.Source, sink *Sink) (HeaderInfo, bool) {
	sink.Banner("Pass 1")

	b, err := src.ReadAt(0, format.HeaderSize)
	if err != nil {
		sink.Errorf("short read while reading regf block")
		return HeaderInfo{}, false
	}

	hdr, err := format.ParseHeader(b)
	if err != nil {
		if errors.Is(err, format.ErrSignatureMismatch) {
			sink.Errorf("No 'regf' found at 0x0 (is this an NT registry file?)")
		} else {
			sink.Errorf("short read while reading regf block")
		}
		return HeaderInfo{}, false
	}

	// Steps run in spec order and stop at the first hard failure: a
	// corrupted header commonly fails several checks at once (a bit flip
	// inside the checksum region, for instance, usually also breaks the
	// checksum), and only the first diagnosed cause is reported.
	if hdr.Sentinel1 != hdr.Sentinel2 {
		sink.Errorf("regf sentinel mismatch (0x%x != 0x%x) at 0x4", hdr.Sentinel1, hdr.Sentinel2)
		return HeaderInfo{}, false
	}

	if hdr.Version0 != 1 || (hdr.Version1 != 3 && hdr.Version1 != 5) || hdr.Version2 != 0 || hdr.Version3 != 1 {
		sink.Errorf("D-words from 0x0014 to 0x0020 should be 0x1, 0x3 or 0x5, 0x0, 0x1")
		return HeaderInfo{}, false
	}

	if hdr.RootCellOffset < format.REGFRootOffsetMin {
		sink.Errorf("root key offset 0x%x is below the minimum valid offset 0x%x", hdr.RootCellOffset, format.REGFRootOffsetMin)
		return HeaderInfo{}, false
	}
	if hdr.RootCellOffset > format.REGFRootOffsetWarnThreshold {
		sink.Warningf("root key offset 0x%x is unusually large", hdr.RootCellOffset)
	}

	if hdr.DataSize == 0 || hdr.DataSize%format.HBINAlignment != 0 {
		sink.Errorf("data size 0x%x is not a positive multiple of 0x1000", hdr.DataSize)
		return HeaderInfo{}, false
	}

	if !descriptionLooksUnicode(hdr.Description) {
		sink.Warningf("regf description does not look like UTF-16LE text")
	}

	if len(b) >= format.REGFChecksumRegionLen+4 {
		want := format.Checksum(b)
		if want != hdr.Checksum {
			sink.Errorf("checksum mismatch: computed 0x%x, stored 0x%x", want, hdr.Checksum)
			return HeaderInfo{}, false
		}
	}

	return HeaderInfo{
		MinorVersion: hdr.Version1,
		RootOffset:   hdr.RootCellOffset,
		DataSize:     hdr.DataSize,
	}, true
}

// descriptionLooksUnicode applies the heuristic from spec §4.4 step 6: in a
// genuine UTF-16LE string every odd-indexed byte (the high byte of each
// code unit) is either near-zero or 0xFF (padding), never an arbitrary
// value.
func descriptionLooksUnicode(desc []byte) bool {
	for i := 1; i < len(desc); i += 2 {
		b := desc[i]
		if b > 0x02 && b != 0xFF {
			return false
		}
	}
	return true
}
