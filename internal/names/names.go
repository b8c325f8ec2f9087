// Package names decodes the two name encodings a hive uses for key and
// value names: ASCII/Windows-1252 for "compressed" names and UTF-16LE for
// the uncompressed form. The checker only ever needs names for diagnostic
// text and for lexical comparisons (subkey list ordering, lf prefix
// checks), so nothing here attempts to round-trip back to bytes.
package names

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Decode converts a raw name buffer to UTF-8. compressed selects
// Windows-1252 decoding (the ASCII fast path handles the common case
// without a decoder round trip); otherwise the buffer is treated as
// UTF-16LE.
func Decode(raw []byte, compressed bool) string {
	if len(raw) == 0 {
		return ""
	}
	if compressed {
		if isASCII(raw) {
			return string(raw)
		}
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return string(raw)
		}
		return string(decoded)
	}
	return decodeUTF16LE(raw)
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// decodeUTF16LE decodes a UTF-16LE buffer to UTF-8, handling surrogate
// pairs. An odd-length buffer is decoded up to the last complete code
// unit; the caller is responsible for flagging the truncation itself.
func decodeUTF16LE(data []byte) string {
	allASCII := len(data)%2 == 0
	if allASCII {
		for i := 0; i < len(data); i += 2 {
			if data[i+1] != 0 || data[i] >= 0x80 {
				allASCII = false
				break
			}
		}
	}
	if allASCII {
		var b strings.Builder
		b.Grow(len(data) / 2)
		for i := 0; i < len(data); i += 2 {
			b.WriteByte(data[i])
		}
		return b.String()
	}

	var b strings.Builder
	b.Grow(len(data))
	for i := 0; i+1 < len(data); i += 2 {
		r := rune(data[i]) | rune(data[i+1])<<8
		if r >= 0xD800 && r <= 0xDBFF && i+3 < len(data) {
			r2 := rune(data[i+2]) | rune(data[i+3])<<8
			if r2 >= 0xDC00 && r2 <= 0xDFFF {
				r = 0x10000 + ((r-0xD800)<<10 | (r2 - 0xDC00))
				i += 2
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// LessFold reports whether a should sort before b under the
// case-insensitive ordering subkey lists are required to follow.
func LessFold(a, b string) bool {
	return strings.ToLower(a) < strings.ToLower(b)
}

// HashPrefix returns the first min(4, len(raw)) raw name bytes an lf
// record's quick-compare prefix is checked against. Names shorter than four
// bytes are not padded: the format does not guarantee the unused tail of
// the stored prefix field is zeroed, so only the bytes the name actually
// has may be compared.
func HashPrefix(raw []byte) []byte {
	n := len(raw)
	if n > 4 {
		n = 4
	}
	return raw[:n]
}

// Hash37 computes the base-37 name hash an lh record stores alongside each
// subkey offset: each byte of the raw key name is folded in as
// hash = hash*37 + upper(c), operating on the same narrow bytes the
// reference checker hashes rather than a fully Unicode-decoded name — the
// format's own hash field is only ever populated from the narrow/ASCII
// form of a name. Uppercasing is the ASCII rule (bytes outside 'a'-'z' pass
// through unchanged); a hive with non-ASCII names may legitimately disagree
// with this, which is not treated as a checker defect. The reference
// implementation this is checked against has an off-by-one bug that folds
// in the wrong byte on every iteration past the first; that bug is not
// reproduced here.
func Hash37(raw []byte) uint32 {
	var hash uint32
	for _, c := range raw {
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		hash *= 37
		hash += uint32(c)
	}
	return hash
}
