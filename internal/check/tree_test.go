package check

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wbaan/regfcheck/internal/source"
)

func runAllPasses(t *testing.T, data []byte) string {
	t.Helper()
	var out bytes.Buffer
	sink := NewSink(&out)
	src := source.FromBytes(data)
	hdr, ok := ValidateHeader(src, sink)
	require.True(t, ok)
	ScanBins(src, hdr, sink)
	ValidateTree(src, hdr, sink)
	return out.String()
}

func TestTreeCleanHiveNoErrors(t *testing.T) {
	data := buildHive(hiveOpts{subkeys: []subkeySpec{{name: "alpha"}, {name: "beta"}}})
	out := runAllPasses(t, data)
	require.NotContains(t, out, "Error:")
}

// TestTreeUnsortedLF is scenario S5: two subkeys stored in an lf list in
// the wrong case-insensitive order.
func TestTreeUnsortedLF(t *testing.T) {
	data := buildHive(hiveOpts{
		listKind: "lf",
		subkeys:  []subkeySpec{{name: "BETA"}, {name: "alpha"}},
	})
	out := runAllPasses(t, data)
	require.Contains(t, out, "lf block is not sorted by name at")
}

func TestTreeSortedLFHasNoSortFinding(t *testing.T) {
	data := buildHive(hiveOpts{
		listKind: "lf",
		subkeys:  []subkeySpec{{name: "alpha"}, {name: "beta"}},
	})
	out := runAllPasses(t, data)
	require.NotContains(t, out, "is not sorted by name")
}

func TestTreeLHHashMismatch(t *testing.T) {
	data := buildHive(hiveOpts{
		listKind: "lh",
		subkeys:  []subkeySpec{{name: "alpha"}},
	})
	// Corrupt the stored hash of the single lh entry without touching its
	// offset. The lh list cell sits right after root nk + root sk + the two
	// subkey cells; easiest to locate it by scanning for the "lh" tag.
	idx := bytes.Index(data, []byte("lh"))
	require.GreaterOrEqual(t, idx, 0)
	hashOff := idx + 4 + 4 // past the 4-byte list header and the entry offset
	data[hashOff] ^= 0xFF

	out := runAllPasses(t, data)
	require.Contains(t, out, "lh block has incorrect hash for offset")
}

func TestTreeLFPrefixMismatch(t *testing.T) {
	data := buildHive(hiveOpts{
		listKind: "lf",
		subkeys:  []subkeySpec{{name: "alpha"}},
	})
	idx := bytes.Index(data, []byte("lf"))
	require.GreaterOrEqual(t, idx, 0)
	prefixOff := idx + 4 + 4
	data[prefixOff] ^= 0xFF

	out := runAllPasses(t, data)
	require.Contains(t, out, "Incorrect first 4 bytes of key name")
}

// TestTreeLFShortNameUnpaddedTailIsNotCompared guards against a false
// "Incorrect first 4 bytes" finding: the format never guarantees the lf
// prefix field is zero-padded past a short name's length, so only the
// bytes the name actually has may be compared (spec §4.6).
func TestTreeLFShortNameUnpaddedTailIsNotCompared(t *testing.T) {
	data := buildHive(hiveOpts{
		listKind: "lf",
		subkeys:  []subkeySpec{{name: "ab"}},
	})
	idx := bytes.Index(data, []byte("lf"))
	require.GreaterOrEqual(t, idx, 0)
	prefixOff := idx + 4 + 4
	// Name is 2 bytes ("ab"); garbage the unused tail of the 4-byte
	// prefix field rather than leaving it zero.
	data[prefixOff+2] = 0xAA
	data[prefixOff+3] = 0xBB

	out := runAllPasses(t, data)
	require.NotContains(t, out, "Incorrect first 4 bytes of key name")
}

func TestTreeExpectedSubkeyCountMismatch(t *testing.T) {
	// The root nk claims two subkeys but the lh list it points to only
	// holds one: Pass 3 must flag the cross-reference mismatch.
	data := buildHive(hiveOpts{subkeys: []subkeySpec{{name: "alpha"}}, rootSubkeyCount: 2})
	out := runAllPasses(t, data)
	require.Contains(t, out, "Expected 2 subkeys, got 1 subkeys at")
}
