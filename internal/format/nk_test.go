package format

import (
	"encoding/binary"
	"testing"
)

func TestDecodeNKRoot(t *testing.T) {
	name := []byte("ROOT")
	b := make([]byte, NKFixedHeaderSize+len(name))
	copy(b, NKSignature)
	binary.LittleEndian.PutUint16(b[NKTypeOffset:], NKTypeRoot)
	binary.LittleEndian.PutUint32(b[NKParentOffset:], 0)
	binary.LittleEndian.PutUint32(b[NKSubkeyCountOffset:], 2)
	binary.LittleEndian.PutUint32(b[NKSubkeyListOffset:], 0x100)
	binary.LittleEndian.PutUint32(b[NKValueCountOffset:], 0)
	binary.LittleEndian.PutUint32(b[NKValueListOffset:], InvalidOffset)
	binary.LittleEndian.PutUint32(b[NKSKOffset:], 0x40)
	binary.LittleEndian.PutUint32(b[NKClassNameOffset:], InvalidOffset)
	binary.LittleEndian.PutUint16(b[NKNameLenOffset:], uint16(len(name)))
	copy(b[NKNameOffset:], name)

	nk, err := DecodeNK(b)
	if err != nil {
		t.Fatalf("DecodeNK: %v", err)
	}
	if !nk.IsRoot() || nk.IsNormal() || nk.IsSymlink() {
		t.Fatalf("expected root type, got %+v", nk)
	}
	if !nk.NameIsCompressed() {
		t.Fatalf("0x2C root type should carry the compressed-name bit")
	}
	if string(nk.NameRaw) != "ROOT" {
		t.Fatalf("unexpected name: %q", nk.NameRaw)
	}
	if nk.SubkeyCount != 2 || nk.SubkeyListOffset != 0x100 {
		t.Fatalf("unexpected subkey fields: %+v", nk)
	}
}

func TestDecodeNKTruncated(t *testing.T) {
	b := make([]byte, 2)
	copy(b, NKSignature)
	if _, err := DecodeNK(b); err == nil {
		t.Fatalf("expected truncation error")
	}
}

func TestDecodeNKBadSignature(t *testing.T) {
	b := make([]byte, NKFixedHeaderSize)
	copy(b, "xx")
	if _, err := DecodeNK(b); err == nil {
		t.Fatalf("expected signature mismatch")
	}
}

func TestDecodeNKNameOverrunsBuffer(t *testing.T) {
	b := make([]byte, NKFixedHeaderSize)
	copy(b, NKSignature)
	binary.LittleEndian.PutUint16(b[NKNameLenOffset:], 10) // no room for 10 bytes of name
	if _, err := DecodeNK(b); err == nil {
		t.Fatalf("expected truncation error for overlong name")
	}
}
