package format

import (
	"bytes"
	"fmt"
)

// NKRecord models a named-key record's fixed fields plus its inline name.
// See NKNameOffset and friends in consts.go for the exact layout.
type NKRecord struct {
	Type             uint16 // type/flags word; compare against NKType* sentinels
	ParentOffset     uint32
	SubkeyCount      uint32
	SubkeyListOffset uint32
	ValueCount       uint32
	ValueListOffset  uint32
	SKOffset         uint32
	ClassNameOffset  uint32
	ClassNameLength  uint16
	NameLength       uint16
	NameRaw          []byte
}

// IsRoot, IsNormal, and IsSymlink compare the type word against the exact
// sentinel values this format uses; other values are tolerated with a
// warning by the validator, never rejected by the decoder.
func (nk NKRecord) IsRoot() bool    { return nk.Type == NKTypeRoot }
func (nk NKRecord) IsNormal() bool  { return nk.Type == NKTypeNormal }
func (nk NKRecord) IsSymlink() bool { return nk.Type == NKTypeSymlink }

// NameIsCompressed reports whether the key name is stored as single-byte
// (ASCII/ANSI) text rather than UTF-16LE.
func (nk NKRecord) NameIsCompressed() bool {
	return nk.Type&NKFlagCompressedName != 0
}

// DecodeNK decodes an NK record payload (the bytes following the cell
// header). len(b) may be larger than the record actually needs; a shorter
// buffer yields ErrTruncated.
func DecodeNK(b []byte) (NKRecord, error) {
	if len(b) < NKMinSize {
		return NKRecord{}, fmt.Errorf("nk: %w (have %d, need %d)", ErrTruncated, len(b), NKMinSize)
	}
	if !bytes.Equal(b[:SignatureSize], NKSignature) {
		return NKRecord{}, fmt.Errorf("nk: %w", ErrSignatureMismatch)
	}

	typ, err := CheckedReadU16(b, NKTypeOffset)
	if err != nil {
		return NKRecord{}, fmt.Errorf("nk type: %w", err)
	}
	parent, err := CheckedReadU32(b, NKParentOffset)
	if err != nil {
		return NKRecord{}, fmt.Errorf("nk parent: %w", err)
	}
	subkeyCount, err := CheckedReadU32(b, NKSubkeyCountOffset)
	if err != nil {
		return NKRecord{}, fmt.Errorf("nk subkey count: %w", err)
	}
	subkeyListOff, err := CheckedReadU32(b, NKSubkeyListOffset)
	if err != nil {
		return NKRecord{}, fmt.Errorf("nk subkey list: %w", err)
	}
	valueCount, err := CheckedReadU32(b, NKValueCountOffset)
	if err != nil {
		return NKRecord{}, fmt.Errorf("nk value count: %w", err)
	}
	valueListOff, err := CheckedReadU32(b, NKValueListOffset)
	if err != nil {
		return NKRecord{}, fmt.Errorf("nk value list: %w", err)
	}
	skOff, err := CheckedReadU32(b, NKSKOffset)
	if err != nil {
		return NKRecord{}, fmt.Errorf("nk sk offset: %w", err)
	}
	classOff, err := CheckedReadU32(b, NKClassNameOffset)
	if err != nil {
		return NKRecord{}, fmt.Errorf("nk class name: %w", err)
	}
	nameLen, err := CheckedReadU16(b, NKNameLenOffset)
	if err != nil {
		return NKRecord{}, fmt.Errorf("nk name len: %w", err)
	}
	classLen, err := CheckedReadU16(b, NKClassLenOffset)
	if err != nil {
		return NKRecord{}, fmt.Errorf("nk class len: %w", err)
	}

	nameEnd := NKNameOffset + int(nameLen)
	if nameEnd > len(b) {
		return NKRecord{}, fmt.Errorf("nk name: %w (need %d bytes from %d, have %d)",
			ErrTruncated, nameLen, NKNameOffset, len(b))
	}
	name := b[NKNameOffset:nameEnd]

	return NKRecord{
		Type:             typ,
		ParentOffset:     parent,
		SubkeyCount:      subkeyCount,
		SubkeyListOffset: subkeyListOff,
		ValueCount:       valueCount,
		ValueListOffset:  valueListOff,
		SKOffset:         skOff,
		ClassNameOffset:  classOff,
		ClassNameLength:  classLen,
		NameLength:       nameLen,
		NameRaw:          name,
	}, nil
}
