package format

import (
	"bytes"
	"fmt"
)

// VKRecord models a value-descriptor record's fixed fields plus its inline
// name. See VKNameOffset and friends in consts.go for the exact layout.
type VKRecord struct {
	NameLength uint16
	DataLength uint32 // high bit (VKDataInlineBit) marks inline data
	DataOffset uint32 // a data-space offset, or up to 4 inline bytes
	Type       uint32
	Flags      uint16
	NameRaw    []byte
}

// DataInline reports whether the value's data (up to 4 bytes) is stored
// directly in DataOffset rather than referencing another cell.
func (vk VKRecord) DataInline() bool {
	return vk.DataLength&VKDataInlineBit != 0
}

// DataSize returns the logical data length with the inline marker bit
// stripped off.
func (vk VKRecord) DataSize() uint32 {
	return vk.DataLength &^ VKDataInlineBit
}

// NameIsASCII reports whether the name is stored as single-byte text.
func (vk VKRecord) NameIsASCII() bool {
	return vk.Flags&VKFlagASCIIName != 0
}

// DecodeVK decodes a VK record payload.
func DecodeVK(b []byte) (VKRecord, error) {
	if len(b) < VKMinSize {
		return VKRecord{}, fmt.Errorf("vk: %w (have %d, need %d)", ErrTruncated, len(b), VKMinSize)
	}
	if !bytes.Equal(b[:SignatureSize], VKSignature) {
		return VKRecord{}, fmt.Errorf("vk: %w", ErrSignatureMismatch)
	}

	nameLen, err := CheckedReadU16(b, VKNameLenOffset)
	if err != nil {
		return VKRecord{}, fmt.Errorf("vk name len: %w", err)
	}
	dataLen, err := CheckedReadU32(b, VKDataLenOffset)
	if err != nil {
		return VKRecord{}, fmt.Errorf("vk data len: %w", err)
	}
	dataOff, err := CheckedReadU32(b, VKDataOffOffset)
	if err != nil {
		return VKRecord{}, fmt.Errorf("vk data off: %w", err)
	}
	valType, err := CheckedReadU32(b, VKTypeOffset)
	if err != nil {
		return VKRecord{}, fmt.Errorf("vk type: %w", err)
	}
	flags, err := CheckedReadU16(b, VKFlagsOffset)
	if err != nil {
		return VKRecord{}, fmt.Errorf("vk flags: %w", err)
	}

	nameEnd := VKNameOffset + int(nameLen)
	if nameEnd > len(b) {
		return VKRecord{}, fmt.Errorf("vk name: %w (need %d bytes from %d, have %d)",
			ErrTruncated, nameLen, VKNameOffset, len(b))
	}
	name := b[VKNameOffset:nameEnd]

	return VKRecord{
		NameLength: nameLen,
		DataLength: dataLen,
		DataOffset: dataOff,
		Type:       valType,
		Flags:      flags,
		NameRaw:    name,
	}, nil
}
