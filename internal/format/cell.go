package format

import "fmt"

// CellHeader is the 4-byte signed-size prefix of every cell. A negative raw
// size marks the cell allocated (logical size = -raw); a positive raw size
// marks it free (logical size = raw); zero is illegal.
type CellHeader struct {
	Raw       int32
	Allocated bool
	Size      int // logical size, including the 4-byte header itself
}

// ParseCellHeader decodes the cell header at the start of b.
func ParseCellHeader(b []byte) (CellHeader, error) {
	raw, err := CheckedReadI32(b, 0)
	if err != nil {
		return CellHeader{}, fmt.Errorf("cell header: %w", err)
	}
	if raw == 0 {
		return CellHeader{}, ErrZeroSize
	}
	if raw < 0 {
		return CellHeader{Raw: raw, Allocated: true, Size: int(-raw)}, nil
	}
	return CellHeader{Raw: raw, Allocated: false, Size: int(raw)}, nil
}

// CellTag returns the 2-byte record tag at the start of a cell's payload
// (the bytes immediately after the 4-byte cell header). An empty or
// 1-byte payload yields a zero tag, which matches no known signature.
func CellTag(payload []byte) [SignatureSize]byte {
	var tag [SignatureSize]byte
	if len(payload) >= SignatureSize {
		copy(tag[:], payload[:SignatureSize])
	}
	return tag
}
