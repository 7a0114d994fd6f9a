package jtag

import (
	"errors"
	"fmt"
)

// AdapterInfo describes capabilities reported by a JTAG adapter implementation.
type AdapterInfo struct {
	Name         string
	Vendor       string
	Model        string
	MinFrequency int // Hertz
	MaxFrequency int // Hertz
	SupportsSRST bool
	SupportsTRST bool
	Notes        string
}

// Adapter abstracts anything that can clock TCK with host-supplied TMS/TDI
// bits. ShiftIR and ShiftDR both clock exactly bits TCK cycles; the region
// only tells the backend which scan path the caller believes it is on.
// Buffers are packed LSB first, bit i in byte i/8.
type Adapter interface {
	Info() (AdapterInfo, error)
	ShiftIR(tms, tdi []byte, bits int) (tdo []byte, err error)
	ShiftDR(tms, tdi []byte, bits int) (tdo []byte, err error)
	ResetTAP(hard bool) error
	SetSpeed(hz int) error
}

// ErrNotImplemented lets backends signal that a requested capability is not yet
// available without relying on fmt.Errorf each time.
var ErrNotImplemented = errors.New("jtag: not implemented")

// ValidateShiftBuffers ensures TMS/TDIs are present when bits exceed their
// lengths and returns the number of bytes required to accommodate the bit
// length.
func ValidateShiftBuffers(tms, tdi []byte, bits int) (int, error) {
	if bits <= 0 {
		return 0, fmt.Errorf("jtag: bits must be positive, got %d", bits)
	}
	required := (bits + 7) / 8
	if len(tms) > 0 && len(tms) < required {
		return 0, fmt.Errorf("jtag: tms buffer too short, need %d bytes", required)
	}
	if len(tdi) > 0 && len(tdi) < required {
		return 0, fmt.Errorf("jtag: tdi buffer too short, need %d bytes", required)
	}
	return required, nil
}

// PackBits packs bits LSB first into bytes.
func PackBits(bits []bool) []byte {
	if len(bits) == 0 {
		return nil
	}
	out := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit {
			out[i/8] |= 1 << (uint(i) % 8)
		}
	}
	return out
}

// UnpackBits is the inverse of PackBits. Missing bytes read as zero.
func UnpackBits(buf []byte, bits int) []bool {
	if bits <= 0 {
		return nil
	}
	out := make([]bool, bits)
	for i := 0; i < bits; i++ {
		if i/8 < len(buf) {
			out[i] = buf[i/8]&(1<<(uint(i)%8)) != 0
		}
	}
	return out
}

// BitsToUint64 interprets bits as an LSB-first integer.
func BitsToUint64(bits []bool) uint64 {
	var v uint64
	for i, bit := range bits {
		if bit && i < 64 {
			v |= 1 << uint(i)
		}
	}
	return v
}

// Uint64ToBits returns the low width bits of v, LSB first.
func Uint64ToBits(v uint64, width int) []bool {
	out := make([]bool, width)
	for i := range out {
		out[i] = i < 64 && v&(1<<uint(i)) != 0
	}
	return out
}
