package tap

import (
	"errors"
	"fmt"
	"strings"
)

// MaxIRWidth is the widest instruction register a Controller supports.
const MaxIRWidth = 64

// ErrInvalidWidth is returned when an instruction register width is outside
// 1..MaxIRWidth.
var ErrInvalidWidth = errors.New("tap: invalid instruction register width")

// InstructionRegister is the bit-serial instruction shift register. TDI enters
// at the most significant bit and bit 0 is the next bit presented on TDO.
type InstructionRegister struct {
	width int
	value uint64
}

// NewInstructionRegister creates a cleared register of the given width.
func NewInstructionRegister(width int) (*InstructionRegister, error) {
	if width < 1 || width > MaxIRWidth {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}
	return &InstructionRegister{width: width}, nil
}

// Width returns the register width in bits.
func (r *InstructionRegister) Width() int {
	return r.width
}

// Value returns the current register contents.
func (r *InstructionRegister) Value() uint64 {
	return r.value
}

// ShiftIn shifts bit in at the most significant position, drops bit 0 and
// returns the new value.
func (r *InstructionRegister) ShiftIn(bit bool) uint64 {
	r.value = r.shifted(r.value, bit)
	return r.value
}

// Clear zeroes the register.
func (r *InstructionRegister) Clear() {
	r.value = 0
}

func (r *InstructionRegister) shifted(v uint64, bit bool) uint64 {
	v >>= 1
	if bit {
		v |= 1 << uint(r.width-1)
	}
	return v
}

// String formats the register as a binary string, most significant bit first.
func (r *InstructionRegister) String() string {
	return FormatBits(r.value, r.width)
}

// FormatBits renders the low width bits of v most significant bit first.
func FormatBits(v uint64, width int) string {
	var b strings.Builder
	b.Grow(width)
	for i := width - 1; i >= 0; i-- {
		if v&(1<<uint(i)) != 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
