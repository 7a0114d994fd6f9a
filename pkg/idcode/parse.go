package idcode

import (
	"errors"
	"fmt"
)

var (
	// ErrNotIDCode is returned when bit 0 is clear. Devices without an IDCODE
	// register select BYPASS instead and shift out a leading zero.
	ErrNotIDCode = errors.New("idcode: bit 0 is clear")

	// ErrReservedManufacturer is returned for identity 0x7F, which JEP106
	// reserves as the continuation code.
	ErrReservedManufacturer = errors.New("idcode: reserved manufacturer code")
)

// Parse splits raw into its fields and checks the two fixed constraints of the
// format.
func Parse(raw uint32) (IDCode, error) {
	id := Decode(raw)
	if raw&1 == 0 {
		return id, fmt.Errorf("%w: 0x%08X", ErrNotIDCode, raw)
	}
	if id.ID == 0x7F {
		return id, fmt.Errorf("%w: 0x%08X", ErrReservedManufacturer, raw)
	}
	return id, nil
}

// Decode splits raw into its fields without validation.
func Decode(raw uint32) IDCode {
	return IDCode{
		Raw:        raw,
		Version:    uint8(raw >> 28),
		PartNumber: uint16(raw >> 12),
		Bank:       uint8(raw>>8) & 0xF,
		ID:         uint8(raw>>1) & 0x7F,
	}
}

// Encode assembles an IDCODE with bit 0 set.
func Encode(version uint8, part uint16, manufacturer uint16) uint32 {
	return uint32(version&0xF)<<28 | uint32(part)<<12 | uint32(manufacturer&0x7FF)<<1 | 1
}
