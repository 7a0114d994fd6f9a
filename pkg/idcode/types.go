package idcode

import "fmt"

// IDCode is a decoded IEEE 1149.1 device identification register.
type IDCode struct {
	Raw        uint32
	Version    uint8  // [31:28]
	PartNumber uint16 // [27:12]
	Bank       uint8  // [11:8] JEP106 continuation count
	ID         uint8  // [7:1] JEP106 identity code without parity
}

// ManufacturerCode returns the 11-bit manufacturer field, bank and identity
// together as they appear in bits [11:1].
func (id IDCode) ManufacturerCode() uint16 {
	return uint16(id.Bank)<<7 | uint16(id.ID)
}

// Manufacturer looks up the JEP106 entry for the code.
func (id IDCode) Manufacturer() (Manufacturer, bool) {
	return LookupManufacturer(id.ManufacturerCode())
}

func (id IDCode) String() string {
	m, _ := id.Manufacturer()
	return fmt.Sprintf("0x%08X (%s, part 0x%04X, version %d)", id.Raw, m.Name, id.PartNumber, id.Version)
}

// Manufacturer represents a JEP106 manufacturer entry.
type Manufacturer struct {
	Code         uint16 // bank<<7 | identity
	Name         string
	Abbreviation string
}
