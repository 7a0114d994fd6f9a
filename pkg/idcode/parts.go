package idcode

// Part describes a known device for a manufacturer and part number.
type Part struct {
	Name     string
	Family   string
	IRLength int
}

type partKey struct {
	manufacturer uint16
	part         uint16
}

var parts = map[partKey]Part{
	{0x23B, 0xBA00}: {Name: "Cortex-M3 JTAG-DP", Family: "ARM CoreSight", IRLength: 4},
	{0x23B, 0xBA01}: {Name: "Cortex-M0 SW-DP", Family: "ARM CoreSight", IRLength: 4},
	{0x23B, 0xBA02}: {Name: "ADIv5 JTAG-DP", Family: "ARM CoreSight", IRLength: 4},
	{0x020, 0x6410}: {Name: "STM32F10x medium density", Family: "STM32F1", IRLength: 5},
	{0x020, 0x6414}: {Name: "STM32F10x high density", Family: "STM32F1", IRLength: 5},
	{0x020, 0x6413}: {Name: "STM32F40x", Family: "STM32F4", IRLength: 5},
	{0x049, 0x3631}: {Name: "XC7A100T", Family: "Artix-7", IRLength: 6},
	{0x021, 0x2BA0}: {Name: "LCMXO2-1200", Family: "MachXO2", IRLength: 8},
}

// LookupPart returns the known device for id, if any.
func LookupPart(id IDCode) (Part, bool) {
	p, ok := parts[partKey{id.ManufacturerCode(), id.PartNumber}]
	return p, ok
}
