package jtag

import "fmt"

// ScanRegister is a data register client of the TAP: it loads its capture
// value on capture_dr, shifts on shift_dr (TDI in at the top, bit 0 out on
// TDO) and hands its contents to OnUpdate on update_dr.
type ScanRegister struct {
	Name string

	// OnUpdate receives a copy of the shifted contents, LSB first.
	OnUpdate func(bits []bool)

	bits    []bool
	capture []bool
}

// NewScanRegister creates a width-bit register that captures zeros.
func NewScanRegister(name string, width int) (*ScanRegister, error) {
	if width < 1 {
		return nil, fmt.Errorf("jtag: scan register %q needs a positive width, got %d", name, width)
	}
	return &ScanRegister{
		Name:    name,
		bits:    make([]bool, width),
		capture: make([]bool, width),
	}, nil
}

// NewBypassRegister returns the single-bit BYPASS register.
func NewBypassRegister() *ScanRegister {
	r, _ := NewScanRegister("BYPASS", 1)
	return r
}

// NewIDCodeRegister returns a 32-bit register that captures id.
func NewIDCodeRegister(id uint32) *ScanRegister {
	r, _ := NewScanRegister("IDCODE", 32)
	r.SetCapture(Uint64ToBits(uint64(id), 32))
	return r
}

// Width returns the register length.
func (r *ScanRegister) Width() int {
	return len(r.bits)
}

// SetCapture sets the value loaded on the next capture, LSB first. Extra bits
// are ignored and missing bits read as zero.
func (r *ScanRegister) SetCapture(bits []bool) {
	for i := range r.capture {
		r.capture[i] = i < len(bits) && bits[i]
	}
}

// Capture loads the capture value.
func (r *ScanRegister) Capture() {
	copy(r.bits, r.capture)
}

// Shift moves every bit one position towards bit 0 and inserts tdi at the top.
func (r *ScanRegister) Shift(tdi bool) {
	copy(r.bits, r.bits[1:])
	r.bits[len(r.bits)-1] = tdi
}

// Update publishes the current contents.
func (r *ScanRegister) Update() {
	if r.OnUpdate != nil {
		r.OnUpdate(r.Bits())
	}
}

// TDO returns the bit currently presented to the controller.
func (r *ScanRegister) TDO() bool {
	return r.bits[0]
}

// Bits returns a copy of the register contents, LSB first.
func (r *ScanRegister) Bits() []bool {
	return append([]bool(nil), r.bits...)
}
