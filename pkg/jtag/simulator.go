package jtag

import "fmt"

// ShiftRegion identifies whether a shift operation targets the instruction or
// data register.
type ShiftRegion uint8

const (
	ShiftRegionIR ShiftRegion = iota
	ShiftRegionDR
)

func (r ShiftRegion) String() string {
	if r == ShiftRegionIR {
		return "IR"
	}
	return "DR"
}

// ShiftHook allows the simulator to emulate device-specific TDO behavior.
type ShiftHook func(region ShiftRegion, tms, tdi []byte, bits int) ([]byte, error)

// ShiftOp captures a shift invocation for inspection within tests.
type ShiftOp struct {
	Region ShiftRegion
	TMS    []byte
	TDI    []byte
	Bits   int
}

// TMSBits unpacks the recorded TMS buffer.
func (op ShiftOp) TMSBits() []bool {
	return UnpackBits(op.TMS, op.Bits)
}

// TDIBits unpacks the recorded TDI buffer.
func (op ShiftOp) TDIBits() []bool {
	return UnpackBits(op.TDI, op.Bits)
}

// SimAdapter is an in-memory adapter with no TAP behind it. It records every
// shift request and can optionally provide deterministic TDO data via OnShift.
type SimAdapter struct {
	InfoData AdapterInfo
	SpeedHz  int

	OnShift ShiftHook

	shifts    []ShiftOp
	resets    int
	hardReset int
}

// NewSimAdapter constructs a simulator configured with the provided AdapterInfo.
func NewSimAdapter(info AdapterInfo) *SimAdapter {
	return &SimAdapter{InfoData: info}
}

// LastShift returns a copy of the most recent shift request.
func (s *SimAdapter) LastShift() ShiftOp {
	if len(s.shifts) == 0 {
		return ShiftOp{}
	}
	return copyShift(s.shifts[len(s.shifts)-1])
}

// Shifts returns copies of every shift request in order.
func (s *SimAdapter) Shifts() []ShiftOp {
	out := make([]ShiftOp, len(s.shifts))
	for i, op := range s.shifts {
		out[i] = copyShift(op)
	}
	return out
}

// ResetCounts reports how many resets have been requested (soft as total,
// hardReset as subset).
func (s *SimAdapter) ResetCounts() (soft, hard int) {
	return s.resets, s.hardReset
}

func (s *SimAdapter) Info() (AdapterInfo, error) {
	return s.InfoData, nil
}

func (s *SimAdapter) ShiftIR(tms, tdi []byte, bits int) ([]byte, error) {
	return s.shift(ShiftRegionIR, tms, tdi, bits)
}

func (s *SimAdapter) ShiftDR(tms, tdi []byte, bits int) ([]byte, error) {
	return s.shift(ShiftRegionDR, tms, tdi, bits)
}

func (s *SimAdapter) ResetTAP(hard bool) error {
	s.resets++
	if hard {
		s.hardReset++
	}
	return nil
}

func (s *SimAdapter) SetSpeed(hz int) error {
	if hz <= 0 {
		return fmt.Errorf("jtag: invalid speed %dHz", hz)
	}
	s.SpeedHz = hz
	return nil
}

func (s *SimAdapter) shift(region ShiftRegion, tms, tdi []byte, bits int) ([]byte, error) {
	if _, err := ValidateShiftBuffers(tms, tdi, bits); err != nil {
		return nil, err
	}

	op := ShiftOp{Region: region, TMS: tms, TDI: tdi, Bits: bits}
	s.shifts = append(s.shifts, copyShift(op))

	if s.OnShift != nil {
		return s.OnShift(region, tms, tdi, bits)
	}

	// Default: echo TDI to TDO to keep tests predictable.
	tdo := make([]byte, (bits+7)/8)
	copy(tdo, tdi)
	return tdo, nil
}

func copyShift(op ShiftOp) ShiftOp {
	return ShiftOp{
		Region: op.Region,
		TMS:    append([]byte(nil), op.TMS...),
		TDI:    append([]byte(nil), op.TDI...),
		Bits:   op.Bits,
	}
}
