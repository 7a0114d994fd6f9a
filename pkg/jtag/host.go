package jtag

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/OpenTraceTAP/pkg/tap"
)

// Host drives an Adapter at the TAP level. It mirrors every TCK cycle in a
// tap.StateMachine so it always knows which column of the state diagram the
// target is in.
type Host struct {
	adapter Adapter
	tap     *tap.StateMachine
}

// NewHost wraps adapter. The target is assumed to be in Test-Logic-Reset.
func NewHost(adapter Adapter) *Host {
	return &Host{adapter: adapter, tap: tap.NewStateMachine()}
}

// Adapter returns the wrapped adapter.
func (h *Host) Adapter() Adapter {
	return h.adapter
}

// State returns the tracked TAP state.
func (h *Host) State() tap.State {
	return h.tap.State()
}

// Reset forces the target into Test-Logic-Reset. Backends without a reset line
// report ErrNotImplemented, which is passed back since no TMS sequence reaches
// the reset state.
func (h *Host) Reset(hard bool) error {
	if err := h.adapter.ResetTAP(hard); err != nil {
		return fmt.Errorf("jtag: reset: %w", err)
	}
	h.tap.Reset()
	return nil
}

// GoTo walks the shortest TMS path to target. Test-Logic-Reset is reached
// through TRST.
func (h *Host) GoTo(target tap.State) error {
	if target == tap.StateTestLogicReset {
		if h.tap.State() == target {
			return nil
		}
		return h.Reset(false)
	}
	seq, err := tap.Path(h.tap.State(), target)
	if err != nil {
		return err
	}
	_, err = h.Clock(seq.TMS, nil)
	return err
}

// Clock drives len(tms) TCK cycles and returns the sampled TDO bits. tdi may be
// nil to shift zeros. The tracked state is left unchanged when the adapter
// fails.
func (h *Host) Clock(tms, tdi []bool) ([]bool, error) {
	if len(tms) == 0 {
		return nil, nil
	}
	if len(tdi) != 0 && len(tdi) != len(tms) {
		return nil, fmt.Errorf("jtag: %d tdi bits for %d tms bits", len(tdi), len(tms))
	}
	region := regionFromState(h.tap.State())
	tdo, err := h.dispatch(region, tms, tdi)
	if err != nil {
		return nil, err
	}
	// The mirror only follows cycles the adapter accepted.
	for _, bit := range tms {
		h.tap.Clock(bit)
	}
	return UnpackBits(tdo, len(tms)), nil
}

// ErrEmptyScan is returned for scans with no bits.
var ErrEmptyScan = errors.New("jtag: scan needs at least one bit")

// ScanIR shifts bits (LSB first) through the instruction register and returns
// Run-Test/Idle via Update-IR. The returned bits are what the target shifted
// out.
func (h *Host) ScanIR(bits []bool) ([]bool, error) {
	return h.scan(tap.StateShiftIR, bits)
}

// ScanDR shifts bits (LSB first) through the selected data register and
// returns to Run-Test/Idle via Update-DR.
func (h *Host) ScanDR(bits []bool) ([]bool, error) {
	return h.scan(tap.StateShiftDR, bits)
}

func (h *Host) scan(shift tap.State, bits []bool) ([]bool, error) {
	if len(bits) == 0 {
		return nil, ErrEmptyScan
	}
	if err := h.GoTo(shift); err != nil {
		return nil, err
	}
	tms := make([]bool, len(bits))
	tms[len(tms)-1] = true // leave Shift on the final bit
	tdo, err := h.Clock(tms, bits)
	if err != nil {
		return nil, err
	}
	// Exit1 -> Update -> Run-Test/Idle
	if _, err := h.Clock([]bool{true, false}, nil); err != nil {
		return nil, err
	}
	return tdo, nil
}

// ReadIDCode loads opcode into an irWidth-bit instruction register and reads
// back a 32-bit data register.
func (h *Host) ReadIDCode(opcode uint64, irWidth int) (uint32, error) {
	if _, err := h.ScanIR(Uint64ToBits(opcode, irWidth)); err != nil {
		return 0, err
	}
	tdo, err := h.ScanDR(make([]bool, 32))
	if err != nil {
		return 0, err
	}
	return uint32(BitsToUint64(tdo)), nil
}

func (h *Host) dispatch(region ShiftRegion, tms, tdi []bool) ([]byte, error) {
	bits := len(tms)
	tmsBytes := PackBits(tms)
	var tdiBytes []byte
	if len(tdi) == 0 {
		tdiBytes = make([]byte, len(tmsBytes))
	} else {
		tdiBytes = PackBits(tdi)
	}
	if region == ShiftRegionIR {
		return h.adapter.ShiftIR(tmsBytes, tdiBytes, bits)
	}
	return h.adapter.ShiftDR(tmsBytes, tdiBytes, bits)
}

func regionFromState(s tap.State) ShiftRegion {
	if tap.IsIRPath(s) {
		return ShiftRegionIR
	}
	return ShiftRegionDR
}
