package jtag

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceTAP/pkg/tap"
)

// DefaultDomainHz is the nominal controller clock SetSpeed converts against.
const DefaultDomainHz = 48_000_000

// PinAdapter bit-bangs a simulated tap.Device. Every TCK cycle is a low half
// period, during which TMS and TDI change and TDO is sampled at the end, then a
// high half period. Data registers are selected by the current IR value and
// driven from the controller's capture/shift/update pulses.
type PinAdapter struct {
	dev  *tap.Device
	pins tap.Signals
	half int

	// DomainHz is the controller clock used by SetSpeed and Info.
	DomainHz int

	registers map[uint64]*ScanRegister
	bypass    *ScanRegister
}

// NewPinAdapter attaches to dev with TCK low and TRST released.
func NewPinAdapter(dev *tap.Device) *PinAdapter {
	return &PinAdapter{
		dev:       dev,
		pins:      tap.Signals{TRSTn: true},
		half:      dev.Config().TCKHalfPeriod,
		DomainHz:  DefaultDomainHz,
		registers: make(map[uint64]*ScanRegister),
		bypass:    NewBypassRegister(),
	}
}

// Device returns the device behind the pins.
func (p *PinAdapter) Device() *tap.Device {
	return p.dev
}

// Pins returns the raw levels currently driven.
func (p *PinAdapter) Pins() tap.Signals {
	return p.pins
}

// HalfPeriod returns the current TCK half period in domain ticks.
func (p *PinAdapter) HalfPeriod() int {
	return p.half
}

// Select routes instruction opcode to reg. A nil reg removes the mapping.
// Unmapped instructions select BYPASS.
func (p *PinAdapter) Select(opcode uint64, reg *ScanRegister) {
	if reg == nil {
		delete(p.registers, opcode)
		return
	}
	p.registers[opcode] = reg
}

// Selected returns the data register the current instruction routes to.
func (p *PinAdapter) Selected() *ScanRegister {
	if r, ok := p.registers[p.dev.Controller().IR()]; ok {
		return r
	}
	return p.bypass
}

func (p *PinAdapter) Info() (AdapterInfo, error) {
	stages := p.dev.Config().SyncStages
	return AdapterInfo{
		Name:         "pins",
		Vendor:       "OpenTraceTAP",
		Model:        fmt.Sprintf("ir%d/sync%d", p.dev.Config().IRWidth, stages),
		MinFrequency: 1,
		MaxFrequency: p.DomainHz / (2 * (stages + 1)),
		SupportsSRST: true,
		SupportsTRST: true,
		Notes:        fmt.Sprintf("domain clock %dHz", p.DomainHz),
	}, nil
}

func (p *PinAdapter) ShiftIR(tms, tdi []byte, bits int) ([]byte, error) {
	return p.shift(tms, tdi, bits)
}

func (p *PinAdapter) ShiftDR(tms, tdi []byte, bits int) ([]byte, error) {
	return p.shift(tms, tdi, bits)
}

func (p *PinAdapter) shift(tms, tdi []byte, bits int) ([]byte, error) {
	if _, err := ValidateShiftBuffers(tms, tdi, bits); err != nil {
		return nil, err
	}
	tmsBits := UnpackBits(tms, bits)
	tdiBits := UnpackBits(tdi, bits)
	tdo := make([]bool, bits)
	for i := range tdo {
		tdo[i] = p.Cycle(tmsBits[i], tdiBits[i])
	}
	return PackBits(tdo), nil
}

// Cycle drives one TCK period and returns TDO as sampled at the end of the low
// half.
func (p *PinAdapter) Cycle(tms, tdi bool) bool {
	p.pins.TCK, p.pins.TMS, p.pins.TDI = false, tms, tdi
	p.Idle(p.half)
	tdo := p.dev.Controller().TDO()
	p.pins.TCK = true
	p.Idle(p.half)
	return tdo
}

// Idle runs n domain ticks without touching the pins.
func (p *PinAdapter) Idle(n int) {
	for i := 0; i < n; i++ {
		p.step(false)
	}
}

func (p *PinAdapter) step(reset bool) tap.Outputs {
	dr := p.Selected()
	out := p.dev.Tick(p.pins, dr.TDO(), reset)
	switch {
	case out.CaptureDR:
		dr.Capture()
	case out.ShiftDR:
		dr.Shift(out.TDI)
	case out.UpdateDR:
		dr.Update()
	}
	return out
}

// ResetTAP pulses the asynchronous controller reset when hard is set, and
// otherwise holds TRST low for a full TCK period. TCK is parked low first and
// kept low until the synchronizer has flushed, so no edge is seen on release.
func (p *PinAdapter) ResetTAP(hard bool) error {
	p.pins.TCK = false
	p.Idle(p.half)
	if hard {
		p.step(true)
	} else {
		p.pins.TRSTn = false
		p.Idle(2 * p.half)
		p.pins.TRSTn = true
	}
	p.Idle(2 * p.half)
	return nil
}

// SetSpeed picks the shortest half period that keeps TCK at or below hz.
func (p *PinAdapter) SetSpeed(hz int) error {
	if hz <= 0 {
		return fmt.Errorf("jtag: invalid speed %dHz", hz)
	}
	// Anything above DomainHz/2 rounds up to a one tick half period. Checking
	// first keeps 2*hz from overflowing.
	half := 1
	if hz <= p.DomainHz/2 {
		half = (p.DomainHz + 2*hz - 1) / (2 * hz)
	}
	if stages := p.dev.Config().SyncStages; half <= stages {
		return fmt.Errorf("jtag: %dHz needs a %d tick half period: %w", hz, half, tap.ErrClockTooFast)
	}
	p.half = half
	return nil
}
