package tap

import (
	"fmt"
	"sync"
)

// Signals holds the four JTAG pins. TRSTn is active low.
type Signals struct {
	TCK   bool
	TMS   bool
	TDI   bool
	TRSTn bool
}

func (s Signals) String() string {
	return fmt.Sprintf("tck=%d tms=%d tdi=%d trst_n=%d", b2i(s.TCK), b2i(s.TMS), b2i(s.TDI), b2i(s.TRSTn))
}

// Inputs is everything the controller samples in one domain tick.
type Inputs struct {
	// Pins as observed in the controller's clock domain.
	Signals

	// Bit the selected data register presents for TDO outside Shift-IR.
	DRShiftIn bool

	// Asynchronous controller reset. Overrides everything else.
	Reset bool
}

// Outputs is the result of one domain tick. The four pulses are only ever set
// on a tick that detected a rising TCK edge and describe the state the
// controller was in before that edge.
type Outputs struct {
	CaptureDR bool
	ShiftDR   bool
	UpdateDR  bool
	UpdateIR  bool

	// Synchronized TDI seen this tick, for data registers shifting on ShiftDR.
	TDI bool

	Edge  Edge
	Prev  State // state at the start of the tick
	State State // state after the tick
	IR    uint64
	TDO   bool
}

// Pulse reports whether any of the four control pulses fired.
func (o Outputs) Pulse() bool {
	return o.CaptureDR || o.ShiftDR || o.UpdateDR || o.UpdateIR
}

// TickHook observes every tick after it has been committed. It runs with the
// controller locked and must not call back into the controller.
type TickHook func(in Inputs, out Outputs)

// Controller is the TAP state machine together with its instruction register
// and TDO flip-flop. All state changes happen inside Tick.
type Controller struct {
	mu    sync.Mutex
	state State
	ir    *InstructionRegister
	tdo   bool
	tck   EdgeDetector
	ticks uint64

	// Set while TRST has been asserted on consecutive ticks.
	trstHeld bool

	onTick TickHook
}

// NewController creates a controller in Test-Logic-Reset with an irWidth-bit
// instruction register.
func NewController(irWidth int) (*Controller, error) {
	ir, err := NewInstructionRegister(irWidth)
	if err != nil {
		return nil, err
	}
	return &Controller{state: StateTestLogicReset, ir: ir}, nil
}

// registers is the committed part of the controller between ticks.
type registers struct {
	state State
	ir    uint64
	tdo   bool
}

// Tick advances the controller by one domain clock. Next values are computed
// from the state at the start of the tick and committed together at the end.
func (c *Controller) Tick(in Inputs) Outputs {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := registers{state: c.state, ir: c.ir.value, tdo: c.tdo}
	next := cur
	out := Outputs{Prev: cur.state, TDI: in.TDI}
	held := false

	switch {
	case in.Reset:
		next = registers{state: StateTestLogicReset}
		c.tck.Reset()

	case !in.TRSTn:
		next.state = StateTestLogicReset
		// The first TRST tick leaves the registers alone. Holding TRST for a
		// second tick clears the instruction register.
		if c.trstHeld {
			next.ir = 0
		}
		held = true

	default:
		edge := c.tck.Sample(in.TCK)
		out.Edge = edge

		switch {
		case edge.Rising:
			target := cur.state
			next.state = NextState(target, in.TMS)
			if target == StateShiftIR {
				next.ir = c.ir.shifted(cur.ir, in.TDI)
			}
			out.CaptureDR = target == StateCaptureDR
			out.ShiftDR = target == StateShiftDR
			out.UpdateDR = target == StateUpdateDR
			out.UpdateIR = target == StateUpdateIR

		case edge.Falling:
			if cur.state == StateShiftIR {
				next.tdo = cur.ir&1 != 0
			} else {
				next.tdo = in.DRShiftIn
			}
		}
	}

	c.state = next.state
	c.ir.value = next.ir
	c.tdo = next.tdo
	c.trstHeld = held
	c.ticks++

	out.State = next.state
	out.IR = next.ir
	out.TDO = next.tdo

	if c.onTick != nil {
		c.onTick(in, out)
	}
	return out
}

// SetTickHook installs h to run at the end of every Tick and returns the hook
// it replaced. A nil h removes the hook.
func (c *Controller) SetTickHook(h TickHook) TickHook {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.onTick
	c.onTick = h
	return prev
}

// State returns the current TAP state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IR returns the instruction register contents.
func (c *Controller) IR() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ir.value
}

// IRWidth returns the instruction register width.
func (c *Controller) IRWidth() int {
	return c.ir.width
}

// TDO returns the serial output bit.
func (c *Controller) TDO() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tdo
}

// Ticks returns the number of domain ticks processed so far.
func (c *Controller) Ticks() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// Snapshot returns state, instruction register and TDO under one lock.
func (c *Controller) Snapshot() (State, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.ir.value, c.tdo
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
