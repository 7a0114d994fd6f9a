package script

import (
	"context"
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"

	"github.com/OpenTraceLab/OpenTraceTAP/pkg/jtag"
	"github.com/OpenTraceLab/OpenTraceTAP/pkg/tap"
)

// ExpectError reports a failed expect statement.
type ExpectError struct {
	Pos  lexer.Position
	What string
	Want string
	Got  string
}

func (e *ExpectError) Error() string {
	return fmt.Sprintf("%s: expect %s: want %s, got %s", e.Pos, e.What, e.Want, e.Got)
}

// Runner executes programs against a device through a PinAdapter.
type Runner struct {
	dev  *tap.Device
	pins *jtag.PinAdapter
	host *jtag.Host

	// OnStatement, when set, is called before each statement executes.
	OnStatement func(pos lexer.Position, text string)

	pulses [numPulses]int
	lastDR []bool
}

// NewRunner attaches a pin driver and host to dev.
func NewRunner(dev *tap.Device) *Runner {
	pins := jtag.NewPinAdapter(dev)
	return &Runner{dev: dev, pins: pins, host: jtag.NewHost(pins)}
}

// Run executes prog against dev with a fresh Runner.
func Run(ctx context.Context, prog *Program, dev *tap.Device) error {
	return NewRunner(dev).Run(ctx, prog)
}

// Pins returns the pin driver, for mapping data registers before Run.
func (r *Runner) Pins() *jtag.PinAdapter {
	return r.pins
}

// Host returns the TAP-level driver.
func (r *Runner) Host() *jtag.Host {
	return r.host
}

// LastDR returns the TDO bits of the most recent scandr.
func (r *Runner) LastDR() []bool {
	return append([]bool(nil), r.lastDR...)
}

// Pulses returns how many of each pulse fired since it was last checked.
func (r *Runner) Pulses() map[Pulse]int {
	out := make(map[Pulse]int, numPulses)
	for i, n := range r.pulses {
		out[Pulse(i)] = n
	}
	return out
}

// Run executes every statement in order and stops at the first error. ctx is
// checked between statements. Expectation failures are returned as
// *ExpectError.
func (r *Runner) Run(ctx context.Context, prog *Program) error {
	ctrl := r.dev.Controller()
	var prev tap.TickHook
	prev = ctrl.SetTickHook(func(in tap.Inputs, out tap.Outputs) {
		r.count(out)
		if prev != nil {
			prev(in, out)
		}
	})
	defer ctrl.SetTickHook(prev)

	for _, st := range prog.statements {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "script: %s", st.pos)
		}
		if r.OnStatement != nil {
			r.OnStatement(st.pos, st.text)
		}
		if err := r.exec(st); err != nil {
			if _, ok := err.(*ExpectError); ok {
				return err
			}
			return errors.Wrapf(err, "script: %s: %s", st.pos, st.text)
		}
	}
	return nil
}

func (r *Runner) count(out tap.Outputs) {
	if out.CaptureDR {
		r.pulses[PulseCaptureDR]++
	}
	if out.ShiftDR {
		r.pulses[PulseShiftDR]++
	}
	if out.UpdateDR {
		r.pulses[PulseUpdateDR]++
	}
	if out.UpdateIR {
		r.pulses[PulseUpdateIR]++
	}
}

func (r *Runner) exec(st statement) error {
	ctrl := r.dev.Controller()
	switch st.kind {
	case opReset:
		return r.host.Reset(true)
	case opTRST:
		return r.host.Reset(false)
	case opTMS:
		_, err := r.host.Clock(st.bits, nil)
		return err
	case opGoto:
		return r.host.GoTo(st.state)
	case opShift:
		_, err := r.host.Clock(make([]bool, len(st.bits)), st.bits)
		return err
	case opIdle:
		r.pins.Idle(st.n)
		return nil
	case opScanIR:
		_, err := r.host.ScanIR(st.bits)
		return err
	case opScanDR:
		tdo, err := r.host.ScanDR(st.bits)
		if err != nil {
			return err
		}
		r.lastDR = tdo
		return nil

	case opExpectState:
		if got := ctrl.State(); got != st.state {
			return &ExpectError{Pos: st.pos, What: "state", Want: st.state.String(), Got: got.String()}
		}
	case opExpectIR:
		if got := ctrl.IR(); got != st.value {
			w := ctrl.IRWidth()
			return &ExpectError{Pos: st.pos, What: "ir", Want: tap.FormatBits(st.value, w), Got: tap.FormatBits(got, w)}
		}
	case opExpectTDO:
		if got := ctrl.TDO(); got != (st.value == 1) {
			return &ExpectError{Pos: st.pos, What: "tdo", Want: fmt.Sprint(st.value), Got: fmt.Sprint(1 - st.value)}
		}
	case opExpectPulse:
		n := r.pulses[st.pulse]
		r.pulses[st.pulse] = 0
		if n == 0 {
			return &ExpectError{Pos: st.pos, What: "pulse", Want: st.pulse.String(), Got: "none"}
		}
	case opExpectDR:
		if !equalBits(r.lastDR, st.bits) {
			return &ExpectError{Pos: st.pos, What: "dr", Want: formatBits(st.bits), Got: formatBits(r.lastDR)}
		}
	default:
		return errors.Errorf("unknown statement kind %d", st.kind)
	}
	return nil
}

func equalBits(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// formatBits renders bits in shift order.
func formatBits(bits []bool) string {
	if len(bits) == 0 {
		return "(none)"
	}
	buf := make([]byte, len(bits))
	for i, b := range bits {
		buf[i] = '0'
		if b {
			buf[i] = '1'
		}
	}
	return string(buf)
}
