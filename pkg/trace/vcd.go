// Package trace records controller activity as a Value Change Dump that
// waveform viewers such as GTKWave can open.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceTAP/pkg/tap"
)

type variable struct {
	name  string
	width int
	id    string
	value func(in tap.Inputs, out tap.Outputs) uint64
}

// VCD writes one time step per domain tick. Only ticks that change a value
// produce output.
type VCD struct {
	w      *bufio.Writer
	vars   []variable
	last   []uint64
	ticks  uint64
	primed bool
	err    error
}

func bit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// NewVCD writes the header to w. irWidth sets the width of the ir vector.
func NewVCD(w io.Writer, irWidth int) (*VCD, error) {
	v := &VCD{w: bufio.NewWriter(w)}
	v.vars = []variable{
		{name: "tck", width: 1, value: func(in tap.Inputs, _ tap.Outputs) uint64 { return bit(in.TCK) }},
		{name: "tms", width: 1, value: func(in tap.Inputs, _ tap.Outputs) uint64 { return bit(in.TMS) }},
		{name: "tdi", width: 1, value: func(in tap.Inputs, _ tap.Outputs) uint64 { return bit(in.TDI) }},
		{name: "trst_n", width: 1, value: func(in tap.Inputs, _ tap.Outputs) uint64 { return bit(in.TRSTn) }},
		{name: "reset", width: 1, value: func(in tap.Inputs, _ tap.Outputs) uint64 { return bit(in.Reset) }},
		{name: "tdo", width: 1, value: func(_ tap.Inputs, out tap.Outputs) uint64 { return bit(out.TDO) }},
		{name: "capture_dr", width: 1, value: func(_ tap.Inputs, out tap.Outputs) uint64 { return bit(out.CaptureDR) }},
		{name: "shift_dr", width: 1, value: func(_ tap.Inputs, out tap.Outputs) uint64 { return bit(out.ShiftDR) }},
		{name: "update_dr", width: 1, value: func(_ tap.Inputs, out tap.Outputs) uint64 { return bit(out.UpdateDR) }},
		{name: "update_ir", width: 1, value: func(_ tap.Inputs, out tap.Outputs) uint64 { return bit(out.UpdateIR) }},
		{name: "state", width: 4, value: func(_ tap.Inputs, out tap.Outputs) uint64 { return uint64(out.State) }},
		{name: "ir", width: irWidth, value: func(_ tap.Inputs, out tap.Outputs) uint64 { return out.IR }},
	}
	for i := range v.vars {
		// Identifiers are printable ASCII starting at '!'.
		v.vars[i].id = string(rune('!' + i))
	}
	v.last = make([]uint64, len(v.vars))

	v.printf("$version OpenTraceTAP $end\n")
	v.printf("$comment one time unit per controller tick $end\n")
	states := make([]string, tap.NumStates)
	for i := range states {
		states[i] = strconv.Itoa(i) + "=" + tap.State(i).String()
	}
	v.printf("$comment state: %s $end\n", strings.Join(states, " "))
	v.printf("$timescale 1ns $end\n")
	v.printf("$scope module tap $end\n")
	for _, vr := range v.vars {
		kind := "wire"
		if vr.width > 1 {
			kind = "reg"
		}
		v.printf("$var %s %d %s %s $end\n", kind, vr.width, vr.id, vr.name)
	}
	v.printf("$upscope $end\n$enddefinitions $end\n")
	return v, v.err
}

// Observe records one tick. Its signature matches tap.TickHook.
func (v *VCD) Observe(in tap.Inputs, out tap.Outputs) {
	t := v.ticks
	v.ticks++
	if v.err != nil {
		return
	}

	stamped := false
	for i, vr := range v.vars {
		val := vr.value(in, out)
		if v.primed && val == v.last[i] {
			continue
		}
		v.last[i] = val
		if !stamped {
			v.printf("#%d\n", t)
			if !v.primed {
				v.printf("$dumpvars\n")
			}
			stamped = true
		}
		if vr.width == 1 {
			v.printf("%d%s\n", val, vr.id)
		} else {
			v.printf("b%s %s\n", strconv.FormatUint(val, 2), vr.id)
		}
	}
	if !v.primed {
		v.printf("$end\n")
		v.primed = true
	}
}

// Ticks returns the number of ticks observed.
func (v *VCD) Ticks() uint64 {
	return v.ticks
}

// Close stamps the final time and flushes buffered output. It does not close
// the underlying writer.
func (v *VCD) Close() error {
	if v.err == nil {
		v.printf("#%d\n", v.ticks)
	}
	if err := v.w.Flush(); err != nil && v.err == nil {
		v.err = err
	}
	return v.err
}

func (v *VCD) printf(format string, args ...interface{}) {
	if v.err != nil {
		return
	}
	_, v.err = fmt.Fprintf(v.w, format, args...)
}
