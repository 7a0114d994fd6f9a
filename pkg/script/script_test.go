package script

import (
	"context"
	"strings"
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceTAP/pkg/jtag"
	"github.com/OpenTraceLab/OpenTraceTAP/pkg/tap"
)

func newDevice(t *testing.T) *tap.Device {
	t.Helper()
	dev, err := tap.NewDevice(tap.DefaultConfig())
	require.NoError(t, err)
	return dev
}

func TestParseStatements(t *testing.T) {
	prog, err := ParseString("t.tap", `
# comment only
reset
trst            # with a trailing comment
tms 0 1 1 0 0
goto Shift-IR
shift 0101
idle 10
scanir 1 1 0 1
scandr 0000 1
expect state ShiftIR
expect ir 1101
expect ir 0xD
expect tdo 1
expect pulse update_ir
expect dr 1 0 0 0`)
	require.NoError(t, err)
	require.Equal(t, 14, prog.Len())

	st := prog.statements
	assert.Equal(t, opReset, st[0].kind)
	assert.Equal(t, 3, st[0].pos.Line)
	assert.Equal(t, "trst", st[1].text)
	assert.Equal(t, []bool{false, true, true, false, false}, st[2].bits)
	assert.Equal(t, tap.StateShiftIR, st[3].state)
	assert.Equal(t, []bool{false, true, false, true}, st[4].bits)
	assert.Equal(t, 10, st[5].n)
	assert.Len(t, st[7].bits, 5)
	assert.Equal(t, uint64(0b1101), st[9].value)
	assert.Equal(t, uint64(0xD), st[10].value)
	assert.Equal(t, uint64(1), st[11].value)
	assert.Equal(t, PulseUpdateIR, st[12].pulse)
	assert.Equal(t, opExpectDR, st[13].kind)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown command", "frobnicate 1", "parse"},
		{"bad bit", "shift 0 1 2", "bit"},
		{"bad state", "goto Nowhere", "unknown state"},
		{"bad pulse", "expect pulse capture_ir", "unknown pulse"},
		{"bad tdo", "expect tdo 2", "tdo must be"},
		{"missing bits", "scanir", "parse"},
		{"two statements", "reset trst", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString("bad.tap", tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunInstructionAndBypassScan(t *testing.T) {
	prog, err := ParseString("scan.tap", `
reset
expect state reset
scanir 1 1 0 1
expect state RunTestIdle
expect ir 1011
expect pulse update_ir
scandr 1 0 1 1 0
expect dr 0 1 0 1 1
expect pulse capture_dr
expect pulse shift_dr
expect pulse update_dr
trst
expect state TestLogicReset
expect ir 0
`)
	require.NoError(t, err)

	dev := newDevice(t)
	require.NoError(t, Run(context.Background(), prog, dev))
	assert.Equal(t, tap.StateTestLogicReset, dev.Controller().State())
}

func TestRunShiftAndTDO(t *testing.T) {
	prog, err := ParseString("tdo.tap", `
goto ShiftIR
shift 1 0 1 0
expect ir 0101
expect state ShiftIR
idle 8
expect tdo 0
tms 0
expect tdo 1
expect ir 0010
tms 1 1 0
expect pulse update_ir
expect state RunTestIdle
`)
	require.NoError(t, err)
	require.NoError(t, Run(context.Background(), prog, newDevice(t)))
}

func TestRunIDCode(t *testing.T) {
	prog, err := ParseString("id.tap", `
scanir 0 1 1 1
scandr 00000000 00000000 00000000 00000000
`)
	require.NoError(t, err)

	dev := newDevice(t)
	r := NewRunner(dev)
	r.Pins().Select(0b1110, jtag.NewIDCodeRegister(0x4BA00477))

	var seen []string
	r.OnStatement = func(_ lexer.Position, text string) { seen = append(seen, text) }
	require.NoError(t, r.Run(context.Background(), prog))

	assert.Equal(t, uint64(0x4BA00477), jtag.BitsToUint64(r.LastDR()))
	assert.Equal(t, []string{"scanir 0 1 1 1", "scandr 00000000 00000000 00000000 00000000"}, seen)
	assert.Nil(t, dev.Controller().SetTickHook(nil), "tick hook must be restored")
}

func TestRunExpectFailure(t *testing.T) {
	prog, err := ParseString("fail.tap", "reset\nscanir 1 0 0 0\nexpect ir 0010\n")
	require.NoError(t, err)

	err = Run(context.Background(), prog, newDevice(t))
	require.Error(t, err)
	expectErr, ok := errors.Cause(err).(*ExpectError)
	require.True(t, ok, "got %T", err)
	assert.Equal(t, 3, expectErr.Pos.Line)
	assert.Equal(t, "0001", expectErr.Got)
	assert.Equal(t, "0010", expectErr.Want)
}

func TestRunPulseConsumed(t *testing.T) {
	prog, err := ParseString("pulse.tap", "scanir 1 0 0 0\nexpect pulse update_ir\nexpect pulse update_ir\n")
	require.NoError(t, err)
	err = Run(context.Background(), prog, newDevice(t))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "pulse.tap:3"), err.Error())
}

func TestRunCancelled(t *testing.T) {
	prog, err := ParseString("idle.tap", "idle 1\nidle 1\n")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = Run(ctx, prog, newDevice(t))
	assert.Equal(t, context.Canceled, errors.Cause(err))
}
