package script

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"

	"github.com/OpenTraceLab/OpenTraceTAP/pkg/tap"
)

var parser = participle.MustBuild[scriptFile](
	participle.Lexer(scriptLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.UseLookahead(2),
)

type opKind uint8

const (
	opReset opKind = iota
	opTRST
	opTMS
	opGoto
	opShift
	opIdle
	opScanIR
	opScanDR
	opExpectState
	opExpectIR
	opExpectTDO
	opExpectPulse
	opExpectDR
)

// Pulse names one of the controller's four output pulses.
type Pulse uint8

const (
	PulseCaptureDR Pulse = iota
	PulseShiftDR
	PulseUpdateDR
	PulseUpdateIR
	numPulses
)

var pulseNames = [numPulses]string{"capture_dr", "shift_dr", "update_dr", "update_ir"}

func (p Pulse) String() string {
	if p < numPulses {
		return pulseNames[p]
	}
	return "pulse(" + strconv.Itoa(int(p)) + ")"
}

// ParsePulse resolves a pulse name such as "update_ir" or "Update-IR".
func ParsePulse(name string) (Pulse, error) {
	key := strings.ToLower(strings.ReplaceAll(name, "-", "_"))
	for i, n := range pulseNames {
		if n == key {
			return Pulse(i), nil
		}
	}
	return 0, errors.Errorf("unknown pulse %q", name)
}

type statement struct {
	pos  lexer.Position
	text string
	kind opKind

	bits  []bool
	n     int
	state tap.State
	value uint64
	pulse Pulse
}

// Program is a parsed and checked stimulus script.
type Program struct {
	Name       string
	statements []statement
}

// Len returns the number of statements.
func (p *Program) Len() int {
	return len(p.statements)
}

// Parse reads a script from r. name is used in error positions.
func Parse(name string, r io.Reader) (*Program, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "script: read %s", name)
	}
	return ParseString(name, string(src))
}

// ParseFile parses the script at path.
func ParseFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "script")
	}
	defer f.Close()
	return Parse(path, f)
}

// ParseString parses src.
func ParseString(name, src string) (*Program, error) {
	// Every statement must be terminated by a newline, including the last.
	ast, err := parser.ParseString(name, src+"\n")
	if err != nil {
		return nil, errors.Wrap(err, "script: parse")
	}

	lines := strings.Split(src, "\n")
	prog := &Program{Name: name}
	for _, node := range ast.Statements {
		st, err := compile(node)
		if err != nil {
			return nil, errors.Wrapf(err, "script: %s", node.Pos)
		}
		if i := node.Pos.Line - 1; i >= 0 && i < len(lines) {
			st.text = strings.TrimSpace(stripComment(lines[i]))
		}
		prog.statements = append(prog.statements, st)
	}
	return prog, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

func compile(node *statementNode) (statement, error) {
	st := statement{pos: node.Pos}
	var err error
	switch {
	case node.Reset:
		st.kind = opReset
	case node.TRST:
		st.kind = opTRST
	case node.TMS != nil:
		st.kind = opTMS
		st.bits, err = node.TMS.bits()
	case node.Goto != "":
		st.kind = opGoto
		st.state, err = tap.ParseState(node.Goto)
	case node.Shift != nil:
		st.kind = opShift
		st.bits, err = node.Shift.bits()
	case node.Idle != nil:
		st.kind = opIdle
		st.n = *node.Idle
	case node.ScanIR != nil:
		st.kind = opScanIR
		st.bits, err = node.ScanIR.bits()
	case node.ScanDR != nil:
		st.kind = opScanDR
		st.bits, err = node.ScanDR.bits()
	case node.Expect != nil:
		err = compileExpect(node.Expect, &st)
	default:
		err = errors.New("empty statement")
	}
	return st, err
}

func compileExpect(node *expectNode, st *statement) error {
	var err error
	switch {
	case node.State != "":
		st.kind = opExpectState
		st.state, err = tap.ParseState(node.State)
	case node.IR != nil:
		st.kind = opExpectIR
		st.value, err = parseValue(*node.IR)
	case node.TDO != nil:
		st.kind = opExpectTDO
		if *node.TDO != "0" && *node.TDO != "1" {
			return errors.Errorf("tdo must be 0 or 1, got %s", *node.TDO)
		}
		st.value = uint64((*node.TDO)[0] - '0')
	case node.Pulse != "":
		st.kind = opExpectPulse
		st.pulse, err = ParsePulse(node.Pulse)
	case node.DR != nil:
		st.kind = opExpectDR
		st.bits, err = node.DR.bits()
	}
	return err
}

// parseValue reads a hex literal or a binary string written MSB first.
func parseValue(s string) (uint64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		return v, errors.Wrapf(err, "bad value %s", s)
	}
	v, err := strconv.ParseUint(s, 2, 64)
	return v, errors.Wrapf(err, "bad binary value %s", s)
}

func (b *bitsNode) bits() ([]bool, error) {
	var out []bool
	for _, g := range b.Groups {
		for _, c := range g {
			switch c {
			case '0':
				out = append(out, false)
			case '1':
				out = append(out, true)
			default:
				return nil, errors.Errorf("bit %q is not 0 or 1", c)
			}
		}
	}
	return out, nil
}
