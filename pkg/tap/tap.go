package tap

import (
	"errors"
	"fmt"
	"strings"
)

// State represents one of the 16 defined IEEE 1149.1 TAP controller states.
type State uint8

const (
	StateTestLogicReset State = iota
	StateRunTestIdle
	StateSelectDRScan
	StateCaptureDR
	StateShiftDR
	StateExit1DR
	StatePauseDR
	StateExit2DR
	StateUpdateDR
	StateSelectIRScan
	StateCaptureIR
	StateShiftIR
	StateExit1IR
	StatePauseIR
	StateExit2IR
	StateUpdateIR

	// NumStates is the number of valid TAP states.
	NumStates = int(StateUpdateIR) + 1
)

var stateNames = [NumStates]string{
	StateTestLogicReset: "TestLogicReset",
	StateRunTestIdle:    "RunTestIdle",
	StateSelectDRScan:   "SelectDRScan",
	StateCaptureDR:      "CaptureDR",
	StateShiftDR:        "ShiftDR",
	StateExit1DR:        "Exit1DR",
	StatePauseDR:        "PauseDR",
	StateExit2DR:        "Exit2DR",
	StateUpdateDR:       "UpdateDR",
	StateSelectIRScan:   "SelectIRScan",
	StateCaptureIR:      "CaptureIR",
	StateShiftIR:        "ShiftIR",
	StateExit1IR:        "Exit1IR",
	StatePauseIR:        "PauseIR",
	StateExit2IR:        "Exit2IR",
	StateUpdateIR:       "UpdateIR",
}

// Short aliases accepted by ParseState in addition to the full names.
var stateAliases = map[string]State{
	"reset": StateTestLogicReset,
	"tlr":   StateTestLogicReset,
	"idle":  StateRunTestIdle,
	"rti":   StateRunTestIdle,
}

func (s State) String() string {
	if s.Valid() {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}

// Valid reports whether s is one of the 16 TAP states.
func (s State) Valid() bool {
	return int(s) < NumStates
}

// ErrUnknownState is returned by ParseState for names that match no state.
var ErrUnknownState = errors.New("tap: unknown state")

// ParseState resolves a state name case-insensitively. Underscores and dashes
// are ignored, so "shift_ir", "Shift-IR" and "ShiftIR" are equivalent.
func ParseState(name string) (State, error) {
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(name))
	if s, ok := stateAliases[key]; ok {
		return s, nil
	}
	for i, n := range stateNames {
		if strings.ToLower(n) == key {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownState, name)
}

// NextState returns the state the controller moves to when TCK rises with the
// given TMS level. Values outside the enumeration fall back to
// Test-Logic-Reset regardless of TMS.
func NextState(current State, tms bool) State {
	switch current {
	case StateTestLogicReset:
		if tms {
			return StateTestLogicReset
		}
		return StateRunTestIdle
	case StateRunTestIdle:
		if tms {
			return StateSelectDRScan
		}
		return StateRunTestIdle
	case StateSelectDRScan:
		if tms {
			return StateSelectIRScan
		}
		return StateCaptureDR
	case StateCaptureDR, StateShiftDR:
		if tms {
			return StateExit1DR
		}
		return StateShiftDR
	case StateExit1DR:
		if tms {
			return StateUpdateDR
		}
		return StatePauseDR
	case StatePauseDR:
		if tms {
			return StateExit2DR
		}
		return StatePauseDR
	case StateExit2DR:
		if tms {
			return StateUpdateDR
		}
		return StateShiftDR
	case StateUpdateDR:
		return StateRunTestIdle
	case StateSelectIRScan:
		if tms {
			return StateRunTestIdle
		}
		return StateCaptureIR
	case StateCaptureIR, StateShiftIR:
		if tms {
			return StateExit1IR
		}
		return StateShiftIR
	case StateExit1IR:
		if tms {
			return StateUpdateIR
		}
		return StatePauseIR
	case StatePauseIR:
		if tms {
			return StateExit2IR
		}
		return StatePauseIR
	case StateExit2IR:
		if tms {
			return StateUpdateIR
		}
		return StateShiftIR
	case StateUpdateIR:
		if tms {
			return StateSelectDRScan
		}
		return StateRunTestIdle
	default:
		return StateTestLogicReset
	}
}

// Sequence captures the TMS drive pattern and the sequence of states that result
// from applying that pattern to the TAP controller.
type Sequence struct {
	TMS    []bool
	States []State
}

// StateMachine tracks the TAP controller state from the host side. It does not
// perform any I/O; callers mirror every TCK cycle they drive with Clock so the
// tracked state stays in step with the target.
type StateMachine struct {
	state State
}

// NewStateMachine creates a TAP state machine initialized to Test-Logic-Reset.
func NewStateMachine() *StateMachine {
	return &StateMachine{state: StateTestLogicReset}
}

// State reports the current TAP state tracked by the machine.
func (m *StateMachine) State() State {
	return m.state
}

// Clock advances the machine one TCK cycle with the provided TMS bit and
// returns the new state.
func (m *StateMachine) Clock(tms bool) State {
	m.state = NextState(m.state, tms)
	return m.state
}

// Reset records that the target was forced into Test-Logic-Reset by TRST or a
// controller reset. No TMS pattern leads back to Test-Logic-Reset.
func (m *StateMachine) Reset() {
	m.state = StateTestLogicReset
}

// GoTo computes the minimal sequence of TMS values needed to reach the target
// state from the current state. It updates the machine as a side effect and
// returns the generated sequence.
func (m *StateMachine) GoTo(target State) (Sequence, error) {
	path, err := Path(m.state, target)
	if err != nil {
		return Sequence{}, err
	}
	for _, bit := range path.TMS {
		m.Clock(bit)
	}
	return path, nil
}

// ErrNoPath is returned when the target state cannot be reached by TMS alone.
var ErrNoPath = errors.New("tap: no TMS path")

// Path uses BFS across the TAP state diagram to find the shortest set of
// transitions between two states.
func Path(from, to State) (Sequence, error) {
	if !from.Valid() {
		return Sequence{}, fmt.Errorf("tap: invalid start state %d", from)
	}
	if !to.Valid() {
		return Sequence{}, fmt.Errorf("tap: invalid target state %d", to)
	}
	if from == to {
		return Sequence{States: []State{from}}, nil
	}

	type node struct {
		state  State
		tms    []bool
		states []State
	}

	queue := []node{{state: from, states: []State{from}}}
	var visited [NumStates]bool
	visited[from] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, bit := range [2]bool{false, true} {
			next := NextState(current.state, bit)
			if visited[next] {
				continue
			}
			visited[next] = true

			tms := append(append([]bool{}, current.tms...), bit)
			states := append(append([]State{}, current.states...), next)
			if next == to {
				return Sequence{TMS: tms, States: states}, nil
			}
			queue = append(queue, node{state: next, tms: tms, states: states})
		}
	}

	return Sequence{}, fmt.Errorf("%w from %s to %s", ErrNoPath, from, to)
}

// IsIRPath reports whether s belongs to the instruction register column of the
// state diagram.
func IsIRPath(s State) bool {
	return s >= StateSelectIRScan && s <= StateUpdateIR
}
