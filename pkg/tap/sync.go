package tap

import "fmt"

// Synchronizer models the register chain that brings the raw JTAG pins into
// the controller's clock domain. Every pin leaves it exactly Stages() ticks
// after it went in. The chain powers up, and resets, to all-low, so TRSTn
// reads asserted until the first real sample arrives.
type Synchronizer struct {
	stages []Signals
}

// NewSynchronizer creates a synchronizer with the given number of stages.
func NewSynchronizer(stages int) (*Synchronizer, error) {
	if stages < 1 {
		return nil, fmt.Errorf("tap: synchronizer needs at least one stage, got %d", stages)
	}
	return &Synchronizer{stages: make([]Signals, stages)}, nil
}

// Sample clocks raw into the first stage and returns what falls out of the
// last one.
func (s *Synchronizer) Sample(raw Signals) Signals {
	last := len(s.stages) - 1
	out := s.stages[last]
	copy(s.stages[1:], s.stages[:last])
	s.stages[0] = raw
	return out
}

// Stages returns the synchronizer latency in domain ticks.
func (s *Synchronizer) Stages() int {
	return len(s.stages)
}

// Reset clears every stage.
func (s *Synchronizer) Reset() {
	for i := range s.stages {
		s.stages[i] = Signals{}
	}
}
