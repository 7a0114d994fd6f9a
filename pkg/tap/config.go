package tap

import (
	"errors"
	"fmt"
)

// Config controls how a Device is built and how fast a host may clock it.
type Config struct {
	// Instruction register width in bits (1..MaxIRWidth).
	IRWidth int `json:"ir_width"`

	// Number of domain ticks each raw pin is delayed by the synchronizer.
	SyncStages int `json:"sync_stages"`

	// Domain ticks per TCK half period used by host-side drivers. Must exceed
	// SyncStages so TDO settles before the host samples it.
	TCKHalfPeriod int `json:"tck_half_period"`
}

// DefaultConfig returns a Config with a 4-bit IR, a two-stage synchronizer and
// a TCK period of eight domain ticks.
func DefaultConfig() Config {
	return Config{
		IRWidth:       4,
		SyncStages:    2,
		TCKHalfPeriod: 4,
	}
}

// ErrClockTooFast is returned when TCK would toggle faster than the
// synchronizer can deliver it.
var ErrClockTooFast = errors.New("tap: TCK half period must exceed synchronizer latency")

// Validate checks the configuration, clamping values that have an obvious
// minimum.
func (c *Config) Validate() error {
	if c.IRWidth < 1 || c.IRWidth > MaxIRWidth {
		return fmt.Errorf("%w: %d", ErrInvalidWidth, c.IRWidth)
	}
	if c.SyncStages < 1 {
		c.SyncStages = 1
	}
	if c.TCKHalfPeriod < 2 {
		c.TCKHalfPeriod = 2
	}
	if c.TCKHalfPeriod <= c.SyncStages {
		return fmt.Errorf("%w: half period %d, %d sync stages", ErrClockTooFast, c.TCKHalfPeriod, c.SyncStages)
	}
	return nil
}
