package tap

import (
	"errors"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("Validate changed a valid default config: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{IRWidth: 0, SyncStages: 2, TCKHalfPeriod: 4}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidWidth) {
		t.Fatalf("IRWidth 0: error = %v, want ErrInvalidWidth", err)
	}

	cfg = Config{IRWidth: 8, SyncStages: 0, TCKHalfPeriod: 0}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SyncStages != 1 || cfg.TCKHalfPeriod != 2 {
		t.Fatalf("clamped config = %+v, want 1 stage, half period 2", cfg)
	}

	cfg = Config{IRWidth: 8, SyncStages: 3, TCKHalfPeriod: 3}
	if err := cfg.Validate(); !errors.Is(err, ErrClockTooFast) {
		t.Fatalf("half period == stages: error = %v, want ErrClockTooFast", err)
	}
}
