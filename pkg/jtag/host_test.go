package jtag

import (
	"errors"
	"testing"

	"github.com/OpenTraceLab/OpenTraceTAP/pkg/tap"
)

func boolsEqual(a, b []bool) bool {
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

func TestHostScanIRSequences(t *testing.T) {
	sim := NewSimAdapter(AdapterInfo{Name: "sim"})
	host := NewHost(sim)

	tdi := []bool{true, false, true, true}
	tdo, err := host.ScanIR(tdi)
	if err != nil {
		t.Fatalf("ScanIR returned error: %v", err)
	}
	if !boolsEqual(tdo, tdi) {
		t.Fatalf("echo adapter returned %v, want %v", tdo, tdi)
	}
	if host.State() != tap.StateRunTestIdle {
		t.Fatalf("state = %s, want %s", host.State(), tap.StateRunTestIdle)
	}

	shifts := sim.Shifts()
	if len(shifts) != 3 {
		t.Fatalf("recorded %d shifts, want 3", len(shifts))
	}
	tests := []struct {
		region ShiftRegion
		tms    []bool
	}{
		{ShiftRegionDR, []bool{false, true, true, false, false}},
		{ShiftRegionIR, []bool{false, false, false, true}},
		{ShiftRegionIR, []bool{true, false}},
	}
	for i, tt := range tests {
		if shifts[i].Region != tt.region {
			t.Fatalf("shift %d region = %s, want %s", i, shifts[i].Region, tt.region)
		}
		if !boolsEqual(shifts[i].TMSBits(), tt.tms) {
			t.Fatalf("shift %d tms = %v, want %v", i, shifts[i].TMSBits(), tt.tms)
		}
	}
	if !boolsEqual(shifts[1].TDIBits(), tdi) {
		t.Fatalf("shift tdi = %v, want %v", shifts[1].TDIBits(), tdi)
	}
}

func TestHostScanDRFromIdle(t *testing.T) {
	sim := NewSimAdapter(AdapterInfo{})
	host := NewHost(sim)
	if err := host.GoTo(tap.StateRunTestIdle); err != nil {
		t.Fatalf("GoTo returned error: %v", err)
	}
	if _, err := host.ScanDR([]bool{true, true}); err != nil {
		t.Fatalf("ScanDR returned error: %v", err)
	}
	shifts := sim.Shifts()
	// Run-Test/Idle -> Select-DR -> Capture-DR -> Shift-DR
	if got := shifts[1].TMSBits(); !boolsEqual(got, []bool{true, false, false}) {
		t.Fatalf("goto Shift-DR tms = %v", got)
	}
	if last := sim.LastShift(); last.Region != ShiftRegionDR {
		t.Fatalf("final region = %s, want DR", last.Region)
	}
}

func TestHostGoToResetUsesTRST(t *testing.T) {
	sim := NewSimAdapter(AdapterInfo{})
	host := NewHost(sim)

	if err := host.GoTo(tap.StateTestLogicReset); err != nil {
		t.Fatalf("GoTo reset returned error: %v", err)
	}
	if soft, _ := sim.ResetCounts(); soft != 0 {
		t.Fatalf("already in reset, got %d resets", soft)
	}

	if err := host.GoTo(tap.StatePauseDR); err != nil {
		t.Fatalf("GoTo Pause-DR returned error: %v", err)
	}
	if err := host.GoTo(tap.StateTestLogicReset); err != nil {
		t.Fatalf("GoTo reset returned error: %v", err)
	}
	soft, hard := sim.ResetCounts()
	if soft != 1 || hard != 0 {
		t.Fatalf("ResetCounts = %d/%d, want 1/0", soft, hard)
	}
	if host.State() != tap.StateTestLogicReset {
		t.Fatalf("state = %s", host.State())
	}
}

type failingAdapter struct{ *SimAdapter }

func (failingAdapter) ResetTAP(bool) error { return ErrNotImplemented }

func TestHostResetErrors(t *testing.T) {
	host := NewHost(failingAdapter{NewSimAdapter(AdapterInfo{})})
	if err := host.Reset(true); !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("Reset error = %v, want ErrNotImplemented", err)
	}
	if _, err := host.ScanDR(nil); !errors.Is(err, ErrEmptyScan) {
		t.Fatalf("ScanDR(nil) error = %v, want ErrEmptyScan", err)
	}
	if _, err := host.Clock([]bool{true}, []bool{true, false}); err == nil {
		t.Fatalf("expected error for mismatched tdi length")
	}
}

func TestHostKeepsStateWhenAdapterFails(t *testing.T) {
	sim := NewSimAdapter(AdapterInfo{})
	host := NewHost(sim)
	if err := host.GoTo(tap.StateRunTestIdle); err != nil {
		t.Fatal(err)
	}

	shiftErr := errors.New("cable unplugged")
	sim.OnShift = func(ShiftRegion, []byte, []byte, int) ([]byte, error) {
		return nil, shiftErr
	}
	if _, err := host.Clock([]bool{true, false}, nil); !errors.Is(err, shiftErr) {
		t.Fatalf("Clock error = %v, want %v", err, shiftErr)
	}
	if err := host.GoTo(tap.StateShiftIR); !errors.Is(err, shiftErr) {
		t.Fatalf("GoTo error = %v, want %v", err, shiftErr)
	}
	if host.State() != tap.StateRunTestIdle {
		t.Fatalf("state = %s after failed shifts, want %s", host.State(), tap.StateRunTestIdle)
	}

	sim.OnShift = nil
	if err := host.GoTo(tap.StateShiftIR); err != nil {
		t.Fatalf("GoTo after recovery returned error: %v", err)
	}
	if got := sim.LastShift().TMSBits(); !boolsEqual(got, []bool{true, true, false, false}) {
		t.Fatalf("goto Shift-IR tms = %v", got)
	}
}
