package synth

import (
	"math"
	"testing"
)

func TestCutoffSweepZeroRate(t *testing.T) {
	var b ControllerBank
	b.Set(ControllerCutoff, 127)
	b.Set(ControllerLFORate, 0)

	for _, tm := range []float64{0, 0.001, 0.5, 1, 123.456, 1e6} {
		if got := CutoffSweep(&b, tm); got != 50 {
			t.Fatalf("t=%v: cutoff = %v, want 50", tm, got)
		}
	}
}

func TestCutoffSweepRange(t *testing.T) {
	var b ControllerBank
	b.Set(ControllerCutoff, 100)
	b.Set(ControllerLFORate, 30)

	depth := 100 * 100.0 / 127.0
	rate := 50 * 30.0 / 127.0

	lo, hi := math.Inf(1), math.Inf(-1)
	for n := 0; n < 44100; n++ {
		got := CutoffSweep(&b, float64(n)/44100)
		if got < -1e-9 || got > depth+1e-9 {
			t.Fatalf("sample %d: cutoff %v outside [0, %v]", n, got, depth)
		}
		lo = math.Min(lo, got)
		hi = math.Max(hi, got)
	}

	if lo > 0.01 || hi < depth-0.01 {
		t.Fatalf("sweep did not cover range: [%v, %v], depth %v", lo, hi, depth)
	}

	quarter := 1 / (4 * rate)
	if got := CutoffSweep(&b, quarter); math.Abs(got-depth) > 1e-9 {
		t.Fatalf("peak at quarter period = %v, want %v", got, depth)
	}
}

func TestCutoffSweepClosedController(t *testing.T) {
	var b ControllerBank
	b.Set(ControllerLFORate, 127)

	for n := 0; n < 100; n++ {
		if got := CutoffSweep(&b, float64(n)/44100); got != 0 {
			t.Fatalf("sample %d: cutoff = %v, want 0 with controller 1 at 0", n, got)
		}
	}
}
