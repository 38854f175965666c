package vcf

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-polysynth/internal/testutil"
)

const sampleRate = 44100.0

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}

	if _, err := New(math.NaN()); err == nil {
		t.Fatal("expected error for NaN sample rate")
	}

	if _, err := New(sampleRate, WithCutoffPercent(math.Inf(1))); err == nil {
		t.Fatal("expected error for infinite cutoff")
	}

	if _, err := New(sampleRate, WithResonancePercent(math.NaN())); err == nil {
		t.Fatal("expected error for NaN resonance")
	}

	if _, err := New(sampleRate, WithInitialState(math.NaN())); err == nil {
		t.Fatal("expected error for NaN seed")
	}
}

func TestSeededDelayLine(t *testing.T) {
	f, err := New(sampleRate)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	want := State{X1: SeedState, X2: SeedState, Y0: SeedState, Y1: SeedState, Y2: SeedState}
	if got := f.State(); got != want {
		t.Fatalf("State() = %+v, want %+v", got, want)
	}
}

func TestFirstSampleTransient(t *testing.T) {
	f, err := New(sampleRate, WithCutoffPercent(50))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	const x0 = 0.5
	y := f.ProcessSample(x0)

	c := f.Coefficients()
	want := (c.B0B2*x0 + c.B1*SeedState + c.B0B2*SeedState - c.A1*SeedState - c.A2*SeedState) / c.A0
	if y != want {
		t.Fatalf("first sample = %.17g, want %.17g", y, want)
	}

	st := f.State()
	if st.X1 != x0 || st.X2 != SeedState || st.Y1 != y || st.Y2 != SeedState || st.Y0 != y {
		t.Fatalf("unexpected state after one sample: %+v", st)
	}
}

func TestZeroSeedIsSilentOnSilence(t *testing.T) {
	f, err := New(sampleRate, WithInitialState(0), WithCutoffPercent(70))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := 0; i < 64; i++ {
		if y := f.ProcessSample(0); y != 0 {
			t.Fatalf("sample %d = %v, want 0", i, y)
		}
	}
}

func TestCutoffHzMapping(t *testing.T) {
	tests := []struct {
		percent float64
		want    float64
		tol     float64
	}{
		{percent: 100, want: 20000, tol: 1e-9},
		{percent: 90, want: 10000, tol: 1e-3},
		{percent: 50, want: 625, tol: 1e-3},
		{percent: 0, want: 20000.0 / 1024, tol: 1e-4},
	}

	for _, tt := range tests {
		if got := CutoffHz(tt.percent, sampleRate); math.Abs(got-tt.want) > tt.tol {
			t.Errorf("CutoffHz(%v) = %v, want %v", tt.percent, got, tt.want)
		}
	}
}

func TestCutoffHzNyquistGuard(t *testing.T) {
	limit := sampleRate / 2 * 0.99

	for _, p := range []float64{101.5, 110, 200, 1e6} {
		got := CutoffHz(p, sampleRate)
		if got > limit {
			t.Fatalf("CutoffHz(%v) = %v exceeds guard %v", p, got, limit)
		}
		if got != limit {
			t.Fatalf("CutoffHz(%v) = %v, want clamp at %v", p, got, limit)
		}
	}

	if got := CutoffHz(-1e6, sampleRate); got <= 0 {
		t.Fatalf("CutoffHz(-1e6) = %v, want > 0", got)
	}
}

func TestDesignStableAcrossRange(t *testing.T) {
	for p := -50.0; p <= 300; p += 2.5 {
		for _, honor := range []bool{false, true} {
			f, err := New(sampleRate, WithCutoffPercent(p), WithResonancePercent(100), WithResonanceHonored(honor))
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			n := f.Normalized()
			if !n.Stable() {
				t.Fatalf("percent=%v honor=%v: unstable coefficients %+v", p, honor, n)
			}
		}
	}
}

func TestImpulseBoundedAtFullCutoff(t *testing.T) {
	f, err := New(sampleRate, WithCutoffPercent(100))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	in := testutil.Impulse(10000, 0)
	f.ProcessInPlace(in)

	testutil.RequireFinite(t, in)

	for i, v := range in {
		if math.Abs(v) > 10 {
			t.Fatalf("sample %d = %v diverges", i, v)
		}
	}

	if tail := math.Abs(in[len(in)-1]); tail > 1e-9 {
		t.Fatalf("impulse response did not decay: last sample %v", tail)
	}
}

func TestUnityDCGain(t *testing.T) {
	for _, p := range []float64{10, 50, 90, 100} {
		f, err := New(sampleRate, WithCutoffPercent(p))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		n := f.Normalized()
		if math.Abs(n.DCGain()-1) > 1e-9 {
			t.Fatalf("percent=%v: DC gain = %v, want 1", p, n.DCGain())
		}
	}
}

func TestLowpassAttenuatesAboveCutoff(t *testing.T) {
	f, err := New(sampleRate, WithCutoffPercent(50))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	pass := f.MagnitudeDB(100)
	stop := f.MagnitudeDB(10000)

	if math.Abs(pass) > 0.5 {
		t.Fatalf("passband gain at 100 Hz = %v dB, want ~0", pass)
	}
	if stop > -40 {
		t.Fatalf("stopband gain at 10 kHz = %v dB, want < -40", stop)
	}
}

func TestPhaseQuarterTurnAtCutoff(t *testing.T) {
	for _, opts := range [][]Option{
		{WithCutoffPercent(50)},
		{WithCutoffPercent(70), WithResonanceHonored(true), WithResonancePercent(90)},
	} {
		f, err := New(sampleRate, opts...)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		f.ProcessSample(0)

		if got := f.Phase(f.CutoffHz()); math.Abs(got+math.Pi/2) > 1e-9 {
			t.Fatalf("cutoff %v Hz, Q %v: phase = %v, want -pi/2", f.CutoffHz(), f.Q(), got)
		}
		if got := f.Phase(1); got > 0 || got < -0.01 {
			t.Fatalf("phase at 1 Hz = %v, want just below 0", got)
		}
	}
}

func TestResonanceIgnoredByDefault(t *testing.T) {
	f, err := New(sampleRate)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, r := range []float64{0, 20, 75, 100} {
		f.SetResonancePercent(r)
		if f.Q() != FixedQ {
			t.Fatalf("resonance %v: Q = %v, want %v", r, f.Q(), FixedQ)
		}
		if f.ResonancePercent() != r {
			t.Fatalf("ResonancePercent() = %v, want %v", f.ResonancePercent(), r)
		}
	}
}

func TestResonanceHonored(t *testing.T) {
	f, err := New(sampleRate, WithResonanceHonored(true))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	f.SetResonancePercent(20)
	if math.Abs(f.Q()-1) > 1e-12 {
		t.Fatalf("Q at 20%% = %v, want 1", f.Q())
	}

	f.SetResonancePercent(60)
	if math.Abs(f.Q()-2) > 1e-6 {
		t.Fatalf("Q at 60%% = %v, want 2", f.Q())
	}

	f.SetCutoffPercent(70)
	lowQ := ResonanceQ(0)
	f.SetResonancePercent(0)
	f.ProcessSample(0)
	flat := f.MagnitudeDB(f.CutoffHz())

	f.SetResonancePercent(100)
	f.ProcessSample(0)
	peaked := f.MagnitudeDB(f.CutoffHz())

	if lowQ >= 1 || peaked <= flat {
		t.Fatalf("expected resonance to raise gain at cutoff: flat=%v peaked=%v", flat, peaked)
	}
}

func TestNonFiniteSettersIgnored(t *testing.T) {
	f, err := New(sampleRate, WithCutoffPercent(40), WithResonancePercent(10))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	f.SetCutoffPercent(math.NaN())
	f.SetResonancePercent(math.Inf(-1))

	if f.CutoffPercent() != 40 || f.ResonancePercent() != 10 {
		t.Fatalf("non-finite values were applied: cutoff=%v resonance=%v", f.CutoffPercent(), f.ResonancePercent())
	}
}

func TestStateRoundTrip(t *testing.T) {
	f, err := New(sampleRate, WithCutoffPercent(60))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	in := testutil.DeterministicSine(220, sampleRate, 0.8, 256)
	for _, x := range in[:128] {
		f.ProcessSample(x)
	}

	saved := f.State()
	first := make([]float64, 128)
	for i, x := range in[128:] {
		first[i] = f.ProcessSample(x)
	}

	f.SetState(saved)
	second := make([]float64, 128)
	for i, x := range in[128:] {
		second[i] = f.ProcessSample(x)
	}

	testutil.RequireSliceNearlyEqual(t, second, first, 0)
}
