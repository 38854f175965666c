package spectrum

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-polysynth/internal/testutil"
)

func TestNewAnalyzerValidation(t *testing.T) {
	for _, size := range []int{0, 8, 100, 1000} {
		if _, err := NewAnalyzer(size, 44100); err == nil {
			t.Errorf("size %d: expected error", size)
		}
	}

	if _, err := NewAnalyzer(1024, 0); err == nil {
		t.Error("zero sample rate: expected error")
	}
}

func TestAnalyzerShortInput(t *testing.T) {
	a, err := NewAnalyzer(1024, 44100)
	if err != nil {
		t.Fatal(err)
	}

	_, err = a.Magnitudes(make([]float64, 512))
	if !errors.Is(err, ErrShortInput) {
		t.Fatalf("err = %v, want ErrShortInput", err)
	}
}

func TestAnalyzerBinCenteredSine(t *testing.T) {
	const size, sr = 4096, 44100.0

	a, err := NewAnalyzer(size, sr)
	if err != nil {
		t.Fatal(err)
	}

	freq := 100 * a.BinHz()
	mag, err := a.Magnitudes(testutil.DeterministicSine(freq, sr, 0.5, size))
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireFinite(t, mag)

	if math.Abs(mag[100]-0.5) > 0.01 {
		t.Fatalf("peak bin = %v, want 0.5", mag[100])
	}
	if mag[300] > 1e-3 {
		t.Fatalf("leakage at bin 300 = %v", mag[300])
	}
}

func TestDominantFrequency(t *testing.T) {
	const sr = 44100.0

	a, err := NewAnalyzer(8192, sr)
	if err != nil {
		t.Fatal(err)
	}

	for _, freq := range []float64{261.63, 440, 1234.5} {
		x := testutil.DeterministicSine(freq, sr, 1, 10000)
		x2 := testutil.DeterministicSine(3*freq, sr, 0.2, 10000)
		for i := range x {
			x[i] += x2[i]
		}

		p, err := a.DominantFrequency(x, 20, 5000)
		if err != nil {
			t.Fatal(err)
		}

		if math.Abs(p.FrequencyHz-freq) > a.BinHz()/4 {
			t.Errorf("freq %v: got %v", freq, p.FrequencyHz)
		}
	}
}

func TestDominantFrequencyRange(t *testing.T) {
	a, err := NewAnalyzer(1024, 44100)
	if err != nil {
		t.Fatal(err)
	}

	x := make([]float64, 1024)
	if _, err := a.DominantFrequency(x, 500, 100); err == nil {
		t.Fatal("expected error for empty range")
	}
}
