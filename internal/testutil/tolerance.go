package testutil

import (
	"fmt"
	"math"
	"testing"

	"github.com/cwbudde/algo-polysynth/dsp/core"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if !core.IsFinite(v) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireChannelsEqual fails t unless every frame of an interleaved buffer
// carries the same value on all channels.
func RequireChannelsEqual(t *testing.T, interleaved []float32, channels int) {
	t.Helper()
	if channels <= 0 || len(interleaved)%channels != 0 {
		t.Fatalf("buffer of %d samples is not a whole number of %d-channel frames", len(interleaved), channels)
	}
	for i := 0; i < len(interleaved); i += channels {
		for c := 1; c < channels; c++ {
			if interleaved[i+c] != interleaved[i] {
				t.Fatalf("frame %d: channel %d = %v, channel 0 = %v", i/channels, c, interleaved[i+c], interleaved[i])
			}
		}
	}
}

// MaxAbsDiff returns the maximum absolute difference between two slices.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	maxDiff := 0.0
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff, nil
}
