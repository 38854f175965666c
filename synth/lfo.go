package synth

import "math"

const (
	cutoffRangePercent = 100.0
	maxLFORateHz       = 50.0
)

// CutoffSweep returns the filter cutoff percentage at time t (seconds) for
// the given controller bank. Controller 1 sets the sweep depth
// (0..100 %) and controller 2 the rate (0..50 Hz); the sweep is a unipolar
// sine between 0 and the depth.
func CutoffSweep(bank *ControllerBank, t float64) float64 {
	depth := cutoffRangePercent * bank.Get(ControllerCutoff)
	rate := maxLFORateHz * bank.Get(ControllerLFORate)

	half := depth / 2

	return math.Sin(2*math.Pi*rate*t)*half + half
}

// resonancePercent maps controller 3 to 0..100 %.
func resonancePercent(bank *ControllerBank) float64 {
	return 100 * bank.Get(ControllerResonance)
}
