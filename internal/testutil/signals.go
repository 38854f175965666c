package testutil

import "math"

// DeterministicSine returns length samples of amplitude*sin(2*pi*f*n/sr).
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// Impulse returns a unit impulse at pos. An out-of-range pos yields silence.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// Channel extracts one channel of an interleaved float32 buffer.
func Channel(interleaved []float32, channels, ch int) []float64 {
	if channels <= 0 || ch < 0 || ch >= channels {
		return nil
	}

	frames := len(interleaved) / channels
	out := make([]float64, frames)
	for i := range out {
		out[i] = float64(interleaved[i*channels+ch])
	}
	return out
}

// PeakAbs returns the largest absolute sample value.
func PeakAbs(data []float64) float64 {
	peak := 0.0
	for _, v := range data {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}
