package spectrum

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// hann returns a symmetric Hann window of length n.
func hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}

	den := float64(n - 1)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/den)
	}

	return w
}

// coherentGain is the mean of the window coefficients.
func coherentGain(w []float64) float64 {
	if len(w) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range w {
		sum += v
	}

	return sum / float64(len(w))
}

// applyWindow multiplies buf by w in place.
func applyWindow(buf, w []float64) {
	vecmath.MulBlockInPlace(buf, w)
}
