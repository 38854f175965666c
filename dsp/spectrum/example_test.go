package spectrum_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-polysynth/dsp/spectrum"
)

func ExampleAnalyzer_DominantFrequency() {
	const sr = 44100.0

	x := make([]float64, 8192)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * 440 * float64(i) / sr)
	}

	a, _ := spectrum.NewAnalyzer(8192, sr)
	p, _ := a.DominantFrequency(x, 20, 20000)
	fmt.Printf("%.0f Hz\n", p.FrequencyHz)
	// Output: 440 Hz
}
