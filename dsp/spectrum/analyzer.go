package spectrum

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-polysynth/dsp/core"
)

// ErrShortInput is returned when fewer samples than the FFT size are given.
var ErrShortInput = errors.New("spectrum: input shorter than fft size")

// Peak is a located spectral maximum.
type Peak struct {
	FrequencyHz float64
	Bin         int
	Magnitude   float64 // window-compensated peak amplitude
}

// Analyzer computes Hann-windowed magnitude spectra of a fixed size.
//
// An Analyzer reuses its buffers and is not safe for concurrent use.
type Analyzer struct {
	size       int
	sampleRate float64

	plan   *algofft.Plan[complex128]
	window []float64
	gain   float64

	frame []float64
	in    []complex128
	out   []complex128
	re    []float64
	im    []float64
	mag   []float64
}

// NewAnalyzer returns an analyzer for size-point FFTs. size must be a power
// of two >= 16.
func NewAnalyzer(size int, sampleRate float64) (*Analyzer, error) {
	if size < 16 || size&(size-1) != 0 {
		return nil, fmt.Errorf("spectrum: fft size must be a power of two >= 16: %d", size)
	}

	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("spectrum: sample rate must be > 0 and finite: %f", sampleRate)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectrum: fft plan: %w", err)
	}

	w := hann(size)
	bins := size/2 + 1

	return &Analyzer{
		size:       size,
		sampleRate: sampleRate,
		plan:       plan,
		window:     w,
		gain:       coherentGain(w),
		frame:      make([]float64, size),
		in:         make([]complex128, size),
		out:        make([]complex128, size),
		re:         make([]float64, bins),
		im:         make([]float64, bins),
		mag:        make([]float64, bins),
	}, nil
}

// Size returns the FFT length.
func (a *Analyzer) Size() int { return a.size }

// BinHz returns the frequency spacing of adjacent bins.
func (a *Analyzer) BinHz() float64 { return a.sampleRate / float64(a.size) }

// Magnitudes analyzes the last Size() samples of x and returns the
// single-sided amplitude spectrum (bins 0..Size/2). A full-scale sine
// centered on a bin reads close to 1. The returned slice is reused by the
// next call.
func (a *Analyzer) Magnitudes(x []float64) ([]float64, error) {
	if len(x) < a.size {
		return nil, fmt.Errorf("%w: %d < %d", ErrShortInput, len(x), a.size)
	}

	copy(a.frame, x[len(x)-a.size:])
	applyWindow(a.frame, a.window)

	for i, v := range a.frame {
		a.in[i] = complex(v, 0)
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return nil, fmt.Errorf("spectrum: forward fft: %w", err)
	}

	for k := range a.re {
		a.re[k] = real(a.out[k])
		a.im[k] = imag(a.out[k])
	}

	vecmath.Magnitude(a.mag, a.re, a.im)

	scale := 2 / (float64(a.size) * a.gain)
	vecmath.ScaleBlock(a.mag, a.mag, scale)

	return a.mag, nil
}

// DominantFrequency returns the strongest partial of x between minHz and
// maxHz, refined by parabolic interpolation on log magnitudes.
func (a *Analyzer) DominantFrequency(x []float64, minHz, maxHz float64) (Peak, error) {
	mag, err := a.Magnitudes(x)
	if err != nil {
		return Peak{}, err
	}

	binHz := a.BinHz()
	last := len(mag) - 1

	lo := max(1, int(math.Ceil(minHz/binHz)))
	hi := min(last, int(math.Floor(maxHz/binHz)))
	if lo > hi {
		return Peak{}, fmt.Errorf("spectrum: empty search range %.1f..%.1f Hz", minHz, maxHz)
	}

	best := lo
	for k := lo + 1; k <= hi; k++ {
		if mag[k] > mag[best] {
			best = k
		}
	}

	p := Peak{Bin: best, FrequencyHz: float64(best) * binHz, Magnitude: mag[best]}
	if best == 0 || best == last {
		return p, nil
	}

	l, c, r := logMag(mag[best-1]), logMag(mag[best]), logMag(mag[best+1])
	if den := l - 2*c + r; den < 0 {
		delta := 0.5 * (l - r) / den
		p.FrequencyHz = (float64(best) + delta) * binHz
	}

	return p, nil
}

func logMag(v float64) float64 {
	if v <= 1e-300 {
		return -690
	}

	return math.Log(v)
}
