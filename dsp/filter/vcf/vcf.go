package vcf

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-polysynth/dsp/core"
	"github.com/cwbudde/algo-polysynth/dsp/filter/biquad"
)

const (
	maxFreqHz = 20000.0
	ln2       = 0.69314718
	lnSqrt2   = ln2 / 2

	// SeedState is the value every delay cell holds before the first sample.
	SeedState = 1.0

	// FixedQ is the quality factor used while resonance is not honored.
	FixedQ = 1.0

	minCutoffHz  = 1.0
	nyquistGuard = 0.99
)

// Coefficients are the raw, unnormalized Direct Form I coefficients.
// The feedforward taps b0 and b2 are equal for a low-pass and share B0B2.
type Coefficients struct {
	A0, A1, A2 float64
	B0B2, B1   float64
}

// State contains the delay line and the most recent output.
type State struct {
	X1, X2     float64
	Y0, Y1, Y2 float64
}

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	cutoffPercent    float64
	resonancePercent float64
	honorResonance   bool
	seed             float64
}

func defaultConfig() config {
	return config{
		cutoffPercent: 100,
		seed:          SeedState,
	}
}

// WithCutoffPercent sets the initial cutoff percentage. Must be finite.
func WithCutoffPercent(percent float64) Option {
	return func(cfg *config) error {
		if !core.IsFinite(percent) {
			return fmt.Errorf("vcf: cutoff percent must be finite: %f", percent)
		}

		cfg.cutoffPercent = percent

		return nil
	}
}

// WithResonancePercent sets the initial resonance percentage. Must be finite.
func WithResonancePercent(percent float64) Option {
	return func(cfg *config) error {
		if !core.IsFinite(percent) {
			return fmt.Errorf("vcf: resonance percent must be finite: %f", percent)
		}

		cfg.resonancePercent = percent

		return nil
	}
}

// WithResonanceHonored maps the resonance percentage to Q instead of
// pinning Q at [FixedQ].
func WithResonanceHonored(enabled bool) Option {
	return func(cfg *config) error {
		cfg.honorResonance = enabled
		return nil
	}
}

// WithInitialState overrides [SeedState] for every delay cell.
func WithInitialState(v float64) Option {
	return func(cfg *config) error {
		if !core.IsFinite(v) {
			return fmt.Errorf("vcf: initial state must be finite: %f", v)
		}

		cfg.seed = v

		return nil
	}
}

// Filter is a percent-controlled resonant low-pass biquad.
//
// A Filter is not safe for concurrent use; it is meant to be owned by the
// render goroutine.
type Filter struct {
	sampleRate float64

	cutoffPercent    float64
	resonancePercent float64
	honorResonance   bool
	q                float64

	coeffs Coefficients
	state  State
}

// New constructs a filter for the given sample rate.
func New(sampleRate float64, opts ...Option) (*Filter, error) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("vcf: sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	f := &Filter{
		sampleRate:     sampleRate,
		cutoffPercent:  cfg.cutoffPercent,
		honorResonance: cfg.honorResonance,
		state: State{
			X1: cfg.seed,
			X2: cfg.seed,
			Y0: cfg.seed,
			Y1: cfg.seed,
			Y2: cfg.seed,
		},
	}
	f.SetResonancePercent(cfg.resonancePercent)
	f.updateCoefficients()

	return f, nil
}

// SampleRate returns the sample rate in Hz.
func (f *Filter) SampleRate() float64 { return f.sampleRate }

// CutoffPercent returns the current cutoff percentage.
func (f *Filter) CutoffPercent() float64 { return f.cutoffPercent }

// ResonancePercent returns the last resonance percentage set.
func (f *Filter) ResonancePercent() float64 { return f.resonancePercent }

// ResonanceHonored reports whether resonance drives Q.
func (f *Filter) ResonanceHonored() bool { return f.honorResonance }

// Q returns the quality factor in use.
func (f *Filter) Q() float64 { return f.q }

// SetCutoffPercent updates the cutoff. The value is not clamped; the derived
// frequency is. Non-finite values are ignored.
func (f *Filter) SetCutoffPercent(percent float64) {
	if !core.IsFinite(percent) {
		return
	}

	f.cutoffPercent = percent
}

// SetResonancePercent stores the resonance percentage. Unless resonance is
// honored, Q is reset to [FixedQ]. Non-finite values are ignored.
func (f *Filter) SetResonancePercent(percent float64) {
	if !core.IsFinite(percent) {
		return
	}

	f.resonancePercent = percent
	if f.honorResonance {
		f.q = ResonanceQ(percent)
	} else {
		f.q = FixedQ
	}
}

// CutoffHz returns the guarded cutoff frequency for the current percentage.
func (f *Filter) CutoffHz() float64 {
	return CutoffHz(f.cutoffPercent, f.sampleRate)
}

// ProcessSample recomputes the coefficients from the current cutoff and Q,
// filters one input sample and returns the output.
func (f *Filter) ProcessSample(x float64) float64 {
	f.updateCoefficients()

	c := &f.coeffs
	s := &f.state

	y := (c.B0B2*x + c.B1*s.X1 + c.B0B2*s.X2 - c.A1*s.Y1 - c.A2*s.Y2) / c.A0

	s.X2 = s.X1
	s.Y2 = s.Y1
	s.X1 = x
	s.Y1 = y
	s.Y0 = y

	return y
}

// ProcessInPlace filters buf with the current, fixed cutoff.
func (f *Filter) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = f.ProcessSample(x)
	}
}

// Output returns the most recent output sample.
func (f *Filter) Output() float64 { return f.state.Y0 }

// Coefficients returns the raw coefficients used for the most recent sample
// (or derived at construction if no sample has been processed).
func (f *Filter) Coefficients() Coefficients { return f.coeffs }

// Normalized returns the current coefficients with a0 divided out.
func (f *Filter) Normalized() biquad.Coefficients {
	c := f.coeffs
	return biquad.FromDirectForm(c.B0B2, c.B1, c.B0B2, c.A0, c.A1, c.A2)
}

// MagnitudeDB evaluates the magnitude response of the current coefficients.
func (f *Filter) MagnitudeDB(freqHz float64) float64 {
	n := f.Normalized()
	return n.MagnitudeDB(freqHz, f.sampleRate)
}

// Phase evaluates the phase response of the current coefficients in radians.
func (f *Filter) Phase(freqHz float64) float64 {
	n := f.Normalized()
	return n.Phase(freqHz, f.sampleRate)
}

// State returns a copy of the delay line.
func (f *Filter) State() State { return f.state }

// SetState restores a previously saved delay line.
func (f *Filter) SetState(state State) { f.state = state }

func (f *Filter) updateCoefficients() {
	f.coeffs = Design(f.cutoffPercent, f.q, f.sampleRate)
}

// Design derives the raw low-pass coefficients for a cutoff percentage and Q.
func Design(cutoffPercent, q, sampleRate float64) Coefficients {
	f0 := CutoffHz(cutoffPercent, sampleRate)

	w0 := 2 * math.Pi * f0 / sampleRate
	alpha := math.Sin(w0) / (2 * q)
	cosW0 := math.Cos(w0)

	b1 := 1 - cosW0

	return Coefficients{
		A0:   1 + alpha,
		A1:   -2 * cosW0,
		A2:   1 - alpha,
		B1:   b1,
		B0B2: b1 / 2,
	}
}

// CutoffHz maps a cutoff percentage to Hz and clamps the result to
// [1 Hz, 0.99 * Nyquist].
func CutoffHz(percent, sampleRate float64) float64 {
	f0 := math.Exp(ln2*(percent-100)/10) * maxFreqHz
	return core.Clamp(f0, minCutoffHz, sampleRate/2*nyquistGuard)
}

// ResonanceQ maps a resonance percentage to Q. 20 % yields Q = 1 and every
// further 20 % multiplies Q by sqrt(2).
func ResonanceQ(percent float64) float64 {
	return math.Exp(lnSqrt2 * (percent - 20) / 20)
}
