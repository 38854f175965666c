package spectrum

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-polysynth/dsp/core"
)

// ToneProbe measures the level of one frequency with the Goertzel
// recurrence. It accumulates every sample since the last Reset.
type ToneProbe struct {
	frequency  float64
	sampleRate float64
	coeff      float64
	s0, s1     float64
	count      int
}

// NewToneProbe returns a probe for frequency, which must lie in
// [0, sampleRate/2].
func NewToneProbe(frequency, sampleRate float64) (*ToneProbe, error) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("spectrum: sample rate must be > 0 and finite: %f", sampleRate)
	}

	if !core.IsFinite(frequency) || frequency < 0 || frequency > sampleRate/2 {
		return nil, fmt.Errorf("spectrum: tone frequency must be within 0..%.1f Hz: %f", sampleRate/2, frequency)
	}

	return &ToneProbe{
		frequency:  frequency,
		sampleRate: sampleRate,
		coeff:      2 * math.Cos(2*math.Pi*frequency/sampleRate),
	}, nil
}

// Reset clears the accumulated state.
func (p *ToneProbe) Reset() {
	p.s0, p.s1, p.count = 0, 0, 0
}

// ProcessBlock feeds samples into the recurrence.
func (p *ToneProbe) ProcessBlock(x []float64) {
	s0, s1 := p.s0, p.s1
	coeff := p.coeff

	for _, v := range x {
		s := v + coeff*s0 - s1
		s1 = s0
		s0 = s
	}

	p.s0, p.s1 = s0, s1
	p.count += len(x)
}

// Power returns |X(f)|^2 over the samples seen so far.
func (p *ToneProbe) Power() float64 {
	return p.s0*p.s0 + p.s1*p.s1 - p.coeff*p.s0*p.s1
}

// Level returns the estimated peak amplitude of the tone. A full-scale sine
// spanning a whole number of periods reads 1.
func (p *ToneProbe) Level() float64 {
	pw := p.Power()
	if pw <= 0 || p.count == 0 {
		return 0
	}

	return 2 * math.Sqrt(pw) / float64(p.count)
}

// Frequency returns the probed frequency in Hz.
func (p *ToneProbe) Frequency() float64 { return p.frequency }

// NoteLevels returns the tone level of each MIDI note's fundamental in x.
func NoteLevels(x []float64, sampleRate float64, notes ...uint8) ([]float64, error) {
	levels := make([]float64, len(notes))

	for i, n := range notes {
		p, err := NewToneProbe(core.MIDINoteToFreq(n), sampleRate)
		if err != nil {
			return nil, err
		}

		p.ProcessBlock(x)
		levels[i] = p.Level()
	}

	return levels, nil
}
