package synth

import "github.com/cwbudde/algo-polysynth/dsp/core"

// RenderBlock applies every pending event and then fills dst with
// len(dst)/channels interleaved frames. Each frame carries the same filtered
// sample on every channel. Samples are not clipped. A trailing partial frame
// is zeroed. Render goroutine only.
func (e *Engine) RenderBlock(dst []float32) {
	e.applyPending()

	channels := e.cfg.processor.Channels
	frames := len(dst) / channels

	p := &e.perf
	r := &e.render
	voices := p.Voices.voices

	for i := 0; i < frames; i++ {
		t := e.timeAt(r.sampleIndex)
		amp := p.Envelope.Amp

		var signal float64
		if e.cfg.amplitudeScaling {
			signal = mixScaled(voices, amp, t)
		} else {
			signal = mixSigned(voices, amp, t)
		}

		r.filter.SetCutoffPercent(CutoffSweep(&p.Controllers, t))
		y := r.filter.ProcessSample(signal)

		core.Fill(dst[i*channels:(i+1)*channels], float32(y))

		r.lastSample = y
		p.Envelope.Step()
		r.sampleIndex++
	}

	core.Zero(dst[frames*channels:])
}

// Render allocates and renders frames interleaved frames.
func (e *Engine) Render(frames int) []float32 {
	if frames <= 0 {
		return nil
	}

	out := make([]float32, frames*e.cfg.processor.Channels)
	e.RenderBlock(out)

	return out
}

// RenderMono renders frames frames and returns the first channel as
// float64, for analysis.
func (e *Engine) RenderMono(frames int) []float64 {
	interleaved := e.Render(frames)
	if interleaved == nil {
		return nil
	}

	channels := e.cfg.processor.Channels
	out := make([]float64, frames)
	for i := range out {
		out[i] = float64(interleaved[i*channels])
	}

	return out
}

// SampleIndex returns the number of frames rendered so far.
func (e *Engine) SampleIndex() uint64 { return e.render.sampleIndex }

// Time returns the elapsed render time in seconds.
func (e *Engine) Time() float64 { return e.timeAt(e.render.sampleIndex) }
