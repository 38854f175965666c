package main

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-polysynth/dsp/spectrum"
	"github.com/cwbudde/algo-polysynth/synth"
)

const maxFFTSize = 16384

type controllerSetting struct {
	index int
	value uint8
}

type renderSettings struct {
	notes       []uint8
	controllers []controllerSetting
	duration    float64 // seconds
	release     float64 // seconds; negative holds the notes
}

// render queues the initial events, renders block by block and queues the
// note-offs at the first block boundary at or after the release time.
func render(e *synth.Engine, rs renderSettings) ([]float32, error) {
	cfg := e.Config()

	if !(rs.duration > 0) || math.IsInf(rs.duration, 0) {
		return nil, fmt.Errorf("duration must be > 0: %v", rs.duration)
	}

	total := int(math.Round(rs.duration * cfg.SampleRate))
	if total < 1 {
		return nil, errors.New("duration shorter than one frame")
	}

	releaseFrame := -1
	if rs.release >= 0 {
		releaseFrame = int(math.Round(rs.release * cfg.SampleRate))
	}

	// Everything below is queued before the first block renders.
	if n := len(rs.controllers) + len(rs.notes); n > e.QueueCapacity() {
		return nil, fmt.Errorf("%d initial events exceed the event queue (%d)", n, e.QueueCapacity())
	}

	for _, c := range rs.controllers {
		if !e.SetController(c.index, c.value) {
			return nil, fmt.Errorf("controller %d=%d rejected", c.index, c.value)
		}
	}
	for _, n := range rs.notes {
		if !e.NoteOn(n) {
			return nil, fmt.Errorf("note %d rejected", n)
		}
	}

	out := make([]float32, total*cfg.Channels)
	released := false

	for frame := 0; frame < total; frame += cfg.BlockSize {
		if !released && releaseFrame >= 0 && frame >= releaseFrame {
			for _, n := range rs.notes {
				e.NoteOff(n)
			}
			released = true
		}

		end := min(frame+cfg.BlockSize, total)
		e.RenderBlock(out[frame*cfg.Channels : end*cfg.Channels])
	}

	return out, nil
}

type report struct {
	frames      int
	dominantHz  float64
	dominantMag float64
	peak        float64
}

func (r report) String() string {
	peakDB := math.Inf(-1)
	if r.peak > 0 {
		peakDB = 20 * math.Log10(r.peak)
	}

	return fmt.Sprintf("frames=%d dominant=%.2f Hz (%.3f) peak=%.3f (%.1f dBFS)",
		r.frames, r.dominantHz, r.dominantMag, r.peak, peakDB)
}

// analyze measures the first channel of an interleaved buffer.
func analyze(interleaved []float32, channels int, sampleRate float64) (report, error) {
	if channels <= 0 {
		return report{}, fmt.Errorf("invalid channel count %d", channels)
	}

	frames := len(interleaved) / channels
	mono := make([]float64, frames)
	peak := 0.0

	for i := range mono {
		v := float64(interleaved[i*channels])
		mono[i] = v
		peak = max(peak, math.Abs(v))
	}

	rep := report{frames: frames, peak: peak}

	size := fftSizeFor(frames)
	if size == 0 {
		return rep, nil
	}

	a, err := spectrum.NewAnalyzer(size, sampleRate)
	if err != nil {
		return report{}, err
	}

	p, err := a.DominantFrequency(mono, 20, 0.45*sampleRate)
	if err != nil {
		return report{}, err
	}

	rep.dominantHz = p.FrequencyHz
	rep.dominantMag = p.Magnitude

	return rep, nil
}

// fftSizeFor returns the largest power of two <= frames, capped at
// maxFFTSize, or 0 when fewer than 16 frames are available.
func fftSizeFor(frames int) int {
	if frames < 16 {
		return 0
	}

	size := 1 << (bits.Len(uint(frames)) - 1)

	return min(size, maxFFTSize)
}

// parseNotes parses a comma-separated list of MIDI notes, dropping
// duplicates.
func parseNotes(raw string) ([]uint8, error) {
	parts := strings.Split(raw, ",")
	notes := make([]uint8, 0, len(parts))
	seen := make(map[int]bool)

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid note %q", part)
		}

		if n < 0 || n > 127 {
			return nil, fmt.Errorf("note out of range [0,127]: %d", n)
		}

		if seen[n] {
			continue
		}
		seen[n] = true

		notes = append(notes, uint8(n))
	}

	if len(notes) == 0 {
		return nil, errors.New("empty notes list")
	}

	return notes, nil
}

// parseControllers parses "index=value" pairs separated by commas.
func parseControllers(raw string) ([]controllerSetting, error) {
	var out []controllerSetting

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("expected index=value, got %q", part)
		}

		idx, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || idx < 1 || idx > synth.ControllerCount {
			return nil, fmt.Errorf("controller index must be 1..%d: %q", synth.ControllerCount, k)
		}

		val, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || val < 0 || val > 127 {
			return nil, fmt.Errorf("controller value must be 0..127: %q", v)
		}

		out = append(out, controllerSetting{index: idx, value: uint8(val)})
	}

	return out, nil
}
