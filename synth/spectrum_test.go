package synth

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-polysynth/dsp/spectrum"
)

func TestRenderedPitch(t *testing.T) {
	e := newTestEngine(t)
	e.NoteOn(69)
	e.SetController(ControllerCutoff, 127)

	x := e.RenderMono(44100)

	a, err := spectrum.NewAnalyzer(8192, 44100)
	if err != nil {
		t.Fatal(err)
	}

	p, err := a.DominantFrequency(x, 50, 5000)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(p.FrequencyHz-440) > 3 {
		t.Fatalf("dominant frequency = %.2f Hz, want 440", p.FrequencyHz)
	}
}

func TestRenderedChord(t *testing.T) {
	e := newTestEngine(t)
	e.NoteOn(60)
	e.NoteOn(67)
	e.SetController(ControllerCutoff, 127)

	x := e.RenderMono(48510)[4410:]

	levels, err := spectrum.NoteLevels(x, 44100, 60, 67, 63)
	if err != nil {
		t.Fatal(err)
	}

	if levels[0] < 0.5 || levels[1] < 0.5 {
		t.Fatalf("chord levels = %v, want both notes present", levels[:2])
	}
	if levels[2] > 0.1 {
		t.Fatalf("unplayed note level = %v", levels[2])
	}
}

func TestCutoffAttenuatesHarmonics(t *testing.T) {
	render := func(depth uint8) float64 {
		e := newTestEngine(t)
		e.NoteOn(57)
		e.SetController(ControllerCutoff, depth)

		x := e.RenderMono(48510)[4410:]

		// Third harmonic of A3.
		probe, err := spectrum.NewToneProbe(660, 44100)
		if err != nil {
			t.Fatal(err)
		}

		probe.ProcessBlock(x)

		return probe.Level()
	}

	open, closed := render(127), render(40)
	if closed >= open/2 {
		t.Fatalf("third harmonic: open %v, closed %v", open, closed)
	}
}
