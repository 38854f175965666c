package synth

import "testing"

func TestMixSignedTwoVoices(t *testing.T) {
	voices := []Voice{NewVoice(60), NewVoice(64)}
	seen := map[float64]int{}

	for n := 0; n < 44100; n++ {
		tm := float64(n) / 44100
		s := mixSigned(voices, 1, tm)
		if s != -2 && s != 0 && s != 2 {
			t.Fatalf("sample %d: signal = %v, want one of {-2, 0, 2}", n, s)
		}
		seen[s]++
	}

	for _, v := range []float64{-2, 0, 2} {
		if seen[v] == 0 {
			t.Fatalf("signal value %v never produced", v)
		}
	}
}

func TestMixSignedZeroAmpForcesNegative(t *testing.T) {
	voices := []Voice{NewVoice(60), NewVoice(64), NewVoice(67)}

	for n := 0; n < 1000; n++ {
		if s := mixSigned(voices, 0, float64(n)/44100); s != -3 {
			t.Fatalf("sample %d: signal = %v, want -3", n, s)
		}
	}
}

func TestMixSignedIgnoresAmpMagnitude(t *testing.T) {
	voices := []Voice{NewVoice(57), NewVoice(69)}

	for n := 0; n < 1000; n++ {
		tm := float64(n) / 44100
		if a, b := mixSigned(voices, 1, tm), mixSigned(voices, 0.01, tm); a != b {
			t.Fatalf("sample %d: amp magnitude changed output: %v vs %v", n, a, b)
		}
	}
}

func TestMixScaled(t *testing.T) {
	voices := []Voice{NewVoice(60), NewVoice(64)}

	for n := 0; n < 1000; n++ {
		tm := float64(n) / 44100
		if s := mixScaled(voices, 0, tm); s != 0 {
			t.Fatalf("sample %d: scaled mix at amp 0 = %v, want 0", n, s)
		}

		full := mixSigned(voices, 1, tm)
		if s := mixScaled(voices, 0.5, tm); s != 0.5*full {
			t.Fatalf("sample %d: scaled = %v, want %v", n, s, 0.5*full)
		}
	}
}

func TestMixEmpty(t *testing.T) {
	if s := mixSigned(nil, 1, 0.3); s != 0 {
		t.Fatalf("empty signed mix = %v", s)
	}
	if s := mixScaled(nil, 1, 0.3); s != 0 {
		t.Fatalf("empty scaled mix = %v", s)
	}
}
