package synth

import (
	"math"
	"testing"
)

func TestNewVoiceFrequency(t *testing.T) {
	if got := NewVoice(69).FrequencyHz; got != 440.0 {
		t.Fatalf("note 69 = %v Hz, want exactly 440", got)
	}
	if got := NewVoice(81).FrequencyHz; math.Abs(got-880.0) > 1e-9 {
		t.Fatalf("note 81 = %v Hz, want 880", got)
	}
	if got := NewVoice(0).FrequencyHz; math.Abs(got-8.175798915643707) > 1e-9 {
		t.Fatalf("note 0 = %v Hz", got)
	}
}

func TestVoicePoolInsertionOrder(t *testing.T) {
	var p VoicePool
	for _, n := range []uint8{64, 60, 67} {
		p.Add(n)
	}

	got := p.Voices()
	want := []uint8{64, 60, 67}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Note != want[i] {
			t.Fatalf("voice %d = %d, want %d", i, got[i].Note, want[i])
		}
	}

	got[0].Note = 1
	if p.Voices()[0].Note != 64 {
		t.Fatal("Voices() must return a copy")
	}
}

func TestVoicePoolRemoveAllDuplicates(t *testing.T) {
	var p VoicePool
	p.Add(60)
	p.Add(62)
	p.Add(60)

	if removed := p.Remove(60); removed != 2 {
		t.Fatalf("Remove(60) = %d, want 2", removed)
	}
	if p.Len() != 1 || p.Voices()[0].Note != 62 {
		t.Fatalf("unexpected pool after remove: %+v", p.Voices())
	}
	if removed := p.Remove(99); removed != 0 {
		t.Fatalf("Remove(99) = %d, want 0", removed)
	}
}

// The pool size must equal on-events minus the entries removed by matching
// off-events, with an off-event removing every duplicate at once.
func TestVoicePoolSizeModel(t *testing.T) {
	var p VoicePool
	model := map[uint8]int{}

	seed := uint32(12345)
	next := func() uint32 {
		seed = seed*1664525 + 1013904223
		return seed >> 8
	}

	for i := 0; i < 5000; i++ {
		note := uint8(next() % 12)
		if next()%3 == 0 {
			removed := p.Remove(note)
			if removed != model[note] {
				t.Fatalf("step %d: Remove(%d) = %d, want %d", i, note, removed, model[note])
			}
			delete(model, note)
		} else {
			p.Add(note)
			model[note]++
		}

		total := 0
		for _, c := range model {
			total += c
		}
		if p.Len() != total {
			t.Fatalf("step %d: Len() = %d, want %d", i, p.Len(), total)
		}
	}
}

func TestVoicePoolLimit(t *testing.T) {
	var p VoicePool
	p.SetLimit(2)
	p.Add(60)
	p.Add(62)
	p.Add(64)

	got := p.Voices()
	if len(got) != 2 || got[0].Note != 62 || got[1].Note != 64 {
		t.Fatalf("unexpected voices: %+v", got)
	}

	p.SetLimit(0)
	for i := 0; i < 100; i++ {
		p.Add(uint8(i))
	}
	if p.Len() != 102 {
		t.Fatalf("Len() = %d, want 102", p.Len())
	}

	p.SetLimit(3)
	got = p.Voices()
	if len(got) != 3 || got[0].Note != 97 || got[2].Note != 99 {
		t.Fatalf("shrink kept wrong voices: %+v", got)
	}
}
