package synth

import "github.com/cwbudde/algo-polysynth/dsp/core"

// Voice is one sounding note. FrequencyHz is derived once at creation and
// never changes while the voice is active.
type Voice struct {
	Note        uint8
	FrequencyHz float64
}

// NewVoice returns a voice for a MIDI note number.
func NewVoice(note uint8) Voice {
	return Voice{Note: note, FrequencyHz: core.MIDINoteToFreq(note)}
}

// VoicePool is the insertion-ordered list of sounding voices. It is
// unbounded unless a limit is set, in which case the oldest voice is dropped
// to make room.
type VoicePool struct {
	voices []Voice
	limit  int
}

// Add appends a voice for note.
func (p *VoicePool) Add(note uint8) {
	if p.limit > 0 && len(p.voices) >= p.limit {
		copy(p.voices, p.voices[1:])
		p.voices = p.voices[:p.limit-1]
	}

	p.voices = append(p.voices, NewVoice(note))
}

// Remove deletes every voice playing note and returns how many were removed.
func (p *VoicePool) Remove(note uint8) int {
	write := 0
	for _, v := range p.voices {
		if v.Note == note {
			continue
		}
		p.voices[write] = v
		write++
	}

	removed := len(p.voices) - write
	p.voices = p.voices[:write]

	return removed
}

// Len returns the number of voices.
func (p *VoicePool) Len() int { return len(p.voices) }

// Voices returns a copy of the voices in insertion order.
func (p *VoicePool) Voices() []Voice {
	return append([]Voice(nil), p.voices...)
}

// SetLimit bounds the pool size; 0 means unbounded. Excess voices are
// dropped oldest first.
func (p *VoicePool) SetLimit(limit int) {
	if limit < 0 {
		limit = 0
	}

	p.limit = limit
	if limit > 0 && len(p.voices) > limit {
		drop := len(p.voices) - limit
		copy(p.voices, p.voices[drop:])
		p.voices = p.voices[:limit]
	}
}
