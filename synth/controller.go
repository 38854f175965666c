package synth

// ControllerCount is the number of performance controllers.
const ControllerCount = 4

// Controller indices as used by [Engine.SetController] and MIDI CC numbers.
const (
	ControllerCutoff    = 1
	ControllerLFORate   = 2
	ControllerResonance = 3
	ControllerAux       = 4
)

const maxRawValue = 127

// ControllerBank holds normalized controller values in [0, 1].
type ControllerBank struct {
	values [ControllerCount]float64
}

// Set stores raw/127 for a 1-based controller index. Unknown indices are
// ignored; the value itself is not range checked.
func (b *ControllerBank) Set(index int, raw uint8) bool {
	if index < 1 || index > ControllerCount {
		return false
	}

	b.values[index-1] = float64(raw) / maxRawValue

	return true
}

// Get returns the normalized value of a 1-based controller index, or 0 for
// an unknown index.
func (b *ControllerBank) Get(index int) float64 {
	if index < 1 || index > ControllerCount {
		return 0
	}

	return b.values[index-1]
}

// Values returns a copy of all controller values, index 1 first.
func (b *ControllerBank) Values() [ControllerCount]float64 {
	return b.values
}
