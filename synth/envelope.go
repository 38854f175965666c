package synth

// envelopeDivisor sets the one-pole time constant in samples.
const envelopeDivisor = 64.0

// Gate targets.
const (
	GateClosed = 0.0
	GateOpen   = 1.0
)

// Envelope is a global one-pole gain follower that approaches a binary gate
// target. It never reaches the target exactly and never resets.
type Envelope struct {
	Amp    float64
	Target float64
}

// Step advances the envelope by one sample.
func (e *Envelope) Step() {
	e.Amp += (e.Target - e.Amp) / envelopeDivisor
}

// Open sets the target to [GateOpen].
func (e *Envelope) Open() { e.Target = GateOpen }

// Close sets the target to [GateClosed].
func (e *Envelope) Close() { e.Target = GateClosed }
