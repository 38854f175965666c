// Package synth implements a small polyphonic synthesizer engine: a
// controller bank, an unbounded voice pool, a one-pole amplitude envelope,
// a sign-gated square mixer and an LFO-swept resonant low-pass filter.
//
// An [Engine] has two sides. Producers (MIDI callbacks, keyboard readers,
// tests) call [Engine.NoteOn], [Engine.NoteOff], [Engine.SetController] or
// [Engine.HandleMessage] from any goroutine; those calls only enqueue a
// [Command]. The render side calls [Engine.RenderBlock] from a single
// goroutine; it drains the queue without blocking at the start of every
// block and then owns all performance and filter state for the duration of
// the block.
//
// Three legacy behaviors are on by default. A note-off re-opens the gate
// instead of closing it. The envelope gates the sign of each voice without
// scaling it. The resonance controller leaves Q at 1. They are switched off
// with [WithReleaseOnSilence], [WithAmplitudeScaling] and
// [WithResonanceHonored] respectively.
package synth
