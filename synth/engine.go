package synth

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/cwbudde/algo-polysynth/dsp/core"
	"github.com/cwbudde/algo-polysynth/dsp/filter/vcf"
)

// PerformanceState is the render-side copy of everything events mutate.
type PerformanceState struct {
	Controllers ControllerBank
	Voices      VoicePool
	Envelope    Envelope
}

// renderState is touched by nothing but the render goroutine.
type renderState struct {
	filter      *vcf.Filter
	sampleIndex uint64
	lastSample  float64
}

// Engine turns queued performance events into interleaved audio blocks.
type Engine struct {
	cfg    config
	logger *slog.Logger

	queue   *commandQueue
	dropped atomic.Uint64

	perf   PerformanceState
	render renderState
}

// New constructs an engine. Without options it renders stereo at 44.1 kHz
// with every legacy behavior switched on.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	filter, err := vcf.New(cfg.processor.SampleRate,
		vcf.WithCutoffPercent(0),
		vcf.WithInitialState(cfg.filterSeed),
		vcf.WithResonanceHonored(cfg.honorResonance),
	)
	if err != nil {
		return nil, fmt.Errorf("synth: build filter: %w", err)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		cfg:    cfg,
		logger: logger,
		queue:  newCommandQueue(cfg.queueCapacity),
		render: renderState{filter: filter},
	}
	e.perf.Voices.SetLimit(cfg.maxVoices)

	return e, nil
}

// Config returns the sample rate, block size and channel count in use.
func (e *Engine) Config() core.ProcessorConfig { return e.cfg.processor }

// NoteOn queues a note-on. Notes above 127 are ignored.
func (e *Engine) NoteOn(note uint8) bool {
	return e.Submit(Command{Kind: CommandNoteOn, Note: note})
}

// NoteOff queues a note-off. Notes above 127 are ignored.
func (e *Engine) NoteOff(note uint8) bool {
	return e.Submit(Command{Kind: CommandNoteOff, Note: note})
}

// SetController queues a controller change for a 1-based index. Unknown
// indices and values above 127 are ignored.
func (e *Engine) SetController(index int, value uint8) bool {
	return e.Submit(Command{Kind: CommandController, Index: index, Value: value})
}

// HandleMessage decodes and queues a raw MIDI triple. Unrecognized messages
// are ignored.
func (e *Engine) HandleMessage(status, data1, data2 byte) bool {
	cmd, ok := DecodeMessage(status, data1, data2)
	if !ok {
		return false
	}

	return e.Submit(cmd)
}

// Submit queues a command for the next block and reports false if the
// command is out of range. While the queue is full Submit waits for the
// render goroutine to drain it, so no event is ever lost. With
// [WithDropWhenFull] a full queue discards the command instead, counts it
// in [Engine.Dropped] and reports false. Safe for concurrent use.
func (e *Engine) Submit(cmd Command) bool {
	if !cmd.Valid() {
		return false
	}

	for attempt := 0; !e.queue.push(cmd); attempt++ {
		if e.cfg.dropWhenFull {
			n := e.dropped.Add(1)
			e.logger.Warn("synth: event queue full, dropping event",
				"event", cmd.String(), "capacity", e.queue.capacity(), "dropped", n)

			return false
		}

		if attempt == 0 {
			e.logger.Debug("synth: event queue full, waiting for render",
				"event", cmd.String(), "capacity", e.queue.capacity())
		}

		backoff(attempt)
	}

	return true
}

// Pending returns the number of queued, not yet applied commands.
func (e *Engine) Pending() int { return e.queue.len() }

// QueueCapacity returns the number of commands that fit between two blocks.
func (e *Engine) QueueCapacity() int { return e.queue.capacity() }

// Dropped returns how many commands a full queue discarded. It stays 0
// unless [WithDropWhenFull] is set.
func (e *Engine) Dropped() uint64 { return e.dropped.Load() }

// applyPending drains the queue. Render goroutine only.
func (e *Engine) applyPending() {
	for {
		cmd, ok := e.queue.pop()
		if !ok {
			return
		}

		e.apply(cmd)
	}
}

func (e *Engine) apply(cmd Command) {
	p := &e.perf

	switch cmd.Kind {
	case CommandNoteOn:
		p.Voices.Add(cmd.Note)
		p.Envelope.Open()
	case CommandNoteOff:
		p.Voices.Remove(cmd.Note)
		if e.cfg.releaseOnSilence && p.Voices.Len() == 0 {
			p.Envelope.Close()
		} else {
			p.Envelope.Open()
		}
	case CommandController:
		if !p.Controllers.Set(cmd.Index, cmd.Value) {
			return
		}
		if cmd.Index == ControllerResonance {
			e.render.filter.SetResonancePercent(resonancePercent(&p.Controllers))
		}
	}
}

// Snapshot is a copy of the render-owned state.
type Snapshot struct {
	Amp         float64
	GateTarget  float64
	Controllers [ControllerCount]float64
	Voices      []Voice

	CutoffPercent    float64
	ResonancePercent float64
	Q                float64
	Filter           vcf.State
	LastSample       float64

	SampleIndex uint64
	Time        float64
}

// Snapshot copies the render-owned state. Call it from the render goroutine
// or while no block is being rendered.
func (e *Engine) Snapshot() Snapshot {
	f := e.render.filter

	return Snapshot{
		Amp:              e.perf.Envelope.Amp,
		GateTarget:       e.perf.Envelope.Target,
		Controllers:      e.perf.Controllers.Values(),
		Voices:           e.perf.Voices.Voices(),
		CutoffPercent:    f.CutoffPercent(),
		ResonancePercent: f.ResonancePercent(),
		Q:                f.Q(),
		Filter:           f.State(),
		LastSample:       e.render.lastSample,
		SampleIndex:      e.render.sampleIndex,
		Time:             e.timeAt(e.render.sampleIndex),
	}
}

func (e *Engine) timeAt(index uint64) float64 {
	return float64(index) / e.cfg.processor.SampleRate
}
