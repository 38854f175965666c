package synth

import (
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-polysynth/dsp/core"
	"github.com/cwbudde/algo-polysynth/dsp/filter/vcf"
)

// Option mutates engine configuration.
type Option func(*config) error

type config struct {
	processor core.ProcessorConfig

	queueCapacity int
	maxVoices     int
	filterSeed    float64

	dropWhenFull bool

	amplitudeScaling bool
	releaseOnSilence bool
	honorResonance   bool

	logger *slog.Logger
}

func defaultConfig() config {
	return config{
		processor:     core.DefaultProcessorConfig(),
		queueCapacity: defaultQueueCapacity,
		filterSeed:    vcf.SeedState,
	}
}

// WithSampleRate sets the render sample rate in Hz. Must be finite and > 0.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *config) error {
		if !core.IsFinite(sampleRate) || sampleRate <= 0 {
			return fmt.Errorf("synth: sample rate must be > 0 and finite: %f", sampleRate)
		}

		core.WithSampleRate(sampleRate)(&cfg.processor)

		return nil
	}
}

// WithChannels sets the number of interleaved output channels. Must be > 0.
func WithChannels(channels int) Option {
	return func(cfg *config) error {
		if channels <= 0 {
			return fmt.Errorf("synth: channel count must be > 0: %d", channels)
		}

		core.WithChannels(channels)(&cfg.processor)

		return nil
	}
}

// WithBlockSize sets the nominal frames per block reported to transports.
// RenderBlock accepts any length. Must be > 0.
func WithBlockSize(frames int) Option {
	return func(cfg *config) error {
		if frames <= 0 {
			return fmt.Errorf("synth: block size must be > 0: %d", frames)
		}

		core.WithBlockSize(frames)(&cfg.processor)

		return nil
	}
}

// WithProcessorConfig replaces sample rate, block size and channel count.
func WithProcessorConfig(pc core.ProcessorConfig) Option {
	return func(cfg *config) error {
		for _, opt := range []Option{
			WithSampleRate(pc.SampleRate),
			WithBlockSize(pc.BlockSize),
			WithChannels(pc.Channels),
		} {
			if err := opt(cfg); err != nil {
				return err
			}
		}

		return nil
	}
}

// WithQueueCapacity sets how many events may be pending between two blocks.
// The capacity is rounded up to a power of two. Must be > 0.
func WithQueueCapacity(capacity int) Option {
	return func(cfg *config) error {
		if capacity <= 0 {
			return fmt.Errorf("synth: queue capacity must be > 0: %d", capacity)
		}

		cfg.queueCapacity = capacity

		return nil
	}
}

// WithDropWhenFull makes [Engine.Submit] discard commands while the queue is
// full instead of waiting for the next block. Dropped note-offs leave voices
// sounding, so this suits producers that must never wait.
func WithDropWhenFull(enabled bool) Option {
	return func(cfg *config) error {
		cfg.dropWhenFull = enabled
		return nil
	}
}

// WithMaxVoices bounds polyphony; the oldest voice is dropped first.
// 0 (the default) means unbounded.
func WithMaxVoices(n int) Option {
	return func(cfg *config) error {
		if n < 0 {
			return fmt.Errorf("synth: max voices must be >= 0: %d", n)
		}

		cfg.maxVoices = n

		return nil
	}
}

// WithFilterSeed overrides the initial value of the filter delay line.
func WithFilterSeed(v float64) Option {
	return func(cfg *config) error {
		if !core.IsFinite(v) {
			return fmt.Errorf("synth: filter seed must be finite: %f", v)
		}

		cfg.filterSeed = v

		return nil
	}
}

// WithAmplitudeScaling makes the envelope scale each voice instead of only
// gating its sign.
func WithAmplitudeScaling(enabled bool) Option {
	return func(cfg *config) error {
		cfg.amplitudeScaling = enabled
		return nil
	}
}

// WithReleaseOnSilence closes the gate when a note-off empties the voice
// pool. By default every note-off re-opens the gate.
func WithReleaseOnSilence(enabled bool) Option {
	return func(cfg *config) error {
		cfg.releaseOnSilence = enabled
		return nil
	}
}

// WithResonanceHonored lets controller 3 drive the filter Q.
func WithResonanceHonored(enabled bool) Option {
	return func(cfg *config) error {
		cfg.honorResonance = enabled
		return nil
	}
}

// WithLogger sets the logger used on the producer side. Nil restores
// slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) error {
		cfg.logger = logger
		return nil
	}
}
