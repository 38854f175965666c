package audio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/cwbudde/algo-polysynth/dsp/core"
)

// portAudioOutput drives the renderer from the PortAudio callback thread.
type portAudioOutput struct {
	mu      sync.Mutex
	stream  *portaudio.Stream
	started bool
}

func openPortAudio(r Renderer, cfg core.ProcessorConfig) (Output, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("audio: portaudio init: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(0, cfg.Channels, cfg.SampleRate, cfg.BlockSize,
		func(out []float32) {
			r.RenderBlock(out)
		})
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("audio: open default stream: %w", err)
	}

	return &portAudioOutput{stream: stream}, nil
}

func (o *portAudioOutput) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.started || o.stream == nil {
		return nil
	}

	if err := o.stream.Start(); err != nil {
		return fmt.Errorf("audio: start stream: %w", err)
	}
	o.started = true

	return nil
}

func (o *portAudioOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.stream == nil {
		return nil
	}

	var errs []error
	if o.started {
		if err := o.stream.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("audio: stop stream: %w", err))
		}
		o.started = false
	}

	if err := o.stream.Close(); err != nil {
		errs = append(errs, fmt.Errorf("audio: close stream: %w", err))
	}
	o.stream = nil

	if err := portaudio.Terminate(); err != nil {
		errs = append(errs, fmt.Errorf("audio: portaudio terminate: %w", err))
	}

	return errors.Join(errs...)
}
