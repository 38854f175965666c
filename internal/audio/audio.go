// Package audio connects a block renderer to a sound device or a WAV file.
package audio

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-polysynth/dsp/core"
)

// Renderer fills interleaved float32 frames. *synth.Engine implements it.
type Renderer interface {
	RenderBlock(dst []float32)
}

// Output is a running device stream.
type Output interface {
	Start() error
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendPortAudio = "portaudio"
	BackendOto       = "oto"
)

// ErrUnknownBackend is returned by [Open] for an unsupported backend name.
var ErrUnknownBackend = errors.New("audio: unknown backend")

// Backends lists the accepted backend names, default first.
func Backends() []string {
	return []string{BackendPortAudio, BackendOto}
}

// Open prepares an output on the named backend. The stream does not pull
// from r until Start is called.
func Open(backend string, r Renderer, cfg core.ProcessorConfig) (Output, error) {
	if r == nil {
		return nil, errors.New("audio: nil renderer")
	}

	if cfg.SampleRate <= 0 || cfg.Channels <= 0 || cfg.BlockSize <= 0 {
		return nil, fmt.Errorf("audio: invalid processor config %+v", cfg)
	}

	switch backend {
	case BackendPortAudio, "":
		return openPortAudio(r, cfg)
	case BackendOto:
		return openOto(r, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
