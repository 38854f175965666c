package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-polysynth/dsp/core"
)

const bytesPerSample = 4

// BlockReader adapts a Renderer to an io.Reader of little-endian float32
// samples. Each Read renders as many whole frames as fit in p.
type BlockReader struct {
	r        Renderer
	channels int
	buf      []float32
}

// NewBlockReader returns a reader producing channels-wide frames from r.
func NewBlockReader(r Renderer, channels int) *BlockReader {
	return &BlockReader{r: r, channels: channels}
}

// Read never fails. A p shorter than one frame is filled with silence so the
// player keeps its clock running.
func (b *BlockReader) Read(p []byte) (int, error) {
	frameBytes := b.channels * bytesPerSample
	frames := len(p) / frameBytes

	if frames == 0 {
		clear(p)
		return len(p), nil
	}

	n := frames * b.channels
	b.buf = core.EnsureLen(b.buf, n)
	samples := b.buf

	b.r.RenderBlock(samples)

	for i, v := range samples {
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(v))
	}

	return n * bytesPerSample, nil
}

// otoOutput plays a BlockReader through an oto context.
type otoOutput struct {
	mu      sync.Mutex
	player  *oto.Player
	started bool
}

func openOto(r Renderer, cfg core.ProcessorConfig) (Output, error) {
	// Four blocks of device buffering.
	buffer := time.Duration(float64(4*cfg.BlockSize) / cfg.SampleRate * float64(time.Second))

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(cfg.SampleRate),
		ChannelCount: cfg.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   buffer,
	})
	if err != nil {
		return nil, fmt.Errorf("audio: oto context: %w", err)
	}
	<-ready

	return &otoOutput{player: ctx.NewPlayer(NewBlockReader(r, cfg.Channels))}, nil
}

func (o *otoOutput) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.started && o.player != nil {
		o.player.Play()
		o.started = true
	}

	return nil
}

func (o *otoOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return nil
	}

	err := o.player.Close()
	o.player = nil
	o.started = false

	if err != nil {
		return fmt.Errorf("audio: close player: %w", err)
	}

	return nil
}
