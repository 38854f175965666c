package audio

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/algo-vecmath"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-polysynth/dsp/core"
)

const (
	wavBitDepth  = 16
	wavPCMFormat = 1
)

// WriteWAV encodes interleaved samples as 16-bit PCM. Samples are multiplied
// by gain and clipped to [-1, 1] first.
func WriteWAV(w io.WriteSeeker, interleaved []float32, cfg core.ProcessorConfig, gain float64) error {
	if cfg.Channels <= 0 || cfg.SampleRate <= 0 {
		return fmt.Errorf("audio: invalid wav format %+v", cfg)
	}

	if len(interleaved)%cfg.Channels != 0 {
		return fmt.Errorf("audio: %d samples is not a whole number of %d-channel frames", len(interleaved), cfg.Channels)
	}

	if !core.IsFinite(gain) {
		return fmt.Errorf("audio: gain must be finite: %f", gain)
	}

	scaled := make([]float64, len(interleaved))
	for i, v := range interleaved {
		scaled[i] = float64(v)
	}
	vecmath.ScaleBlock(scaled, scaled, gain)

	fullScale := float64(int(1)<<(wavBitDepth-1) - 1)

	data := make([]int, len(scaled))
	for i, v := range scaled {
		if !core.IsFinite(v) {
			v = 0
		}
		data[i] = int(math.Round(core.Clamp(v, -1, 1) * fullScale))
	}

	sampleRate := int(math.Round(cfg.SampleRate))

	enc := wav.NewEncoder(w, sampleRate, wavBitDepth, cfg.Channels, wavPCMFormat)

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: cfg.Channels,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: wavBitDepth,
	}

	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		return fmt.Errorf("audio: encode wav: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("audio: finalize wav: %w", err)
	}

	return nil
}

// ReadWAV decodes a PCM WAV stream to interleaved float32 in [-1, 1) and
// reports its sample rate and channel count.
func ReadWAV(r io.ReadSeeker) ([]float32, core.ProcessorConfig, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, core.ProcessorConfig{}, errors.New("audio: not a valid wav stream")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, core.ProcessorConfig{}, fmt.Errorf("audio: decode wav: %w", err)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth <= 0 || buf.Format == nil || buf.Format.NumChannels <= 0 {
		return nil, core.ProcessorConfig{}, errors.New("audio: wav stream has no usable format")
	}

	factor := math.Pow(2, float64(bitDepth-1))

	out := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		out[i] = float32(float64(v) / factor)
	}

	if buf.Format.SampleRate <= 0 {
		return nil, core.ProcessorConfig{}, fmt.Errorf("audio: wav sample rate %d", buf.Format.SampleRate)
	}

	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(float64(buf.Format.SampleRate)),
		core.WithChannels(buf.Format.NumChannels),
	)

	return out, cfg, nil
}
