// Command synthrender renders the synth engine offline to a WAV file and
// reports the dominant frequency and peak level of the result.
//
// Usage:
//
//	synthrender [flags]
//
// Examples:
//
//	synthrender -notes 69 -cc 1=127 -out a4.wav
//	synthrender -notes 60,64,67 -cc 1=100,2=6,3=64 -duration 4 -release 3
//	synthrender -analyze a4.wav
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/cwbudde/algo-polysynth/internal/audio"
	"github.com/cwbudde/algo-polysynth/synth"
)

var logger = slog.Default()

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func main() {
	notesRaw := flag.String("notes", "69", "comma-separated MIDI notes to hold")
	ccRaw := flag.String("cc", "1=127", "comma-separated controller settings, index=value (index 1..4, value 0..127)")
	duration := flag.Float64("duration", 2, "render length in seconds")
	release := flag.Float64("release", -1, "seconds before the notes are released; negative holds them")
	sampleRate := flag.Float64("rate", 44100, "sample rate in Hz")
	blockSize := flag.Int("block", 64, "render block size in frames")
	gain := flag.Float64("gain", 0.25, "output gain applied before 16-bit quantization")
	outPath := flag.String("out", "render.wav", "output WAV path")
	analyzePath := flag.String("analyze", "", "analyze an existing WAV file instead of rendering")
	ampScaling := flag.Bool("amp-scaling", false, "scale voices by the envelope instead of gating their sign")
	releaseOnSilence := flag.Bool("release-on-silence", false, "close the gate when the last note is released")
	resonance := flag.Bool("resonance", false, "let controller 3 set the filter Q")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	initLogger(*debug)

	if *analyzePath != "" {
		if err := analyzeFile(*analyzePath); err != nil {
			die("analyze: %v", err)
		}
		return
	}

	notes, err := parseNotes(*notesRaw)
	if err != nil {
		die("notes: %v", err)
	}

	ccs, err := parseControllers(*ccRaw)
	if err != nil {
		die("cc: %v", err)
	}

	engine, err := synth.New(
		synth.WithSampleRate(*sampleRate),
		synth.WithBlockSize(*blockSize),
		synth.WithAmplitudeScaling(*ampScaling),
		synth.WithReleaseOnSilence(*releaseOnSilence),
		synth.WithResonanceHonored(*resonance),
		synth.WithLogger(logger),
	)
	if err != nil {
		die("%v", err)
	}

	rs := renderSettings{
		notes:       notes,
		controllers: ccs,
		duration:    *duration,
		release:     *release,
	}

	interleaved, err := render(engine, rs)
	if err != nil {
		die("render: %v", err)
	}

	cfg := engine.Config()

	f, err := os.Create(*outPath)
	if err != nil {
		die("create %s: %v", *outPath, err)
	}

	if err := audio.WriteWAV(f, interleaved, cfg, *gain); err != nil {
		_ = f.Close()
		die("write %s: %v", *outPath, err)
	}

	if err := f.Close(); err != nil {
		die("close %s: %v", *outPath, err)
	}

	logger.Info("rendered",
		"path", *outPath,
		"frames", len(interleaved)/cfg.Channels,
		"notes", notes,
		"dropped_events", engine.Dropped(),
	)

	rep, err := analyze(interleaved, cfg.Channels, cfg.SampleRate)
	if err != nil {
		die("analyze: %v", err)
	}

	fmt.Println(rep)
}

func analyzeFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	interleaved, cfg, err := audio.ReadWAV(f)
	if err != nil {
		return err
	}

	rep, err := analyze(interleaved, cfg.Channels, cfg.SampleRate)
	if err != nil {
		return err
	}

	fmt.Println(rep)

	return nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
