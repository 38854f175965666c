// Command polysynth plays the synth engine live.
//
// Usage:
//
//	polysynth [flags]
//
// Notes and controllers come from a MIDI input port (-midi) and/or the
// terminal keyboard (-keyboard). Without -keyboard the synth plays until
// Enter is pressed or the process is interrupted.
//
// Examples:
//
//	polysynth -midi list
//	polysynth -midi auto
//	polysynth -midi KeyStep -backend oto
//	polysynth -keyboard -release-on-silence
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-polysynth/dsp/core"
	"github.com/cwbudde/algo-polysynth/internal/audio"
	"github.com/cwbudde/algo-polysynth/internal/keyboard"
	"github.com/cwbudde/algo-polysynth/internal/midiin"
	"github.com/cwbudde/algo-polysynth/synth"
)

// logger is the process-wide logger, replaced by initLogger.
var logger = slog.Default()

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

type options struct {
	backend          string
	sampleRate       float64
	blockSize        int
	midiPort         string
	keyboard         bool
	maxVoices        int
	queueCapacity    int
	dropWhenFull     bool
	amplitudeScaling bool
	releaseOnSilence bool
	honorResonance   bool
	statsInterval    time.Duration
}

func main() {
	var o options

	flag.StringVar(&o.backend, "backend", audio.BackendPortAudio, "audio backend: "+strings.Join(audio.Backends(), ", "))
	flag.Float64Var(&o.sampleRate, "rate", core.DefaultSampleRate, "sample rate in Hz")
	flag.IntVar(&o.blockSize, "block", core.DefaultBlockSize, "frames per device buffer")
	flag.StringVar(&o.midiPort, "midi", "", `MIDI input port: index, name or substring; "auto" picks the only port; "list" prints ports`)
	flag.BoolVar(&o.keyboard, "keyboard", false, "play from the terminal keyboard")
	flag.IntVar(&o.maxVoices, "max-voices", 0, "polyphony limit, 0 = unbounded")
	flag.IntVar(&o.queueCapacity, "queue", 1024, "pending event capacity between blocks")
	flag.BoolVar(&o.dropWhenFull, "drop-when-full", false, "drop events on a full queue instead of waiting")
	flag.BoolVar(&o.amplitudeScaling, "amp-scaling", false, "scale voices by the envelope instead of gating their sign")
	flag.BoolVar(&o.releaseOnSilence, "release-on-silence", false, "close the gate when the last note is released")
	flag.BoolVar(&o.honorResonance, "resonance", false, "let controller 3 set the filter Q")
	flag.DurationVar(&o.statsInterval, "stats", 5*time.Second, "interval for queue statistics in debug logs")
	debug := flag.Bool("debug", false, "enable debug logging (adds source location)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: polysynth [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Plays a polyphonic square-wave synth with a swept resonant low-pass.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n%s\n", keyboard.Help())
	}
	flag.Parse()

	initLogger(*debug)

	if o.midiPort == "list" {
		if err := printPorts(); err != nil {
			logger.Error("listing MIDI ports failed", "err", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o); err != nil {
		logger.Error("polysynth failed", "err", err)
		os.Exit(1)
	}
}

func printPorts() error {
	names, err := midiin.Ports()
	if err != nil {
		return err
	}

	if len(names) == 0 {
		fmt.Println("no MIDI input ports")
		return nil
	}

	for i, name := range names {
		fmt.Printf("%d: %s\n", i, name)
	}

	return nil
}

func run(ctx context.Context, o options) error {
	engine, err := synth.New(
		synth.WithSampleRate(o.sampleRate),
		synth.WithBlockSize(o.blockSize),
		synth.WithMaxVoices(o.maxVoices),
		synth.WithQueueCapacity(o.queueCapacity),
		synth.WithDropWhenFull(o.dropWhenFull),
		synth.WithAmplitudeScaling(o.amplitudeScaling),
		synth.WithReleaseOnSilence(o.releaseOnSilence),
		synth.WithResonanceHonored(o.honorResonance),
		synth.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	cfg := engine.Config()
	logger.Info("polysynth starting",
		"backend", o.backend,
		"sample_rate", cfg.SampleRate,
		"block", cfg.BlockSize,
		"channels", cfg.Channels,
		"midi", o.midiPort,
		"keyboard", o.keyboard,
	)

	if o.midiPort == "" && !o.keyboard {
		logger.Warn("no input source; pass -midi or -keyboard to play notes")
	}

	out, err := audio.Open(o.backend, engine, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			logger.Warn("closing audio output failed", "err", cerr)
		}
	}()

	if o.midiPort != "" {
		l, err := midiin.New(engine, midiin.WithLogger(logger))
		if err != nil {
			return err
		}

		want := o.midiPort
		if want == "auto" {
			want = ""
		}

		if _, err := l.Open(want); err != nil {
			return err
		}
		defer func() {
			if cerr := l.Close(); cerr != nil {
				logger.Warn("closing MIDI input failed", "err", cerr)
			}
		}()
	}

	if err := out.Start(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if o.keyboard {
		fmt.Fprintln(os.Stderr, keyboard.Help())
		g.Go(func() error {
			defer cancel()
			return keyboard.New().Run(gctx, os.Stdin, engine)
		})
	} else {
		// Not part of the group: a blocked stdin read must not hold up shutdown.
		go func() {
			fmt.Fprintln(os.Stderr, "playing; press Enter to stop")
			_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
			cancel()
		}()
	}

	if o.statsInterval > 0 {
		g.Go(func() error {
			reportStats(gctx, engine, o.statsInterval)
			return nil
		})
	}

	<-gctx.Done()

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	logger.Info("polysynth stopped", "dropped_events", engine.Dropped())

	return err
}

// reportStats logs queue depth and newly dropped events until ctx ends.
func reportStats(ctx context.Context, e *synth.Engine, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()

	var lastDropped uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			dropped := e.Dropped()
			if dropped != lastDropped {
				logger.Warn("events dropped", "since_last", dropped-lastDropped, "total", dropped)
				lastDropped = dropped
			}
			logger.Debug("engine queue", "pending", e.Pending())
		}
	}
}
