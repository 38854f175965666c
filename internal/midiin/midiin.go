// Package midiin forwards a hardware MIDI input port to a synth engine.
package midiin

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/cwbudde/algo-polysynth/synth"
)

// ErrNoPorts is returned when the system exposes no MIDI input.
var ErrNoPorts = errors.New("midiin: no input ports")

// Sink receives raw (status, data1, data2) triples. *synth.Engine
// implements it.
type Sink interface {
	HandleMessage(status, data1, data2 byte) bool
}

// Option mutates listener configuration.
type Option func(*config) error

type config struct {
	logger *slog.Logger
}

// WithLogger sets the logger. Nil restores slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) error {
		cfg.logger = logger
		return nil
	}
}

// Listener owns one open input port.
type Listener struct {
	sink   Sink
	logger *slog.Logger

	mu   sync.Mutex
	drv  *rtmididrv.Driver
	in   drivers.In
	stop func()
	name string

	heldMu sync.Mutex
	held   map[uint8]struct{}
}

// New returns a listener forwarding to sink. No port is opened yet.
func New(sink Sink, opts ...Option) (*Listener, error) {
	if sink == nil {
		return nil, errors.New("midiin: nil sink")
	}

	var cfg config
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Listener{
		sink:   sink,
		logger: logger,
		held:   make(map[uint8]struct{}),
	}, nil
}

// Ports lists the names of the available input ports.
func Ports() ([]string, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("midiin: open driver: %w", err)
	}
	defer drv.Close()

	ins, err := drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("midiin: list inputs: %w", err)
	}

	return portNames(ins), nil
}

func portNames(ins []drivers.In) []string {
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names
}

// SelectPort resolves want against the available port names. An empty
// want picks the only port. A number is taken as an index. Anything else
// matches a name exactly, then as a case-insensitive substring.
func SelectPort(names []string, want string) (int, error) {
	if len(names) == 0 {
		return -1, ErrNoPorts
	}

	want = strings.TrimSpace(want)
	if want == "" {
		if len(names) == 1 {
			return 0, nil
		}
		return -1, fmt.Errorf("midiin: %d input ports, choose one of: %s", len(names), strings.Join(names, ", "))
	}

	if idx, err := strconv.Atoi(want); err == nil {
		if idx < 0 || idx >= len(names) {
			return -1, fmt.Errorf("midiin: port index %d out of range 0..%d", idx, len(names)-1)
		}
		return idx, nil
	}

	for i, name := range names {
		if name == want {
			return i, nil
		}
	}

	var matches []int
	lower := strings.ToLower(want)
	for i, name := range names {
		if strings.Contains(strings.ToLower(name), lower) {
			matches = append(matches, i)
		}
	}

	switch len(matches) {
	case 0:
		return -1, fmt.Errorf("midiin: no input port matches %q", want)
	case 1:
		return matches[0], nil
	default:
		return -1, fmt.Errorf("midiin: %q matches %d ports", want, len(matches))
	}
}

// Open connects to the port selected by want (see [SelectPort]) and starts
// forwarding messages. It returns the chosen port name.
func (l *Listener) Open(want string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.in != nil {
		return "", fmt.Errorf("midiin: already listening on %q", l.name)
	}

	if l.drv == nil {
		drv, err := rtmididrv.New()
		if err != nil {
			return "", fmt.Errorf("midiin: open driver: %w", err)
		}
		l.drv = drv
	}

	ins, err := l.drv.Ins()
	if err != nil {
		return "", fmt.Errorf("midiin: list inputs: %w", err)
	}

	idx, err := SelectPort(portNames(ins), want)
	if err != nil {
		return "", err
	}

	in := ins[idx]
	name := in.String()

	if err := in.Open(); err != nil {
		return "", fmt.Errorf("midiin: open %q: %w", name, err)
	}

	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		l.handle(msg.Bytes())
	}, midi.HandleError(func(listenErr error) {
		l.logger.Warn("midiin: listener error, releasing held notes", "port", name, "err", listenErr)
		// stop must not be called from the listener goroutine.
		go l.disconnect(name)
	}))
	if err != nil {
		_ = in.Close()
		return "", fmt.Errorf("midiin: listen on %q: %w", name, err)
	}

	l.in = in
	l.stop = stop
	l.name = name

	l.logger.Info("midiin: connected", "port", name)

	return name, nil
}

// Close stops listening, releases held notes and closes the driver.
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.closePortLocked()
	l.releaseHeld()

	if l.drv != nil {
		if cerr := l.drv.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("midiin: close driver: %w", cerr))
		}
		l.drv = nil
	}

	return err
}

func (l *Listener) disconnect(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.in == nil || l.name != name {
		return
	}

	if err := l.closePortLocked(); err != nil {
		l.logger.Warn("midiin: close after error", "port", name, "err", err)
	}
	l.releaseHeld()
}

func (l *Listener) closePortLocked() error {
	if l.stop != nil {
		l.stop()
		l.stop = nil
	}

	var err error
	if l.in != nil {
		if cerr := l.in.Close(); cerr != nil {
			err = fmt.Errorf("midiin: close %q: %w", l.name, cerr)
		}
		l.logger.Info("midiin: disconnected", "port", l.name)
		l.in = nil
		l.name = ""
	}

	return err
}

// handle forwards one raw message and tracks which notes are held.
func (l *Listener) handle(raw []byte) {
	if len(raw) < 3 {
		l.logger.Debug("midiin: ignoring short message", "len", len(raw))
		return
	}

	if cmd, ok := synth.DecodeBytes(raw); ok {
		l.heldMu.Lock()
		switch cmd.Kind {
		case synth.CommandNoteOn:
			l.held[cmd.Note] = struct{}{}
		case synth.CommandNoteOff:
			delete(l.held, cmd.Note)
		}
		l.heldMu.Unlock()
	}

	if !l.sink.HandleMessage(raw[0], raw[1], raw[2]) {
		l.logger.Debug("midiin: message not queued", "status", raw[0], "data1", raw[1], "data2", raw[2])
	}
}

// releaseHeld sends a note-off for every note still held, lowest first.
func (l *Listener) releaseHeld() {
	l.heldMu.Lock()
	notes := make([]int, 0, len(l.held))
	for n := range l.held {
		notes = append(notes, int(n))
	}
	clear(l.held)
	l.heldMu.Unlock()

	sort.Ints(notes)
	for _, n := range notes {
		l.sink.HandleMessage(0x80, byte(n), 0)
	}
}

// Held returns the notes currently held on the port, lowest first.
func (l *Listener) Held() []uint8 {
	l.heldMu.Lock()
	defer l.heldMu.Unlock()

	notes := make([]int, 0, len(l.held))
	for n := range l.held {
		notes = append(notes, int(n))
	}
	sort.Ints(notes)

	out := make([]uint8, len(notes))
	for i, n := range notes {
		out[i] = uint8(n)
	}
	return out
}
