// Package keyboard turns a raw-mode terminal into a small piano.
//
// Terminals report key presses but not releases, so every note key
// toggles its note.
package keyboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/cwbudde/algo-polysynth/synth"
)

const (
	defaultOctave = 4 // z plays C4, MIDI 60
	maxOctave     = 9
	controlStep   = 8
	maxRaw        = 127
)

const (
	keyCtrlC = 0x03
	keyCtrlD = 0x04
	keyEsc   = 0x1b
)

var (
	lowerRow = "zsxdcvgbhnjm"
	upperRow = "q2w3er5t6y7u"
)

// controlKeys maps a key to a controller index and a step direction.
var controlKeys = map[byte]struct {
	index int
	delta int
}{
	'9': {synth.ControllerCutoff, -controlStep},
	'0': {synth.ControllerCutoff, controlStep},
	'o': {synth.ControllerLFORate, -controlStep},
	'p': {synth.ControllerLFORate, controlStep},
	'l': {synth.ControllerResonance, -controlStep},
	';': {synth.ControllerResonance, controlStep},
}

// Sink accepts decoded commands. *synth.Engine implements it.
type Sink interface {
	Submit(cmd synth.Command) bool
}

// Keyboard is the key-to-command state machine.
type Keyboard struct {
	octave   int
	held     map[uint8]bool
	controls [synth.ControllerCount]int
}

// New returns a keyboard at the default octave with all controllers at 0.
func New() *Keyboard {
	return &Keyboard{
		octave: defaultOctave,
		held:   make(map[uint8]bool),
	}
}

// Octave returns the octave of the lower row.
func (k *Keyboard) Octave() int { return k.octave }

// Press applies one key and returns the commands it produces. quit reports
// an exit key.
func (k *Keyboard) Press(b byte) (cmds []synth.Command, quit bool) {
	switch b {
	case keyCtrlC, keyCtrlD, keyEsc:
		return nil, true
	case ' ':
		return k.releaseAll(), false
	case '-':
		if k.octave > 0 {
			k.octave--
		}
		return nil, false
	case '=':
		if k.octave < maxOctave {
			k.octave++
		}
		return nil, false
	}

	if c, ok := controlKeys[b]; ok {
		v := &k.controls[c.index-1]
		*v = min(max(*v+c.delta, 0), maxRaw)
		return []synth.Command{{Kind: synth.CommandController, Index: c.index, Value: uint8(*v)}}, false
	}

	note, ok := k.noteFor(b)
	if !ok {
		return nil, false
	}

	kind := synth.CommandNoteOn
	if k.held[note] {
		kind = synth.CommandNoteOff
		delete(k.held, note)
	} else {
		k.held[note] = true
	}

	return []synth.Command{{Kind: kind, Note: note}}, false
}

func (k *Keyboard) noteFor(b byte) (uint8, bool) {
	base := 12 * (k.octave + 1)

	if i := strings.IndexByte(lowerRow, b); i >= 0 {
		return checkedNote(base + i)
	}
	if i := strings.IndexByte(upperRow, b); i >= 0 {
		return checkedNote(base + 12 + i)
	}

	return 0, false
}

func checkedNote(n int) (uint8, bool) {
	if n < 0 || n > maxRaw {
		return 0, false
	}
	return uint8(n), true
}

func (k *Keyboard) releaseAll() []synth.Command {
	cmds := make([]synth.Command, 0, len(k.held))
	for n := 0; n <= maxRaw; n++ {
		if k.held[uint8(n)] {
			cmds = append(cmds, synth.Command{Kind: synth.CommandNoteOff, Note: uint8(n)})
		}
	}
	clear(k.held)
	return cmds
}

// Run reads keys from in until ctx is done, an exit key is pressed or in
// hits EOF. If in is a terminal it is switched to raw mode and restored on
// return. Held notes are released before Run returns.
func (k *Keyboard) Run(ctx context.Context, in io.Reader, sink Sink) error {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		state, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return fmt.Errorf("keyboard: raw mode: %w", err)
		}
		defer func() { _ = term.Restore(int(f.Fd()), state) }()
	}

	defer func() { k.submit(sink, k.releaseAll()) }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keys := make(chan byte)
	readErr := make(chan error, 1)

	// A reader blocked in Read outlives Run until the next key arrives.
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := in.Read(buf)
			if n > 0 {
				select {
				case keys <- buf[0]:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("keyboard: read: %w", err)
		case b := <-keys:
			cmds, quit := k.Press(b)
			k.submit(sink, cmds)
			if quit {
				return nil
			}
		}
	}
}

func (k *Keyboard) submit(sink Sink, cmds []synth.Command) {
	for _, c := range cmds {
		sink.Submit(c)
	}
}

// Help describes the key layout.
func Help() string {
	return "keys: z s x d c v g b h n j m / q 2 w 3 e r 5 t 6 y 7 u toggle notes, " +
		"-/= octave, 9/0 cutoff, o/p lfo rate, l/; resonance, space release all, esc quit"
}
