package synth

import "fmt"

// CommandKind identifies a performance event.
type CommandKind uint8

const (
	CommandNoteOn CommandKind = iota + 1
	CommandNoteOff
	CommandController
)

func (k CommandKind) String() string {
	switch k {
	case CommandNoteOn:
		return "note_on"
	case CommandNoteOff:
		return "note_off"
	case CommandController:
		return "controller"
	default:
		return "unknown"
	}
}

// Command is one queued mutation of the performance state.
type Command struct {
	Kind  CommandKind
	Note  uint8 // note events
	Index int   // controller events, 1-based
	Value uint8 // controller events, 0..127
}

func (c Command) String() string {
	switch c.Kind {
	case CommandNoteOn, CommandNoteOff:
		return fmt.Sprintf("%s(%d)", c.Kind, c.Note)
	case CommandController:
		return fmt.Sprintf("%s(%d=%d)", c.Kind, c.Index, c.Value)
	default:
		return c.Kind.String()
	}
}

// Valid reports whether the command is within the accepted ranges.
func (c Command) Valid() bool {
	switch c.Kind {
	case CommandNoteOn, CommandNoteOff:
		return c.Note <= maxRawValue
	case CommandController:
		return c.Index >= 1 && c.Index <= ControllerCount && c.Value <= maxRawValue
	default:
		return false
	}
}

// MIDI status nibbles understood by [DecodeMessage].
const (
	statusNoteOff       = 0x8
	statusNoteOn        = 0x9
	statusControlChange = 0xB
)

// DecodeMessage translates a raw (status, data1, data2) triple into a
// command. Note-on with velocity 0 is a note-off. Control changes map the
// controller number in data1 directly to a controller index. Anything else,
// and anything out of range, reports false.
func DecodeMessage(status, data1, data2 byte) (Command, bool) {
	var cmd Command

	switch status >> 4 {
	case statusNoteOn:
		cmd = Command{Kind: CommandNoteOn, Note: data1}
		if data2 == 0 {
			cmd.Kind = CommandNoteOff
		}
	case statusNoteOff:
		cmd = Command{Kind: CommandNoteOff, Note: data1}
	case statusControlChange:
		cmd = Command{Kind: CommandController, Index: int(data1), Value: data2}
	default:
		return Command{}, false
	}

	if !cmd.Valid() {
		return Command{}, false
	}

	return cmd, true
}

// DecodeBytes decodes a raw MIDI message. Messages shorter than three bytes
// are ignored.
func DecodeBytes(msg []byte) (Command, bool) {
	if len(msg) < 3 {
		return Command{}, false
	}

	return DecodeMessage(msg[0], msg[1], msg[2])
}
