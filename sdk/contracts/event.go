package contracts

import (
	"fmt"
	"time"

	"gitlab.com/gomidi/midi/v2"
)

// EventKind classifies a decoded MIDI message.
type EventKind uint8

const (
	// Other covers every structurally valid message that is not a note or control change
	// (clock, sysex, pitch bend, program change, ...).
	Other EventKind = iota
	// NoteOn is a Note On message (status 0x9n).
	NoteOn
	// NoteOff is a Note Off message (status 0x8n).
	NoteOff
	// ControlChange is a Control Change message (status 0xBn).
	ControlChange
)

// String returns the kind name used in logs.
func (k EventKind) String() string {
	switch k {
	case NoteOn:
		return "NoteOn"
	case NoteOff:
		return "NoteOff"
	case ControlChange:
		return "ControlChange"
	default:
		return "Other"
	}
}

// Event is a single decoded MIDI message.
type Event struct {
	Kind      EventKind // Kind of message.
	Channel   uint8     // Channel 0-15; zero for system messages.
	Data1     uint8     // Note or controller number (0-127).
	Data2     uint8     // Velocity or controller value (0-127).
	Status    byte      // Raw status byte.
	Raw       []byte    // Complete message bytes; set for Other events.
	Timestamp time.Time // Arrival time.
}

// Note returns the note number of a NoteOn or NoteOff event.
func (e Event) Note() uint8 { return e.Data1 }

// Velocity returns the velocity of a NoteOn or NoteOff event.
func (e Event) Velocity() uint8 { return e.Data2 }

// Controller returns the controller number of a ControlChange event.
func (e Event) Controller() uint8 { return e.Data1 }

// Value returns the controller value of a ControlChange event.
func (e Event) Value() uint8 { return e.Data2 }

// IsNoteEnd reports whether the event ends a note: a NoteOff, or a NoteOn with velocity 0.
func (e Event) IsNoteEnd() bool {
	return e.Kind == NoteOff || (e.Kind == NoteOn && e.Data2 == 0)
}

// IsHit reports whether the event is a struck pad (NoteOn with non-zero velocity).
func (e Event) IsHit() bool {
	return e.Kind == NoteOn && e.Data2 > 0
}

// Equal compares two events ignoring the timestamp.
func (e Event) Equal(o Event) bool {
	if e.Kind != o.Kind || e.Channel != o.Channel || e.Data1 != o.Data1 || e.Data2 != o.Data2 || e.Status != o.Status {
		return false
	}
	if len(e.Raw) != len(o.Raw) {
		return false
	}
	for i := range e.Raw {
		if e.Raw[i] != o.Raw[i] {
			return false
		}
	}
	return true
}

func (e Event) String() string {
	switch e.Kind {
	case NoteOn, NoteOff:
		return fmt.Sprintf("%s channel=%d note=%d velocity=%d", e.Kind, e.Channel, e.Data1, e.Data2)
	case ControlChange:
		return fmt.Sprintf("%s channel=%d controller=%d value=%d", e.Kind, e.Channel, e.Data1, e.Data2)
	default:
		if len(e.Raw) > 0 {
			return fmt.Sprintf("%s %s", e.Kind, midi.Message(e.Raw).String())
		}
		return fmt.Sprintf("%s status=0x%02X", e.Kind, e.Status)
	}
}

// Sink consumes events pushed by a subscribed session.
// Both methods run on the session's delivery goroutine, never on the subscriber's.
type Sink interface {
	OnEvent(Event)
	OnError(error)
}

// SinkFuncs adapts plain functions to Sink. A nil OnErr ignores errors.
type SinkFuncs struct {
	Event func(Event)
	Err   func(error)
}

func (s SinkFuncs) OnEvent(e Event) {
	if s.Event != nil {
		s.Event(e)
	}
}

func (s SinkFuncs) OnError(err error) {
	if s.Err != nil {
		s.Err(err)
	}
}

// SessionStats holds the counters of a session.
type SessionStats struct {
	Delivered uint64 // Events handed to the reader or subscriber buffer.
	Dropped   uint64 // Events discarded because the buffer was full.
	Filtered  uint64 // Events discarded by the event filter.
	Malformed uint64 // Bytes skipped while resynchronizing.
}
