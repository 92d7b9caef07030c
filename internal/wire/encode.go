package wire

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/leandrodaf/drumkit/sdk/contracts"
)

// Encode renders an event back to its wire bytes. Decoding the result yields an event
// equal to ev. Other events are written from Raw, or from Status alone when Raw is empty.
func Encode(ev contracts.Event) []byte {
	switch ev.Kind {
	case contracts.NoteOn:
		return midi.NoteOn(ev.Channel, ev.Data1, ev.Data2)
	case contracts.NoteOff:
		return midi.NoteOffVelocity(ev.Channel, ev.Data1, ev.Data2)
	case contracts.ControlChange:
		return midi.ControlChange(ev.Channel, ev.Data1, ev.Data2)
	}
	if len(ev.Raw) > 0 {
		out := make([]byte, len(ev.Raw))
		copy(out, ev.Raw)
		return out
	}
	return []byte{ev.Status}
}

// NewNoteOn builds a decoded-form NoteOn event, as Decoder would produce it.
func NewNoteOn(channel, note, velocity uint8) contracts.Event {
	return contracts.Event{Kind: contracts.NoteOn, Channel: channel & 0x0F, Data1: note & 0x7F, Data2: velocity & 0x7F, Status: 0x90 | channel&0x0F}
}

// NewNoteOff builds a decoded-form NoteOff event.
func NewNoteOff(channel, note, velocity uint8) contracts.Event {
	return contracts.Event{Kind: contracts.NoteOff, Channel: channel & 0x0F, Data1: note & 0x7F, Data2: velocity & 0x7F, Status: 0x80 | channel&0x0F}
}

// NewControlChange builds a decoded-form ControlChange event.
func NewControlChange(channel, controller, value uint8) contracts.Event {
	return contracts.Event{Kind: contracts.ControlChange, Channel: channel & 0x0F, Data1: controller & 0x7F, Data2: value & 0x7F, Status: 0xB0 | channel&0x0F}
}
