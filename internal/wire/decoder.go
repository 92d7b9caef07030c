// Package wire decodes and encodes the MIDI 1.0 byte stream.
package wire

import (
	"fmt"
	"time"

	"github.com/leandrodaf/drumkit/sdk/contracts"
)

// MaxSysExSize caps the payload buffered for a single system exclusive message.
const MaxSysExSize = 4096

const (
	statusSysEx    = 0xF0
	statusEndSysEx = 0xF7
	realtimeFirst  = 0xF8
)

// MalformedError reports bytes skipped while resynchronizing on the stream.
type MalformedError struct {
	Skipped int
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: skipped %d byte(s)", contracts.ErrMalformedMessage, e.Skipped)
}

func (e *MalformedError) Unwrap() error { return contracts.ErrMalformedMessage }

// Decoder turns a raw MIDI byte stream into events. It keeps state across Feed calls so
// messages split over several driver packets decode correctly, and it honours running
// status for channel messages. A Decoder is not safe for concurrent use.
type Decoder struct {
	status  byte // running status; zero when none
	fresh   bool // status byte received but no message completed with it yet
	need    int  // data bytes the pending message expects
	data    [2]byte
	have    int
	inSysEx bool
	sysex   []byte
}

// NewDecoder returns a decoder with no running status.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Reset drops any partial message and the running status.
func (d *Decoder) Reset() {
	d.status, d.need, d.have = 0, 0, 0
	d.fresh = false
	d.inSysEx = false
	d.sysex = d.sysex[:0]
}

// Feed decodes data, calling emit for each complete message in stream order.
// Malformed bytes are skipped; the returned error is a *MalformedError when any were.
func (d *Decoder) Feed(data []byte, ts time.Time, emit func(contracts.Event)) error {
	skipped := 0
	for _, b := range data {
		skipped += d.feedByte(b, ts, emit)
	}
	if skipped > 0 {
		return &MalformedError{Skipped: skipped}
	}
	return nil
}

func (d *Decoder) feedByte(b byte, ts time.Time, emit func(contracts.Event)) (skipped int) {
	switch {
	case b >= realtimeFirst:
		// Realtime bytes may interleave anywhere, including inside sysex.
		emit(contracts.Event{Kind: contracts.Other, Status: b, Raw: []byte{b}, Timestamp: ts})
		return 0

	case d.inSysEx:
		if b == statusEndSysEx {
			raw := make([]byte, 0, len(d.sysex)+1)
			raw = append(append(raw, d.sysex...), b)
			d.inSysEx = false
			d.sysex = d.sysex[:0]
			emit(contracts.Event{Kind: contracts.Other, Status: statusSysEx, Raw: raw, Timestamp: ts})
			return 0
		}
		if b&0x80 != 0 {
			// Unterminated sysex: drop it and handle b as a new status.
			skipped = len(d.sysex)
			d.inSysEx = false
			d.sysex = d.sysex[:0]
			return skipped + d.feedByte(b, ts, emit)
		}
		if len(d.sysex) >= MaxSysExSize {
			skipped = len(d.sysex) + 1
			d.inSysEx = false
			d.sysex = d.sysex[:0]
			d.status = 0
			return skipped
		}
		d.sysex = append(d.sysex, b)
		return 0

	case b&0x80 != 0:
		return d.startStatus(b, ts, emit)

	default:
		return d.dataByte(b, ts, emit)
	}
}

func (d *Decoder) startStatus(b byte, ts time.Time, emit func(contracts.Event)) (skipped int) {
	// Whatever the pending message collected was cut short by this status byte.
	skipped = d.have
	if d.fresh {
		skipped++
	}
	d.have = 0
	d.fresh = false

	switch {
	case b == statusSysEx:
		d.status, d.need = 0, 0
		d.inSysEx = true
		d.sysex = append(d.sysex[:0], b)
		return skipped
	case b == statusEndSysEx:
		d.status, d.need = 0, 0
		return skipped + 1
	}

	n := MessageLength(b) - 1
	if n == 0 {
		d.status, d.need = 0, 0
		emit(d.build(b, nil, ts))
		return skipped
	}
	d.status, d.need = b, n
	d.fresh = true
	return skipped
}

func (d *Decoder) dataByte(b byte, ts time.Time, emit func(contracts.Event)) int {
	if d.status == 0 {
		return 1
	}
	d.data[d.have] = b
	d.have++
	if d.have < d.need {
		return 0
	}
	ev := d.build(d.status, d.data[:d.need], ts)
	d.have = 0
	d.fresh = false
	if d.status >= statusSysEx {
		// System common messages do not establish running status.
		d.status, d.need = 0, 0
	}
	emit(ev)
	return 0
}

func (d *Decoder) build(status byte, data []byte, ts time.Time) contracts.Event {
	ev := contracts.Event{Status: status, Timestamp: ts}
	if len(data) > 0 {
		ev.Data1 = data[0]
	}
	if len(data) > 1 {
		ev.Data2 = data[1]
	}
	if status < statusSysEx {
		ev.Channel = status & 0x0F
	}

	switch status & 0xF0 {
	case 0x80:
		ev.Kind = contracts.NoteOff
	case 0x90:
		ev.Kind = contracts.NoteOn
	case 0xB0:
		ev.Kind = contracts.ControlChange
	default:
		ev.Kind = contracts.Other
		raw := make([]byte, 0, 1+len(data))
		ev.Raw = append(append(raw, status), data...)
	}
	return ev
}

// MessageLength returns the total size in bytes of a short message starting with status,
// or 0 for sysex and non-status bytes.
func MessageLength(status byte) int {
	if status&0x80 == 0 {
		return 0
	}
	switch status & 0xF0 {
	case 0x80, 0x90, 0xA0, 0xB0, 0xE0:
		return 3
	case 0xC0, 0xD0:
		return 2
	}
	switch status {
	case 0xF1, 0xF3:
		return 2
	case 0xF2:
		return 3
	case statusSysEx, statusEndSysEx:
		return 0
	}
	// F4-F6 and realtime F8-FF carry no data.
	return 1
}
