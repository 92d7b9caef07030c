package wire

import (
	"errors"
	"testing"
	"time"

	"github.com/leandrodaf/drumkit/sdk/contracts"
)

func TestDecoder_Kinds(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want contracts.Event
	}{
		{"note on", []byte{0x99, 36, 110}, NewNoteOn(9, 36, 110)},
		{"note on zero velocity stays note on", []byte{0x90, 38, 0}, NewNoteOn(0, 38, 0)},
		{"note off", []byte{0x85, 42, 64}, NewNoteOff(5, 42, 64)},
		{"control change", []byte{0xB9, 4, 90}, NewControlChange(9, 4, 90)},
		{"pitch bend", []byte{0xE2, 0x00, 0x40}, contracts.Event{Kind: contracts.Other, Channel: 2, Data1: 0, Data2: 0x40, Status: 0xE2, Raw: []byte{0xE2, 0x00, 0x40}}},
		{"program change", []byte{0xC9, 7}, contracts.Event{Kind: contracts.Other, Channel: 9, Data1: 7, Status: 0xC9, Raw: []byte{0xC9, 7}}},
		{"song position", []byte{0xF2, 1, 2}, contracts.Event{Kind: contracts.Other, Data1: 1, Data2: 2, Status: 0xF2, Raw: []byte{0xF2, 1, 2}}},
		{"tune request", []byte{0xF6}, contracts.Event{Kind: contracts.Other, Status: 0xF6, Raw: []byte{0xF6}}},
		{"undefined status", []byte{0xF4}, contracts.Event{Kind: contracts.Other, Status: 0xF4, Raw: []byte{0xF4}}},
		{"clock", []byte{0xF8}, contracts.Event{Kind: contracts.Other, Status: 0xF8, Raw: []byte{0xF8}}},
		{"sysex", []byte{0xF0, 0x43, 0x10, 0xF7}, contracts.Event{Kind: contracts.Other, Status: 0xF0, Raw: []byte{0xF0, 0x43, 0x10, 0xF7}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			events, err := decodeAll(t, tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(events) != 1 {
				t.Fatalf("expected 1 event, got %d: %v", len(events), events)
			}
			if !events[0].Equal(tc.want) {
				t.Fatalf("got %+v, want %+v", events[0], tc.want)
			}
		})
	}
}

func TestDecoder_SplitAcrossFeeds(t *testing.T) {
	d := NewDecoder()
	var got []contracts.Event
	emit := func(e contracts.Event) { got = append(got, e) }

	for _, chunk := range [][]byte{{0x99}, {36}, {100, 0x89, 36}, {0}} {
		if err := d.Feed(chunk, time.Time{}, emit); err != nil {
			t.Fatalf("Feed(%v): %v", chunk, err)
		}
	}
	if len(got) != 2 || !got[0].Equal(NewNoteOn(9, 36, 100)) || !got[1].Equal(NewNoteOff(9, 36, 0)) {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestDecoder_RunningStatus(t *testing.T) {
	events, err := decodeAll(t, []byte{0x99, 36, 100, 38, 80, 42, 0})
	if err != nil {
		t.Fatal(err)
	}
	want := []contracts.Event{NewNoteOn(9, 36, 100), NewNoteOn(9, 38, 80), NewNoteOn(9, 42, 0)}
	if len(events) != len(want) {
		t.Fatalf("got %d events", len(events))
	}
	for i := range want {
		if !events[i].Equal(want[i]) {
			t.Fatalf("event %d: got %v want %v", i, events[i], want[i])
		}
	}
}

func TestDecoder_RealtimeInsideMessage(t *testing.T) {
	events, err := decodeAll(t, []byte{0x99, 0xF8, 36, 0xFE, 100})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %v", events)
	}
	if events[0].Status != 0xF8 || events[1].Status != 0xFE {
		t.Fatalf("realtime bytes not emitted first: %v", events)
	}
	if !events[2].Equal(NewNoteOn(9, 36, 100)) {
		t.Fatalf("note on broken by realtime bytes: %v", events[2])
	}
}

func TestDecoder_MalformedInputIsSkipped(t *testing.T) {
	cases := []struct {
		name    string
		in      []byte
		skipped int
	}{
		{"leading data bytes", []byte{0x10, 0x20, 0x99, 36, 100}, 2},
		{"truncated message", []byte{0x99, 36, 0x99, 38, 90}, 2},
		{"lone status", []byte{0x90, 0x99, 38, 90}, 1},
		{"stray end of sysex", []byte{0xF7, 0x99, 38, 90}, 1},
		{"unterminated sysex", []byte{0xF0, 1, 2, 0x99, 38, 90}, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			events, err := decodeAll(t, tc.in)
			var merr *MalformedError
			if !errors.As(err, &merr) {
				t.Fatalf("expected *MalformedError, got %v", err)
			}
			if !errors.Is(err, contracts.ErrMalformedMessage) {
				t.Fatalf("error does not match ErrMalformedMessage")
			}
			if merr.Skipped != tc.skipped {
				t.Fatalf("skipped=%d, want %d", merr.Skipped, tc.skipped)
			}
			if len(events) != 1 || events[0].Kind != contracts.NoteOn {
				t.Fatalf("expected the trailing note on, got %v", events)
			}
		})
	}
}

func TestDecoder_OversizedSysExDropped(t *testing.T) {
	data := make([]byte, 0, MaxSysExSize+8)
	data = append(data, 0xF0)
	for i := 0; i < MaxSysExSize+2; i++ {
		data = append(data, 0x01)
	}
	data = append(data, 0xF7, 0x99, 36, 100)

	events, err := decodeAll(t, data)
	if !errors.Is(err, contracts.ErrMalformedMessage) {
		t.Fatalf("expected malformed error, got %v", err)
	}
	if len(events) != 1 || !events[0].Equal(NewNoteOn(9, 36, 100)) {
		t.Fatalf("unexpected events after oversized sysex: %v", events)
	}
}

func TestDecoder_ResetDropsRunningStatus(t *testing.T) {
	d := NewDecoder()
	_ = d.Feed([]byte{0x99, 36, 100}, time.Time{}, func(contracts.Event) {})
	d.Reset()
	err := d.Feed([]byte{38, 80}, time.Time{}, func(e contracts.Event) {
		t.Fatalf("unexpected event after reset: %v", e)
	})
	if !errors.Is(err, contracts.ErrMalformedMessage) {
		t.Fatalf("expected malformed error, got %v", err)
	}
}

func TestMessageLength(t *testing.T) {
	cases := map[byte]int{
		0x90: 3, 0x8F: 3, 0xB0: 3, 0xE5: 3, 0xA1: 3,
		0xC0: 2, 0xD3: 2, 0xF1: 2, 0xF3: 2,
		0xF2: 3, 0xF6: 1, 0xF8: 1, 0xFF: 1,
		0xF0: 0, 0xF7: 0, 0x40: 0,
	}
	for status, want := range cases {
		if got := MessageLength(status); got != want {
			t.Fatalf("MessageLength(0x%02X) = %d, want %d", status, got, want)
		}
	}
}

func TestEncode_OtherUsesRaw(t *testing.T) {
	ev := contracts.Event{Kind: contracts.Other, Status: 0xF0, Raw: []byte{0xF0, 0x7E, 0xF7}}
	got := Encode(ev)
	if len(got) != 3 || got[1] != 0x7E {
		t.Fatalf("Encode = %v", got)
	}
	got[1] = 0
	if ev.Raw[1] != 0x7E {
		t.Fatal("Encode must not alias Raw")
	}
	if b := Encode(contracts.Event{Kind: contracts.Other, Status: 0xFA}); len(b) != 1 || b[0] != 0xFA {
		t.Fatalf("Encode status-only = %v", b)
	}
}
