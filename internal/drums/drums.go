// Package drums names General MIDI percussion notes for display and logs.
package drums

import (
	"fmt"
	"sort"
)

// GMPercussionChannel is the zero-based channel General MIDI reserves for percussion (channel 10).
const GMPercussionChannel = 9

var gmDrumMap = map[uint8]string{
	35: "Acoustic Bass Drum",
	36: "Bass Drum 1",
	37: "Side Stick",
	38: "Acoustic Snare",
	39: "Hand Clap",
	40: "Electric Snare",
	41: "Low Floor Tom",
	42: "Closed Hi-Hat",
	43: "High Floor Tom",
	44: "Pedal Hi-Hat",
	45: "Low Tom",
	46: "Open Hi-Hat",
	47: "Low-Mid Tom",
	48: "Hi-Mid Tom",
	49: "Crash Cymbal 1",
	50: "High Tom",
	51: "Ride Cymbal 1",
	52: "Chinese Cymbal",
	53: "Ride Bell",
	57: "Crash Cymbal 2",
}

// Name returns the GM percussion name of note and whether it is known.
func Name(note uint8) (string, bool) {
	n, ok := gmDrumMap[note]
	return n, ok
}

// Label returns the GM name of note, or "Note N" for notes outside the map.
func Label(note uint8) string {
	if n, ok := gmDrumMap[note]; ok {
		return n
	}
	return fmt.Sprintf("Note %d", note)
}

// Notes returns the mapped note numbers in ascending order.
func Notes() []uint8 {
	notes := make([]uint8, 0, len(gmDrumMap))
	for n := range gmDrumMap {
		notes = append(notes, n)
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i] < notes[j] })
	return notes
}
