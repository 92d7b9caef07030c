// Package display renders drum hits in the terminal.
package display

import (
	"strings"
	"time"

	"github.com/leandrodaf/drumkit/internal/drums"
	"github.com/leandrodaf/drumkit/sdk/contracts"
)

// DefaultWindow is how long a hit stays visible.
const DefaultWindow = 5 * time.Second

// Hit is one struck pad.
type Hit struct {
	Note     uint8
	Velocity uint8
	At       time.Time
}

// Row is one note lane.
type Row struct {
	Note  uint8
	Label string
}

// HitBoard holds the display state: one row per note, and the hits still inside the
// visible window. It is not safe for concurrent use; the View only touches it from
// the UI goroutine.
type HitBoard struct {
	window time.Duration
	rows   []Row
	index  map[uint8]int
	hits   []Hit
	total  uint64
	last   Hit
}

// NewHitBoard creates a board with a row for every General MIDI drum already assigned.
// A non-positive window selects DefaultWindow.
func NewHitBoard(window time.Duration) *HitBoard {
	if window <= 0 {
		window = DefaultWindow
	}
	b := &HitBoard{window: window, index: make(map[uint8]int)}
	for _, n := range drums.Notes() {
		b.addRow(n)
	}
	return b
}

func (b *HitBoard) addRow(note uint8) int {
	b.rows = append(b.rows, Row{Note: note, Label: drums.Label(note)})
	b.index[note] = len(b.rows) - 1
	return len(b.rows) - 1
}

// Window returns the visible time span.
func (b *HitBoard) Window() time.Duration { return b.window }

// Add records ev if it is a hit and reports whether it was recorded. Notes without a
// row get one appended below the existing rows.
func (b *HitBoard) Add(ev contracts.Event) bool {
	if !ev.IsHit() {
		return false
	}
	if _, ok := b.index[ev.Note()]; !ok {
		b.addRow(ev.Note())
	}
	at := ev.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	h := Hit{Note: ev.Note(), Velocity: ev.Velocity(), At: at}
	b.hits = append(b.hits, h)
	b.last = h
	b.total++
	b.Prune(at)
	return true
}

// Prune forgets hits older than the window, measured back from now.
func (b *HitBoard) Prune(now time.Time) {
	cutoff := now.Add(-b.window)
	kept := b.hits[:0]
	for _, h := range b.hits {
		if !h.At.Before(cutoff) {
			kept = append(kept, h)
		}
	}
	for i := len(kept); i < len(b.hits); i++ {
		b.hits[i] = Hit{}
	}
	b.hits = kept
}

// Rows returns the lanes in display order.
func (b *HitBoard) Rows() []Row {
	out := make([]Row, len(b.rows))
	copy(out, b.rows)
	return out
}

// Hits returns the hits currently held, oldest first.
func (b *HitBoard) Hits() []Hit {
	out := make([]Hit, len(b.hits))
	copy(out, b.hits)
	return out
}

// Total is the number of hits recorded since the board was created.
func (b *HitBoard) Total() uint64 { return b.total }

// Last returns the most recent hit, if any.
func (b *HitBoard) Last() (Hit, bool) { return b.last, b.total > 0 }

// Lane renders note's lane as width cells. The rightmost cell is now and the leftmost
// is now minus the window; a hard hit draws 'O', a softer one 'o'.
func (b *HitBoard) Lane(note uint8, now time.Time, width int) string {
	if width <= 0 {
		return ""
	}
	cells := []byte(strings.Repeat("-", width))
	for _, h := range b.hits {
		if h.Note != note {
			continue
		}
		age := now.Sub(h.At)
		if age < 0 || age > b.window {
			continue
		}
		frac := float64(age) / float64(b.window)
		x := width - 1 - int(frac*float64(width-1)+0.5)
		mark := byte('o')
		if h.Velocity >= 100 {
			mark = 'O'
		}
		if cells[x] != 'O' {
			cells[x] = mark
		}
	}
	return string(cells)
}
