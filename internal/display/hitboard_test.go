package display

import (
	"strings"
	"testing"
	"time"

	"github.com/leandrodaf/drumkit/internal/drums"
	"github.com/leandrodaf/drumkit/internal/wire"
	"github.com/leandrodaf/drumkit/sdk/contracts"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func hitAt(note, vel uint8, at time.Time) contracts.Event {
	ev := wire.NewNoteOn(9, note, vel)
	ev.Timestamp = at
	return ev
}

func TestHitBoard_RowsPreassigned(t *testing.T) {
	b := NewHitBoard(0)
	rows := b.Rows()
	notes := drums.Notes()
	if len(rows) != len(notes) {
		t.Fatalf("rows=%d, want %d", len(rows), len(notes))
	}
	for i, n := range notes {
		if rows[i].Note != n || rows[i].Label != drums.Label(n) {
			t.Fatalf("row %d = %+v", i, rows[i])
		}
	}
	if b.Window() != DefaultWindow {
		t.Fatalf("window = %v", b.Window())
	}
}

func TestHitBoard_OnlyHitsCount(t *testing.T) {
	b := NewHitBoard(time.Second)
	if b.Add(hitAt(36, 0, t0)) {
		t.Fatal("velocity 0 is not a hit")
	}
	off := wire.NewNoteOff(9, 36, 64)
	if b.Add(off) || b.Add(wire.NewControlChange(9, 4, 100)) {
		t.Fatal("note off and control change are not hits")
	}
	if !b.Add(hitAt(36, 90, t0)) || b.Total() != 1 {
		t.Fatal("note on should be recorded")
	}
	last, ok := b.Last()
	if !ok || last.Note != 36 || last.Velocity != 90 {
		t.Fatalf("last = %+v, %v", last, ok)
	}
}

func TestHitBoard_UnknownNoteAppended(t *testing.T) {
	b := NewHitBoard(time.Second)
	before := len(b.Rows())
	b.Add(hitAt(99, 80, t0))
	b.Add(hitAt(99, 80, t0))
	rows := b.Rows()
	if len(rows) != before+1 || rows[len(rows)-1].Note != 99 || rows[len(rows)-1].Label != "Note 99" {
		t.Fatalf("rows = %+v", rows[before:])
	}
}

func TestHitBoard_PruneWindow(t *testing.T) {
	b := NewHitBoard(5 * time.Second)
	b.Add(hitAt(36, 80, t0))
	b.Add(hitAt(38, 80, t0.Add(3*time.Second)))
	b.Prune(t0.Add(5 * time.Second))
	if len(b.Hits()) != 2 {
		t.Fatalf("hit exactly at the window edge should stay: %v", b.Hits())
	}
	b.Prune(t0.Add(6 * time.Second))
	hits := b.Hits()
	if len(hits) != 1 || hits[0].Note != 38 {
		t.Fatalf("hits = %v", hits)
	}
	if b.Total() != 2 {
		t.Fatal("pruning must not change the total")
	}
}

func TestHitBoard_Lane(t *testing.T) {
	b := NewHitBoard(4 * time.Second)
	b.Add(hitAt(36, 120, t0))
	b.Add(hitAt(36, 40, t0.Add(2*time.Second)))
	b.Add(hitAt(38, 40, t0.Add(4*time.Second)))

	now := t0.Add(4 * time.Second)
	if got := b.Lane(36, now, 5); got != "O-o--" {
		t.Fatalf("lane 36 = %q", got)
	}
	if got := b.Lane(38, now, 5); got != "----o" {
		t.Fatalf("lane 38 = %q", got)
	}
	if got := b.Lane(42, now, 5); got != strings.Repeat("-", 5) {
		t.Fatalf("empty lane = %q", got)
	}
	if b.Lane(36, now, 0) != "" {
		t.Fatal("zero width renders nothing")
	}
}
