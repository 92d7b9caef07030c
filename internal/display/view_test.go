package display

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/leandrodaf/drumkit/internal/drums"
	"github.com/leandrodaf/drumkit/sdk/contracts"
)

func newSimulatedView(t *testing.T, stats func() contracts.SessionStats) *View {
	t.Helper()
	v := NewView(NewHitBoard(0), "USB Drum Kit", stats)
	v.app.SetScreen(tcell.NewSimulationScreen("UTF-8"))
	return v
}

func runAsync(v *View, ctx context.Context) <-chan error {
	errCh := make(chan error, 1)
	go func() { errCh <- v.Run(ctx) }()
	return errCh
}

func TestView_RefreshDrawsRows(t *testing.T) {
	v := NewView(NewHitBoard(time.Second), "USB Drum Kit", func() contracts.SessionStats {
		return contracts.SessionStats{Dropped: 3}
	})
	now := time.Now()
	v.board.Add(hitAt(36, 127, now))
	v.refresh(now)

	notes := drums.Notes()
	if got := v.table.GetRowCount(); got != len(notes) {
		t.Fatalf("rows = %d", got)
	}
	if v.table.GetCell(0, 0).Text != drums.Label(notes[0]) {
		t.Fatalf("first label = %q", v.table.GetCell(0, 0).Text)
	}
	lane := v.table.GetCell(1, 1).Text
	if len(lane) != laneWidth || !strings.HasSuffix(lane, "O") {
		t.Fatalf("bass drum lane = %q", lane)
	}
	status := v.status.GetText(true)
	if !strings.Contains(status, "hits: 1") || !strings.Contains(status, "dropped: 3") || !strings.Contains(status, "Bass Drum 1") {
		t.Fatalf("status = %q", status)
	}
}

func TestView_StopsOnContextCancel(t *testing.T) {
	v := newSimulatedView(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := runAsync(v, ctx)

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestView_StreamErrorEndsRun(t *testing.T) {
	v := newSimulatedView(t, nil)
	errCh := runAsync(v, context.Background())

	v.OnEvent(hitAt(38, 90, time.Now()))
	v.OnError(contracts.ErrDisconnected)
	select {
	case err := <-errCh:
		if !errors.Is(err, contracts.ErrDisconnected) {
			t.Fatalf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after stream error")
	}
	v.OnEvent(hitAt(38, 90, time.Now()))
}
