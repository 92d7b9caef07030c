package display

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/leandrodaf/drumkit/internal/drums"
	"github.com/leandrodaf/drumkit/sdk/contracts"
	"github.com/rivo/tview"
)

const (
	refreshInterval = 50 * time.Millisecond
	laneWidth       = 60
)

// View draws a HitBoard with tview. Events reach the board through QueueUpdateDraw,
// so the board is only read and written on the UI goroutine.
type View struct {
	app    *tview.Application
	table  *tview.Table
	status *tview.TextView

	board *HitBoard
	port  string
	stats func() contracts.SessionStats

	mu      sync.Mutex
	err     error
	stopped chan struct{}
	once    sync.Once
}

// NewView creates a view of board for the named port. stats may be nil.
func NewView(board *HitBoard, port string, stats func() contracts.SessionStats) *View {
	v := &View{
		app:     tview.NewApplication(),
		board:   board,
		port:    port,
		stats:   stats,
		stopped: make(chan struct{}),
	}

	v.table = tview.NewTable().SetBorders(false)
	v.table.SetTitle(" Drum Hits ").SetBorder(true)

	v.status = tview.NewTextView().SetDynamicColors(true)
	v.status.SetTitle(" Status ").SetBorder(true)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.table, 0, 1, false).
		AddItem(v.status, 3, 0, false)
	v.app.SetRoot(layout, true)

	v.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Rune() == 'q' || event.Key() == tcell.KeyEscape {
			v.stop()
			return nil
		}
		return event
	})

	v.refresh(time.Now())
	return v
}

// OnEvent records a hit on the UI goroutine.
func (v *View) OnEvent(ev contracts.Event) {
	if !ev.IsHit() || v.isStopped() {
		return
	}
	v.app.QueueUpdateDraw(func() {
		v.board.Add(ev)
	})
}

// OnError ends the view; Run returns err.
func (v *View) OnError(err error) {
	v.mu.Lock()
	v.err = err
	v.mu.Unlock()
	v.stop()
}

var _ contracts.Sink = (*View)(nil)

// Run blocks until the user quits, ctx ends, or the stream fails.
func (v *View) Run(ctx context.Context) error {
	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-v.stopped:
				return
			case <-ctx.Done():
				v.stop()
				return
			case now := <-ticker.C:
				v.app.QueueUpdateDraw(func() { v.refresh(now) })
			}
		}
	}()

	if err := v.app.Run(); err != nil {
		return fmt.Errorf("terminal display: %w", err)
	}
	v.stop()

	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// stop may be called from any goroutine, before or during Run. Stop is queued so it
// runs on the event loop once that loop is up.
func (v *View) stop() {
	v.once.Do(func() {
		close(v.stopped)
		go v.app.QueueUpdate(v.app.Stop)
	})
}

func (v *View) isStopped() bool {
	select {
	case <-v.stopped:
		return true
	default:
		return false
	}
}

// refresh runs on the UI goroutine.
func (v *View) refresh(now time.Time) {
	v.board.Prune(now)

	for i, row := range v.board.Rows() {
		v.table.SetCell(i, 0, tview.NewTableCell(row.Label).SetTextColor(tcell.ColorYellow))
		v.table.SetCell(i, 1, tview.NewTableCell(v.board.Lane(row.Note, now, laneWidth)).SetTextColor(tcell.ColorDodgerBlue))
		v.table.SetCell(i, 2, tview.NewTableCell("|").SetTextColor(tcell.ColorRed))
	}

	last := "-"
	if h, ok := v.board.Last(); ok {
		last = fmt.Sprintf("%s (vel %d)", drums.Label(h.Note), h.Velocity)
	}
	text := fmt.Sprintf("[green]%s[white]  hits: %d  last: %s", tview.Escape(v.port), v.board.Total(), tview.Escape(last))
	if v.stats != nil {
		st := v.stats()
		text += fmt.Sprintf("  dropped: %d", st.Dropped)
	}
	v.status.SetText(text + "  [gray]q/Esc quit")
}
