// Package scrollsync keeps two independently scrollable panes aligned.
//
// A scroll in either pane writes the same offset to the other (the panes
// share a line-height unit, so the mapping is 1:1). Two re-entrancy flags
// absorb the echo event each corrective write produces, breaking the
// feedback cycle without timers or debouncing. Both flags live inside a
// single mutex-guarded state machine so the cycle-breaker cannot itself
// race when handlers arrive from different goroutines.
package scrollsync

import "sync"

// Pane is a scrollable surface the controller can write an offset to.
type Pane interface {
	SetScrollTop(offset float64)
}

// PaneFunc adapts a function to the Pane interface.
type PaneFunc func(offset float64)

func (f PaneFunc) SetScrollTop(offset float64) { f(offset) }

// Controller relays scroll offsets between a code pane and a notes pane.
type Controller struct {
	mu    sync.Mutex
	code  Pane
	notes Pane

	syncingFromCode  bool
	syncingFromNotes bool
}

// New returns a controller bound to the two panes.
func New(code, notes Pane) *Controller {
	return &Controller{code: code, notes: notes}
}

// OnCodeScroll handles a scroll event from the code pane reporting offset o.
// If the event is the echo of a notes-driven write the flag is cleared and
// nothing else happens; otherwise the notes pane receives one corrective
// write.
func (c *Controller) OnCodeScroll(o float64) {
	c.mu.Lock()
	if c.syncingFromNotes {
		c.syncingFromNotes = false
		c.mu.Unlock()
		return
	}
	c.syncingFromCode = true
	c.mu.Unlock()
	c.notes.SetScrollTop(o)
}

// OnNotesScroll is the symmetric handler for the notes pane.
func (c *Controller) OnNotesScroll(o float64) {
	c.mu.Lock()
	if c.syncingFromCode {
		c.syncingFromCode = false
		c.mu.Unlock()
		return
	}
	c.syncingFromNotes = true
	c.mu.Unlock()
	c.code.SetScrollTop(o)
}
