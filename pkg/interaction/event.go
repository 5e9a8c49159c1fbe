package interaction

import (
	"fmt"

	"github.com/matzehuels/seatmap/pkg/tooltip"
)

// EventKind names a pointer event.
type EventKind string

const (
	EventPointerEnter EventKind = "pointerenter"
	EventPointerLeave EventKind = "pointerleave"
	EventPointerMove  EventKind = "pointermove"
	EventClick        EventKind = "click"
	EventDeselect     EventKind = "deselect"
)

// Event is a pointer event addressed to a section. Cursor is ignored by
// events that do not use it.
type Event struct {
	Kind      EventKind     `json:"type"`
	SectionID string        `json:"section,omitempty"`
	Cursor    tooltip.Point `json:"cursor"`
}

var transitions = map[EventKind]func(*Controller, Event){
	EventPointerEnter: func(c *Controller, e Event) { c.PointerEnter(e.SectionID, e.Cursor) },
	EventPointerLeave: func(c *Controller, e Event) { c.PointerLeave(e.SectionID) },
	EventPointerMove:  func(c *Controller, e Event) { c.PointerMove(e.Cursor) },
	EventClick:        func(c *Controller, e Event) { c.Click(e.SectionID) },
	EventDeselect:     func(c *Controller, e Event) { c.Deselect() },
}

// Dispatch routes e to its transition. Unknown kinds are an error; unknown
// sections are ignored by the transitions themselves.
func (c *Controller) Dispatch(e Event) error {
	fn, ok := transitions[e.Kind]
	if !ok {
		return fmt.Errorf("unknown event %q", e.Kind)
	}
	fn(c, e)
	return nil
}
