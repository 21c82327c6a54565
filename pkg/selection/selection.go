// Package selection interprets pointer gestures on the display surface as rectangular regions.
//
// The machine is a value: Transition takes the current machine and one event and returns the
// next machine plus the effect the caller should react to. Nothing here touches a device.
package selection

import (
	"github.com/qiraa-project/qiraa/pkg/space"
)

// Boxes narrower or shorter than this are treated as clicks.
const MinExtent = 10.0

type Mode string

const (
	// Pointer gestures are reserved for pan/zoom and never select.
	ModeNavigate     Mode = "navigate"
	ModeSelectRegion Mode = "select_region"
)

type State string

const (
	StateIdle     State = "idle"
	StateDragging State = "dragging"
)

type EventKind string

const (
	PointerDown  EventKind = "down"
	PointerMove  EventKind = "move"
	PointerUp    EventKind = "up"
	PointerLeave EventKind = "leave"
)

// Event carries a position already converted to surface-local coordinates.
type Event struct {
	Kind EventKind
	At   space.Point[space.Display]
}

type Effect string

const (
	EffectNone      Effect = "none"
	EffectStarted   Effect = "started"
	EffectResized   Effect = "resized"
	EffectCommitted Effect = "committed"
	EffectDiscarded Effect = "discarded"
)

// Machine holds the gesture state, the in-progress box and the committed boxes in
// insertion order.
type Machine struct {
	state     State
	anchor    space.Point[space.Display]
	transient *space.Box[space.Display]
	committed []space.Box[space.Display]
}

func (m Machine) State() State {
	if m.state == "" {
		return StateIdle
	}
	return m.state
}

// Transient returns the in-progress box, if a drag is active.
func (m Machine) Transient() (space.Box[space.Display], bool) {
	if m.transient == nil {
		return space.Box[space.Display]{}, false
	}
	return *m.transient, true
}

// Committed returns a copy of the committed boxes in insertion order.
func (m Machine) Committed() []space.Box[space.Display] {
	return append([]space.Box[space.Display](nil), m.committed...)
}

func (m Machine) Len() int {
	return len(m.committed)
}

// Transition applies one pointer event. Outside ModeSelectRegion every event is inert.
func Transition(m Machine, mode Mode, event Event) (Machine, Effect) {
	if mode != ModeSelectRegion {
		return m, EffectNone
	}

	switch m.State() {
	case StateIdle:
		if event.Kind != PointerDown {
			return m, EffectNone
		}
		box := space.Span(event.At, event.At)
		m.state = StateDragging
		m.anchor = event.At
		m.transient = &box
		return m, EffectStarted

	case StateDragging:
		switch event.Kind {
		case PointerMove:
			box := space.Span(m.anchor, event.At)
			m.transient = &box
			return m, EffectResized
		case PointerUp, PointerLeave:
			// Leaving the surface finalizes the gesture rather than aborting it.
			return finish(m)
		}
	}
	return m, EffectNone
}

func finish(m Machine) (Machine, Effect) {
	box := *m.transient
	m.state = StateIdle
	m.anchor = space.Point[space.Display]{}
	m.transient = nil
	if box.Width < MinExtent || box.Height < MinExtent {
		return m, EffectDiscarded
	}
	m.committed = appendBox(m.committed, box)
	return m, EffectCommitted
}

// Undo removes the most recently committed box. It is a no-op on an empty sequence.
func Undo(m Machine) Machine {
	if len(m.committed) == 0 {
		return m
	}
	m.committed = append([]space.Box[space.Display](nil), m.committed[:len(m.committed)-1]...)
	return m
}

// Clear empties the committed sequence and keeps any active gesture.
func Clear(m Machine) Machine {
	m.committed = nil
	return m
}

// Reset drops every box and any in-flight gesture.
func Reset() Machine {
	return Machine{state: StateIdle}
}

// Never shares a backing array with an earlier machine value.
func appendBox(boxes []space.Box[space.Display], box space.Box[space.Display]) []space.Box[space.Display] {
	next := make([]space.Box[space.Display], len(boxes), len(boxes)+1)
	copy(next, boxes)
	return append(next, box)
}

// Label is a committed box with its 1-based ordinal in authoring order.
type Label struct {
	Ordinal int
	Box     space.Box[space.Display]
}

// Labels numbers boxes by their current position in the committed sequence, so ordinals
// shift after an undo.
func Labels(m Machine) []Label {
	labels := make([]Label, len(m.committed))
	for i, box := range m.committed {
		labels[i] = Label{Ordinal: i + 1, Box: box}
	}
	return labels
}
