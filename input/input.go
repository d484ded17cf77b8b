// Package input classifies pointer sessions into clicks and drags.
//
// A primary-button press arms the classifier. Moving further than the
// threshold turns the session into a drag, which pans instead of selecting,
// and the click the browser pairs with the release is swallowed.
package input

import "math"

// DefaultThreshold is how far, in device pixels along either axis, the
// pointer has to travel before a press becomes a drag.
const DefaultThreshold = 3.0

// ButtonPrimary is the button number of the main pointer button.
const ButtonPrimary = 0

// State is the classifier state.
type State int

const (
	Idle State = iota
	Armed
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Dragging:
		return "dragging"
	}
	return "unknown"
}

// Classifier tracks one pointer session at a time. The zero value is ready
// to use with DefaultThreshold.
type Classifier struct {
	Threshold float64

	state         State
	originX       float64
	originY       float64
	lastX, lastY  float64
	suppressClick bool
}

// NewClassifier returns a classifier with the given drag threshold. A
// non-positive threshold means DefaultThreshold.
func NewClassifier(threshold float64) *Classifier {
	return &Classifier{Threshold: threshold}
}

// State returns the current state.
func (c *Classifier) State() State { return c.state }

func (c *Classifier) threshold() float64 {
	if c.Threshold > 0 {
		return c.Threshold
	}
	return DefaultThreshold
}

// Down arms the classifier at (x, y). Buttons other than the primary one are
// ignored and leave the state untouched. It reports whether the press armed.
func (c *Classifier) Down(x, y float64, button int) bool {
	if button != ButtonPrimary {
		return false
	}
	c.state = Armed
	c.originX, c.originY = x, y
	c.lastX, c.lastY = x, y
	c.suppressClick = false
	return true
}

// Move feeds a pointer position. pan is true when the caller should pan by
// (dx, dy). The move that starts a drag yields the whole displacement from
// the press point.
func (c *Classifier) Move(x, y float64) (dx, dy float64, pan bool) {
	switch c.state {
	case Armed:
		if math.Abs(x-c.originX) <= c.threshold() && math.Abs(y-c.originY) <= c.threshold() {
			return 0, 0, false
		}
		c.state = Dragging
		dx, dy = x-c.originX, y-c.originY
	case Dragging:
		dx, dy = x-c.lastX, y-c.lastY
	default:
		return 0, 0, false
	}
	c.lastX, c.lastY = x, y
	return dx, dy, true
}

// Up ends the session. wasDrag reports whether it had become a drag, in which
// case the next TakeClick returns false.
func (c *Classifier) Up() (wasDrag bool) {
	wasDrag = c.state == Dragging
	c.state = Idle
	if wasDrag {
		c.suppressClick = true
	}
	return wasDrag
}

// TakeClick reports whether a click should run selection logic. It returns
// false once for the click that follows a drag.
func (c *Classifier) TakeClick() bool {
	if c.suppressClick {
		c.suppressClick = false
		return false
	}
	return true
}
