package dom

import (
	"slices"

	"golang.org/x/net/html"
)

// Event types dispatched by the host and listened to by the overlay.
const (
	Click     = "click"
	MouseDown = "mousedown"
	MouseMove = "mousemove"
	MouseUp   = "mouseup"
	Wheel     = "wheel"
	KeyDown   = "keydown"
)

// ButtonPrimary is the Button value of the main (usually left) button.
const ButtonPrimary = 0

// Event is a DOM-like event. Pointer coordinates are device pixels in the
// same space as the rectangles set with SetClientRect.
type Event struct {
	Type          string
	Target        *html.Node
	CurrentTarget *html.Node

	ClientX, ClientY float64
	Button           int
	DeltaY           float64

	Key               string
	Shift, Ctrl, Meta bool

	Bubbles    bool
	Cancelable bool

	// Detail carries the payload of custom events.
	Detail any

	defaultPrevented bool
	stopped          bool
}

// NewCustomEvent returns a bubbling, cancelable event carrying detail.
func NewCustomEvent(typ string, detail any) *Event {
	return &Event{Type: typ, Detail: detail, Bubbles: true, Cancelable: true}
}

// PreventDefault marks a cancelable event as handled.
func (e *Event) PreventDefault() {
	if e.Cancelable {
		e.defaultPrevented = true
	}
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation stops the event from reaching further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

// Listener handles an event.
type Listener func(*Event)

// ListenerID identifies a registration for RemoveEventListener.
type ListenerID int

type registration struct {
	id     ListenerID
	target *html.Node // nil for window
	typ    string
	fn     Listener
}

// AddEventListener registers fn for events of typ reaching target.
func (d *Document) AddEventListener(target *html.Node, typ string, fn Listener) ListenerID {
	if target == nil {
		return d.AddWindowListener(typ, fn)
	}
	d.nextID++
	r := &registration{id: d.nextID, target: target, typ: typ, fn: fn}
	byType := d.listeners[target]
	if byType == nil {
		byType = make(map[string][]*registration)
		d.listeners[target] = byType
	}
	byType[typ] = append(byType[typ], r)
	return r.id
}

// AddWindowListener registers fn at window level, after every element on the
// propagation path.
func (d *Document) AddWindowListener(typ string, fn Listener) ListenerID {
	d.nextID++
	r := &registration{id: d.nextID, typ: typ, fn: fn}
	d.window[typ] = append(d.window[typ], r)
	return r.id
}

// RemoveEventListener drops a registration. Unknown ids are ignored.
func (d *Document) RemoveEventListener(id ListenerID) {
	drop := func(regs []*registration) []*registration {
		return slices.DeleteFunc(regs, func(r *registration) bool { return r.id == id })
	}
	for typ, regs := range d.window {
		d.window[typ] = drop(regs)
	}
	for _, byType := range d.listeners {
		for typ, regs := range byType {
			byType[typ] = drop(regs)
		}
	}
}

// ListenerCount returns how many listeners of typ are registered on target,
// or at window level when target is nil.
func (d *Document) ListenerCount(target *html.Node, typ string) int {
	if target == nil {
		return len(d.window[typ])
	}
	return len(d.listeners[target][typ])
}

// Dispatch delivers ev to target, then to its ancestors when the event
// bubbles, then to window listeners. A nil target reaches window listeners
// only. It returns false when a listener prevented the default action.
func (d *Document) Dispatch(target *html.Node, ev *Event) bool {
	ev.Target = target
	for n := target; n != nil; n = n.Parent {
		ev.CurrentTarget = n
		for _, r := range slices.Clone(d.listeners[n][ev.Type]) {
			r.fn(ev)
		}
		if ev.stopped || !ev.Bubbles {
			break
		}
	}
	if target == nil || (ev.Bubbles && !ev.stopped) {
		ev.CurrentTarget = nil
		for _, r := range slices.Clone(d.window[ev.Type]) {
			r.fn(ev)
		}
	}
	return !ev.defaultPrevented
}

// forget drops listeners and layout of a detached subtree.
func (d *Document) forget(n *html.Node) {
	walk(n, func(c *html.Node) bool {
		delete(d.listeners, c)
		delete(d.rects, c)
		return true
	})
}
