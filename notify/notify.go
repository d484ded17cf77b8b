// Package notify delivers selection changes to whoever listens for them.
package notify

import (
	"encoding/json"
	"log/slog"

	"golang.org/x/net/html"

	"flatmap/dom"
)

// EventType is the DOM event carrying a Notification.
const EventType = "regionclick_simple"

// Notification is emitted on every click-driven toggle and on every clear.
// RegionStr is the label that was toggled, empty for a clear.
type Notification struct {
	RegionStr      string   `json:"region_str" yaml:"region_str"`
	SelectedLabels []string `json:"selected_labels" yaml:"selected_labels"`
}

// New returns a notification, normalising a nil list to an empty one so it
// encodes as [] rather than null.
func New(region string, labels []string) Notification {
	if labels == nil {
		labels = []string{}
	}
	return Notification{RegionStr: region, SelectedLabels: labels}
}

// IsClear reports whether n reports a cleared selection.
func (n Notification) IsClear() bool {
	return n.RegionStr == "" && len(n.SelectedLabels) == 0
}

// MarshalJSON keeps selected_labels an array even for a zero Notification.
func (n Notification) MarshalJSON() ([]byte, error) {
	type plain Notification
	return json.Marshal(plain(New(n.RegionStr, n.SelectedLabels)))
}

// Notifier receives notifications. Implementations are called on the page's
// event loop and must not block.
type Notifier interface {
	Notify(Notification)
}

// Func adapts a function to a Notifier.
type Func func(Notification)

// Notify calls f(n).
func (f Func) Notify(n Notification) { f(n) }

// Multi fans a notification out to several notifiers in order.
type Multi []Notifier

// Notify calls every non-nil notifier.
func (m Multi) Notify(n Notification) {
	for _, x := range m {
		if x != nil {
			x.Notify(n)
		}
	}
}

// DOM dispatches notifications as a bubbling, cancelable EventType event on
// the element with TargetID, or on the element with FallbackID when the
// target is absent. The elements are looked up on every notification
// because the page may have been re-rendered in between.
type DOM struct {
	Doc        *dom.Document
	TargetID   string
	FallbackID string
	Logger     *slog.Logger
}

// Notify implements Notifier.
func (d *DOM) Notify(n Notification) {
	target := d.target()
	if target == nil {
		d.logger().Debug("no element to notify", "target", d.TargetID, "fallback", d.FallbackID)
		return
	}
	d.Doc.Dispatch(target, dom.NewCustomEvent(EventType, n))
}

func (d *DOM) target() *html.Node {
	if d.Doc == nil {
		return nil
	}
	if t := d.Doc.GetElementByID(d.TargetID); t != nil {
		return t
	}
	return d.Doc.GetElementByID(d.FallbackID)
}

func (d *DOM) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// FromEvent extracts the notification carried by an EventType event.
func FromEvent(ev *dom.Event) (Notification, bool) {
	if ev == nil || ev.Type != EventType {
		return Notification{}, false
	}
	n, ok := ev.Detail.(Notification)
	return n, ok
}
