package dom

import (
	"slices"

	"golang.org/x/net/html"
)

// MutationRecord describes one change to the child list of Target.
type MutationRecord struct {
	Target  *html.Node
	Added   []*html.Node
	Removed []*html.Node
}

// Observer receives the mutations that touch one container.
type Observer struct {
	doc         *Document
	containerID string
	fn          func([]MutationRecord)
	active      bool
}

// Observe subscribes fn to child-list changes inside the element with the
// given id, including the change that inserts that element. The container is
// looked up on every delivery, so it may itself be replaced.
//
// Records are delivered after the mutating call returns. Mutations made by
// observers while a batch is being delivered are queued and delivered in a
// following batch.
func (d *Document) Observe(containerID string, fn func([]MutationRecord)) *Observer {
	o := &Observer{doc: d, containerID: containerID, fn: fn, active: true}
	d.observers = append(d.observers, o)
	return o
}

// Disconnect stops delivery to o.
func (o *Observer) Disconnect() {
	o.active = false
	d := o.doc
	d.observers = slices.DeleteFunc(d.observers, func(x *Observer) bool { return x == o })
}

func (d *Document) record(r MutationRecord) {
	d.pending = append(d.pending, r)
	if d.delivering {
		return
	}
	d.delivering = true
	defer func() { d.delivering = false }()
	for len(d.pending) > 0 {
		batch := d.pending
		d.pending = nil
		for _, o := range slices.Clone(d.observers) {
			if o.active {
				o.deliver(batch)
			}
		}
	}
}

func (o *Observer) deliver(batch []MutationRecord) {
	container := o.doc.GetElementByID(o.containerID)
	if container == nil {
		return
	}
	var mine []MutationRecord
	for _, r := range batch {
		if o.touches(container, r) {
			mine = append(mine, r)
		}
	}
	if len(mine) > 0 {
		o.fn(mine)
	}
}

func (o *Observer) touches(container *html.Node, r MutationRecord) bool {
	if Contains(container, r.Target) {
		return true
	}
	for _, n := range r.Added {
		if Contains(n, container) {
			return true
		}
	}
	return false
}
