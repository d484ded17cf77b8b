// Package dom models the page the overlay lives in: an html.Node tree that
// an external renderer may rewrite at any time, event listeners with
// bubbling dispatch, host-provided layout rectangles and mutation observers
// scoped to a single container.
package dom

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// Rect is an on-screen rectangle in device pixels.
type Rect struct {
	Left, Top, Width, Height float64
}

// Contains reports whether the device point lies inside r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x < r.Left+r.Width && y >= r.Top && y < r.Top+r.Height
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Document is a page. It is not safe for concurrent use: every call must
// come from the host's event loop.
type Document struct {
	root *html.Node

	nextID    ListenerID
	listeners map[*html.Node]map[string][]*registration
	window    map[string][]*registration
	rects     map[*html.Node]Rect

	observers  []*Observer
	pending    []MutationRecord
	delivering bool
}

// New wraps an already parsed tree.
func New(root *html.Node) *Document {
	return &Document{
		root:      root,
		listeners: make(map[*html.Node]map[string][]*registration),
		window:    make(map[string][]*registration),
		rects:     make(map[*html.Node]Rect),
	}
}

// Parse reads an HTML page.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse page: %w", err)
	}
	return New(root), nil
}

// ParseString reads an HTML page from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node.
func (d *Document) Root() *html.Node { return d.root }

// GetElementByID searches the whole page.
func (d *Document) GetElementByID(id string) *html.Node {
	return ByID(d.root, id)
}

// Body returns the body element, or the document node if there is none.
func (d *Document) Body() *html.Node {
	if b := FirstByTag(d.root, "body"); b != nil {
		return b
	}
	return d.root
}

// SetClientRect records where the host laid out n.
func (d *Document) SetClientRect(n *html.Node, r Rect) {
	if n != nil {
		d.rects[n] = r
	}
}

// ClientRect returns the layout of n, or an empty Rect when the host has not
// laid it out.
func (d *Document) ClientRect(n *html.Node) Rect {
	return d.rects[n]
}

// AppendChild attaches child as the last child of parent.
func (d *Document) AppendChild(parent, child *html.Node) {
	if parent == nil || child == nil {
		return
	}
	if child.Parent != nil {
		d.RemoveChild(child.Parent, child)
	}
	parent.AppendChild(child)
	d.record(MutationRecord{Target: parent, Added: []*html.Node{child}})
}

// RemoveChild detaches child from parent.
func (d *Document) RemoveChild(parent, child *html.Node) {
	if parent == nil || child == nil || child.Parent != parent {
		return
	}
	parent.RemoveChild(child)
	d.forget(child)
	d.record(MutationRecord{Target: parent, Removed: []*html.Node{child}})
}

// ReplaceChildren swaps every child of parent for children in a single
// mutation, the way a renderer replaces a subtree wholesale.
func (d *Document) ReplaceChildren(parent *html.Node, children ...*html.Node) {
	if parent == nil {
		return
	}
	var removed []*html.Node
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		parent.RemoveChild(c)
		d.forget(c)
		removed = append(removed, c)
		c = next
	}
	for _, c := range children {
		if c.Parent != nil {
			c.Parent.RemoveChild(c)
		}
		parent.AppendChild(c)
	}
	d.record(MutationRecord{Target: parent, Added: slices.Clone(children), Removed: removed})
}

// SetInnerHTML parses markup in the context of parent and replaces its
// children with the result.
func (d *Document) SetInnerHTML(parent *html.Node, markup string) error {
	nodes, err := ParseFragment(parent, markup)
	if err != nil {
		return err
	}
	d.ReplaceChildren(parent, nodes...)
	return nil
}

// ParseFragment parses markup as the content of context without attaching
// it, so the host can lay the new nodes out before inserting them.
func ParseFragment(context *html.Node, markup string) ([]*html.Node, error) {
	if !IsElement(context) {
		return nil, fmt.Errorf("dom: fragment context must be an element")
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	return nodes, nil
}
