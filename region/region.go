// Package region resolves pointer hits inside a map graphic to region labels.
//
// A region is not an object of its own: it is whatever labelled ancestor a
// hit node has inside the scope, found by walking up the tree on demand.
package region

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"flatmap/dom"
)

// GeometryTags are the shapes that can be selected and highlighted.
var GeometryTags = []string{"path", "polygon", "circle", "ellipse"}

// skipTags are structural or decorative and never carry a region label.
var skipTags = map[string]bool{
	"svg":      true,
	"rect":     true,
	"text":     true,
	"line":     true,
	"polyline": true,
}

// rejectLabel matches labels of structural artefacts that happen to carry ids.
var rejectLabel = regexp.MustCompile(`border|frame|rectangle|figure`)

// Resolver finds region labels below Scope. Root is the graphic element.
// When Scope is nil the whole graphic is in scope.
type Resolver struct {
	Root  *html.Node
	Scope *html.Node
}

// New returns a resolver over root limited to scope.
func New(root, scope *html.Node) Resolver {
	if scope == nil {
		scope = root
	}
	return Resolver{Root: root, Scope: scope}
}

// InScope reports whether n lies inside the scope (the scope itself included).
func (r Resolver) InScope(n *html.Node) bool {
	if r.Scope == nil {
		return dom.Contains(r.Root, n)
	}
	return dom.Contains(r.Scope, n)
}

// Label walks up from hit and returns the first acceptable label, or "".
// The walk stops on leaving the scope or on reaching the scope root or the
// graphic root, neither of which is a region.
func (r Resolver) Label(hit *html.Node) string {
	for n := hit; dom.IsElement(n) && r.InScope(n); n = n.Parent {
		if n == r.Root || n == r.Scope {
			return ""
		}
		if skipTags[dom.Tag(n)] {
			continue
		}
		if lbl := CandidateLabel(n); lbl != "" && Acceptable(lbl) {
			return lbl
		}
	}
	return ""
}

// Geometry lists the selectable shapes in scope in document order.
func (r Resolver) Geometry() []*html.Node {
	scope := r.Scope
	if scope == nil {
		scope = r.Root
	}
	return dom.FindAll(scope, GeometryTags...)
}

// CandidateLabel returns data-name, data-label or id, whichever is first set.
func CandidateLabel(n *html.Node) string {
	if v := dom.Dataset(n, "name"); v != "" {
		return v
	}
	if v := dom.Dataset(n, "label"); v != "" {
		return v
	}
	return dom.AttrOr(n, "id", "")
}

// Acceptable reports whether lbl names a region rather than a border, frame
// or other drawing artefact.
func Acceptable(lbl string) bool {
	return !rejectLabel.MatchString(strings.ToLower(lbl))
}
