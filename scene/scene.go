// Package scene turns an svg subtree into flat, styled polygons the desktop
// host can draw and hit-test.
//
// Geometry is built once per graphic instance. Styles are recomputed on
// demand because the overlay changes classes without touching geometry.
package scene

import (
	"math"

	"golang.org/x/net/html"

	"flatmap/canvas"
	"flatmap/dom"
)

// circleSteps is how many segments approximate a circle or ellipse.
const circleSteps = 48

// skipped subtrees hold no drawable geometry of their own.
var skipped = map[string]bool{
	"defs": true, "style": true, "clippath": true, "mask": true, "symbol": true,
	"title": true, "desc": true, "metadata": true, "text": true, "use": true,
	"pattern": true, "marker": true, "lineargradient": true, "radialgradient": true,
}

// Shape is one drawable element, flattened into user space.
type Shape struct {
	Node     *html.Node
	Tag      string
	Subpaths []Subpath
	Box      Box
	Style    Style
	// Scale is the linear scale of the element's transform, for strokes.
	Scale float64
}

// Scene is the drawable content of one svg element, in document order.
type Scene struct {
	Root   *html.Node
	Shapes []*Shape
	Sheet  *Stylesheet

	byNode map[*html.Node]*Shape
}

// Build flattens every shape below svg and computes its style.
func Build(svg *html.Node) *Scene {
	s := &Scene{Root: svg, byNode: make(map[*html.Node]*Shape)}
	if svg != nil {
		s.collect(svg, Identity)
	}
	s.Restyle()
	return s
}

func (s *Scene) collect(n *html.Node, m Matrix) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		tag := dom.Tag(c)
		if tag == "" || skipped[tag] {
			continue
		}
		cm := m
		if t, ok := dom.Attr(c, "transform"); ok {
			cm = m.Mul(ParseTransform(t))
		}
		if subs := geometry(c, tag); subs != nil {
			sh := &Shape{Node: c, Tag: tag, Scale: cm.Scale()}
			for _, sp := range subs {
				for i, p := range sp.Points {
					q := cm.Apply(p)
					sp.Points[i] = q
					sh.Box.Add(q)
				}
				sh.Subpaths = append(sh.Subpaths, sp)
			}
			s.Shapes = append(s.Shapes, sh)
			s.byNode[c] = sh
			continue
		}
		s.collect(c, cm)
	}
}

// geometry returns the outline of a basic shape, or nil for containers and
// anything unknown.
func geometry(n *html.Node, tag string) []Subpath {
	num := func(key string) float64 {
		v, _ := canvas.ParseLength(dom.AttrOr(n, key, "0"))
		return v
	}
	switch tag {
	case "path":
		return nonEmpty(FlattenPath(dom.AttrOr(n, "d", "")))
	case "polygon", "polyline":
		vs := canvas.ParseNumbers(dom.AttrOr(n, "points", ""))
		sp := Subpath{Closed: tag == "polygon"}
		for i := 0; i+1 < len(vs); i += 2 {
			sp.Points = append(sp.Points, Point{vs[i], vs[i+1]})
		}
		return nonEmpty([]Subpath{sp})
	case "rect":
		x, y, w, h := num("x"), num("y"), num("width"), num("height")
		if w <= 0 || h <= 0 {
			return []Subpath{}
		}
		return []Subpath{{Closed: true, Points: []Point{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}}}
	case "circle":
		r := num("r")
		return ellipse(num("cx"), num("cy"), r, r)
	case "ellipse":
		return ellipse(num("cx"), num("cy"), num("rx"), num("ry"))
	case "line":
		return []Subpath{{Points: []Point{{num("x1"), num("y1")}, {num("x2"), num("y2")}}}}
	}
	return nil
}

func ellipse(cx, cy, rx, ry float64) []Subpath {
	if rx <= 0 || ry <= 0 {
		return []Subpath{}
	}
	sp := Subpath{Closed: true, Points: make([]Point, 0, circleSteps)}
	for i := 0; i < circleSteps; i++ {
		a := 2 * math.Pi * float64(i) / circleSteps
		sp.Points = append(sp.Points, Point{cx + rx*math.Cos(a), cy + ry*math.Sin(a)})
	}
	return []Subpath{sp}
}

// nonEmpty keeps the result non-nil so a shape with no outline is still
// recognised as a shape rather than descended into.
func nonEmpty(subs []Subpath) []Subpath {
	out := make([]Subpath, 0, len(subs))
	for _, sp := range subs {
		if len(sp.Points) > 0 {
			out = append(out, sp)
		}
	}
	return out
}

// Restyle re-reads the graphic's stylesheets and recomputes every shape's
// style. Call it after classes or style attributes change.
func (s *Scene) Restyle() {
	if s.Root == nil {
		return
	}
	s.Sheet = ParseStylesheets(s.Root)
	matched := s.Sheet.match(s.Root)
	s.restyle(s.Root, cascade(initialStyle(), s.Root, matched[s.Root]), matched)
}

func (s *Scene) restyle(n *html.Node, st Style, matched map[*html.Node][]declaration) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		tag := dom.Tag(c)
		if tag == "" || skipped[tag] {
			continue
		}
		cs := cascade(st, c, matched[c])
		if sh := s.byNode[c]; sh != nil {
			sh.Style = cs
			continue
		}
		s.restyle(c, cs, matched)
	}
}

// ShapeOf returns the shape built for n, if any.
func (s *Scene) ShapeOf(n *html.Node) *Shape { return s.byNode[n] }

// HitTest returns the topmost painted element under p, or nil. tol widens
// strokes and lines, in user units.
func (s *Scene) HitTest(p Point, tol float64) *html.Node {
	for i := len(s.Shapes) - 1; i >= 0; i-- {
		if sh := s.Shapes[i]; sh.Hit(p, tol) {
			return sh.Node
		}
	}
	return nil
}

// Hit reports whether p falls on the painted parts of sh.
func (sh *Shape) Hit(p Point, tol float64) bool {
	if sh.Style.Hidden {
		return false
	}
	reach := tol
	if sh.Style.Stroke.Set {
		reach = math.Max(reach, sh.Style.StrokeWidth*sh.Scale/2)
	}
	grown := sh.Box
	grown.Min.X -= reach
	grown.Min.Y -= reach
	grown.Max.X += reach
	grown.Max.Y += reach
	if !grown.Contains(p) {
		return false
	}
	if sh.Style.Fill.Set && sh.Tag != "line" {
		rings := make([][]Point, len(sh.Subpaths))
		for i, sp := range sh.Subpaths {
			rings[i] = sp.Points
		}
		if inRingsEvenOdd(p, rings) {
			return true
		}
	}
	if !sh.Style.Stroke.Set && sh.Tag != "line" && sh.Tag != "polyline" {
		return false
	}
	for _, sp := range sh.Subpaths {
		pts := sp.Points
		for i := 1; i < len(pts); i++ {
			if segmentDist(p, pts[i-1], pts[i]) <= reach {
				return true
			}
		}
		if sp.Closed && len(pts) > 2 && segmentDist(p, pts[len(pts)-1], pts[0]) <= reach {
			return true
		}
	}
	return false
}

// ContentBounds is the union of every shape's box.
func (s *Scene) ContentBounds() (canvas.ViewWindow, bool) {
	var b Box
	for _, sh := range s.Shapes {
		b.Union(sh.Box)
	}
	if b.Empty() {
		return canvas.ViewWindow{}, false
	}
	w := b.Window()
	return w, w.Valid()
}

// Bounds measures the content of svg. It has the shape of a bounds callback
// for the overlay.
func Bounds(svg *html.Node) (canvas.ViewWindow, bool) {
	return Build(svg).ContentBounds()
}
