package overlay

import (
	"golang.org/x/net/html"

	"flatmap/canvas"
	"flatmap/dom"
)

// BoundsFunc measures the drawn content of a graphic in its own units, the
// way getBBox does in a browser. It reports false when it cannot.
type BoundsFunc func(svg *html.Node) (canvas.ViewWindow, bool)

// graphicSource feeds canvas.InitializeWindow from a live svg element.
type graphicSource struct {
	doc    *dom.Document
	svg    *html.Node
	bounds BoundsFunc
}

func (g graphicSource) DeclaredWindow() (canvas.ViewWindow, bool) {
	v, ok := viewBox(g.svg)
	if !ok {
		return canvas.ViewWindow{}, false
	}
	return canvas.ParseViewBox(v)
}

// viewBox reads the attribute under the name the html parser gives it in
// svg content, or lowercased when the markup was parsed as plain html.
func viewBox(svg *html.Node) (string, bool) {
	if v, ok := dom.Attr(svg, "viewBox"); ok {
		return v, true
	}
	return dom.Attr(svg, "viewbox")
}

func (g graphicSource) ContentBounds() (canvas.ViewWindow, bool) {
	if g.bounds == nil {
		return canvas.ViewWindow{}, false
	}
	return g.bounds(g.svg)
}

func (g graphicSource) DeclaredSize() (float64, float64, bool) {
	w, okW := canvas.ParseLength(dom.AttrOr(g.svg, "width", ""))
	h, okH := canvas.ParseLength(dom.AttrOr(g.svg, "height", ""))
	return w, h, okW && okH
}

func (g graphicSource) RenderedRect() canvas.Rect {
	return toCanvasRect(g.doc.ClientRect(g.svg))
}

func toCanvasRect(r dom.Rect) canvas.Rect {
	return canvas.Rect{Left: r.Left, Top: r.Top, Width: r.Width, Height: r.Height}
}
