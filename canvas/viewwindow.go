// Package canvas holds the view window over a graphic's coordinate space and
// the transforms between device pixels and canvas units.
package canvas

import (
	"fmt"
	"math"
	"strconv"
)

// ZoomBase is the per-unit wheel zoom factor. A wheel delta of d scales the
// window by ZoomBase^d, so positive deltas zoom out.
const ZoomBase = 1.0015

// DefaultSize is the side of the square window used when nothing better is
// known about the graphic.
const DefaultSize = 1000.0

// ViewWindow is the rectangle of canvas space mapped onto the graphic's
// on-screen rectangle. Width and Height are always positive.
type ViewWindow struct {
	X, Y          float64
	Width, Height float64
}

// Valid reports whether w has a finite origin and a positive finite size.
func (w ViewWindow) Valid() bool {
	return finite(w.X, w.Y, w.Width, w.Height) && w.Width > 0 && w.Height > 0
}

// String formats w as the value of an svg viewBox attribute.
func (w ViewWindow) String() string {
	return fmt.Sprintf("%s %s %s %s", num(w.X), num(w.Y), num(w.Width), num(w.Height))
}

// Rect is the on-screen rectangle of the graphic element in device pixels.
type Rect struct {
	Left, Top, Width, Height float64
}

// Empty reports whether r cannot be used for a transform.
func (r Rect) Empty() bool {
	return !(r.Width > 0 && r.Height > 0) || !finite(r.Left, r.Top, r.Width, r.Height)
}

// DeviceToCanvas maps a device point into canvas units. ok is false when the
// rectangle has no area.
func DeviceToCanvas(w ViewWindow, r Rect, px, py float64) (x, y float64, ok bool) {
	if r.Empty() {
		return 0, 0, false
	}
	x = w.X + ((px-r.Left)/r.Width)*w.Width
	y = w.Y + ((py-r.Top)/r.Height)*w.Height
	return x, y, true
}

// CanvasToDevice is the inverse of DeviceToCanvas.
func CanvasToDevice(w ViewWindow, r Rect, x, y float64) (px, py float64, ok bool) {
	if r.Empty() || !w.Valid() {
		return 0, 0, false
	}
	px = r.Left + (x-w.X)/w.Width*r.Width
	py = r.Top + (y-w.Y)/w.Height*r.Height
	return px, py, true
}

// ZoomAt scales w by ZoomBase^deltaY about the canvas point under the device
// pixel (px, py). The anchor keeps its fractional position inside the window,
// so it maps back to the same device pixel afterwards.
func ZoomAt(w ViewWindow, r Rect, px, py, deltaY float64) (ViewWindow, bool) {
	return ZoomAtFactor(w, r, px, py, math.Pow(ZoomBase, deltaY))
}

// ZoomAtFactor is ZoomAt with an explicit scale factor.
func ZoomAtFactor(w ViewWindow, r Rect, px, py, factor float64) (ViewWindow, bool) {
	ax, ay, ok := DeviceToCanvas(w, r, px, py)
	if !ok || !w.Valid() || !(factor > 0) || !finite(factor) {
		return w, false
	}
	sx := (ax - w.X) / w.Width
	sy := (ay - w.Y) / w.Height
	nw := w.Width * factor
	nh := w.Height * factor
	out := ViewWindow{X: ax - nw*sx, Y: ay - nh*sy, Width: nw, Height: nh}
	if !out.Valid() {
		return w, false
	}
	return out, true
}

// PanBy shifts the window so the content follows a device delta.
func PanBy(w ViewWindow, r Rect, dx, dy float64) (ViewWindow, bool) {
	if r.Empty() || !w.Valid() {
		return w, false
	}
	cx := dx / r.Width * w.Width
	cy := dy / r.Height * w.Height
	out := ViewWindow{X: w.X - cx, Y: w.Y - cy, Width: w.Width, Height: w.Height}
	if !out.Valid() {
		return w, false
	}
	return out, true
}

// Fit returns a window around bounds with margin added on every side as a
// fraction of the larger dimension.
func Fit(bounds ViewWindow, margin float64) ViewWindow {
	if !bounds.Valid() {
		return ViewWindow{Width: DefaultSize, Height: DefaultSize}
	}
	m := math.Max(bounds.Width, bounds.Height) * margin
	return ViewWindow{
		X:      bounds.X - m,
		Y:      bounds.Y - m,
		Width:  bounds.Width + 2*m,
		Height: bounds.Height + 2*m,
	}
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
