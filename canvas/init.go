package canvas

import (
	"strings"

	"github.com/tdewolff/parse/v2/strconv"
)

// WindowSource exposes what InitializeWindow can learn about a graphic.
// Every method reports false when it has no usable answer.
type WindowSource interface {
	// DeclaredWindow is the window the graphic already carries (its viewBox).
	DeclaredWindow() (ViewWindow, bool)
	// ContentBounds is the bounding box of the drawn content.
	ContentBounds() (ViewWindow, bool)
	// DeclaredSize is the width/height the graphic declares for itself.
	DeclaredSize() (w, h float64, ok bool)
	// RenderedRect is where the graphic was laid out on screen.
	RenderedRect() Rect
}

// InitializeWindow picks the first usable window: the declared one, then the
// content bounds, then the declared size, then the rendered size, then a
// DefaultSize square. The result always has positive width and height.
func InitializeWindow(src WindowSource) ViewWindow {
	if w, ok := src.DeclaredWindow(); ok && w.Valid() {
		return w
	}
	if b, ok := src.ContentBounds(); ok && b.Valid() {
		return b
	}
	if w, h, ok := src.DeclaredSize(); ok && w > 0 && h > 0 && finite(w, h) {
		return ViewWindow{Width: w, Height: h}
	}
	if r := src.RenderedRect(); !r.Empty() {
		return ViewWindow{Width: r.Width, Height: r.Height}
	}
	return ViewWindow{Width: DefaultSize, Height: DefaultSize}
}

// ParseViewBox reads "x y w h" (comma or space separated). It fails on
// anything but four numbers with a positive size.
func ParseViewBox(s string) (ViewWindow, bool) {
	vs := ParseNumbers(s)
	if len(vs) != 4 {
		return ViewWindow{}, false
	}
	w := ViewWindow{X: vs[0], Y: vs[1], Width: vs[2], Height: vs[3]}
	return w, w.Valid()
}

// ParseLength reads a leading number from an svg length such as "512",
// "512px" or "80.5pt", ignoring the unit. Percentages are rejected.
func ParseLength(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, "%") {
		return 0, false
	}
	v, n := strconv.ParseFloat([]byte(s))
	if n == 0 {
		return 0, false
	}
	return v, true
}

// ParseNumbers reads a list of numbers separated by whitespace and/or
// commas, the way svg writes viewBox, points and path arguments. Scanning
// stops at the first character that cannot start a number.
func ParseNumbers(s string) []float64 {
	b := []byte(s)
	var out []float64
	for {
		b = skipSeparators(b)
		if len(b) == 0 {
			return out
		}
		v, n := strconv.ParseFloat(b)
		if n == 0 {
			return out
		}
		out = append(out, v)
		b = b[n:]
	}
}

func skipSeparators(b []byte) []byte {
	for len(b) > 0 {
		switch b[0] {
		case ' ', '\t', '\n', '\r', '\f', ',':
			b = b[1:]
		default:
			return b
		}
	}
	return b
}
