package scene

import (
	"math"
	"strings"

	"flatmap/canvas"
)

// Point is a position in the graphic's user space.
type Point struct{ X, Y float64 }

// Matrix is the affine transform [a c e; b d f; 0 0 1], in svg order.
type Matrix struct{ A, B, C, D, E, F float64 }

// Identity is the transform that changes nothing.
var Identity = Matrix{A: 1, D: 1}

// Mul returns m·n: n is applied first.
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Apply transforms p.
func (m Matrix) Apply(p Point) Point {
	return Point{X: m.A*p.X + m.C*p.Y + m.E, Y: m.B*p.X + m.D*p.Y + m.F}
}

// Scale is the mean linear scale of m, used for stroke widths.
func (m Matrix) Scale() float64 {
	return math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
}

// ParseTransform reads an svg transform list such as
// "translate(10 20) scale(2)". Unknown functions are skipped.
func ParseTransform(s string) Matrix {
	out := Identity
	for {
		open := strings.IndexByte(s, '(')
		if open < 0 {
			return out
		}
		end := strings.IndexByte(s[open:], ')')
		if end < 0 {
			return out
		}
		name := strings.TrimSpace(strings.Trim(s[:open], " ,\t\n"))
		args := canvas.ParseNumbers(s[open+1 : open+end])
		out = out.Mul(transformFunc(name, args))
		s = s[open+end+1:]
	}
}

func transformFunc(name string, a []float64) Matrix {
	arg := func(i int, def float64) float64 {
		if i < len(a) {
			return a[i]
		}
		return def
	}
	switch name {
	case "matrix":
		if len(a) == 6 {
			return Matrix{a[0], a[1], a[2], a[3], a[4], a[5]}
		}
	case "translate":
		return Matrix{A: 1, D: 1, E: arg(0, 0), F: arg(1, 0)}
	case "scale":
		sx := arg(0, 1)
		return Matrix{A: sx, D: arg(1, sx)}
	case "rotate":
		r := arg(0, 0) * math.Pi / 180
		cos, sin := math.Cos(r), math.Sin(r)
		rot := Matrix{A: cos, B: sin, C: -sin, D: cos}
		if len(a) == 3 {
			cx, cy := a[1], a[2]
			return Matrix{A: 1, D: 1, E: cx, F: cy}.Mul(rot).Mul(Matrix{A: 1, D: 1, E: -cx, F: -cy})
		}
		return rot
	case "skewX":
		return Matrix{A: 1, C: math.Tan(arg(0, 0) * math.Pi / 180), D: 1}
	case "skewY":
		return Matrix{A: 1, B: math.Tan(arg(0, 0) * math.Pi / 180), D: 1}
	}
	return Identity
}

// Box is an axis-aligned bounding box. The zero Box is empty.
type Box struct {
	Min, Max Point
	set      bool
}

// Add grows b to include p.
func (b *Box) Add(p Point) {
	if !b.set {
		b.Min, b.Max, b.set = p, p, true
		return
	}
	b.Min.X = math.Min(b.Min.X, p.X)
	b.Min.Y = math.Min(b.Min.Y, p.Y)
	b.Max.X = math.Max(b.Max.X, p.X)
	b.Max.Y = math.Max(b.Max.Y, p.Y)
}

// Union grows b to include o.
func (b *Box) Union(o Box) {
	if o.set {
		b.Add(o.Min)
		b.Add(o.Max)
	}
}

// Empty reports whether nothing was added.
func (b Box) Empty() bool { return !b.set }

// Contains reports whether p lies inside b, edges included.
func (b Box) Contains(p Point) bool {
	return b.set && p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Window converts b to a view window.
func (b Box) Window() canvas.ViewWindow {
	return canvas.ViewWindow{X: b.Min.X, Y: b.Min.Y, Width: b.Max.X - b.Min.X, Height: b.Max.Y - b.Min.Y}
}

// inRing is the crossing test for one closed ring.
func inRing(p Point, ring []Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// inRingsEvenOdd applies the even-odd rule across all rings, so holes cut out.
func inRingsEvenOdd(p Point, rings [][]Point) bool {
	inside := false
	for _, r := range rings {
		if inRing(p, r) {
			inside = !inside
		}
	}
	return inside
}

// segmentDist is the distance from p to the segment ab.
func segmentDist(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	t := 0.0
	if l2 > 0 {
		t = math.Max(0, math.Min(1, ((p.X-a.X)*dx+(p.Y-a.Y)*dy)/l2))
	}
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}
