package scene

import (
	"math"

	"github.com/tdewolff/parse/v2/strconv"
)

// curveSteps is how many line segments a bezier or arc becomes.
const curveSteps = 12

// Subpath is a flattened run of points. Closed subpaths end with a Z.
type Subpath struct {
	Points []Point
	Closed bool
}

// pathScanner walks path data, handing out command letters and numbers.
type pathScanner struct {
	b []byte
}

func (s *pathScanner) skip() {
	for len(s.b) > 0 {
		switch s.b[0] {
		case ' ', '\t', '\n', '\r', '\f', ',':
			s.b = s.b[1:]
		default:
			return
		}
	}
}

// command returns the next command letter, or 0 when the next token is a
// number (an implicit repeat) or the data is exhausted.
func (s *pathScanner) command() byte {
	s.skip()
	if len(s.b) == 0 {
		return 0
	}
	c := s.b[0]
	if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		s.b = s.b[1:]
		return c
	}
	return 0
}

func (s *pathScanner) more() bool {
	s.skip()
	if len(s.b) == 0 {
		return false
	}
	c := s.b[0]
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}

func (s *pathScanner) number() (float64, bool) {
	s.skip()
	v, n := strconv.ParseFloat(s.b)
	if n == 0 {
		return 0, false
	}
	s.b = s.b[n:]
	return v, true
}

// flag reads an arc flag, which may be written without a separator.
func (s *pathScanner) flag() (bool, bool) {
	s.skip()
	if len(s.b) == 0 || (s.b[0] != '0' && s.b[0] != '1') {
		return false, false
	}
	f := s.b[0] == '1'
	s.b = s.b[1:]
	return f, true
}

func (s *pathScanner) numbers(n int) ([]float64, bool) {
	out := make([]float64, n)
	for i := range out {
		v, ok := s.number()
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// FlattenPath turns svg path data into polylines. Parsing stops at the first
// malformed command, keeping what was read so far, as browsers do.
func FlattenPath(d string) []Subpath {
	s := &pathScanner{b: []byte(d)}
	var (
		out        []Subpath
		cur        *Subpath
		pos, start Point
		ctrl       Point // last control point, for S and T
		prev       byte
		cmd        byte
	)
	begin := func(p Point) {
		out = append(out, Subpath{Points: []Point{p}})
		cur = &out[len(out)-1]
		start = p
	}
	lineTo := func(p Point) {
		if cur == nil {
			begin(pos)
		}
		cur.Points = append(cur.Points, p)
		pos = p
	}

	for {
		if c := s.command(); c != 0 {
			cmd = c
		} else if cmd == 0 || !s.more() {
			return out
		}
		rel := cmd >= 'a'
		abs := func(x, y float64) Point {
			if rel {
				return Point{pos.X + x, pos.Y + y}
			}
			return Point{x, y}
		}

		switch cmd {
		case 'M', 'm':
			a, ok := s.numbers(2)
			if !ok {
				return out
			}
			p := abs(a[0], a[1])
			begin(p)
			pos = p
			// further pairs are implicit line-tos
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'L', 'l':
			a, ok := s.numbers(2)
			if !ok {
				return out
			}
			lineTo(abs(a[0], a[1]))
		case 'H', 'h':
			x, ok := s.number()
			if !ok {
				return out
			}
			if rel {
				x += pos.X
			}
			lineTo(Point{x, pos.Y})
		case 'V', 'v':
			y, ok := s.number()
			if !ok {
				return out
			}
			if rel {
				y += pos.Y
			}
			lineTo(Point{pos.X, y})
		case 'C', 'c':
			a, ok := s.numbers(6)
			if !ok {
				return out
			}
			c1, c2, end := abs(a[0], a[1]), abs(a[2], a[3]), abs(a[4], a[5])
			cubic(pos, c1, c2, end, lineTo)
			ctrl = c2
		case 'S', 's':
			a, ok := s.numbers(4)
			if !ok {
				return out
			}
			c1 := pos
			if prev == 'C' || prev == 'c' || prev == 'S' || prev == 's' {
				c1 = Point{2*pos.X - ctrl.X, 2*pos.Y - ctrl.Y}
			}
			c2, end := abs(a[0], a[1]), abs(a[2], a[3])
			cubic(pos, c1, c2, end, lineTo)
			ctrl = c2
		case 'Q', 'q':
			a, ok := s.numbers(4)
			if !ok {
				return out
			}
			c, end := abs(a[0], a[1]), abs(a[2], a[3])
			quad(pos, c, end, lineTo)
			ctrl = c
		case 'T', 't':
			a, ok := s.numbers(2)
			if !ok {
				return out
			}
			c := pos
			if prev == 'Q' || prev == 'q' || prev == 'T' || prev == 't' {
				c = Point{2*pos.X - ctrl.X, 2*pos.Y - ctrl.Y}
			}
			end := abs(a[0], a[1])
			quad(pos, c, end, lineTo)
			ctrl = c
		case 'A', 'a':
			r, ok := s.numbers(3)
			if !ok {
				return out
			}
			large, ok1 := s.flag()
			sweep, ok2 := s.flag()
			e, ok3 := s.numbers(2)
			if !ok1 || !ok2 || !ok3 {
				return out
			}
			arc(pos, r[0], r[1], r[2], large, sweep, abs(e[0], e[1]), lineTo)
		case 'Z', 'z':
			if cur != nil {
				cur.Closed = true
				cur = nil
			}
			pos = start
			prev = cmd
			// Z takes no arguments; numbers after it are an error
			cmd = 0
			continue
		default:
			return out
		}
		prev = cmd
	}
}

func cubic(p0, p1, p2, p3 Point, lineTo func(Point)) {
	for i := 1; i <= curveSteps; i++ {
		t := float64(i) / curveSteps
		mt := 1 - t
		a, b, c, d := mt*mt*mt, 3*mt*mt*t, 3*mt*t*t, t*t*t
		lineTo(Point{
			X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
			Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
		})
	}
}

func quad(p0, p1, p2 Point, lineTo func(Point)) {
	for i := 1; i <= curveSteps; i++ {
		t := float64(i) / curveSteps
		mt := 1 - t
		lineTo(Point{
			X: mt*mt*p0.X + 2*mt*t*p1.X + t*t*p2.X,
			Y: mt*mt*p0.Y + 2*mt*t*p1.Y + t*t*p2.Y,
		})
	}
}

// arc flattens an elliptical arc given in endpoint form, converting it to
// centre form first.
func arc(from Point, rx, ry, phiDeg float64, large, sweep bool, to Point, lineTo func(Point)) {
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 || (from == to) {
		lineTo(to)
		return
	}
	phi := phiDeg * math.Pi / 180
	cos, sin := math.Cos(phi), math.Sin(phi)
	dx, dy := (from.X-to.X)/2, (from.Y-to.Y)/2
	x1 := cos*dx + sin*dy
	y1 := -sin*dx + cos*dy

	// scale radii up when they cannot span the endpoints
	if l := x1*x1/(rx*rx) + y1*y1/(ry*ry); l > 1 {
		s := math.Sqrt(l)
		rx, ry = rx*s, ry*s
	}
	num := rx*rx*ry*ry - rx*rx*y1*y1 - ry*ry*x1*x1
	den := rx*rx*y1*y1 + ry*ry*x1*x1
	co := 0.0
	if den > 0 && num > 0 {
		co = math.Sqrt(num / den)
	}
	if large == sweep {
		co = -co
	}
	cx1 := co * rx * y1 / ry
	cy1 := -co * ry * x1 / rx
	cx := cos*cx1 - sin*cy1 + (from.X+to.X)/2
	cy := sin*cx1 + cos*cy1 + (from.Y+to.Y)/2

	angle := func(ux, uy, vx, vy float64) float64 {
		return math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
	}
	theta := angle(1, 0, (x1-cx1)/rx, (y1-cy1)/ry)
	delta := angle((x1-cx1)/rx, (y1-cy1)/ry, (-x1-cx1)/rx, (-y1-cy1)/ry)
	if !sweep && delta > 0 {
		delta -= 2 * math.Pi
	} else if sweep && delta < 0 {
		delta += 2 * math.Pi
	}

	for i := 1; i <= curveSteps; i++ {
		if i == curveSteps {
			lineTo(to)
			return
		}
		a := theta + delta*float64(i)/curveSteps
		x, y := rx*math.Cos(a), ry*math.Sin(a)
		lineTo(Point{X: cos*x - sin*y + cx, Y: sin*x + cos*y + cy})
	}
}
