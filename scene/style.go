package scene

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/net/html"

	"flatmap/canvas"
	"flatmap/dom"
)

// Paint is a fill or stroke. A zero Paint paints nothing.
type Paint struct {
	Color colorful.Color
	Set   bool
}

// RGBA converts p to a color with the given opacity.
func (p Paint) RGBA(opacity float64) color.RGBA {
	r, g, b := p.Color.Clamped().RGB255()
	a := clamp01(opacity)
	// ebiten wants premultiplied alpha
	return color.RGBA{
		R: uint8(float64(r) * a),
		G: uint8(float64(g) * a),
		B: uint8(float64(b) * a),
		A: uint8(255 * a),
	}
}

// Style is the computed presentation of one element.
type Style struct {
	Fill          Paint
	Stroke        Paint
	StrokeWidth   float64
	FillOpacity   float64
	StrokeOpacity float64
	Opacity       float64
	Hidden        bool
}

// initialStyle is what the root svg starts from: black fill, no stroke.
func initialStyle() Style {
	return Style{
		Fill:          Paint{Color: colorful.Color{}, Set: true},
		StrokeWidth:   1,
		FillOpacity:   1,
		StrokeOpacity: 1,
		Opacity:       1,
	}
}

// declaration is one property with its cascade weight.
type declaration struct {
	property, value string
	important       bool
}

// sheetRule is a parsed stylesheet rule with its compiled selector.
type sheetRule struct {
	sel   cascadia.Selector
	decls []declaration
}

// Stylesheet holds the rules found in <style> elements of a graphic.
type Stylesheet struct {
	rules []sheetRule
}

// ParseStylesheets collects every <style> element below root. Rules that
// fail to parse are skipped.
func ParseStylesheets(root *html.Node) *Stylesheet {
	s := &Stylesheet{}
	for _, n := range dom.FindAll(root, "style") {
		s.Add(dom.TextContent(n))
	}
	return s
}

// Add parses text and appends its rules.
func (s *Stylesheet) Add(text string) {
	sheet, err := parser.Parse(text)
	if err != nil {
		return
	}
	for _, r := range sheet.Rules {
		if r.Kind != css.QualifiedRule || len(r.Selectors) == 0 {
			continue
		}
		sel, err := cascadia.Compile(strings.Join(r.Selectors, ","))
		if err != nil {
			continue
		}
		s.rules = append(s.rules, sheetRule{sel: sel, decls: convert(r.Declarations)})
	}
}

// Len is the number of usable rules.
func (s *Stylesheet) Len() int { return len(s.rules) }

// match maps every element below root to the declarations that apply to it,
// in rule order.
func (s *Stylesheet) match(root *html.Node) map[*html.Node][]declaration {
	out := make(map[*html.Node][]declaration)
	for _, r := range s.rules {
		for _, n := range r.sel.MatchAll(root) {
			out[n] = append(out[n], r.decls...)
		}
	}
	return out
}

func convert(ds []*css.Declaration) []declaration {
	out := make([]declaration, 0, len(ds))
	for _, d := range ds {
		out = append(out, declaration{
			property:  strings.ToLower(strings.TrimSpace(d.Property)),
			value:     strings.TrimSpace(d.Value),
			important: d.Important,
		})
	}
	return out
}

// inlineStyle parses a style="" attribute.
func inlineStyle(n *html.Node) []declaration {
	v := strings.TrimSpace(dom.AttrOr(n, "style", ""))
	if v == "" {
		return nil
	}
	if !strings.HasSuffix(v, ";") {
		v += ";"
	}
	ds, err := parser.ParseDeclarations(v)
	if err != nil {
		return nil
	}
	return convert(ds)
}

var presentationAttrs = []string{
	"fill", "stroke", "stroke-width", "fill-opacity", "stroke-opacity",
	"opacity", "display", "visibility",
}

// cascade computes the style of n from its parent's. Presentation
// attributes lose to stylesheet rules, which lose to the inline style;
// !important stylesheet declarations beat everything.
func cascade(parent Style, n *html.Node, matched []declaration) Style {
	// opacity multiplies down the tree, which is close enough for flat maps
	st := parent
	for _, a := range presentationAttrs {
		if v, ok := dom.Attr(n, a); ok {
			st.apply(a, v)
		}
	}
	var important []declaration
	for _, d := range matched {
		if d.important {
			important = append(important, d)
			continue
		}
		st.apply(d.property, d.value)
	}
	for _, d := range inlineStyle(n) {
		st.apply(d.property, d.value)
	}
	for _, d := range important {
		st.apply(d.property, d.value)
	}
	return st
}

func (st *Style) apply(prop, val string) {
	val = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(val), "!important"))
	switch prop {
	case "fill":
		if p, ok := ParsePaint(val); ok {
			st.Fill = p
		}
	case "stroke":
		if p, ok := ParsePaint(val); ok {
			st.Stroke = p
		}
	case "stroke-width":
		if w, ok := canvas.ParseLength(val); ok && w >= 0 {
			st.StrokeWidth = w
		}
	case "fill-opacity":
		if f, ok := parseOpacity(val); ok {
			st.FillOpacity = f
		}
	case "stroke-opacity":
		if f, ok := parseOpacity(val); ok {
			st.StrokeOpacity = f
		}
	case "opacity":
		if f, ok := parseOpacity(val); ok {
			st.Opacity *= f
		}
	case "display":
		if val == "none" {
			st.Hidden = true
		}
	case "visibility":
		st.Hidden = val == "hidden" || val == "collapse"
	}
}

func parseOpacity(s string) (float64, bool) {
	if strings.HasSuffix(s, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		return clamp01(f / 100), err == nil
	}
	f, err := strconv.ParseFloat(s, 64)
	return clamp01(f), err == nil
}

// namedColors covers the keywords map exports actually use.
var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#c0c0c0",
	"orange":  "#ffa500",
	"purple":  "#800080",
	"magenta": "#ff00ff",
	"cyan":    "#00ffff",
	"navy":    "#000080",
	"teal":    "#008080",
	"maroon":  "#800000",
	"olive":   "#808000",
	"lime":    "#00ff00",
}

// ParsePaint reads "none", a hex colour, rgb(...) or a common colour
// keyword. ok is false for anything else (gradients, currentColor), which
// leaves the inherited paint in place.
func ParsePaint(s string) (Paint, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "none" || s == "transparent":
		return Paint{}, true
	case strings.HasPrefix(s, "#"):
		c, err := colorful.Hex(expandHex(s))
		return Paint{Color: c, Set: true}, err == nil
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		vs := canvas.ParseNumbers(s[4 : len(s)-1])
		if len(vs) != 3 {
			return Paint{}, false
		}
		return Paint{Color: colorful.Color{R: clamp01(vs[0] / 255), G: clamp01(vs[1] / 255), B: clamp01(vs[2] / 255)}, Set: true}, true
	}
	if hex, ok := namedColors[s]; ok {
		c, _ := colorful.Hex(hex)
		return Paint{Color: c, Set: true}, true
	}
	return Paint{}, false
}

// expandHex turns #rgb into #rrggbb.
func expandHex(s string) string {
	if len(s) != 4 {
		return s
	}
	return string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
