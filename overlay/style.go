package overlay

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aymerick/douceur/parser"

	"flatmap/config"
)

// HighlightRule renders the stylesheet rule that forces the highlight onto
// elements carrying h.Class. Every declaration is !important so authored
// styling cannot override it.
func HighlightRule(h config.Highlight) string {
	var b strings.Builder
	fmt.Fprintf(&b, ".%s {\n", h.Class)
	fmt.Fprintf(&b, "  stroke: %s !important;\n", h.Stroke)
	fmt.Fprintf(&b, "  stroke-width: %s !important;\n", h.StrokeWidth)
	fmt.Fprintf(&b, "  fill: %s !important;\n", h.Fill)
	fmt.Fprintf(&b, "  fill-opacity: %s !important;\n", strconv.FormatFloat(h.FillOpacity, 'g', -1, 64))
	b.WriteString("}\n")
	return b.String()
}

// checkRule parses css and makes sure it holds exactly one rule with every
// declaration marked important.
func checkRule(css string) error {
	sheet, err := parser.Parse(css)
	if err != nil {
		return fmt.Errorf("parse highlight rule: %w", err)
	}
	if len(sheet.Rules) != 1 {
		return fmt.Errorf("highlight rule: want 1 rule, got %d", len(sheet.Rules))
	}
	rule := sheet.Rules[0]
	if len(rule.Declarations) == 0 {
		return fmt.Errorf("highlight rule %q has no declarations", rule.Prelude)
	}
	for _, d := range rule.Declarations {
		if !d.Important {
			return fmt.Errorf("highlight rule: %s is not important", d.Property)
		}
	}
	return nil
}
