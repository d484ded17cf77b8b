package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// sel wraps a single node in a goquery selection.
func sel(n *html.Node) *goquery.Selection {
	return goquery.NewDocumentFromNode(n).Selection
}

// IsElement reports whether n is a non-nil element node.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// Tag returns the lowercase tag name of an element, or "" for anything else.
func Tag(n *html.Node) string {
	if !IsElement(n) {
		return ""
	}
	return strings.ToLower(n.Data)
}

// Attr returns the value of the named attribute.
func Attr(n *html.Node, key string) (string, bool) {
	if !IsElement(n) {
		return "", false
	}
	return sel(n).Attr(key)
}

// AttrOr returns the named attribute or def when it is missing.
func AttrOr(n *html.Node, key, def string) string {
	if v, ok := Attr(n, key); ok {
		return v
	}
	return def
}

// SetAttr sets or replaces the named attribute.
func SetAttr(n *html.Node, key, val string) {
	if IsElement(n) {
		sel(n).SetAttr(key, val)
	}
}

// Dataset returns the value of the data-<name> attribute.
func Dataset(n *html.Node, name string) string {
	return AttrOr(n, "data-"+name, "")
}

// HasClass reports whether n carries the given class.
func HasClass(n *html.Node, class string) bool {
	return IsElement(n) && sel(n).HasClass(class)
}

// AddClass adds class to n if it is not already present.
func AddClass(n *html.Node, class string) {
	if IsElement(n) {
		sel(n).AddClass(class)
	}
}

// RemoveClass removes class from n.
func RemoveClass(n *html.Node, class string) {
	if IsElement(n) {
		sel(n).RemoveClass(class)
	}
}

// Contains reports whether n is ancestor or ancestor-or-self of the given node,
// matching Node.contains in a browser.
func Contains(ancestor, n *html.Node) bool {
	if ancestor == nil {
		return false
	}
	for ; n != nil; n = n.Parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

// Closest returns the nearest ancestor-or-self of n whose tag is one of tags.
func Closest(n *html.Node, tags ...string) *html.Node {
	for ; n != nil; n = n.Parent {
		t := Tag(n)
		for _, want := range tags {
			if t == want {
				return n
			}
		}
	}
	return nil
}

// FirstByTag returns the first descendant element (not n itself) with the tag.
func FirstByTag(n *html.Node, tag string) *html.Node {
	if n == nil {
		return nil
	}
	found := sel(n).Find(tag).First()
	if found.Length() == 0 {
		return nil
	}
	return found.Get(0)
}

// FindAll returns every descendant element matching one of tags, in
// document order.
func FindAll(n *html.Node, tags ...string) []*html.Node {
	if n == nil || len(tags) == 0 {
		return nil
	}
	return sel(n).Find(strings.Join(tags, ",")).Nodes
}

// ByID returns the first element in the subtree rooted at n with the id.
func ByID(n *html.Node, id string) *html.Node {
	if n == nil || id == "" {
		return nil
	}
	var found *html.Node
	walk(n, func(c *html.Node) bool {
		if found != nil {
			return false
		}
		if v, ok := Attr(c, "id"); ok && v == id {
			found = c
			return false
		}
		return true
	})
	return found
}

// walk visits n and its descendants depth first until fn returns false for a
// node, in which case that node's children are skipped.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// HasChildNodes reports whether n has any child, text included.
func HasChildNodes(n *html.Node) bool {
	return n != nil && n.FirstChild != nil
}

// CreateElement returns a detached element. Elements created for use inside
// an svg subtree should pass "svg" as namespace.
func CreateElement(tag, namespace string) *html.Node {
	return &html.Node{
		Type:      html.ElementNode,
		Data:      tag,
		DataAtom:  atom.Lookup([]byte(tag)),
		Namespace: namespace,
	}
}

// CreateText returns a detached text node.
func CreateText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// TextContent concatenates all text below n.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	return sel(n).Text()
}
