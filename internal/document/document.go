// Package document wraps a parsed HTML tree so that behavior units can
// query and mutate it from concurrent goroutines.
package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// Document is a parsed HTML document.
type Document struct {
	root *html.Node
	mu   sync.Mutex
}

// Parse reads an HTML document from r.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	return &Document{root: root}, nil
}

// ParseString parses an HTML document held in a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// New wraps an existing node tree.
func New(root *html.Node) (*Document, error) {
	if root == nil {
		return nil, ErrNilRoot
	}
	return &Document{root: root}, nil
}

// Root returns the root node of the document.
func (d *Document) Root() *html.Node {
	return d.root
}

// Lock acquires the document-wide lock. Anything that mutates the tree
// while an activation sweep may be running should hold it.
func (d *Document) Lock() {
	d.mu.Lock()
}

// Unlock releases the document-wide lock.
func (d *Document) Unlock() {
	d.mu.Unlock()
}

// Query returns every element carrying attr, in document order.
func (d *Document) Query(attr string) []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	var found []*Element
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			if _, ok := getAttr(n, attr); ok {
				found = append(found, &Element{node: n, doc: d})
			}
		}
		return true
	})
	return found
}

// Match is an element found by QueryValues with the attribute value it
// carried at the time of the walk.
type Match struct {
	Element *Element
	Value   string
}

// QueryValues is Query that also reads each attribute value under the
// document lock.
func (d *Document) QueryValues(attr string) []Match {
	d.mu.Lock()
	defer d.mu.Unlock()

	var found []Match
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			if v, ok := getAttr(n, attr); ok {
				found = append(found, Match{Element: &Element{node: n, doc: d}, Value: v})
			}
		}
		return true
	})
	return found
}

// QueryTag returns every element with the given tag name, in document order.
func (d *Document) QueryTag(tag string) []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	return collectTag(d, d.root, tag)
}

// Body returns the body element, if there is one.
func (d *Document) Body() *Element {
	bodies := d.QueryTag("body")
	if len(bodies) == 0 {
		return nil
	}
	return bodies[0]
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	return nil
}

// String renders the document, returning an empty string on error.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// walk visits n and its descendants depth first. Returning false from visit
// skips the children of the current node.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func collectTag(d *Document, n *html.Node, tag string) []*Element {
	var found []*Element
	walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && c.Data == tag {
			found = append(found, &Element{node: c, doc: d})
		}
		return true
	})
	return found
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attr = attrs
}
