package document

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is a handle on an element node of a Document.
//
// Element methods do not lock the document. Code that mutates elements
// while other goroutines may be working on the same document should do so
// inside Document.Update.
type Element struct {
	node *html.Node
	doc  *Document
}

// Node returns the underlying html node.
func (e *Element) Node() *html.Node {
	return e.node
}

// Document returns the document the element belongs to.
func (e *Element) Document() *Document {
	return e.doc
}

// Tag returns the element's tag name.
func (e *Element) Tag() string {
	return e.node.Data
}

// Attr returns the value of an attribute and whether it is present.
func (e *Element) Attr(key string) (string, bool) {
	return getAttr(e.node, key)
}

// SetAttr sets an attribute, replacing any existing value.
func (e *Element) SetAttr(key, val string) {
	setAttr(e.node, key, val)
}

// RemoveAttr removes an attribute if present.
func (e *Element) RemoveAttr(key string) {
	removeAttr(e.node, key)
}

// Text returns the concatenated text content of the element.
func (e *Element) Text() string {
	var sb strings.Builder
	walk(e.node, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		return true
	})
	return strings.TrimSpace(sb.String())
}

// Descendants returns descendant elements with the given tag, in document
// order. The element itself is not included.
func (e *Element) Descendants(tag string) []*Element {
	var found []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		found = append(found, collectTag(e.doc, c, tag)...)
	}
	return found
}

// AppendElement creates a new child element and returns it.
func (e *Element) AppendElement(tag string, attrs ...html.Attribute) *Element {
	child := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
	e.node.AppendChild(child)
	return &Element{node: child, doc: e.doc}
}

// AppendText appends a text node.
func (e *Element) AppendText(text string) {
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// AppendRaw appends a raw HTML fragment parsed in the context of this
// element.
func (e *Element) AppendRaw(fragment string) error {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), e.node)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// Clear removes every child of the element.
func (e *Element) Clear() {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
}

// Update runs fn while holding the document lock.
func (d *Document) Update(fn func() error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn()
}

// ElementsByTag is QueryTag for callers already holding the document lock,
// such as functions passed to Update.
func (d *Document) ElementsByTag(tag string) []*Element {
	return collectTag(d, d.root, tag)
}

// ElementsMatching returns the elements for which match returns true, in
// document order. The caller must hold the document lock.
func (d *Document) ElementsMatching(match func(*Element) bool) []*Element {
	var found []*Element
	walk(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		el := &Element{node: n, doc: d}
		if match(el) {
			found = append(found, el)
		}
		return true
	})
	return found
}
