package activator

import (
	"github.com/larsks/datamodule/internal/behavior"
	"github.com/larsks/datamodule/internal/document"
)

// Pair is one (element, module) activation unit.
type Pair struct {
	Element *document.Element
	Module  string
	// Index is the position of the pair in the sweep, following document
	// order and then token order within the attribute.
	Index int
}

// Pairs derives the activation pairs of doc without activating anything.
// Elements whose attribute is empty or whitespace only contribute nothing.
func Pairs(doc *document.Document, attr string) []Pair {
	if attr == "" {
		attr = DefaultAttribute
	}

	var pairs []Pair
	for _, m := range doc.QueryValues(attr) {
		for _, name := range behavior.SplitNames(m.Value) {
			pairs = append(pairs, Pair{
				Element: m.Element,
				Module:  name,
				Index:   len(pairs),
			})
		}
	}
	return pairs
}
