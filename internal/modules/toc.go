package modules

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/larsks/datamodule/internal/behavior"
	"github.com/larsks/datamodule/internal/document"
	"golang.org/x/net/html"
)

// TOCEntry is one heading listed in a table of contents.
type TOCEntry struct {
	Level int
	ID    string
	Title string
}

// TOCInstance holds the entries rendered into the element.
type TOCInstance struct {
	Entries []TOCEntry
}

// NewTOC replaces the content of el with a list of links to the h2 and h3
// headings of the document. Headings without an id get one derived from
// their text.
func NewTOC(ctx context.Context, el *document.Element) (behavior.Instance, error) {
	inst := &TOCInstance{}
	doc := el.Document()

	err := doc.Update(func() error {
		used := map[string]bool{}
		for _, e := range doc.ElementsMatching(func(e *document.Element) bool {
			_, ok := e.Attr("id")
			return ok
		}) {
			id, _ := e.Attr("id")
			used[id] = true
		}

		headings := doc.ElementsMatching(func(e *document.Element) bool {
			return e.Tag() == "h2" || e.Tag() == "h3"
		})

		for _, h := range headings {
			title := h.Text()
			if title == "" {
				continue
			}

			id, ok := h.Attr("id")
			if !ok || id == "" {
				id = uniqueSlug(slugify(title), used)
				h.SetAttr("id", id)
			}

			level := 2
			if h.Tag() == "h3" {
				level = 3
			}
			inst.Entries = append(inst.Entries, TOCEntry{Level: level, ID: id, Title: title})
		}

		el.Clear()
		if len(inst.Entries) == 0 {
			return nil
		}

		list := el.AppendElement("ul", html.Attribute{Key: "class", Val: "toc"})
		for _, entry := range inst.Entries {
			li := list.AppendElement("li", html.Attribute{Key: "class", Val: fmt.Sprintf("toc-h%d", entry.Level)})
			a := li.AppendElement("a", html.Attribute{Key: "href", Val: "#" + entry.ID})
			a.AppendText(entry.Title)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return inst, nil
}

func slugify(s string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			dash = false
		case !dash && sb.Len() > 0:
			sb.WriteByte('-')
			dash = true
		}
	}

	slug := strings.TrimSuffix(sb.String(), "-")
	if slug == "" {
		slug = "section"
	}
	return slug
}

func uniqueSlug(base string, used map[string]bool) string {
	slug := base
	for i := 2; used[slug]; i++ {
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	used[slug] = true
	return slug
}
