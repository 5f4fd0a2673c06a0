package modules

import (
	"context"
	"net/url"

	"github.com/larsks/datamodule/internal/behavior"
	"github.com/larsks/datamodule/internal/document"
)

// ExternalLinksInstance records which anchors were rewritten.
type ExternalLinksInstance struct {
	Rewritten int
}

// NewExternalLinks makes anchors inside el that point at another site open
// in a new tab without leaking the opener.
func NewExternalLinks(ctx context.Context, el *document.Element) (behavior.Instance, error) {
	inst := &ExternalLinksInstance{}

	err := el.Document().Update(func() error {
		for _, a := range el.Descendants("a") {
			href, ok := a.Attr("href")
			if !ok || !isExternal(href) {
				continue
			}
			a.SetAttr("target", "_blank")
			a.SetAttr("rel", "noopener noreferrer")
			inst.Rewritten++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return inst, nil
}

func isExternal(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
