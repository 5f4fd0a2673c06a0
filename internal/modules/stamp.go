package modules

import (
	"context"
	"time"

	"github.com/larsks/datamodule/internal/behavior"
	"github.com/larsks/datamodule/internal/document"
)

// StampAttribute is set on stamped elements.
const StampAttribute = "data-activated-at"

// StampInstance carries the time written to the element.
type StampInstance struct {
	At time.Time
}

// NewStampFactory returns a behavior unit that marks its element with the
// activation time taken from now.
func NewStampFactory(now func() time.Time) behavior.Factory {
	return behavior.FactoryFunc(func(ctx context.Context, el *document.Element) (behavior.Instance, error) {
		at := now().UTC()
		err := el.Document().Update(func() error {
			el.SetAttr(StampAttribute, at.Format(time.RFC3339))
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &StampInstance{At: at}, nil
	})
}
