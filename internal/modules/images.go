package modules

import (
	"context"

	"github.com/larsks/datamodule/internal/behavior"
	"github.com/larsks/datamodule/internal/document"
)

// LazyImagesInstance records how many images were touched.
type LazyImagesInstance struct {
	Images int
}

// NewLazyImages defers loading of images below el. Attributes already set
// by the author are left alone.
func NewLazyImages(ctx context.Context, el *document.Element) (behavior.Instance, error) {
	inst := &LazyImagesInstance{}

	err := el.Document().Update(func() error {
		images := el.Descendants("img")
		if el.Tag() == "img" {
			images = append(images, el)
		}
		for _, img := range images {
			if _, ok := img.Attr("loading"); !ok {
				img.SetAttr("loading", "lazy")
			}
			if _, ok := img.Attr("decoding"); !ok {
				img.SetAttr("decoding", "async")
			}
			inst.Images++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return inst, nil
}
