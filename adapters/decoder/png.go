// Package decoder converts encoded page bytes handed over by a rasterizer
// into PageImage buffers.
package decoder

import (
	"context"
	"image/png"
	"io"

	"github.com/scanify/scankit/core"
	apperrors "github.com/scanify/scankit/errors"
)

// PNG decodes PNG pages using the standard library.  Most page rasterizers
// hand pages over as PNG.
type PNG struct{}

func NewPNG() *PNG { return &PNG{} }

func (p *PNG) CanDecode(format string) bool {
	return format == "png"
}

func (p *PNG) Decode(ctx context.Context, r io.Reader) (*core.PageImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "png.decode", err)
	}

	img, err := png.Decode(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "png.decode", err)
	}
	return core.FromImage(img), nil
}
