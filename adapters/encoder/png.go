package encoder

import (
	"bytes"
	"context"
	"image/png"

	"github.com/scanify/scankit/core"
	apperrors "github.com/scanify/scankit/errors"
)

// PNG encodes pages losslessly, useful for previews and tests.
type PNG struct{}

func NewPNG() *PNG { return &PNG{} }

func (p *PNG) CanEncode(format string) bool {
	return format == "png"
}

func (p *PNG) Encode(ctx context.Context, page *core.PageImage, _ core.EncodeOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "png.encode", err)
	}
	if err := page.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "png.encode", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, page.ToImage()); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "png.encode", err)
	}
	return buf.Bytes(), nil
}
