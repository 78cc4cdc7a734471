package decoder

import (
	"bytes"
	"context"
	"image/jpeg"
	"io"

	"github.com/scanify/scankit/core"
	apperrors "github.com/scanify/scankit/errors"
	"github.com/scanify/scankit/utils"
)

// JPEG decodes JPEG pages using the standard library.
type JPEG struct{}

func NewJPEG() *JPEG { return &JPEG{} }

func (j *JPEG) CanDecode(format string) bool {
	return format == "jpeg"
}

func (j *JPEG) Decode(ctx context.Context, r io.Reader) (*core.PageImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "jpeg.decode", err)
	}

	buf, err := utils.DrainReader(ctx, r, 32*1024)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "jpeg.decode.drain", err)
	}
	raw := utils.CloneBytes(buf.Bytes())
	utils.ReleaseBuffer(buf)

	if len(raw) == 0 {
		return nil, apperrors.New(apperrors.CategoryDecode, "jpeg.decode", apperrors.ErrEmptyInput)
	}

	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "jpeg.decode", err)
	}
	return core.FromImage(img), nil
}

// Detect returns the decoder matching the sniffed format of data, or false
// when the format is not a supported page encoding.
func Detect(data []byte) (core.PageDecoder, bool) {
	switch utils.DetectFormat(data) {
	case "png":
		return NewPNG(), true
	case "jpeg":
		return NewJPEG(), true
	}
	return nil, false
}
