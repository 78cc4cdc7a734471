package effects

import (
	"context"
	"image"
	mathrand "math/rand"

	"github.com/disintegration/gift"

	"github.com/scanify/scankit/core"
	"github.com/scanify/scankit/utils"
)

// GrainStage overlays a fine noise field simulating paper fiber.  The field
// is generated at half resolution and smoothly upscaled, which keeps the
// grain coarse enough to read as texture rather than sensor noise.
type GrainStage struct {
	Amount float64
}

func (s *GrainStage) Name() string { return StageGrain }

func (s *GrainStage) Apply(ctx context.Context, page *core.PageImage, rng *mathrand.Rand) (*core.PageImage, error) {
	if s.Amount <= 0 {
		return page, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := page.W, page.H
	gw, gh := w/2, h/2
	if gw < 1 {
		gw = 1
	}
	if gh < 1 {
		gh = 1
	}

	// Grain values centered at 128 so the gray image can carry signed offsets.
	field := image.NewGray(image.Rect(0, 0, gw, gh))
	sigma := s.Amount * 15
	for i := range field.Pix {
		field.Pix[i] = utils.ClampU8(128 + rng.NormFloat64()*sigma)
	}

	full := image.NewGray(image.Rect(0, 0, w, h))
	gift.New(gift.Resize(w, h, gift.LinearResampling)).Draw(full, field)

	out := page.Clone()
	gain := s.Amount * 1.5
	i := 0
	for p := 0; p < w*h; p++ {
		offset := (float64(full.Pix[p]) - 128) * gain
		for c := 0; c < page.Channels; c++ {
			out.Pix[i] = utils.ClampU8(float64(page.Pix[i]) + offset)
			i++
		}
	}
	return out, nil
}
