package effects

import (
	"context"
	mathrand "math/rand"

	"github.com/scanify/scankit/core"
	"github.com/scanify/scankit/utils"
)

// PageEdgeStage darkens a border band around the page, blended smoothly
// inward.  Tilt jitters the band width per side, as a page that is not
// perfectly centered leaves uneven margins.
type PageEdgeStage struct {
	Amount float64
	Tilt   float64
}

func (s *PageEdgeStage) Name() string { return StagePageEdge }

func (s *PageEdgeStage) Apply(ctx context.Context, page *core.PageImage, rng *mathrand.Rand) (*core.PageImage, error) {
	if s.Amount <= 0 {
		return page, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := page.W, page.H
	base := float64(min(w, h)) * 0.08 * s.Amount
	if base < 1 {
		return page, nil
	}

	// Per-side band widths, jittered by Tilt.
	side := func() float64 {
		width := base * (1 + s.Tilt*(rng.Float64()-0.5))
		if width < 1 {
			width = 1
		}
		return width
	}
	top, bottom, left, right := side(), side(), side(), side()

	darkness := 0.35 * s.Amount

	out := page.Clone()
	di := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Fractional depth into the band, 0 at the image edge.
			t := 1.0
			if v := float64(y) / top; v < t {
				t = v
			}
			if v := float64(h-1-y) / bottom; v < t {
				t = v
			}
			if v := float64(x) / left; v < t {
				t = v
			}
			if v := float64(w-1-x) / right; v < t {
				t = v
			}
			if t >= 1 {
				di += page.Channels
				continue
			}
			// Quadratic falloff keeps the inner boundary soft.
			f := 1 - darkness*(1-t)*(1-t)
			for c := 0; c < page.Channels; c++ {
				out.Pix[di] = utils.ClampU8(float64(page.Pix[di]) * f)
				di++
			}
		}
	}
	return out, nil
}
