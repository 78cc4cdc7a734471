package effects

import (
	"context"
	"math"
	mathrand "math/rand"

	"github.com/scanify/scankit/core"
	"github.com/scanify/scankit/utils"
)

// LightingStage blends a radial brightness gradient from a randomized
// origin: scanner light is brightest near the center and falls off toward
// the edges, with a slight warm cast on color pages.
type LightingStage struct {
	Amount float64
}

func (s *LightingStage) Name() string { return StageLighting }

func (s *LightingStage) Apply(ctx context.Context, page *core.PageImage, rng *mathrand.Rand) (*core.PageImage, error) {
	if s.Amount <= 0 {
		return page, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := page.W, page.H
	centerX := float64(w) * (0.45 + rng.Float64()*0.10)
	centerY := float64(h) * (0.40 + rng.Float64()*0.20)
	maxDist := math.Hypot(float64(w), float64(h))

	// Per-channel gains for the warm cast; single-channel pages get the
	// plain brightness curve.
	gains := [3]float64{1.02, 1.01, 0.96}
	if page.Channels == 1 {
		gains = [3]float64{1, 1, 1}
	}

	out := page.Clone()
	di := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dist := math.Hypot(float64(x)-centerX, float64(y)-centerY) / maxDist
			brightness := 1 + s.Amount*0.25*(1-dist) - s.Amount*0.15
			for c := 0; c < page.Channels; c++ {
				out.Pix[di] = utils.ClampU8(float64(page.Pix[di]) * brightness * gains[c])
				di++
			}
		}
	}
	return out, nil
}
