package effects

import (
	"context"
	"image"
	"math"
	mathrand "math/rand"

	"github.com/disintegration/gift"

	"github.com/scanify/scankit/core"
	"github.com/scanify/scankit/utils"
)

// ShadowStage darkens the page edges and corners with soft radial gradients:
// scanner light does not reach the borders evenly.  Overlapping gradients
// combine additively and are clamped.  Tilt skews the per-corner strength.
type ShadowStage struct {
	Amount float64
	Tilt   float64
}

func (s *ShadowStage) Name() string { return StageShadows }

func (s *ShadowStage) Apply(ctx context.Context, page *core.PageImage, rng *mathrand.Rand) (*core.PageImage, error) {
	if s.Amount <= 0 {
		return page, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := page.W, page.H
	strength := s.Amount * 0.3

	// darkness accumulates additive darkening per pixel, clamped at apply time.
	darkness := utils.AcquirePlane(w*h, 0)
	defer utils.ReleasePlane(darkness)

	// Top and bottom edge vignette.
	edgeV := int(float64(h) * 0.15)
	for y := 0; y < edgeV && y < h; y++ {
		fade := float64(edgeV-y) / float64(edgeV) * strength * 0.7
		for x := 0; x < w; x++ {
			darkness[y*w+x] += float32(fade)
			darkness[(h-1-y)*w+x] += float32(fade)
		}
	}

	// Left and right edge vignette.
	edgeH := int(float64(w) * 0.12)
	for x := 0; x < edgeH && x < w; x++ {
		fade := float64(edgeH-x) / float64(edgeH) * strength * 0.8
		for y := 0; y < h; y++ {
			darkness[y*w+x] += float32(fade)
			darkness[y*w+w-1-x] += float32(fade)
		}
	}

	// Corner gradients, more pronounced; Tilt makes them uneven.
	corner := min(w, h) / 6
	cornerStrength := strength * 1.5
	var factors [4]float64
	for i := range factors {
		factors[i] = 1 + s.Tilt*(rng.Float64()*0.6-0.3)
	}
	if corner > 0 {
		for y := 0; y < corner && y < h; y++ {
			for x := 0; x < corner && x < w; x++ {
				dist := math.Hypot(float64(x)/float64(corner), float64(y)/float64(corner))
				if dist >= 1 {
					continue
				}
				fade := (1 - dist) * cornerStrength
				darkness[y*w+x] += float32(fade * factors[0])
				darkness[y*w+w-1-x] += float32(fade * factors[1])
				darkness[(h-1-y)*w+x] += float32(fade * factors[2])
				darkness[(h-1-y)*w+w-1-x] += float32(fade * factors[3])
			}
		}
	}

	layer := utils.AcquirePlane(w*h, 1)
	defer utils.ReleasePlane(layer)
	for i, d := range darkness {
		f := 1 - float64(d)
		if f < 0 {
			f = 0
		}
		layer[i] = float32(f)
	}

	// Soften the vignette; blur radius grows with intensity.
	sigma := float32((15 + s.Amount*30) / 6)
	blurred := image.NewGray(image.Rect(0, 0, w, h))
	gift.New(gift.GaussianBlur(sigma)).Draw(blurred, grayFromPlane(layer, w, h))
	planeFromGray(blurred, layer)

	return mulLayer(page, layer), nil
}
