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

// WrinkleStage renders randomized sinusoidal crease lines into an overlay
// layer, diffuses them with a Gaussian blur, and multiplies the layer over
// the page at low opacity.  Zero amount generates zero lines.
type WrinkleStage struct {
	Amount float64
}

func (s *WrinkleStage) Name() string { return StageWrinkles }

func (s *WrinkleStage) Apply(ctx context.Context, page *core.PageImage, rng *mathrand.Rand) (*core.PageImage, error) {
	if s.Amount <= 0 {
		return page, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := page.W, page.H
	layer := utils.AcquirePlane(w*h, 1)
	defer utils.ReleasePlane(layer)

	count := int(s.Amount * 30)
	if count < 8 {
		count = 8
	}
	for i := 0; i < count; i++ {
		horizontal := rng.Float64() > 0.5
		amplitude := (2 + rng.Float64()*4) * s.Amount
		frequency := 0.003 + rng.Float64()*0.012
		strength := s.Amount * (0.15 + rng.Float64()*0.15)
		phase := rng.Float64() * 2 * math.Pi

		if horizontal {
			y := int(float64(h) * (0.05 + rng.Float64()*0.90))
			s.traceLine(layer, w, h, y, amplitude, frequency, phase, strength, true)
		} else {
			x := int(float64(w) * (0.05 + rng.Float64()*0.90))
			s.traceLine(layer, w, h, x, amplitude, frequency, phase, strength, false)
		}
	}

	// Diffuse the sharp crease edges.
	blurred := image.NewGray(image.Rect(0, 0, w, h))
	gift.New(gift.GaussianBlur(1.0)).Draw(blurred, grayFromPlane(layer, w, h))
	planeFromGray(blurred, layer)

	return mulLayer(page, layer), nil
}

// traceLine darkens the layer along one sinusoidal crease with a soft
// cross-fade over neighbouring rows or columns.
func (s *WrinkleStage) traceLine(layer []float32, w, h, pos int, amplitude, frequency, phase, strength float64, horizontal bool) {
	span := w
	if !horizontal {
		span = h
	}
	for t := 0; t < span; t++ {
		offset := int(amplitude * math.Sin(frequency*float64(t)+phase))
		if horizontal {
			y := utils.ClampInt(pos+offset, 0, h-1)
			layer[y*w+t] *= float32(1 - strength)
			for dy := -3; dy <= 3; dy++ {
				yy := y + dy
				if dy == 0 || yy < 0 || yy >= h {
					continue
				}
				fade := 1 - math.Abs(float64(dy))/4
				layer[yy*w+t] *= float32(1 - strength*fade*0.5)
			}
		} else {
			x := utils.ClampInt(pos+offset, 0, w-1)
			layer[t*w+x] *= float32(1 - strength)
			for dx := -3; dx <= 3; dx++ {
				xx := x + dx
				if dx == 0 || xx < 0 || xx >= w {
					continue
				}
				fade := 1 - math.Abs(float64(dx))/4
				layer[t*w+xx] *= float32(1 - strength*fade*0.5)
			}
		}
	}
}
