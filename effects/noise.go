package effects

import (
	"context"
	mathrand "math/rand"

	"github.com/scanify/scankit/core"
	"github.com/scanify/scankit/utils"
)

// NoiseStage adds independent zero-mean Gaussian noise per channel per
// pixel, simulating sensor artifacts.  Samples are clamped back into range,
// never wrapped.
type NoiseStage struct {
	Amount float64
}

func (s *NoiseStage) Name() string { return StageNoise }

func (s *NoiseStage) Apply(ctx context.Context, page *core.PageImage, rng *mathrand.Rand) (*core.PageImage, error) {
	if s.Amount <= 0 {
		return page, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sigma := s.Amount * 12
	out := page.Clone()
	for i := range out.Pix {
		out.Pix[i] = utils.ClampU8(float64(page.Pix[i]) + rng.NormFloat64()*sigma)
	}
	return out, nil
}
