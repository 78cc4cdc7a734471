package effects

import (
	"context"
	"math"
	mathrand "math/rand"

	"github.com/scanify/scankit/core"
)

// WarpStage displaces pixels along smooth sinusoidal curves, simulating a
// page that is not perfectly flat on the scanner bed.  Frequency and phase
// are randomized per page; amplitude scales with Amount.
type WarpStage struct {
	Amount float64
}

func (s *WarpStage) Name() string { return StageWarp }

func (s *WarpStage) Apply(ctx context.Context, page *core.PageImage, rng *mathrand.Rand) (*core.PageImage, error) {
	if s.Amount <= 0 {
		return page, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := page.W, page.H
	amplitude := s.Amount * (15 + rng.Float64()*20)
	freqH := 0.5 + rng.Float64()*0.7
	freqV := 0.6 + rng.Float64()*0.4
	phaseH := rng.Float64() * 2 * math.Pi
	phaseV := rng.Float64() * 2 * math.Pi
	vertFactor := 0.4 + rng.Float64()*0.4
	barrel := s.Amount * (0.0005 + rng.Float64()*0.001)

	cx := float64(w) / 2
	cy := float64(h) / 2

	out := core.NewPage(w, h, page.Channels)
	out.PhysW = page.PhysW
	out.PhysH = page.PhysH

	// Row displacement depends only on y, column displacement only on x;
	// precompute both curves.
	dxRow := make([]float64, h)
	for y := 0; y < h; y++ {
		dxRow[y] = amplitude * math.Sin(2*math.Pi*float64(y)/(float64(h)*freqH)+phaseH)
	}
	dyCol := make([]float64, w)
	for x := 0; x < w; x++ {
		dyCol[x] = amplitude * vertFactor * math.Sin(2*math.Pi*float64(x)/(float64(w)*freqV)+phaseV)
	}

	di := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx := float64(x) + dxRow[y] + (float64(x)-cx)*barrel
			sy := float64(y) + dyCol[x] + (float64(y)-cy)*barrel
			for c := 0; c < page.Channels; c++ {
				out.Pix[di] = uint8(bilinearSample(page, sx, sy, c) + 0.5)
				di++
			}
		}
	}
	return out, nil
}
