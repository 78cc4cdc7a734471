package effects

import (
	"context"
	mathrand "math/rand"

	"github.com/scanify/scankit/core"
	"github.com/scanify/scankit/utils"
)

// paperTint is the ivory cast of real paper; scans are never pure white.
var paperTint = [3]float64{248, 246, 238}

// PaperColorStage blends a fixed cream tint over color pages before the
// distortion stages run.  Monochrome pages pass through untouched.
type PaperColorStage struct{}

func (s *PaperColorStage) Name() string { return StagePaperColor }

func (s *PaperColorStage) Apply(ctx context.Context, page *core.PageImage, _ *mathrand.Rand) (*core.PageImage, error) {
	if page.Channels != 3 {
		return page, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := page.Clone()
	i := 0
	for p := 0; p < page.W*page.H; p++ {
		for c := 0; c < 3; c++ {
			out.Pix[i] = utils.ClampU8(float64(page.Pix[i])*0.85 + paperTint[c]*0.15)
			i++
		}
	}
	return out, nil
}
