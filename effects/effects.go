// Package effects implements the scan effect stages and the orchestrator
// composing them in fixed order.  Every stage is identity at zero intensity
// and draws all randomness from the page's seeded generator.
package effects

import (
	"image"

	"github.com/scanify/scankit/core"
	"github.com/scanify/scankit/utils"
)

// Stage names, also used in progress and hook events.
const (
	StageDownscale  = "downscale"
	StageMonochrome = "monochrome"
	StagePaperColor = "paper_color"
	StageWarp       = "warp"
	StageLighting   = "lighting"
	StageWrinkles   = "wrinkles"
	StageGrain      = "paper_grain"
	StageShadows    = "shadows"
	StagePageEdge   = "page_edge"
	StageNoise      = "noise"
	StageUpscale    = "upscale"
)

// mulLayer multiplies every channel of page by the per-pixel factor in
// layer (1.0 = unchanged), clamped into the valid range.
func mulLayer(page *core.PageImage, layer []float32) *core.PageImage {
	out := page.Clone()
	i := 0
	for p := 0; p < page.W*page.H; p++ {
		f := float64(layer[p])
		for c := 0; c < page.Channels; c++ {
			out.Pix[i] = utils.ClampU8(float64(page.Pix[i]) * f)
			i++
		}
	}
	return out
}

// grayFromPlane maps a multiplier plane in [0,1] onto a gray image
// (255 = 1.0) so overlay layers can be blurred with gift filters.
func grayFromPlane(layer []float32, w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i, v := range layer {
		img.Pix[i] = utils.ClampU8(float64(v) * 255)
	}
	return img
}

// planeFromGray is the inverse of grayFromPlane.
func planeFromGray(img *image.Gray, layer []float32) {
	for i := range layer {
		layer[i] = float32(img.Pix[i]) / 255
	}
}

// bilinearSample reads page at fractional coordinates with edge replication:
// out-of-bounds samples clamp to the border pixel, never wrap around.
func bilinearSample(page *core.PageImage, fx, fy float64, c int) float64 {
	if fx < 0 {
		fx = 0
	}
	if fy < 0 {
		fy = 0
	}
	maxX := float64(page.W - 1)
	maxY := float64(page.H - 1)
	if fx > maxX {
		fx = maxX
	}
	if fy > maxY {
		fy = maxY
	}

	x0 := int(fx)
	y0 := int(fy)
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 > page.W-1 {
		x1 = page.W - 1
	}
	if y1 > page.H-1 {
		y1 = page.H - 1
	}
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	p00 := float64(page.Pix[page.Offset(x0, y0)+c])
	p10 := float64(page.Pix[page.Offset(x1, y0)+c])
	p01 := float64(page.Pix[page.Offset(x0, y1)+c])
	p11 := float64(page.Pix[page.Offset(x1, y1)+c])

	top := utils.Lerp(p00, p10, tx)
	bottom := utils.Lerp(p01, p11, tx)
	return utils.Lerp(top, bottom, ty)
}
