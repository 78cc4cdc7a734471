package effects

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/scanify/scankit/core"
	apperrors "github.com/scanify/scankit/errors"
	"github.com/scanify/scankit/utils"
)

// XDrawResampler is the pure-Go default resampler.  CatmullRom keeps
// aliasing low on downscale and stays smooth on upscale.
type XDrawResampler struct {
	Interp xdraw.Interpolator
}

func (r *XDrawResampler) Resample(src image.Image, w, h int) (image.Image, error) {
	interp := r.Interp
	if interp == nil {
		interp = xdraw.CatmullRom
	}
	rect := image.Rect(0, 0, w, h)
	var dst xdraw.Image
	if _, gray := src.(*image.Gray); gray {
		dst = image.NewGray(rect)
	} else {
		dst = image.NewRGBA(rect)
	}
	interp.Scale(dst, rect, src, src.Bounds(), xdraw.Src, nil)
	return dst, nil
}

// Scaler bounds the working resolution before effects and restores the
// DPI-implied target resolution afterward.  An optional high-quality
// resampler is tried first; failures degrade to the pure-Go path with a
// logged notice.
type Scaler struct {
	highQuality core.Resampler // optional; nil means pure-Go only
	fallback    core.Resampler
	logger      core.Logger

	// Pixel budget per working buffer; 0 = unlimited.
	maxPixels int64
}

// NewScaler builds a Scaler.  highQuality may be nil.
func NewScaler(highQuality core.Resampler, maxPixels int64, logger core.Logger) *Scaler {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Scaler{
		highQuality: highQuality,
		fallback:    &XDrawResampler{},
		logger:      logger,
		maxPixels:   maxPixels,
	}
}

// SetHighQuality attaches or replaces the optional resampler.  Call before
// processing begins.
func (s *Scaler) SetHighQuality(r core.Resampler) { s.highQuality = r }

// Downscale returns a page whose larger side does not exceed cap, preserving
// aspect ratio.  Pages already within the cap are returned unchanged; this
// step never upscales.
func (s *Scaler) Downscale(page *core.PageImage, capDim int) (*core.PageImage, error) {
	w, h := utils.FitWithin(page.W, page.H, capDim)
	if err := s.checkBudget(w, h, page.Channels); err != nil {
		return nil, err
	}
	if w == page.W && h == page.H {
		return page, nil
	}
	return s.resample(page, w, h)
}

// Upscale resizes to the exact target dimensions derived from the DPI and
// the page's physical size.
func (s *Scaler) Upscale(page *core.PageImage, w, h int) (*core.PageImage, error) {
	if w <= 0 || h <= 0 {
		return nil, apperrors.New(apperrors.CategoryScale, "upscale", apperrors.ErrInvalidDimensions)
	}
	if w == page.W && h == page.H {
		return page, nil
	}
	return s.resample(page, w, h)
}

func (s *Scaler) checkBudget(w, h, channels int) error {
	if s.maxPixels > 0 && int64(w)*int64(h)*int64(channels) > s.maxPixels {
		return apperrors.Retryable(apperrors.CategoryScale, "downscale",
			fmt.Errorf("%w: %dx%dx%d", apperrors.ErrResourceExhausted, w, h, channels))
	}
	return nil
}

func (s *Scaler) resample(page *core.PageImage, w, h int) (*core.PageImage, error) {
	src := page.ToImage()

	var (
		dst image.Image
		err error
	)
	// Single-channel pages stay on the pure-Go path so the buffer keeps its
	// channel count through the round trip.
	if s.highQuality != nil && page.Channels == 3 {
		dst, err = s.highQuality.Resample(src, w, h)
		if err != nil {
			s.logger.Warn("scale.degraded", "reason", err.Error())
			dst = nil
		}
	}
	if dst == nil {
		dst, err = s.fallback.Resample(src, w, h)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryScale, "resample", err)
		}
	}

	var out *core.PageImage
	if gray, ok := dst.(*image.Gray); ok && page.Channels == 1 {
		out = core.FromGray(gray)
	} else {
		out = core.FromImage(dst)
	}
	out.PhysW = page.PhysW
	out.PhysH = page.PhysH
	return out, nil
}
