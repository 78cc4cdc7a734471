// Package mono converts pages to full monochrome via adaptive local
// thresholding, degrading to a global threshold when the adaptive strategy
// is unavailable.
package mono

import (
	"fmt"

	"github.com/scanify/scankit/config"
	"github.com/scanify/scankit/core"
	apperrors "github.com/scanify/scankit/errors"
)

// Strategy names under which the binarizers are registered.
const (
	StrategyAdaptive = "adaptive"
	StrategyGlobal   = "global"
)

// Converter turns a page into a strictly binary single-channel image.  The
// binarization strategy is resolved once at construction, never per call.
type Converter struct {
	strategy core.Binarizer
	logger   core.Logger
}

// Resolve picks the binarizer from the registry according to cfg.  Auto mode
// prefers the adaptive strategy and degrades to the global one with a logged
// notice; an unavailable strategy is not an error.
func Resolve(cfg config.Config, reg *core.StrategyRegistry, logger core.Logger) (*Converter, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}

	want := cfg.Binarization
	if want == "" {
		want = config.BinarizationAuto
	}

	switch want {
	case config.BinarizationAdaptive, config.BinarizationGlobal:
		b, ok := reg.BinarizerFor(string(want))
		if !ok {
			return nil, apperrors.New(apperrors.CategoryMono, "mono.resolve",
				fmt.Errorf("binarizer %q not registered", want))
		}
		return &Converter{strategy: b, logger: logger}, nil
	case config.BinarizationAuto:
		if b, ok := reg.BinarizerFor(StrategyAdaptive); ok {
			return &Converter{strategy: b, logger: logger}, nil
		}
		b, ok := reg.BinarizerFor(StrategyGlobal)
		if !ok {
			return nil, apperrors.New(apperrors.CategoryMono, "mono.resolve",
				fmt.Errorf("no binarizer registered"))
		}
		logger.Warn("mono.degraded", "reason", "adaptive thresholding unavailable", "strategy", b.Name())
		return &Converter{strategy: b, logger: logger}, nil
	default:
		return nil, apperrors.New(apperrors.CategoryMono, "mono.resolve",
			fmt.Errorf("unknown binarization strategy %q", want))
	}
}

// NewConverter wraps an explicit strategy; used by tests and advanced callers.
func NewConverter(b core.Binarizer) *Converter {
	return &Converter{strategy: b, logger: core.NopLogger{}}
}

// Strategy returns the resolved binarizer's name.
func (c *Converter) Strategy() string { return c.strategy.Name() }

// ToMonochrome returns a single-channel page where every pixel equals one of
// exactly two fixed values.  The channel count changes from 3 to 1 here and
// nowhere else in the pipeline.
func (c *Converter) ToMonochrome(page *core.PageImage) (*core.PageImage, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	gray := Luma(page)
	bin := c.strategy.Binarize(gray, page.W, page.H)

	out := &core.PageImage{
		Pix:      bin,
		W:        page.W,
		H:        page.H,
		Channels: 1,
		PhysW:    page.PhysW,
		PhysH:    page.PhysH,
	}
	return out, nil
}

// Luma collapses a page to a grayscale plane using Rec. 601 weights.
// A 1-channel page is copied unchanged.
func Luma(page *core.PageImage) []uint8 {
	out := make([]uint8, page.W*page.H)
	if page.Channels == 1 {
		copy(out, page.Pix)
		return out
	}
	si := 0
	for i := range out {
		r := uint32(page.Pix[si])
		g := uint32(page.Pix[si+1])
		b := uint32(page.Pix[si+2])
		// 0.299 R + 0.587 G + 0.114 B in fixed point.
		out[i] = uint8((299*r + 587*g + 114*b) / 1000)
		si += 3
	}
	return out
}
