package core

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	mathrand "math/rand"
	"time"

	"github.com/scanify/scankit/config"
	apperrors "github.com/scanify/scankit/errors"
)

// PageImage is the in-memory raster passed through the pipeline: an
// interleaved 8-bit buffer with 3 channels, or 1 channel after monochrome
// conversion.  It is exclusively owned by the orchestrator for the duration
// of one page's processing and handed to the caller on completion.
type PageImage struct {
	Pix      []uint8
	W, H     int
	Channels int // 3 or 1; changes only at the monochrome transition

	// Physical page size in inches, for DPI-correct upscale targets.
	// Zero means unknown; the pipeline then restores the input dimensions.
	PhysW, PhysH float64
}

// NewPage allocates a zeroed page buffer.
func NewPage(w, h, channels int) *PageImage {
	return &PageImage{
		Pix:      make([]uint8, w*h*channels),
		W:        w,
		H:        h,
		Channels: channels,
	}
}

// Validate checks the structural invariants a stage relies on.
func (p *PageImage) Validate() error {
	if p == nil || len(p.Pix) == 0 {
		return apperrors.New(apperrors.CategoryInput, "page.validate", apperrors.ErrEmptyInput)
	}
	if p.W <= 0 || p.H <= 0 {
		return apperrors.New(apperrors.CategoryInput, "page.validate",
			fmt.Errorf("%w: %dx%d", apperrors.ErrMalformedImage, p.W, p.H))
	}
	if p.Channels != 1 && p.Channels != 3 {
		return apperrors.New(apperrors.CategoryInput, "page.validate",
			fmt.Errorf("%w: %d channels", apperrors.ErrUnsupportedColorDepth, p.Channels))
	}
	if len(p.Pix) != p.W*p.H*p.Channels {
		return apperrors.New(apperrors.CategoryInput, "page.validate",
			fmt.Errorf("%w: buffer %d for %dx%dx%d", apperrors.ErrMalformedImage,
				len(p.Pix), p.W, p.H, p.Channels))
	}
	return nil
}

// Clone returns a deep copy sharing no pixel storage with p.
func (p *PageImage) Clone() *PageImage {
	out := *p
	out.Pix = make([]uint8, len(p.Pix))
	copy(out.Pix, p.Pix)
	return &out
}

// Offset returns the buffer index of pixel (x, y), channel 0.
func (p *PageImage) Offset(x, y int) int { return (y*p.W + x) * p.Channels }

// TargetSize returns the output pixel dimensions implied by the physical
// page size and dpi.  Unknown physical size falls back to the current
// dimensions.
func (p *PageImage) TargetSize(dpi int) (int, int) {
	if p.PhysW <= 0 || p.PhysH <= 0 || dpi <= 0 {
		return p.W, p.H
	}
	w := int(p.PhysW*float64(dpi) + 0.5)
	h := int(p.PhysH*float64(dpi) + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// ToImage converts the buffer into a standard library image for resampling
// and encoding.
func (p *PageImage) ToImage() image.Image {
	if p.Channels == 1 {
		img := image.NewGray(image.Rect(0, 0, p.W, p.H))
		copy(img.Pix, p.Pix)
		return img
	}
	img := image.NewRGBA(image.Rect(0, 0, p.W, p.H))
	si, di := 0, 0
	for i := 0; i < p.W*p.H; i++ {
		img.Pix[di] = p.Pix[si]
		img.Pix[di+1] = p.Pix[si+1]
		img.Pix[di+2] = p.Pix[si+2]
		img.Pix[di+3] = 0xFF
		si += 3
		di += 4
	}
	return img
}

// FromImage converts a decoded image into a 3-channel page buffer.
func FromImage(src image.Image) *PageImage {
	b := src.Bounds()
	out := NewPage(b.Dx(), b.Dy(), 3)
	if rgba, ok := src.(*image.RGBA); ok {
		si, di := 0, 0
		for y := 0; y < out.H; y++ {
			si = rgba.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < out.W; x++ {
				out.Pix[di] = rgba.Pix[si]
				out.Pix[di+1] = rgba.Pix[si+1]
				out.Pix[di+2] = rgba.Pix[si+2]
				si += 4
				di += 3
			}
		}
		return out
	}
	di := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(src.At(x, y)).(color.RGBA)
			out.Pix[di] = c.R
			out.Pix[di+1] = c.G
			out.Pix[di+2] = c.B
			di += 3
		}
	}
	return out
}

// FromGray converts a single-channel image into a 1-channel page buffer.
func FromGray(src *image.Gray) *PageImage {
	b := src.Bounds()
	out := NewPage(b.Dx(), b.Dy(), 1)
	for y := 0; y < out.H; y++ {
		copy(out.Pix[y*out.W:(y+1)*out.W], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	return out
}

// Seed is the explicit per-page random seed.  A non-explicit seed draws
// fresh entropy, so two runs are not required to match.
type Seed struct {
	Value    int64
	Explicit bool
}

// SeedFrom returns an explicit seed.
func SeedFrom(v int64) Seed { return Seed{Value: v, Explicit: true} }

// NewRNG builds the deterministic generator threaded through every stage.
// All stage randomness comes from this generator, never from global state,
// so reproducibility holds independent of scheduling.
func NewRNG(seed Seed) *mathrand.Rand {
	v := seed.Value
	if !seed.Explicit {
		var b [8]byte
		if _, err := rand.Read(b[:]); err == nil {
			v = int64(binary.LittleEndian.Uint64(b[:]))
		} else {
			v = time.Now().UnixNano()
		}
	}
	return mathrand.New(mathrand.NewSource(v))
}

// Stage is the fundamental pipeline building block.  Each stage transforms a
// *PageImage using the page's seeded generator; a zero-intensity stage must
// return its input unchanged.
type Stage interface {
	Name() string
	Apply(ctx context.Context, page *PageImage, rng *mathrand.Rand) (*PageImage, error)
}

// Hook is an optional observer invoked around pipeline stages.
type Hook interface {
	BeforeStage(ctx context.Context, stageName string, page *PageImage)
	AfterStage(ctx context.Context, stageName string, page *PageImage, d time.Duration, err error)
}

// ProgressEvent reports stage completion to an external observer (UI, log,
// test harness) without the pipeline depending on any UI type.
type ProgressEvent struct {
	File     string
	Page     int // 1-based page index within the file
	Pages    int
	Stage    string
	Fraction float64 // completion of the current page's stage sequence, in [0, 1]
}

// ProgressFunc receives progress events.  Must not block for long; it runs
// on the worker goroutine.
type ProgressFunc func(ProgressEvent)

// Job is one input file queued for the batch worker.
type Job struct {
	ID       string
	Ctx      context.Context //nolint:containedctx // intentional for async jobs
	BaseName string          // input base name, drives output naming
	Ext      string          // output extension including the dot; may be empty
	Pages    []*PageImage
	Effects  config.EffectConfig
	Seed     Seed
	Progress ProgressFunc
	// Result channel; nil for fire-and-forget.
	ResultCh chan<- FileResult
}

// PageFailure records one page that could not be processed.
type PageFailure struct {
	Page int
	Err  error
}

// FileResult wraps the outcome of one file's conversion.  Failed pages are
// recorded without aborting the remaining pages or files.
type FileResult struct {
	JobID      string
	OutputName string
	Pages      []*PageImage // processed pages in order; failed pages are nil
	Failures   []PageFailure
	Elapsed    time.Duration
	Err        error // nil unless the whole file failed
}
