// Package vips provides a libvips-backed high-quality resampler.  It is
// optional: the scaler degrades to the pure-Go path whenever an operation
// here fails.
package vips

import (
	"bytes"
	"image"
	"image/png"
	"runtime"

	govips "github.com/davidbyttow/govips/v2/vips"

	apperrors "github.com/scanify/scankit/errors"
)

// Config configures the libvips backend.
type Config struct {
	MaxCacheSize int
	MaxWorkers   int
	ReportLeaks  bool
}

// Resampler resizes through libvips with a Lanczos3 kernel.
// Safe for concurrent use across goroutines.
type Resampler struct {
	cfg Config
}

// NewResampler initialises libvips and returns a ready Resampler.
// Call Shutdown() when the process exits.
func NewResampler(cfg Config) *Resampler {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.NumCPU()
	}
	govips.Startup(&govips.Config{
		ConcurrencyLevel: cfg.MaxWorkers,
		MaxCacheSize:     cfg.MaxCacheSize,
		ReportLeaks:      cfg.ReportLeaks,
		CollectStats:     true,
	})
	return &Resampler{cfg: cfg}
}

// Shutdown releases all libvips resources. Call once at process exit.
func (r *Resampler) Shutdown() {
	govips.Shutdown()
}

// Resample resizes src to exactly w×h.
func (r *Resampler) Resample(src image.Image, w, h int) (image.Image, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryScale, "vips.encode", err)
	}

	ref, err := govips.NewImageFromBuffer(buf.Bytes())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryScale, "vips.load", err)
	}
	defer ref.Close()

	hscale := float64(w) / float64(ref.Width())
	vscale := float64(h) / float64(ref.Height())
	if err := ref.ResizeWithVScale(hscale, vscale, govips.KernelLanczos3); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryScale, "vips.resize", err)
	}

	out, _, err := ref.ExportPng(govips.NewPngExportParams())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryScale, "vips.export", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryScale, "vips.decode", err)
	}
	return img, nil
}
