package core

import (
	"context"
	"image"
	"io"
)

// PageDecoder converts raw encoded page bytes from a rasterizer into a
// PageImage.  Implementations live in adapters/decoder/.
type PageDecoder interface {
	Decode(ctx context.Context, r io.Reader) (*PageImage, error)
	// CanDecode reports whether this decoder handles the given format hint.
	CanDecode(format string) bool
}

// PageEncoder serialises a processed PageImage for the document writer.
// Implementations live in adapters/encoder/.
type PageEncoder interface {
	Encode(ctx context.Context, page *PageImage, opts EncodeOptions) ([]byte, error)
	CanEncode(format string) bool
}

// EncodeOptions carries format-specific encoding parameters.
type EncodeOptions struct {
	Quality int // 1-100; 0 = use encoder default
}

// Resampler resizes a decoded image to exact dimensions.  The default
// implementation uses golang.org/x/image/draw; adapters/vips provides a
// libvips-backed one.
type Resampler interface {
	Resample(src image.Image, w, h int) (image.Image, error)
}

// Binarizer classifies each pixel of a grayscale plane as foreground or
// background.  The returned plane must be strictly binary: every value is
// one of exactly two fixed intensities.
type Binarizer interface {
	Name() string
	Binarize(gray []uint8, w, h int) []uint8
}

// Target persists processed output and answers existence checks for the
// namer.  Implementations live in adapters/storage/.
type Target interface {
	Put(ctx context.Context, name string, r io.Reader, meta map[string]string) error
	Exists(ctx context.Context, name string) (bool, error)
}

// MetricsCollector receives performance observations from the pipeline.
type MetricsCollector interface {
	RecordProcessingTime(stageName string, d interface{ Seconds() float64 })
	RecordThroughput(bytes int64)
	RecordError(stageName string, category string)
}

// Logger is a minimal structured logging interface.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// NopLogger discards all log output.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
