package errors

import (
	"errors"
	"fmt"
)

// Category classifies error types for targeted handling and monitoring.
type Category string

const (
	CategoryDecode  Category = "decode"
	CategoryEncode  Category = "encode"
	CategoryStage   Category = "stage"
	CategoryScale   Category = "scale"
	CategoryMono    Category = "mono"
	CategoryBatch   Category = "batch"
	CategoryStorage Category = "storage"
	CategoryConfig  Category = "config"
	CategoryInput   Category = "input"
)

// ProcessingError is the structured error type used throughout the module.
type ProcessingError struct {
	Category  Category
	Op        string // operation name
	Err       error
	Retryable bool
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Category, e.Op, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// New creates a non-retryable ProcessingError.
func New(category Category, op string, err error) *ProcessingError {
	return &ProcessingError{Category: category, Op: op, Err: err}
}

// Retryable creates a ProcessingError that callers may reattempt, e.g. a
// working buffer over the pixel budget that can be retried at a smaller
// resolution cap.
func Retryable(category Category, op string, err error) *ProcessingError {
	return &ProcessingError{Category: category, Op: op, Err: err, Retryable: true}
}

// Wrap wraps an existing error with context.
func Wrap(category Category, op string, err error) error {
	if err == nil {
		return nil
	}
	return New(category, op, err)
}

// IsRetryable reports whether err represents a failure worth reattempting.
func IsRetryable(err error) bool {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// IsCategory reports whether err belongs to the given category.
func IsCategory(err error, cat Category) bool {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Category == cat
	}
	return false
}

// Sentinel errors for common failure modes.
var (
	// ErrMalformedImage marks a page whose dimensions or channel layout are
	// inconsistent when entering a stage. Fatal for that page only.
	ErrMalformedImage = errors.New("malformed page image")
	// ErrUnsupportedColorDepth marks an input whose channel count is outside {1, 3}.
	ErrUnsupportedColorDepth = errors.New("unsupported color depth")
	// ErrResourceExhausted marks a working buffer over the configured pixel
	// budget. Recoverable by retrying at a smaller working-resolution cap.
	ErrResourceExhausted = errors.New("working buffer exceeds pixel budget")
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrEmptyInput        = errors.New("empty input")
	ErrQueueFull         = errors.New("job queue full")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)
