package config

import "errors"

// Binarization selects the monochrome conversion strategy.
type Binarization string

const (
	// BinarizationAuto picks the adaptive strategy when it is registered and
	// falls back to the global strategy otherwise.
	BinarizationAuto     Binarization = "auto"
	BinarizationAdaptive Binarization = "adaptive"
	BinarizationGlobal   Binarization = "global"
)

// Config is the top-level configuration struct.  All fields have safe defaults
// so callers can start with Config{} and override only what they need.
type Config struct {
	// Batch worker controls.
	QueueSize int // max queued file jobs before backpressure; default: 64

	// Working-resolution strategy. Effects run on a buffer whose larger side
	// is bounded by WorkingCap; the result is upscaled to the DPI target.
	WorkingCap       int   // default 2200
	MaxWorkingPixels int64 // pixel budget per working buffer; 0 = no limit

	// Monochrome conversion.
	Binarization   Binarization
	AdaptiveWindow int     // local window size for adaptive thresholding; default 15
	AdaptiveBias   float64 // subtracted from the local mean; default 10

	// Default encode quality when EffectConfig.JPGQuality is zero.
	DefaultQuality int // 40-100; default 85

	// HighQualityResampler enables the libvips-backed resampler when built
	// in; resampling falls back to the pure-Go path on failure.
	HighQualityResampler bool

	// Logging.
	LogLevel string // "debug", "info", "warn", "error"
}

// Default returns a Config populated with sensible production defaults.
func Default() Config {
	return Config{
		QueueSize:      64,
		WorkingCap:     2200,
		Binarization:   BinarizationAuto,
		AdaptiveWindow: 15,
		AdaptiveBias:   10,
		DefaultQuality: 85,
		LogLevel:       "info",
	}
}

// Validate returns an error if the configuration is inconsistent.
func Validate(c Config) error {
	if c.WorkingCap <= 0 {
		return errors.New("config: WorkingCap must be positive")
	}
	if c.DefaultQuality < 1 || c.DefaultQuality > 100 {
		return errors.New("config: DefaultQuality must be between 1 and 100")
	}
	if c.AdaptiveWindow < 3 {
		return errors.New("config: AdaptiveWindow must be at least 3")
	}
	switch c.Binarization {
	case "", BinarizationAuto, BinarizationAdaptive, BinarizationGlobal:
	default:
		return errors.New("config: unknown Binarization strategy")
	}
	return nil
}

// EffectConfig holds the per-document scan effect parameters.  Values are
// treated as immutable once a job is submitted; out-of-range intensities are
// clamped by Clamped, never rejected.
type EffectConfig struct {
	DPI        int // target output resolution; recommended 70-300
	JPGQuality int // JPEG encode quality; recommended 40-100

	// Effect intensities, each in [0, 1].
	Lighting     float64
	Tilt         float64 // randomness of shadow/border placement
	Wrinkles     float64
	Shadows      float64
	Warp         float64
	Noise        float64
	PaperTexture float64
	PageEdge     float64

	Monochrome bool
	// BlankMetadata instructs the document writer to drop source metadata.
	// The pipeline itself does not consume it.
	BlankMetadata bool
}

// DefaultEffects returns the effect parameters used when the caller supplies
// none.
func DefaultEffects() EffectConfig {
	return EffectConfig{
		DPI:           100,
		JPGQuality:    50,
		Lighting:      0.3,
		Tilt:          0.55,
		Wrinkles:      0.6,
		Shadows:       0.45,
		Warp:          0.25,
		Noise:         0.75,
		PaperTexture:  0.7,
		PageEdge:      0.1,
		BlankMetadata: true,
	}
}

// Clamped returns a copy of e with every intensity clamped into [0, 1], DPI
// into [70, 300], and JPGQuality into [40, 100].
func (e EffectConfig) Clamped() EffectConfig {
	out := e
	out.DPI = clampInt(e.DPI, 70, 300)
	out.JPGQuality = clampInt(e.JPGQuality, 40, 100)
	out.Lighting = clamp01(e.Lighting)
	out.Tilt = clamp01(e.Tilt)
	out.Wrinkles = clamp01(e.Wrinkles)
	out.Shadows = clamp01(e.Shadows)
	out.Warp = clamp01(e.Warp)
	out.Noise = clamp01(e.Noise)
	out.PaperTexture = clamp01(e.PaperTexture)
	out.PageEdge = clamp01(e.PageEdge)
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
