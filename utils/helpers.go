package utils

import "net/http"

const (
	formatJPEG    = "jpeg"
	formatPNG     = "png"
	formatUnknown = "unknown"
)

// DetectFormat sniffs the leading bytes of data and returns the image format.
func DetectFormat(data []byte) string {
	if len(data) < 4 {
		return formatUnknown
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return formatJPEG
	}
	// PNG: 89 50 4E 47
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return formatPNG
	}
	// Fallback to net/http sniffing.
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return formatJPEG
	case "image/png":
		return formatPNG
	}
	return formatUnknown
}

// FitWithin computes output (w, h) so that the larger side does not exceed
// capDim, preserving aspect ratio. Images already within the cap are
// returned unchanged; this never upscales.
func FitWithin(srcW, srcH, capDim int) (int, int) {
	if capDim <= 0 || (srcW <= capDim && srcH <= capDim) {
		return srcW, srcH
	}
	if srcW >= srcH {
		ratio := float64(capDim) / float64(srcW)
		h := int(float64(srcH)*ratio + 0.5)
		if h < 1 {
			h = 1
		}
		return capDim, h
	}
	ratio := float64(capDim) / float64(srcH)
	w := int(float64(srcW)*ratio + 0.5)
	if w < 1 {
		w = 1
	}
	return w, capDim
}

// Clamp01 clamps v into [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampU8 clamps v into [0, 255] and converts to a byte.
func ClampU8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// ClampInt clamps v into [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates between a and b by t in [0, 1].
func Lerp(a, b, t float64) float64 { return a + (b-a)*t }

// CloneBytes returns a copy of b (safe for use after the source buffer is released).
func CloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
