package mono

// AdaptiveMean binarizes against a locally computed threshold: each pixel is
// compared to the mean of its surrounding window minus a bias.  Local means
// come from an integral image, so the cost is independent of window size.
type AdaptiveMean struct {
	Window int     // odd window size; even values are widened by one
	Bias   float64 // subtracted from the local mean before comparison
}

// NewAdaptiveMean returns an adaptive binarizer with the given window and bias.
func NewAdaptiveMean(window int, bias float64) *AdaptiveMean {
	if window < 3 {
		window = 15
	}
	if window%2 == 0 {
		window++
	}
	return &AdaptiveMean{Window: window, Bias: bias}
}

func (a *AdaptiveMean) Name() string { return StrategyAdaptive }

func (a *AdaptiveMean) Binarize(gray []uint8, w, h int) []uint8 {
	out := make([]uint8, len(gray))
	integral := integralImage(gray, w, h)
	half := a.Window / 2

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x1, y1 := x-half, y-half
			x2, y2 := x+half, y+half
			if x1 < 0 {
				x1 = 0
			}
			if y1 < 0 {
				y1 = 0
			}
			if x2 > w-1 {
				x2 = w - 1
			}
			if y2 > h-1 {
				y2 = h - 1
			}

			area := float64((x2 - x1 + 1) * (y2 - y1 + 1))
			mean := windowSum(integral, w, x1, y1, x2, y2) / area

			if float64(gray[y*w+x]) > mean-a.Bias {
				out[y*w+x] = 255
			}
		}
	}
	return out
}

// integralImage returns the summed-area table of gray, sized (w+1)×(h+1)
// with a zero top row and left column so window sums need no bounds checks.
func integralImage(gray []uint8, w, h int) []float64 {
	stride := w + 1
	integral := make([]float64, stride*(h+1))
	for y := 0; y < h; y++ {
		rowSum := 0.0
		for x := 0; x < w; x++ {
			rowSum += float64(gray[y*w+x])
			integral[(y+1)*stride+x+1] = integral[y*stride+x+1] + rowSum
		}
	}
	return integral
}

// windowSum returns the sum of gray values in the inclusive window
// [x1,x2]×[y1,y2] using the padded integral image.
func windowSum(integral []float64, w, x1, y1, x2, y2 int) float64 {
	stride := w + 1
	return integral[(y2+1)*stride+x2+1] -
		integral[y1*stride+x2+1] -
		integral[(y2+1)*stride+x1] +
		integral[y1*stride+x1]
}
