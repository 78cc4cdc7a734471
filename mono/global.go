package mono

// GlobalOtsu is the fallback strategy: a single histogram-derived cutoff for
// the whole page.  It still produces a strictly binary image.
type GlobalOtsu struct{}

// NewGlobalOtsu returns the global-threshold binarizer.
func NewGlobalOtsu() *GlobalOtsu { return &GlobalOtsu{} }

func (g *GlobalOtsu) Name() string { return StrategyGlobal }

func (g *GlobalOtsu) Binarize(gray []uint8, w, h int) []uint8 {
	threshold := otsuThreshold(gray)
	out := make([]uint8, len(gray))
	for i, v := range gray {
		if v > threshold {
			out[i] = 255
		}
	}
	return out
}

// otsuThreshold picks the cutoff maximizing between-class variance.
func otsuThreshold(gray []uint8) uint8 {
	var hist [256]int
	for _, v := range gray {
		hist[v]++
	}
	total := len(gray)

	sumTotal := 0.0
	for i := 0; i < 256; i++ {
		sumTotal += float64(i) * float64(hist[i])
	}

	var (
		best      float64
		threshold uint8
		weightBG  int
		sumBG     float64
	)
	for i := 0; i < 256; i++ {
		weightBG += hist[i]
		if weightBG == 0 {
			continue
		}
		weightFG := total - weightBG
		if weightFG == 0 {
			break
		}
		sumBG += float64(i) * float64(hist[i])

		meanBG := sumBG / float64(weightBG)
		meanFG := (sumTotal - sumBG) / float64(weightFG)
		between := float64(weightBG) * float64(weightFG) * (meanBG - meanFG) * (meanBG - meanFG)
		if between > best {
			best = between
			threshold = uint8(i)
		}
	}
	return threshold
}
