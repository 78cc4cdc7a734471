package effects

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/scanify/scankit/config"
	"github.com/scanify/scankit/core"
	apperrors "github.com/scanify/scankit/errors"
	"github.com/scanify/scankit/mono"
)

// ── Test helpers ──────────────────────────────────────────────────────────────

// captureLogger counts warnings so degradation notices can be asserted.
type captureLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *captureLogger) Debug(string, ...interface{}) {}
func (l *captureLogger) Info(string, ...interface{})  {}
func (l *captureLogger) Error(string, ...interface{}) {}
func (l *captureLogger) Warn(msg string, _ ...interface{}) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}

func newTestPipeline(cfg config.Config, logger core.Logger) *Pipeline {
	scaler := NewScaler(nil, cfg.MaxWorkingPixels, logger)
	converter := mono.NewConverter(mono.NewGlobalOtsu())
	return New(cfg, scaler, converter, logger)
}

func testEffects() config.EffectConfig {
	return config.EffectConfig{
		DPI:          150,
		JPGQuality:   85,
		Lighting:     0.3,
		Tilt:         0.2,
		Wrinkles:     0.25,
		Shadows:      0.4,
		Warp:         0.2,
		Noise:        0.15,
		PaperTexture: 0.25,
		PageEdge:     0.3,
	}
}

func runPage(t *testing.T, p *Pipeline, page *core.PageImage, seed int64,
	progress func(stage string, fraction float64)) *core.PageImage {
	t.Helper()
	out, err := p.ProcessPage(context.Background(), page, testEffects(),
		core.NewRNG(core.SeedFrom(seed)), progress)
	if err != nil {
		t.Fatalf("ProcessPage: %v", err)
	}
	return out
}

// ── Unit tests ────────────────────────────────────────────────────────────────

func TestPipeline_OutputMatchesDPITarget(t *testing.T) {
	p := newTestPipeline(config.Default(), nil)
	page := gradientPage(300, 420)
	page.PhysW, page.PhysH = 2, 2.8

	out := runPage(t, p, page, 42, nil)
	// 2in x 2.8in at 150 dpi.
	if out.W != 300 || out.H != 420 {
		t.Errorf("got %dx%d, want 300x420", out.W, out.H)
	}
}

func TestPipeline_RestoresInputSizeWhenPhysicalUnknown(t *testing.T) {
	cfg := config.Default()
	cfg.WorkingCap = 128
	p := newTestPipeline(cfg, nil)

	out := runPage(t, p, gradientPage(300, 420), 42, nil)
	if out.W != 300 || out.H != 420 {
		t.Errorf("round trip changed dimensions: got %dx%d, want 300x420", out.W, out.H)
	}
}

func TestPipeline_EndToEndLetterPage(t *testing.T) {
	if testing.Short() {
		t.Skip("full-page run")
	}
	p := newTestPipeline(config.Default(), nil)

	makePage := func() *core.PageImage {
		page := gradientPage(1000, 1400)
		page.PhysW, page.PhysH = 5, 7
		return page
	}

	a := runPage(t, p, makePage(), 42, nil)
	b := runPage(t, p, makePage(), 42, nil)

	// 5in x 7in at 150 dpi.
	if a.W != 750 || a.H != 1050 {
		t.Errorf("got %dx%d, want 750x1050", a.W, a.H)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("identical seed and input must produce byte-identical pages")
	}
}

func TestPipeline_ReproducibleWithExplicitSeed(t *testing.T) {
	p := newTestPipeline(config.Default(), nil)

	a := runPage(t, p, gradientPage(200, 280), 42, nil)
	b := runPage(t, p, gradientPage(200, 280), 42, nil)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("same seed and input must produce byte-identical output")
	}

	c := runPage(t, p, gradientPage(200, 280), 43, nil)
	if bytes.Equal(a.Pix, c.Pix) {
		t.Error("different seeds should not produce identical output")
	}
}

func TestPipeline_ProgressCoversAllStages(t *testing.T) {
	p := newTestPipeline(config.Default(), nil)

	var stages []string
	var fractions []float64
	runPage(t, p, gradientPage(200, 280), 1, func(stage string, fraction float64) {
		stages = append(stages, stage)
		fractions = append(fractions, fraction)
	})

	if len(stages) == 0 {
		t.Fatal("no progress events")
	}
	if stages[0] != StageDownscale {
		t.Errorf("first stage: got %q, want %q", stages[0], StageDownscale)
	}
	if stages[len(stages)-1] != StageUpscale {
		t.Errorf("last stage: got %q, want %q", stages[len(stages)-1], StageUpscale)
	}
	for i := 1; i < len(fractions); i++ {
		if fractions[i] <= fractions[i-1] {
			t.Fatalf("fractions must increase: %v", fractions)
		}
	}
	if got := fractions[len(fractions)-1]; got != 1 {
		t.Errorf("final fraction: got %v, want 1", got)
	}
}

func TestPipeline_MonochromeSwitchesChannel(t *testing.T) {
	p := newTestPipeline(config.Default(), nil)
	eff := testEffects()
	eff.Monochrome = true

	out, err := p.ProcessPage(context.Background(), gradientPage(200, 280), eff,
		core.NewRNG(core.SeedFrom(1)), nil)
	if err != nil {
		t.Fatalf("ProcessPage: %v", err)
	}
	if out.Channels != 1 {
		t.Errorf("channels: got %d, want 1", out.Channels)
	}
}

func TestPipeline_MonochromeWithoutConverterFails(t *testing.T) {
	cfg := config.Default()
	p := New(cfg, NewScaler(nil, 0, nil), nil, nil)
	eff := testEffects()
	eff.Monochrome = true

	_, err := p.ProcessPage(context.Background(), gradientPage(50, 50), eff,
		core.NewRNG(core.SeedFrom(1)), nil)
	if err == nil {
		t.Fatal("expected error when no binarizer is configured")
	}
	if !apperrors.IsCategory(err, apperrors.CategoryMono) {
		t.Errorf("category: got %v", err)
	}
}

func TestPipeline_MalformedPageRejected(t *testing.T) {
	p := newTestPipeline(config.Default(), nil)

	bad := &core.PageImage{Pix: make([]uint8, 10), W: 100, H: 100, Channels: 3}
	_, err := p.ProcessPage(context.Background(), bad, testEffects(),
		core.NewRNG(core.SeedFrom(1)), nil)
	if err == nil {
		t.Fatal("expected malformed image error")
	}
	if !errors.Is(err, apperrors.ErrMalformedImage) {
		t.Errorf("want ErrMalformedImage, got %v", err)
	}
}

func TestPipeline_RetriesAtSmallerCapOnBudget(t *testing.T) {
	logger := &captureLogger{}
	cfg := config.Default()
	// 1000x1400x3 exceeds the budget; halving the cap twice brings the
	// working buffer under it.
	cfg.MaxWorkingPixels = 1_000_000
	p := newTestPipeline(cfg, logger)

	out := runPage(t, p, gradientPage(1000, 1400), 42, nil)
	if out.W != 1000 || out.H != 1400 {
		t.Errorf("got %dx%d, want 1000x1400", out.W, out.H)
	}
	if len(logger.warns) == 0 {
		t.Error("cap retry must be logged")
	}
}

func TestPipeline_BudgetExhaustedBelowFloorFails(t *testing.T) {
	cfg := config.Default()
	cfg.MaxWorkingPixels = 1000
	p := newTestPipeline(cfg, &captureLogger{})

	_, err := p.ProcessPage(context.Background(), gradientPage(1000, 1400), testEffects(),
		core.NewRNG(core.SeedFrom(1)), nil)
	if err == nil {
		t.Fatal("expected resource exhaustion")
	}
	if !errors.Is(err, apperrors.ErrResourceExhausted) {
		t.Errorf("want ErrResourceExhausted, got %v", err)
	}
}

func TestPipeline_CancelledContextAborts(t *testing.T) {
	p := newTestPipeline(config.Default(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ProcessPage(ctx, gradientPage(200, 280), testEffects(),
		core.NewRNG(core.SeedFrom(1)), nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("want context.Canceled, got %v", err)
	}
}

func TestPipeline_HooksObserveEveryStage(t *testing.T) {
	p := newTestPipeline(config.Default(), nil)
	hook := &countingHook{}
	p.AddHook(hook)

	runPage(t, p, gradientPage(200, 280), 1, nil)
	// downscale, paper color, seven effect stages, upscale.
	if hook.before != 10 || hook.after != 10 {
		t.Errorf("hook calls: before=%d after=%d, want 10/10", hook.before, hook.after)
	}
}

type countingHook struct {
	before, after int
}

func (h *countingHook) BeforeStage(context.Context, string, *core.PageImage) { h.before++ }
func (h *countingHook) AfterStage(_ context.Context, _ string, _ *core.PageImage, _ time.Duration, _ error) {
	h.after++
}
