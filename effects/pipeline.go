package effects

import (
	"context"
	"errors"
	mathrand "math/rand"
	"time"

	"github.com/scanify/scankit/config"
	"github.com/scanify/scankit/core"
	apperrors "github.com/scanify/scankit/errors"
	"github.com/scanify/scankit/mono"
)

var errNoBinarizer = errors.New("no binarizer configured")

// Pipeline composes the effect stages in fixed order, owns the per-page
// working buffer, and reports stage progress.  The order affects the visual
// result and is not reconfigurable:
//
//	downscale → monochrome → paper color → warp → lighting → wrinkles →
//	paper grain → shadows → page edge → noise → upscale
type Pipeline struct {
	cfg    config.Config
	scaler *Scaler
	mono   *mono.Converter
	hooks  []core.Hook
	logger core.Logger
}

// New builds a Pipeline.  converter may be nil when monochrome conversion is
// never requested.
func New(cfg config.Config, scaler *Scaler, converter *mono.Converter, logger core.Logger) *Pipeline {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Pipeline{cfg: cfg, scaler: scaler, mono: converter, logger: logger}
}

// AddHook registers an observer.  Returns the same Pipeline for chaining.
func (p *Pipeline) AddHook(h core.Hook) *Pipeline {
	p.hooks = append(p.hooks, h)
	return p
}

// step is one named unit of the fixed stage sequence.
type step struct {
	name string
	run  func(ctx context.Context, page *core.PageImage) (*core.PageImage, error)
}

// ProcessPage runs the full stage sequence on one page and returns the final
// buffer at the DPI-implied target resolution.  The page is exclusively
// owned by the pipeline until this returns.
func (p *Pipeline) ProcessPage(ctx context.Context, page *core.PageImage, eff config.EffectConfig,
	rng *mathrand.Rand, progress func(stage string, fraction float64)) (*core.PageImage, error) {

	if err := page.Validate(); err != nil {
		return nil, err
	}
	eff = eff.Clamped()

	// The final dimensions are fixed before any scaling so the round trip
	// never changes them, regardless of the intermediate working resolution.
	targetW, targetH := page.TargetSize(eff.DPI)

	steps := p.buildSteps(eff, rng, targetW, targetH)
	current := page
	for i, st := range steps {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryStage, st.name, err)
		}
		// A stage receiving an inconsistent buffer aborts the remaining
		// stages for this page; stages are never silently skipped.
		if err := current.Validate(); err != nil {
			return nil, apperrors.New(apperrors.CategoryStage, st.name, err)
		}

		next, err := p.runStep(ctx, st, current)
		if err != nil {
			return nil, err
		}
		current = next

		if progress != nil {
			progress(st.name, float64(i+1)/float64(len(steps)))
		}
	}
	return current, nil
}

func (p *Pipeline) buildSteps(eff config.EffectConfig, rng *mathrand.Rand, targetW, targetH int) []step {
	steps := []step{
		{StageDownscale, func(ctx context.Context, page *core.PageImage) (*core.PageImage, error) {
			return p.downscale(page)
		}},
	}

	if eff.Monochrome {
		steps = append(steps, step{StageMonochrome, func(ctx context.Context, page *core.PageImage) (*core.PageImage, error) {
			if p.mono == nil {
				return nil, apperrors.New(apperrors.CategoryMono, StageMonochrome, errNoBinarizer)
			}
			return p.mono.ToMonochrome(page)
		}})
	} else {
		steps = append(steps, stageStep(&PaperColorStage{}, rng))
	}

	steps = append(steps,
		stageStep(&WarpStage{Amount: eff.Warp}, rng),
		stageStep(&LightingStage{Amount: eff.Lighting}, rng),
		stageStep(&WrinkleStage{Amount: eff.Wrinkles}, rng),
		stageStep(&GrainStage{Amount: eff.PaperTexture}, rng),
		stageStep(&ShadowStage{Amount: eff.Shadows, Tilt: eff.Tilt}, rng),
		stageStep(&PageEdgeStage{Amount: eff.PageEdge, Tilt: eff.Tilt}, rng),
		stageStep(&NoiseStage{Amount: eff.Noise}, rng),
		step{StageUpscale, func(ctx context.Context, page *core.PageImage) (*core.PageImage, error) {
			return p.scaler.Upscale(page, targetW, targetH)
		}},
	)
	return steps
}

// stageStep adapts a core.Stage into a step bound to the page's generator.
func stageStep(s core.Stage, rng *mathrand.Rand) step {
	return step{s.Name(), func(ctx context.Context, page *core.PageImage) (*core.PageImage, error) {
		out, err := s.Apply(ctx, page, rng)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryStage, s.Name(), err)
		}
		return out, nil
	}}
}

// downscale bounds the working resolution, halving the cap and retrying when
// the buffer would exceed the pixel budget.
func (p *Pipeline) downscale(page *core.PageImage) (*core.PageImage, error) {
	capDim := p.cfg.WorkingCap
	if capDim <= 0 {
		capDim = 2200
	}
	for {
		working, err := p.scaler.Downscale(page, capDim)
		if err == nil {
			return working, nil
		}
		if !apperrors.IsRetryable(err) || capDim <= 256 {
			return nil, err
		}
		capDim /= 2
		p.logger.Warn("pipeline.downscale.retry", "cap", capDim, "reason", err.Error())
	}
}

// runStep executes a single step with hook notifications.
func (p *Pipeline) runStep(ctx context.Context, st step, page *core.PageImage) (*core.PageImage, error) {
	for _, h := range p.hooks {
		h.BeforeStage(ctx, st.name, page)
	}
	start := time.Now()
	result, err := st.run(ctx, page)
	elapsed := time.Since(start)
	for _, h := range p.hooks {
		h.AfterStage(ctx, st.name, result, elapsed, err)
	}
	return result, err
}
