// Package scankit turns digitally rendered document pages into images that
// look like physical paper scans.  The heavy lifting happens in effects
// (the stage pipeline), mono (monochrome conversion), and core (the batch
// worker); this package wires them together behind one entry point.
package scankit

import (
	"bytes"
	"context"
	"sync"

	"github.com/scanify/scankit/adapters/decoder"
	"github.com/scanify/scankit/adapters/encoder"
	"github.com/scanify/scankit/config"
	"github.com/scanify/scankit/core"
	"github.com/scanify/scankit/effects"
	apperrors "github.com/scanify/scankit/errors"
	"github.com/scanify/scankit/mono"
	"github.com/scanify/scankit/naming"
)

// DefaultConfig returns a sensible production configuration.
func DefaultConfig() config.Config { return config.Default() }

// DefaultEffects returns the default scan effect parameters.
func DefaultEffects() config.EffectConfig { return config.DefaultEffects() }

// SeedFrom returns an explicit per-page seed for reproducible output.
func SeedFrom(v int64) core.Seed { return core.SeedFrom(v) }

// logRelay lets SetLogger take effect across components constructed at New
// time.  Safe for concurrent use.
type logRelay struct {
	mu    sync.RWMutex
	inner core.Logger
}

func (r *logRelay) get() core.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.inner
}

func (r *logRelay) set(l core.Logger) {
	r.mu.Lock()
	r.inner = l
	r.mu.Unlock()
}

func (r *logRelay) Debug(msg string, fields ...interface{}) { r.get().Debug(msg, fields...) }
func (r *logRelay) Info(msg string, fields ...interface{})  { r.get().Info(msg, fields...) }
func (r *logRelay) Warn(msg string, fields ...interface{})  { r.get().Warn(msg, fields...) }
func (r *logRelay) Error(msg string, fields ...interface{}) { r.get().Error(msg, fields...) }

// Processor is the primary entry point.
type Processor struct {
	cfg      config.Config
	relay    *logRelay
	reg      *core.StrategyRegistry
	scaler   *effects.Scaler
	pipeline *effects.Pipeline
	worker   *core.Worker

	mu     sync.RWMutex
	target core.Target
}

// New creates a fully wired Processor with the adaptive and global
// binarizers registered.  Attach a libvips resampler with SetResampler and
// an output target with SetTarget before Start.
func New(cfg config.Config) (*Processor, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryConfig, "new", err)
	}

	relay := &logRelay{inner: core.NopLogger{}}

	reg := core.NewStrategyRegistry()
	reg.RegisterBinarizer(mono.StrategyAdaptive, mono.NewAdaptiveMean(cfg.AdaptiveWindow, cfg.AdaptiveBias))
	reg.RegisterBinarizer(mono.StrategyGlobal, mono.NewGlobalOtsu())

	converter, err := mono.Resolve(cfg, reg, relay)
	if err != nil {
		return nil, err
	}

	scaler := effects.NewScaler(nil, cfg.MaxWorkingPixels, relay)
	pipeline := effects.New(cfg, scaler, converter, relay)

	p := &Processor{
		cfg:      cfg,
		relay:    relay,
		reg:      reg,
		scaler:   scaler,
		pipeline: pipeline,
	}
	p.worker = core.NewWorker(cfg, pipeline, p.deriveName)
	p.worker.SetLogger(relay)
	return p, nil
}

// SetLogger attaches a structured logger.
func (p *Processor) SetLogger(l core.Logger) {
	if l != nil {
		p.relay.set(l)
	}
}

// SetResampler attaches a high-quality resampler (e.g. adapters/vips).
// Resampling degrades to the pure-Go path when it fails.
func (p *Processor) SetResampler(r core.Resampler) { p.scaler.SetHighQuality(r) }

// SetTarget attaches an output target; its existence checks drive output
// name collision resolution.
func (p *Processor) SetTarget(t core.Target) {
	p.mu.Lock()
	p.target = t
	p.mu.Unlock()
}

// AddHook registers an observer for pipeline stage events.
func (p *Processor) AddHook(h core.Hook) { p.pipeline.AddHook(h) }

// RegisterBinarizer registers a custom binarization strategy.
func (p *Processor) RegisterBinarizer(name string, b core.Binarizer) {
	p.reg.RegisterBinarizer(name, b)
}

// Start starts the background batch worker.
func (p *Processor) Start() { p.worker.Start() }

// Stop requests a cooperative shutdown at the next file boundary.
func (p *Processor) Stop() { p.worker.Stop() }

// Submit enqueues an async file job for the batch worker.
func (p *Processor) Submit(job core.Job) error { return p.worker.Submit(job) }

// ProcessPage runs the scan effect pipeline synchronously on one page.
func (p *Processor) ProcessPage(ctx context.Context, page *core.PageImage,
	eff config.EffectConfig, seed core.Seed) (*core.PageImage, error) {
	return p.pipeline.ProcessPage(ctx, page, eff, core.NewRNG(seed), nil)
}

// Convert processes one file job synchronously.
func (p *Processor) Convert(ctx context.Context, job core.Job) core.FileResult {
	return p.worker.RunBatch(ctx, []core.Job{job})[0]
}

// Batch processes file jobs synchronously, one at a time, isolating per-file
// failures.
func (p *Processor) Batch(ctx context.Context, jobs []core.Job) []core.FileResult {
	return p.worker.RunBatch(ctx, jobs)
}

// DeriveName resolves the output name for an input base name against the
// attached target.  Without a target every name is considered free.
func (p *Processor) DeriveName(base, ext string) (string, error) {
	return p.deriveName(base, ext)
}

func (p *Processor) deriveName(base, ext string) (string, error) {
	p.mu.RLock()
	target := p.target
	p.mu.RUnlock()

	exists := func(string) (bool, error) { return false, nil }
	if target != nil {
		exists = func(name string) (bool, error) {
			return target.Exists(context.Background(), name)
		}
	}
	return naming.DeriveName(base, ext, exists)
}

// EncodePage serialises a processed page as JPEG at the configured quality
// and writes it to the attached target under name.
func (p *Processor) EncodePage(ctx context.Context, page *core.PageImage,
	eff config.EffectConfig, name string) error {
	p.mu.RLock()
	target := p.target
	p.mu.RUnlock()
	if target == nil {
		return apperrors.New(apperrors.CategoryStorage, "encode_page",
			apperrors.ErrEmptyInput)
	}

	enc := encoder.NewJPEG(p.cfg.DefaultQuality)
	data, err := enc.Encode(ctx, page, core.EncodeOptions{Quality: eff.JPGQuality})
	if err != nil {
		return err
	}

	meta := map[string]string{}
	if eff.BlankMetadata {
		meta["blank_metadata"] = "true"
	}
	return target.Put(ctx, name, bytes.NewReader(data), meta)
}

// Stats returns lightweight processing statistics.
func (p *Processor) Stats() (files, failedPages int64) {
	return p.worker.ProcessedFiles(), p.worker.FailedPages()
}

// ── Page constructors ─────────────────────────────────────────────────────────

// PageFromBytes decodes an encoded page (PNG or JPEG) handed over by a
// rasterizer.  physW and physH are the page's physical size in inches; pass
// zero when unknown.
func PageFromBytes(ctx context.Context, data []byte, physW, physH float64) (*core.PageImage, error) {
	dec, ok := decoder.Detect(data)
	if !ok {
		return nil, apperrors.New(apperrors.CategoryDecode, "page_from_bytes",
			apperrors.ErrUnsupportedFormat)
	}
	page, err := dec.Decode(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	page.PhysW = physW
	page.PhysH = physH
	return page, nil
}
