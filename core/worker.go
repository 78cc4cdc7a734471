package core

import (
	"context"
	mathrand "math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/scanify/scankit/config"
	apperrors "github.com/scanify/scankit/errors"
)

// PageProcessor is a minimal interface over effects.Pipeline so that core
// does not import the effects package (avoiding a circular dependency).
type PageProcessor interface {
	ProcessPage(ctx context.Context, page *PageImage, eff config.EffectConfig,
		rng *mathrand.Rand, progress func(stage string, fraction float64)) (*PageImage, error)
}

// NameFunc derives the output name for a file, resolving collisions against
// the destination.  Injected so the worker never touches the filesystem.
type NameFunc func(baseName, ext string) (string, error)

// Worker runs file jobs strictly one at a time on a single background
// goroutine: one job per input file, one page at a time within a file.
// Cancellation is cooperative and takes effect at the next file boundary.
type Worker struct {
	cfg      config.Config
	pages    PageProcessor
	deriveID NameFunc
	logger   Logger

	jobQueue chan Job
	wg       sync.WaitGroup
	once     sync.Once
	shutdown chan struct{}

	// Atomic counters for lightweight internal metrics.
	processedFiles int64
	failedPages    int64
}

// NewWorker creates a Worker.  Call Start() before submitting jobs; call
// Stop() when done.
func NewWorker(cfg config.Config, pages PageProcessor, derive NameFunc) *Worker {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Worker{
		cfg:      cfg,
		pages:    pages,
		deriveID: derive,
		logger:   NopLogger{},
		jobQueue: make(chan Job, queueSize),
		shutdown: make(chan struct{}),
	}
}

// SetLogger attaches a structured logger.
func (w *Worker) SetLogger(l Logger) {
	if l != nil {
		w.logger = l
	}
}

// Start launches the background worker goroutine.  It is idempotent.
func (w *Worker) Start() {
	w.once.Do(func() {
		w.wg.Add(1)
		go w.loop()
	})
}

// Stop requests a cooperative shutdown.  The file currently being processed
// runs to completion; queued files are dropped.
func (w *Worker) Stop() {
	close(w.shutdown)
	w.wg.Wait()
}

// Submit enqueues a file job.  Returns ErrQueueFull if the queue is full.
func (w *Worker) Submit(job Job) error {
	select {
	case w.jobQueue <- job:
		return nil
	default:
		return apperrors.New(apperrors.CategoryBatch, "submit", apperrors.ErrQueueFull)
	}
}

// RunBatch processes jobs synchronously in order on the calling goroutine.
// A file that fails is recorded in its FileResult; remaining files still run.
func (w *Worker) RunBatch(ctx context.Context, jobs []Job) []FileResult {
	results := make([]FileResult, 0, len(jobs))
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			results = append(results, FileResult{
				JobID: job.ID,
				Err:   apperrors.Wrap(apperrors.CategoryBatch, "batch", err),
			})
			continue
		}
		if job.Ctx == nil {
			job.Ctx = ctx
		}
		results = append(results, w.processFile(job))
	}
	return results
}

// ProcessedFiles returns the number of files completed without a file-level error.
func (w *Worker) ProcessedFiles() int64 { return atomic.LoadInt64(&w.processedFiles) }

// FailedPages returns the total number of pages that failed across all files.
func (w *Worker) FailedPages() int64 { return atomic.LoadInt64(&w.failedPages) }

// ── worker internals ──────────────────────────────────────────────────────────

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		// The cancellation check sits between files: a stop request never
		// interrupts a page mid-stage.
		select {
		case <-w.shutdown:
			return
		case job, ok := <-w.jobQueue:
			if !ok {
				return
			}
			result := w.processFile(job)
			if job.ResultCh != nil {
				job.ResultCh <- result
			}
		}
	}
}

func (w *Worker) processFile(job Job) FileResult {
	start := time.Now()
	ctx := job.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	result := FileResult{JobID: job.ID}

	// The output name is computed once per file, before any page work.
	if w.deriveID != nil {
		name, err := w.deriveID(job.BaseName, job.Ext)
		if err != nil {
			result.Err = apperrors.Wrap(apperrors.CategoryBatch, "derive_name", err)
			return result
		}
		result.OutputName = name
	}

	if len(job.Pages) == 0 {
		result.Err = apperrors.New(apperrors.CategoryBatch, "process_file", apperrors.ErrEmptyInput)
		return result
	}

	eff := job.Effects.Clamped()
	result.Pages = make([]*PageImage, len(job.Pages))

	for i, page := range job.Pages {
		rng := w.pageRNG(job.Seed, i)

		progress := func(stage string, fraction float64) {
			if job.Progress != nil {
				job.Progress(ProgressEvent{
					File:     job.BaseName,
					Page:     i + 1,
					Pages:    len(job.Pages),
					Stage:    stage,
					Fraction: fraction,
				})
			}
		}

		out, err := w.pages.ProcessPage(ctx, page, eff, rng, progress)
		if err != nil {
			// A malformed page is fatal for that page only.
			atomic.AddInt64(&w.failedPages, 1)
			result.Failures = append(result.Failures, PageFailure{Page: i + 1, Err: err})
			w.logger.Error("batch.page.failed", "file", job.BaseName, "page", i+1, "error", err.Error())
			continue
		}
		result.Pages[i] = out
	}

	result.Elapsed = time.Since(start)
	if len(result.Failures) == len(job.Pages) {
		result.Err = apperrors.New(apperrors.CategoryBatch, "process_file",
			apperrors.ErrMalformedImage)
		return result
	}

	atomic.AddInt64(&w.processedFiles, 1)
	w.logger.Info("batch.file.done",
		"file", job.BaseName,
		"output", result.OutputName,
		"pages", len(job.Pages),
		"failed_pages", len(result.Failures),
		"elapsed_ms", result.Elapsed.Milliseconds(),
	)
	return result
}

// pageRNG derives the per-page generator.  An explicit seed is offset by the
// page index so pages differ while the whole file stays reproducible.
func (w *Worker) pageRNG(seed Seed, page int) *mathrand.Rand {
	if seed.Explicit {
		return NewRNG(SeedFrom(seed.Value + int64(page)))
	}
	return NewRNG(seed)
}
