package scankit_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	scankit "github.com/scanify/scankit"
	"github.com/scanify/scankit/adapters/storage"
	"github.com/scanify/scankit/config"
	"github.com/scanify/scankit/core"
)

// ── Test helpers ──────────────────────────────────────────────────────────────

// newDocumentPage renders a small white page with dark text lines, the shape
// of input a rasterizer hands over.
func newDocumentPage(w, h int) *core.PageImage {
	page := core.NewPage(w, h, 3)
	for i := range page.Pix {
		page.Pix[i] = 250
	}
	for y := 20; y < h-20; y += 14 {
		for yy := y; yy < y+3 && yy < h; yy++ {
			for x := 15; x < w-15; x++ {
				o := page.Offset(x, yy)
				page.Pix[o], page.Pix[o+1], page.Pix[o+2] = 30, 30, 30
			}
		}
	}
	return page
}

func newDocumentPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 250, G: 250, B: 250, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

func newProc(t *testing.T) *scankit.Processor {
	t.Helper()
	p, err := scankit.New(scankit.DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func docJob(id string, seed int64, pages ...*core.PageImage) core.Job {
	eff := scankit.DefaultEffects()
	eff.DPI = 100
	return core.Job{
		ID:       id,
		BaseName: "doc",
		Ext:      ".jpg",
		Pages:    pages,
		Effects:  eff,
		Seed:     scankit.SeedFrom(seed),
	}
}

// ── Unit tests ────────────────────────────────────────────────────────────────

func TestProcessPage_Reproducible(t *testing.T) {
	proc := newProc(t)
	eff := scankit.DefaultEffects()

	a, err := proc.ProcessPage(context.Background(), newDocumentPage(200, 280), eff, scankit.SeedFrom(42))
	if err != nil {
		t.Fatalf("ProcessPage: %v", err)
	}
	b, err := proc.ProcessPage(context.Background(), newDocumentPage(200, 280), eff, scankit.SeedFrom(42))
	if err != nil {
		t.Fatalf("ProcessPage: %v", err)
	}

	if a.W != 200 || a.H != 280 {
		t.Errorf("dimensions: got %dx%d, want 200x280", a.W, a.H)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("same seed must produce byte-identical output")
	}
}

func TestProcessPage_Monochrome(t *testing.T) {
	proc := newProc(t)
	eff := scankit.DefaultEffects()
	eff.Monochrome = true

	out, err := proc.ProcessPage(context.Background(), newDocumentPage(200, 280), eff, scankit.SeedFrom(7))
	if err != nil {
		t.Fatalf("ProcessPage: %v", err)
	}
	if out.Channels != 1 {
		t.Errorf("channels: got %d, want 1", out.Channels)
	}
}

func TestConvert_DerivesNameAndWrites(t *testing.T) {
	dir := t.TempDir()
	target, err := storage.NewLocal(dir, 0)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	proc := newProc(t)
	proc.SetTarget(target)

	job := docJob("j1", 42, newDocumentPage(120, 160))
	result := proc.Convert(context.Background(), job)
	if result.Err != nil {
		t.Fatalf("Convert: %v", result.Err)
	}
	if result.OutputName != "doc_scanned.jpg" {
		t.Errorf("output name: got %q, want doc_scanned.jpg", result.OutputName)
	}

	if err := proc.EncodePage(context.Background(), result.Pages[0], job.Effects, result.OutputName); err != nil {
		t.Fatalf("EncodePage: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "doc_scanned.jpg")); err != nil {
		t.Errorf("output file missing: %v", err)
	}

	// The next conversion of the same base name picks the counter suffix.
	name, err := proc.DeriveName("doc", ".jpg")
	if err != nil {
		t.Fatalf("DeriveName: %v", err)
	}
	if name != "doc_scanned2.jpg" {
		t.Errorf("collision name: got %q, want doc_scanned2.jpg", name)
	}
}

func TestBatch_IsolatesMalformedFile(t *testing.T) {
	proc := newProc(t)

	malformed := &core.PageImage{Pix: make([]uint8, 5), W: 100, H: 100, Channels: 3}
	results := proc.Batch(context.Background(), []core.Job{
		docJob("a", 1, newDocumentPage(80, 100)),
		docJob("b", 2, malformed),
		docJob("c", 3, newDocumentPage(80, 100)),
	})

	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("healthy files must succeed: %v, %v", results[0].Err, results[2].Err)
	}
	if results[1].Err == nil {
		t.Error("malformed file must fail")
	}

	files, failedPages := proc.Stats()
	if files != 2 || failedPages != 1 {
		t.Errorf("stats: files=%d failedPages=%d, want 2/1", files, failedPages)
	}
}

func TestPageFromBytes(t *testing.T) {
	page, err := scankit.PageFromBytes(context.Background(), newDocumentPNG(t, 60, 80), 8.5, 11)
	if err != nil {
		t.Fatalf("PageFromBytes: %v", err)
	}
	if page.W != 60 || page.H != 80 {
		t.Errorf("dimensions: got %dx%d, want 60x80", page.W, page.H)
	}
	if page.PhysW != 8.5 || page.PhysH != 11 {
		t.Errorf("physical size: got %gx%g", page.PhysW, page.PhysH)
	}

	if _, err := scankit.PageFromBytes(context.Background(), []byte("not an image"), 0, 0); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWorker_AsyncConvert(t *testing.T) {
	proc := newProc(t)
	proc.Start()
	t.Cleanup(proc.Stop)

	resultCh := make(chan core.FileResult, 1)
	job := docJob("async", 42, newDocumentPage(80, 100))
	job.ResultCh = resultCh

	if err := proc.Submit(job); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	r := <-resultCh
	if r.Err != nil {
		t.Fatalf("async job failed: %v", r.Err)
	}
	if len(r.Pages) != 1 || r.Pages[0] == nil {
		t.Error("async job returned no pages")
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.WorkingCap = -1
	if _, err := scankit.New(cfg); err == nil {
		t.Error("expected config validation error")
	}
}
