package effects

import (
	"errors"
	"testing"

	apperrors "github.com/scanify/scankit/errors"
)

func TestScaler_DownscaleBoundsLargerSide(t *testing.T) {
	s := NewScaler(nil, 0, nil)
	page := gradientPage(400, 300)

	out, err := s.Downscale(page, 200)
	if err != nil {
		t.Fatalf("Downscale: %v", err)
	}
	if out.W != 200 || out.H != 150 {
		t.Errorf("got %dx%d, want 200x150", out.W, out.H)
	}
	if out.Channels != 3 {
		t.Errorf("channels: got %d, want 3", out.Channels)
	}
}

func TestScaler_DownscaleNeverUpscales(t *testing.T) {
	s := NewScaler(nil, 0, nil)
	page := gradientPage(100, 80)

	out, err := s.Downscale(page, 2200)
	if err != nil {
		t.Fatalf("Downscale: %v", err)
	}
	if out != page {
		t.Error("page within cap must be returned unchanged")
	}
}

func TestScaler_DownscalePreservesPhysicalSize(t *testing.T) {
	s := NewScaler(nil, 0, nil)
	page := gradientPage(400, 300)
	page.PhysW, page.PhysH = 8.5, 11

	out, err := s.Downscale(page, 200)
	if err != nil {
		t.Fatalf("Downscale: %v", err)
	}
	if out.PhysW != 8.5 || out.PhysH != 11 {
		t.Errorf("physical size lost: got %gx%g", out.PhysW, out.PhysH)
	}
}

func TestScaler_PixelBudgetIsRetryable(t *testing.T) {
	s := NewScaler(nil, 1000, nil)
	page := gradientPage(400, 300)

	_, err := s.Downscale(page, 2200)
	if err == nil {
		t.Fatal("expected budget error")
	}
	if !apperrors.IsRetryable(err) {
		t.Errorf("budget error must be retryable: %v", err)
	}
	if !errors.Is(err, apperrors.ErrResourceExhausted) {
		t.Errorf("want ErrResourceExhausted, got %v", err)
	}
}

func TestScaler_UpscaleExactDimensions(t *testing.T) {
	s := NewScaler(nil, 0, nil)
	page := gradientPage(100, 140)

	out, err := s.Upscale(page, 250, 350)
	if err != nil {
		t.Fatalf("Upscale: %v", err)
	}
	if out.W != 250 || out.H != 350 {
		t.Errorf("got %dx%d, want 250x350", out.W, out.H)
	}
}

func TestScaler_UpscaleKeepsMonochromeChannel(t *testing.T) {
	s := NewScaler(nil, 0, nil)
	page := flatPage(100, 140, 1, 200)

	out, err := s.Upscale(page, 200, 280)
	if err != nil {
		t.Fatalf("Upscale: %v", err)
	}
	if out.Channels != 1 {
		t.Errorf("channels: got %d, want 1", out.Channels)
	}
	if out.Pix[out.Offset(100, 140)] != 200 {
		t.Errorf("flat gray page must stay flat, got %d", out.Pix[out.Offset(100, 140)])
	}
}

func TestScaler_UpscaleRejectsBadDimensions(t *testing.T) {
	s := NewScaler(nil, 0, nil)
	if _, err := s.Upscale(gradientPage(10, 10), 0, 100); err == nil {
		t.Error("expected error for zero width")
	}
}
