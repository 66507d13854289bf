package pipeline

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"zonemask/internal/detection"
)

var (
	markerGreen = detection.RGBColor{R: 0, G: 255, B: 0}
	white       = color.RGBA{255, 255, 255, 255}
	green       = color.RGBA{0, 255, 0, 255}
)

func createSolidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func fillRect(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// testConfig is tuned for synthetic images: RGB matching is enough and a
// blur would only soften the exact edges the assertions rely on.
func testConfig() Config {
	cfg := DefaultConfig(markerGreen)
	cfg.Preprocess = PreprocessOptions{}
	cfg.Detection.Space = detection.SpaceRGB
	return cfg
}

func TestRun_MarkedProductPhoto(t *testing.T) {
	img := createSolidImage(1000, 1000, white)
	fillRect(img, 350, 400, 650, 600, green)

	cfg := testConfig()
	cfg.Requirements.MinArea = 40000

	res, err := Run(img, cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(res.Regions.Regions) != 1 {
		t.Fatalf("expected 1 detected region, got %d", len(res.Regions.Regions))
	}
	if got := res.Regions.Regions[0].PixelCount; got != 60000 {
		t.Errorf("region pixel count: got %d, want 60000", got)
	}

	if res.Mask == nil || res.Mask.OuterCount() != 1 {
		t.Fatalf("expected a single-contour mask, got %+v", res.Mask)
	}
	if !res.Mask.Validation.IsValid {
		t.Errorf("mask validation failed: %+v", res.Mask.Validation.Errors)
	}

	if !res.Validation.IsValid || !res.Validation.IsUsable {
		t.Errorf("placement should be usable, issues: %+v", res.Validation.Issues)
	}
	if len(res.Validation.Zones) != 1 {
		t.Errorf("expected 1 placement zone, got %d", len(res.Validation.Zones))
	}

	if res.Scale != 1 {
		t.Errorf("scale without downscaling: got %g, want 1", res.Scale)
	}
}

func TestRun_NoMarker(t *testing.T) {
	img := createSolidImage(200, 200, white)

	_, err := Run(img, testConfig())
	if !errors.Is(err, ErrNoMarker) {
		t.Fatalf("expected ErrNoMarker, got %v", err)
	}
}

func TestRun_Downscale(t *testing.T) {
	img := createSolidImage(400, 200, white)
	fillRect(img, 100, 100, 300, 180, green)

	cfg := testConfig()
	cfg.Preprocess.MaxDimension = 100
	cfg.Detection.TolerancePercent = 25 // resampling softens the marker edge
	cfg.Requirements.MinArea = 100

	res, err := Run(img, cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Scale != 0.25 {
		t.Errorf("scale: got %g, want 0.25", res.Scale)
	}
	if res.Regions.Width != 100 || res.Regions.Height != 50 {
		t.Errorf("working image: got %dx%d, want 100x50", res.Regions.Width, res.Regions.Height)
	}
	if len(res.Regions.Regions) != 1 {
		t.Fatalf("expected 1 region after downscale, got %d", len(res.Regions.Regions))
	}

	// The 200x80 marker lands near (25,25)-(75,45) in the working image.
	b := res.Regions.Regions[0].Bounds
	if b.X1 < 20 || b.X1 > 30 || b.Y1 < 20 || b.Y1 > 30 || b.X2 < 70 || b.X2 > 80 || b.Y2 < 40 || b.Y2 > 50 {
		t.Errorf("region bounds %+v not in working-image coordinates", b)
	}
}

func TestRun_BlurKeepsSolidMarker(t *testing.T) {
	img := createSolidImage(200, 200, white)
	fillRect(img, 50, 50, 150, 150, green)

	cfg := testConfig()
	cfg.Preprocess.BlurSigma = 1.0
	cfg.Detection.TolerancePercent = 25
	cfg.Requirements.MinArea = 2500

	res, err := Run(img, cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.Regions.Regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(res.Regions.Regions))
	}
	// Blur must not shrink the marker by more than its edge transition.
	if got := res.Regions.Regions[0].PixelCount; got < 9000 {
		t.Errorf("blurred marker lost too many pixels: %d", got)
	}
}

func TestRun_InfeasiblePlacementIsNotAnError(t *testing.T) {
	img := createSolidImage(200, 200, white)
	fillRect(img, 80, 80, 140, 140, green)

	cfg := testConfig()
	cfg.Requirements.MinArea = 100000 // far above what the marker provides

	res, err := Run(img, cfg)
	if err != nil {
		t.Fatalf("failed requirements must not error the pipeline: %v", err)
	}
	if res.Validation.IsValid {
		t.Error("expected an invalid placement verdict")
	}
}

func TestRun_NilImage(t *testing.T) {
	if _, err := Run(nil, testConfig()); err == nil {
		t.Error("nil image must be rejected")
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	img := createSolidImage(10, 10, white)

	cfg := testConfig()
	cfg.Detection.TolerancePercent = -1
	if _, err := Run(img, cfg); !errors.Is(err, detection.ErrInvalidSettings) {
		t.Errorf("expected ErrInvalidSettings, got %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig(markerGreen)
	if cfg.Detection.Target != markerGreen {
		t.Errorf("target color: got %+v", cfg.Detection.Target)
	}
	if cfg.Preprocess.MaxDimension == 0 || cfg.Preprocess.BlurSigma == 0 {
		t.Error("defaults should normalize large noisy inputs")
	}
	if err := cfg.Detection.Validate(); err != nil {
		t.Errorf("default detection settings invalid: %v", err)
	}
	if err := cfg.Mask.Validate(); err != nil {
		t.Errorf("default mask options invalid: %v", err)
	}
	if err := cfg.Requirements.Validate(); err != nil {
		t.Errorf("default requirements invalid: %v", err)
	}
}
