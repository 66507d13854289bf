package mask

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"zonemask/internal/detection"
)

var (
	markerGreen = color.RGBA{0, 255, 0, 255}
	white       = color.RGBA{255, 255, 255, 255}
)

// createSolidImage creates an in-memory test image filled with one color.
func createSolidImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// fillRect paints an axis-aligned rectangle onto an image.
func fillRect(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			img.Set(x, y, c)
		}
	}
}

// fillCircle paints a disc onto an image.
func fillCircle(img *image.RGBA, cx, cy, r int, c color.Color) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx := float64(x - cx)
			dy := float64(y - cy)
			if dx*dx+dy*dy <= float64(r*r) {
				img.Set(x, y, c)
			}
		}
	}
}

// testSettings returns fast RGB-space detection settings for the marker.
func testSettings() detection.Settings {
	return detection.Settings{
		Target:           detection.RGBColor{G: 255},
		Space:            detection.SpaceRGB,
		TolerancePercent: 10,
	}
}

func TestGenerate_CenteredRectangle(t *testing.T) {
	img := createSolidImage(1000, 1000, white)
	fillRect(img, 350, 400, 650, 600, markerGreen)

	opts := Options{
		Smoothing: SmoothingOptions{Enabled: true, Iterations: 1, KernelSize: 3},
		Simplify:  SimplifyOptions{Enabled: true, Epsilon: 1},
	}

	m, err := Generate(img, testSettings(), opts)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(m.Contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(m.Contours))
	}
	if m.Contours[0].Hole {
		t.Error("rectangle contour must not be a hole")
	}
	if !m.Validation.IsValid {
		t.Errorf("mask should be valid: %+v", m.Validation)
	}

	// Opening then closing preserves an interior rectangle, so the traced
	// pixel-center polygon encloses 299x199.
	area := m.Validation.Metrics.Area
	if area < 59000 || area > 60000 {
		t.Errorf("area: got %.1f, want ~59501", area)
	}
	if got := len(m.Contours[0].Points); got != 4 {
		t.Errorf("simplified rectangle should have 4 corners, got %d points", got)
	}
	if m.Validation.Metrics.Solidity < 0.99 {
		t.Errorf("rectangle solidity: got %.3f, want ~1.0", m.Validation.Metrics.Solidity)
	}
	aspect := m.Validation.Metrics.AspectRatio
	if aspect < 1.45 || aspect > 1.55 {
		t.Errorf("aspect ratio: got %.3f, want ~1.5", aspect)
	}

	// Invariant: all coordinates inside [0,width) x [0,height).
	for _, p := range m.Contours[0].Points {
		if p.X < 0 || p.X >= float64(m.Width) || p.Y < 0 || p.Y >= float64(m.Height) {
			t.Errorf("contour point (%g,%g) outside image bounds", p.X, p.Y)
		}
	}
}

func TestGenerate_NoRegionsIsNotAnError(t *testing.T) {
	img := createSolidImage(100, 100, white)

	m, err := Generate(img, testSettings(), DefaultOptions())
	if err != nil {
		t.Fatalf("Generate must not fail on empty input: %v", err)
	}
	if len(m.Contours) != 0 {
		t.Errorf("expected zero contours, got %d", len(m.Contours))
	}
	if m.Validation.IsValid {
		t.Error("empty mask must be invalid")
	}
	if len(m.Validation.Errors) == 0 {
		t.Error("empty mask should carry an explanatory error message")
	}
}

func TestGenerate_HoleFilling(t *testing.T) {
	// Green block with a 20x20 white hole.
	img := createSolidImage(200, 200, white)
	fillRect(img, 50, 50, 150, 150, markerGreen)
	fillRect(img, 90, 90, 110, 110, white)

	tests := []struct {
		name        string
		fillHoles   bool
		minHoleSize int
		wantHoles   int
	}{
		{"disabled", false, 1000000, 1},
		{"min size zero fills nothing", true, 0, 1},
		{"threshold above hole area fills it", true, 401, 0},
		{"threshold equal to hole area keeps it", true, 400, 1},
		{"arbitrarily large fills all", true, 1 << 30, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{FillHoles: tt.fillHoles, MinHoleSize: tt.minHoleSize}
			m, err := Generate(img, testSettings(), opts)
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}

			holes := 0
			for _, c := range m.Contours {
				if c.Hole {
					holes++
					if c.SignedArea() >= 0 {
						t.Error("hole contour must have negative winding")
					}
				} else if c.SignedArea() <= 0 {
					t.Error("outer contour must have positive winding")
				}
			}
			if holes != tt.wantHoles {
				t.Errorf("got %d holes, want %d", holes, tt.wantHoles)
			}
		})
	}
}

func TestGenerate_IslandInsideHole(t *testing.T) {
	// Outer zone, a hole cut into it, and a marker island inside the hole.
	// Multi-level nesting: the island must surface as a second outer
	// contour, not vanish.
	img := createSolidImage(100, 100, white)
	fillRect(img, 10, 10, 90, 90, markerGreen)
	fillRect(img, 30, 30, 70, 70, white)
	fillRect(img, 45, 45, 55, 55, markerGreen)

	m, err := Generate(img, testSettings(), Options{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	holes := 0
	for _, c := range m.Contours {
		if c.Hole {
			holes++
		}
	}
	if got := m.OuterCount(); got != 2 {
		t.Errorf("expected 2 outer contours (zone + island), got %d", got)
	}
	if holes != 1 {
		t.Errorf("expected 1 hole contour, got %d", holes)
	}
}

func TestGenerate_CircleCompactness(t *testing.T) {
	img := createSolidImage(500, 500, white)
	fillCircle(img, 250, 250, 200, markerGreen)

	opts := Options{
		Simplify: SimplifyOptions{Enabled: true, Epsilon: 1.5},
	}
	m, err := Generate(img, testSettings(), opts)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(m.Contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(m.Contours))
	}

	c := m.Validation.Metrics.Compactness
	if math.Abs(c-1.0) > 0.03 {
		t.Errorf("circle compactness: got %.4f, want within 3%% of 1.0", c)
	}
}

func TestGenerate_SmoothingRemovesNoise(t *testing.T) {
	img := createSolidImage(100, 100, white)
	fillRect(img, 20, 20, 70, 70, markerGreen)
	// Scattered single-pixel noise that the opening should eliminate.
	img.Set(5, 5, markerGreen)
	img.Set(90, 10, markerGreen)
	img.Set(10, 92, markerGreen)

	opts := Options{Smoothing: SmoothingOptions{Enabled: true, Iterations: 1, KernelSize: 3}}
	m, err := Generate(img, testSettings(), opts)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got := m.OuterCount(); got != 1 {
		t.Errorf("smoothing should leave a single region, got %d", got)
	}
}

func TestGenerate_CrossKernel(t *testing.T) {
	img := createSolidImage(60, 60, white)
	fillRect(img, 10, 10, 50, 50, markerGreen)

	opts := Options{Smoothing: SmoothingOptions{Enabled: true, Iterations: 1, KernelSize: 3, Shape: KernelCross}}
	m, err := Generate(img, testSettings(), opts)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(m.Contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(m.Contours))
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"zero value", Options{}, false},
		{"defaults", DefaultOptions(), false},
		{"negative hole size", Options{MinHoleSize: -1}, true},
		{"even kernel", Options{Smoothing: SmoothingOptions{Enabled: true, Iterations: 1, KernelSize: 4}}, true},
		{"kernel too small", Options{Smoothing: SmoothingOptions{Enabled: true, Iterations: 1, KernelSize: 1}}, true},
		{"negative iterations", Options{Smoothing: SmoothingOptions{Enabled: true, Iterations: -1, KernelSize: 3}}, true},
		{"bad shape", Options{Smoothing: SmoothingOptions{Enabled: true, Iterations: 1, KernelSize: 3, Shape: "diamond"}}, true},
		{"negative epsilon", Options{Simplify: SimplifyOptions{Enabled: true, Epsilon: -0.5}}, true},
		{"disabled smoothing skips kernel checks", Options{Smoothing: SmoothingOptions{KernelSize: 4}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("error should wrap ErrInvalidOptions, got %v", err)
			}
		})
	}
}

func TestValidate_IrregularShapeWarning(t *testing.T) {
	// Thin L-shape: area 19, convex hull area 59.5, solidity ~0.32.
	contour := Contour{Points: []Point{
		{0, 0}, {10, 0}, {10, 1}, {1, 1}, {1, 10}, {0, 10},
	}}
	m := &Mask{Width: 20, Height: 20, Contours: []Contour{contour}}

	v := validate(m)
	if !v.IsValid {
		t.Fatalf("L-shape should still be valid: %+v", v)
	}
	if v.Metrics.Solidity >= 0.5 {
		t.Fatalf("expected low solidity, got %.3f", v.Metrics.Solidity)
	}
	found := false
	for _, w := range v.Warnings {
		if w == "irregular shape: mask is highly concave" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected irregular shape warning, got %v", v.Warnings)
	}
}
