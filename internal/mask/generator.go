package mask

import (
	"errors"
	"fmt"
	"image"
	"time"

	"zonemask/internal/detection"
)

// ErrInvalidOptions is wrapped by all Options validation failures.
var ErrInvalidOptions = errors.New("invalid mask options")

// SmoothingOptions configures morphological cleanup of the binary mask.
type SmoothingOptions struct {
	// Enabled turns smoothing on.
	Enabled bool `json:"enabled"`

	// Iterations is the number of opening+closing rounds.
	Iterations int `json:"iterations,omitempty"`

	// KernelSize is the odd width of the structuring element, e.g. 3 or 5.
	KernelSize int `json:"kernel_size,omitempty"`

	// Shape selects the structuring element. Empty defaults to KernelSquare.
	Shape KernelShape `json:"shape,omitempty"`
}

func (o SmoothingOptions) shape() KernelShape {
	if o.Shape == "" {
		return KernelSquare
	}
	return o.Shape
}

// SimplifyOptions configures Douglas-Peucker contour simplification.
type SimplifyOptions struct {
	Enabled bool `json:"enabled"`

	// Epsilon is the maximum perpendicular deviation in pixels. 0 keeps
	// every traced point.
	Epsilon float64 `json:"epsilon,omitempty"`
}

// Options configures one mask generation call. The zero value disables all
// cleanup; DefaultOptions returns the settings used for operator-drawn
// markers.
type Options struct {
	// FillHoles enables selective hole filling.
	FillHoles bool `json:"fill_holes"`

	// MinHoleSize is the area threshold in pixels: enclosed holes strictly
	// smaller than this are filled, larger ones are kept as intentional
	// cutouts. 0 fills nothing.
	MinHoleSize int `json:"min_hole_size,omitempty"`

	Smoothing SmoothingOptions `json:"smoothing"`
	Simplify  SimplifyOptions  `json:"simplify"`
}

// DefaultOptions returns mask options suited to hand-drawn marker zones:
// one light smoothing round, pinhole filling, and mild simplification.
func DefaultOptions() Options {
	return Options{
		FillHoles:   true,
		MinHoleSize: 64,
		Smoothing:   SmoothingOptions{Enabled: true, Iterations: 1, KernelSize: 3},
		Simplify:    SimplifyOptions{Enabled: true, Epsilon: 1.5},
	}
}

// Validate checks the options before any pixel work is done.
func (o Options) Validate() error {
	if o.MinHoleSize < 0 {
		return fmt.Errorf("%w: min hole size %d is negative", ErrInvalidOptions, o.MinHoleSize)
	}
	if o.Smoothing.Enabled {
		if o.Smoothing.Iterations < 0 {
			return fmt.Errorf("%w: smoothing iterations %d is negative", ErrInvalidOptions, o.Smoothing.Iterations)
		}
		if o.Smoothing.KernelSize < 3 || o.Smoothing.KernelSize%2 == 0 {
			return fmt.Errorf("%w: kernel size must be an odd number >= 3, got %d", ErrInvalidOptions, o.Smoothing.KernelSize)
		}
		switch o.Smoothing.Shape {
		case "", KernelSquare, KernelCross:
		default:
			return fmt.Errorf("%w: unknown kernel shape %q", ErrInvalidOptions, o.Smoothing.Shape)
		}
	}
	if o.Simplify.Enabled && o.Simplify.Epsilon < 0 {
		return fmt.Errorf("%w: simplification epsilon %.2f is negative", ErrInvalidOptions, o.Simplify.Epsilon)
	}
	return nil
}

// Validation is the heuristic quality assessment of a generated mask.
type Validation struct {
	IsValid     bool     `json:"is_valid"`
	Errors      []string `json:"errors,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Metrics     Metrics  `json:"metrics"`
}

// Mask is the cleaned geometric form of a detected marker zone: the contour
// set plus shape metrics. All contour coordinates lie within
// [0,Width) x [0,Height).
type Mask struct {
	Width          int           `json:"width"`
	Height         int           `json:"height"`
	Contours       []Contour     `json:"contours"`
	Options        Options       `json:"options"`
	ProcessingTime time.Duration `json:"processing_time_ns"`
	Validation     Validation    `json:"validation"`
}

// OuterCount returns the number of non-hole contours.
func (m *Mask) OuterCount() int {
	n := 0
	for _, c := range m.Contours {
		if !c.Hole {
			n++
		}
	}
	return n
}

// Generate builds a clean geometric mask from the marker color regions of
// an image.
//
// Color classification is re-run internally with the given detection
// settings, then the pipeline runs in a fixed order:
//
//  1. Rasterize labeled regions into a flat binary mask
//  2. Morphological smoothing (opening + closing per iteration)
//  3. Selective hole filling (holes smaller than MinHoleSize)
//  4. Moore-neighbor contour tracing, holes with opposite winding
//  5. Douglas-Peucker simplification
//  6. Shape metrics and heuristic validation
//
// If no component survives cleanup the returned mask has zero contours and
// Validation.IsValid=false; that is a result, not an error. Errors are
// returned only for invalid settings or options.
func Generate(img image.Image, s detection.Settings, opts Options) (*Mask, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	lm, err := detection.Label(img, s)
	if err != nil {
		return nil, err
	}
	return generate(lm, opts), nil
}

// GenerateFromLabels builds a mask from an existing label map, avoiding a
// second classification pass when the caller already ran detection.
func GenerateFromLabels(lm *detection.LabelMap, opts Options) (*Mask, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return generate(lm, opts), nil
}

func generate(lm *detection.LabelMap, opts Options) *Mask {
	start := time.Now()

	b := fromLabels(lm)
	if opts.Smoothing.Enabled && opts.Smoothing.Iterations > 0 {
		b = smooth(b, opts.Smoothing)
	}
	if opts.FillHoles && opts.MinHoleSize > 0 {
		fillSmallHoles(b, opts.MinHoleSize)
	}

	contours := traceContours(b)
	if opts.Simplify.Enabled && opts.Simplify.Epsilon > 0 {
		for i := range contours {
			contours[i].Points = simplifyContour(contours[i].Points, opts.Simplify.Epsilon)
		}
		// Simplification can collapse tiny contours below a triangle.
		kept := contours[:0]
		for _, c := range contours {
			if len(c.Points) >= 3 {
				kept = append(kept, c)
			}
		}
		contours = kept
	}

	m := &Mask{
		Width:    lm.Width,
		Height:   lm.Height,
		Contours: contours,
		Options:  opts,
	}
	m.Validation = validate(m)
	m.ProcessingTime = time.Since(start)
	return m
}

// validate applies heuristic thresholds to the mask metrics.
func validate(m *Mask) Validation {
	v := Validation{IsValid: true, Metrics: computeMetrics(m.Contours)}

	if len(m.Contours) == 0 {
		v.IsValid = false
		v.Errors = append(v.Errors, "no usable region survived mask cleanup")
		v.Suggestions = append(v.Suggestions, "increase the color tolerance or reduce smoothing")
		return v
	}
	if v.Metrics.Area <= 0 {
		v.IsValid = false
		v.Errors = append(v.Errors, "mask encloses no area")
		return v
	}

	if v.Metrics.Solidity > 0 && v.Metrics.Solidity < 0.5 {
		v.Warnings = append(v.Warnings, "irregular shape: mask is highly concave")
		v.Suggestions = append(v.Suggestions, "redraw the marker as a simpler convex zone")
	}
	if v.Metrics.Compactness < 0.1 {
		v.Warnings = append(v.Warnings, "mask boundary is extremely elongated or noisy")
	}
	if n := m.OuterCount(); n > 8 {
		v.Warnings = append(v.Warnings, fmt.Sprintf("mask is fragmented into %d regions", n))
		v.Suggestions = append(v.Suggestions, "increase smoothing iterations to merge nearby fragments")
	}
	return v
}
