package pipeline

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"

	"zonemask/internal/constraint"
	"zonemask/internal/detection"
	"zonemask/internal/mask"
)

// ErrNoMarker is returned when no marker-colored region is found in the
// image. Downstream stages have nothing to work on, so unlike a failed
// placement requirement this is a hard error.
var ErrNoMarker = errors.New("no marker region detected")

// PreprocessOptions controls normalization applied before detection.
type PreprocessOptions struct {
	// BlurSigma applies a Gaussian blur before color matching. Small values
	// (0.5-1.5) suppress sensor noise and JPEG artifacts around the marker
	// edge. 0 disables the blur.
	BlurSigma float64 `json:"blur_sigma,omitempty"`

	// MaxDimension downscales the image so its longer side does not exceed
	// this many pixels. 0 keeps the original size. All reported coordinates
	// are in the working (possibly downscaled) image space; Result.Scale
	// maps them back.
	MaxDimension int `json:"max_dimension,omitempty"`
}

// Config bundles the per-stage settings for one pipeline run.
type Config struct {
	Preprocess   PreprocessOptions       `json:"preprocess"`
	Detection    detection.Settings      `json:"detection"`
	Mask         mask.Options            `json:"mask"`
	Requirements constraint.Requirements `json:"requirements"`
}

// DefaultConfig returns a pipeline configuration for a typical marked
// product photo with the given marker color.
func DefaultConfig(marker detection.RGBColor) Config {
	return Config{
		Preprocess:   PreprocessOptions{BlurSigma: 0.8, MaxDimension: 2048},
		Detection:    detection.DefaultSettings(marker),
		Mask:         mask.DefaultOptions(),
		Requirements: constraint.DefaultRequirements(),
	}
}

// Result carries the output of every stage of a run.
type Result struct {
	// Regions is the raw detection output in working-image coordinates.
	Regions *detection.LabelMap `json:"regions"`

	// Mask is the cleaned geometric mask built from the detected regions.
	Mask *mask.Mask `json:"mask"`

	// Validation is the placement feasibility verdict for the mask.
	Validation *constraint.Result `json:"validation"`

	// Scale converts working-image coordinates back to the original image:
	// original = working / Scale. 1 when no downscaling happened.
	Scale float64 `json:"scale"`

	ProcessingTime time.Duration `json:"processing_time_ns"`
}

// Run executes the full pipeline on one image: preprocess, detect the
// marker color, build the mask, validate placement.
//
// Configuration problems and a marker-free image return an error; a mask
// that merely fails placement requirements does not. Check
// Result.Validation for the feasibility verdict.
func Run(img image.Image, cfg Config) (*Result, error) {
	if img == nil {
		return nil, fmt.Errorf("run pipeline: nil image")
	}
	if err := cfg.Detection.Validate(); err != nil {
		return nil, fmt.Errorf("run pipeline: %w", err)
	}
	if err := cfg.Mask.Validate(); err != nil {
		return nil, fmt.Errorf("run pipeline: %w", err)
	}
	if err := cfg.Requirements.Validate(); err != nil {
		return nil, fmt.Errorf("run pipeline: %w", err)
	}
	start := time.Now()

	working, scale := preprocess(img, cfg.Preprocess)

	regions, err := detection.Label(working, cfg.Detection)
	if err != nil {
		return nil, fmt.Errorf("detect marker: %w", err)
	}
	if len(regions.Regions) == 0 {
		return nil, fmt.Errorf("detect marker %s: %w", cfg.Detection.Target.Hex(), ErrNoMarker)
	}

	m, err := mask.GenerateFromLabels(regions, cfg.Mask)
	if err != nil {
		return nil, fmt.Errorf("generate mask: %w", err)
	}

	validation, err := constraint.Validate(m, cfg.Requirements)
	if err != nil {
		return nil, fmt.Errorf("validate placement: %w", err)
	}

	return &Result{
		Regions:        regions,
		Mask:           m,
		Validation:     validation,
		Scale:          scale,
		ProcessingTime: time.Since(start),
	}, nil
}

// preprocess normalizes the input image and reports the applied scale
// factor (working size / original size).
func preprocess(img image.Image, opts PreprocessOptions) (image.Image, float64) {
	scale := 1.0
	b := img.Bounds()
	longer := b.Dx()
	if b.Dy() > longer {
		longer = b.Dy()
	}

	if opts.MaxDimension > 0 && longer > opts.MaxDimension {
		scale = float64(opts.MaxDimension) / float64(longer)
		w := int(float64(b.Dx())*scale + 0.5)
		h := int(float64(b.Dy())*scale + 0.5)
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}
	if opts.BlurSigma > 0 {
		img = blur.Gaussian(img, opts.BlurSigma)
	}
	return img, scale
}
