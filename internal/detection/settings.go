package detection

import (
	"errors"
	"fmt"
)

// ErrInvalidSettings is wrapped by all Settings validation failures so that
// callers can distinguish configuration errors from pixel-level outcomes
// with errors.Is.
var ErrInvalidSettings = errors.New("invalid detection settings")

// RGBColor represents an 8-bit RGB color.
//
// Each component ranges from 0 to 255. This is the color the operator used
// to paint the constraint marker on the product photo.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// Hex returns the color in "#RRGGBB" form.
func (c RGBColor) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ColorSpace selects the space in which pixel colors are compared against
// the marker color.
type ColorSpace string

const (
	// SpaceLab compares colors by CIE Lab distance. This is the default:
	// Lab distance tracks perceived color difference, so a single tolerance
	// works across hues.
	SpaceLab ColorSpace = "lab"

	// SpaceRGB compares colors by normalized euclidean RGB distance.
	SpaceRGB ColorSpace = "rgb"

	// SpaceHSL compares hue (with wraparound), saturation, and lightness
	// as a weighted distance. Useful when the marker hue matters more than
	// its brightness, e.g. shaded or anti-aliased marker strokes.
	SpaceHSL ColorSpace = "hsl"
)

// Settings configures one color detection call.
//
// A Settings value is a per-call snapshot: detection functions never mutate
// it and never retain it, so callers may reuse one value across concurrent
// calls.
type Settings struct {
	// Target is the marker color to detect.
	Target RGBColor `json:"target"`

	// Space is the comparison color space. Empty defaults to SpaceLab.
	Space ColorSpace `json:"space,omitempty"`

	// TolerancePercent is the classification band width, 0-100. A pixel
	// matches when its normalized distance from Target is at most
	// TolerancePercent/100. 0 matches only the exact color.
	TolerancePercent float64 `json:"tolerance_percent"`

	// MinRegionPixels is the noise floor: connected regions with fewer
	// matching pixels are discarded. 0 keeps everything.
	MinRegionPixels int `json:"min_region_pixels,omitempty"`

	// Connectivity is the pixel adjacency used for region grouping:
	// 4 (edge neighbors) or 8 (edge + diagonal). 0 defaults to 8.
	Connectivity int `json:"connectivity,omitempty"`
}

// DefaultSettings returns detection settings tuned for a solid, saturated
// marker color on a product photo.
func DefaultSettings(target RGBColor) Settings {
	return Settings{
		Target:           target,
		Space:            SpaceLab,
		TolerancePercent: 10,
		MinRegionPixels:  16,
		Connectivity:     8,
	}
}

// Validate checks the settings before any pixel work is done.
//
// Returns an error wrapping ErrInvalidSettings if any field is outside its
// accepted range. Zero values for Space and Connectivity are allowed and
// resolved to their defaults.
func (s Settings) Validate() error {
	if s.TolerancePercent < 0 || s.TolerancePercent > 100 {
		return fmt.Errorf("%w: tolerance %.2f outside [0,100]", ErrInvalidSettings, s.TolerancePercent)
	}
	if s.MinRegionPixels < 0 {
		return fmt.Errorf("%w: min region pixels %d is negative", ErrInvalidSettings, s.MinRegionPixels)
	}
	switch s.Space {
	case "", SpaceLab, SpaceRGB, SpaceHSL:
	default:
		return fmt.Errorf("%w: unknown color space %q", ErrInvalidSettings, s.Space)
	}
	switch s.Connectivity {
	case 0, 4, 8:
	default:
		return fmt.Errorf("%w: connectivity must be 4 or 8, got %d", ErrInvalidSettings, s.Connectivity)
	}
	return nil
}

// space returns the effective comparison space.
func (s Settings) space() ColorSpace {
	if s.Space == "" {
		return SpaceLab
	}
	return s.Space
}

// connectivity returns the effective adjacency.
func (s Settings) connectivity() int {
	if s.Connectivity == 0 {
		return 8
	}
	return s.Connectivity
}
