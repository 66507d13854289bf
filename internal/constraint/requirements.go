package constraint

import (
	"errors"
	"fmt"
)

// ErrInvalidRequirements is wrapped by all Requirements validation failures.
var ErrInvalidRequirements = errors.New("invalid constraint requirements")

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// LogoRequirements describes what the overlay content needs from a zone.
type LogoRequirements struct {
	// MinLogoSize is the smallest acceptable logo rendering. A zone that
	// cannot hold it in both dimensions is infeasible.
	MinLogoSize Size `json:"min_logo_size"`

	// AspectRatio is the logo's own width/height ratio, when known.
	// 0 leaves the aspect free and zones are scored against a square.
	AspectRatio float64 `json:"aspect_ratio,omitempty"`
}

// PositionRequirements constrains where content may sit in the image.
type PositionRequirements struct {
	// MarginFromEdges is the minimum distance in pixels between placed
	// content and the image boundary. Content closer than this risks being
	// clipped on re-render or print.
	MarginFromEdges int `json:"margin_from_edges"`
}

// ContiguityRequirements constrains the shape of the marked zone.
type ContiguityRequirements struct {
	// RequireSingleRegion demands one connected zone.
	RequireSingleRegion bool `json:"require_single_region"`

	// WarnOnly downgrades a contiguity violation from error to warning.
	WarnOnly bool `json:"warn_only,omitempty"`
}

// Requirements configures one constraint validation call. The value is a
// per-call snapshot; validation never mutates or retains it.
type Requirements struct {
	// MinArea is the minimum total mask area in square pixels.
	MinArea float64 `json:"min_area"`

	LogoPlacement LogoRequirements       `json:"logo_placement"`
	Position      PositionRequirements   `json:"position"`
	Contiguity    ContiguityRequirements `json:"contiguity"`

	// MinZoneQuality is the quality floor a zone must clear for the mask
	// to count as usable. 0 defaults to 0.25.
	MinZoneQuality float64 `json:"min_zone_quality,omitempty"`
}

// DefaultRequirements returns placement requirements for a typical logo
// overlay on a product photo.
func DefaultRequirements() Requirements {
	return Requirements{
		MinArea: 2500,
		LogoPlacement: LogoRequirements{
			MinLogoSize: Size{Width: 48, Height: 48},
		},
		Position:   PositionRequirements{MarginFromEdges: 16},
		Contiguity: ContiguityRequirements{RequireSingleRegion: true},
	}
}

// Validate checks the requirements before any geometry work is done.
func (r Requirements) Validate() error {
	if r.MinArea < 0 {
		return fmt.Errorf("%w: min area %.1f is negative", ErrInvalidRequirements, r.MinArea)
	}
	if r.LogoPlacement.MinLogoSize.Width < 0 || r.LogoPlacement.MinLogoSize.Height < 0 {
		return fmt.Errorf("%w: min logo size %gx%g has a negative dimension",
			ErrInvalidRequirements, r.LogoPlacement.MinLogoSize.Width, r.LogoPlacement.MinLogoSize.Height)
	}
	if r.LogoPlacement.AspectRatio < 0 {
		return fmt.Errorf("%w: logo aspect ratio %.2f is negative", ErrInvalidRequirements, r.LogoPlacement.AspectRatio)
	}
	if r.Position.MarginFromEdges < 0 {
		return fmt.Errorf("%w: edge margin %d is negative", ErrInvalidRequirements, r.Position.MarginFromEdges)
	}
	if r.MinZoneQuality < 0 || r.MinZoneQuality > 1 {
		return fmt.Errorf("%w: min zone quality %.2f outside [0,1]", ErrInvalidRequirements, r.MinZoneQuality)
	}
	return nil
}

// minZoneQuality returns the effective usability floor.
func (r Requirements) minZoneQuality() float64 {
	if r.MinZoneQuality == 0 {
		return 0.25
	}
	return r.MinZoneQuality
}
