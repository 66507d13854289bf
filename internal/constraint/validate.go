package constraint

import (
	"fmt"
	"math"
	"time"

	"zonemask/internal/mask"
)

// Result is the outcome of validating a mask against placement requirements.
type Result struct {
	// IsValid is true when no error-severity issue was found.
	IsValid bool `json:"is_valid"`

	// IsUsable is true when the mask is valid and at least one zone clears
	// the quality floor. A valid mask can still be unusable.
	IsUsable bool `json:"is_usable"`

	// Confidence estimates how safe automated placement would be, in [0,1].
	Confidence float64 `json:"confidence"`

	Issues []Issue `json:"issues,omitempty"`
	Zones  []Zone  `json:"zones,omitempty"`

	// MaskArea is the total mask area in square pixels, holes subtracted.
	MaskArea float64 `json:"mask_area"`

	ProcessingTime time.Duration `json:"processing_time_ns"`
}

// Validate checks a generated mask against placement requirements and ranks
// candidate placement zones.
//
// # Feasibility Is Data
//
// A mask that fails a requirement is a normal outcome, reported through
// Result.Issues, not through the error return. The error return fires only
// for malformed input: invalid requirements or a nil mask.
//
// # Confidence
//
// Confidence starts from the best zone quality and is discounted by half
// per error and by 15% per warning, then clamped to [0,1].
func Validate(m *mask.Mask, reqs Requirements) (*Result, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil mask", ErrInvalidRequirements)
	}
	if err := reqs.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	res := &Result{MaskArea: maskArea(m)}

	checkArea(res, reqs)
	checkContiguity(res, m, reqs)
	checkEdgeMargin(res, m, reqs)

	res.Zones = placementZones(m, reqs, res.MaskArea)
	checkZones(res, reqs)

	res.IsValid = countBySeverity(res.Issues, SeverityError) == 0
	res.Confidence = confidence(res)
	res.IsUsable = res.IsValid && len(res.Zones) > 0 && res.Zones[0].Quality >= reqs.minZoneQuality()
	res.ProcessingTime = time.Since(start)
	return res, nil
}

// maskArea sums contour areas, holes subtracting.
func maskArea(m *mask.Mask) float64 {
	total := 0.0
	for _, c := range m.Contours {
		if c.Hole {
			total -= c.Area()
		} else {
			total += c.Area()
		}
	}
	if total < 0 {
		total = 0
	}
	return total
}

func checkArea(res *Result, reqs Requirements) {
	if reqs.MinArea <= 0 || res.MaskArea >= reqs.MinArea {
		return
	}
	res.Issues = append(res.Issues, Issue{
		ID:       IssueAreaTooSmall,
		Severity: SeverityError,
		Title:    "area too small",
		Description: fmt.Sprintf("mask area %.0f px² is below the required minimum of %.0f px²",
			res.MaskArea, reqs.MinArea),
		Suggestion: "mark a larger zone, or lower the minimum area requirement",
	})
}

func checkContiguity(res *Result, m *mask.Mask, reqs Requirements) {
	if !reqs.Contiguity.RequireSingleRegion {
		return
	}
	outers := m.OuterCount()
	if outers <= 1 {
		return
	}
	sev := SeverityError
	if reqs.Contiguity.WarnOnly {
		sev = SeverityWarning
	}
	res.Issues = append(res.Issues, Issue{
		ID:          IssueNotContiguous,
		Severity:    sev,
		Title:       "marked zone is not contiguous",
		Description: fmt.Sprintf("the mask splits into %d separate regions but a single region is required", outers),
		Suggestion:  "connect the marked areas, or remark the zone as one region",
	})
}

// checkEdgeMargin warns when the mask itself runs into the edge margin.
// Placement zones already exclude the margin band, so this is advisory.
func checkEdgeMargin(res *Result, m *mask.Mask, reqs Requirements) {
	margin := float64(reqs.Position.MarginFromEdges)
	if margin <= 0 {
		return
	}
	for _, c := range m.Contours {
		if c.Hole {
			continue
		}
		for _, p := range c.Points {
			if p.X < margin || p.Y < margin ||
				p.X > float64(m.Width)-1-margin || p.Y > float64(m.Height)-1-margin {
				res.Issues = append(res.Issues, Issue{
					ID:       IssueEdgeMargin,
					Severity: SeverityWarning,
					Title:    "mask touches the edge margin",
					Description: fmt.Sprintf("the marked zone comes within %d px of the image boundary",
						reqs.Position.MarginFromEdges),
					Suggestion: "placement zones stay inside the margin, but re-rendering may clip the mask edge",
				})
				return
			}
		}
	}
}

// checkZones reports zone-level feasibility: no zones at all, or no zone
// that can hold the minimum logo size.
func checkZones(res *Result, reqs Requirements) {
	if len(res.Zones) == 0 {
		res.Issues = append(res.Issues, Issue{
			ID:          IssueNoZones,
			Severity:    SeverityError,
			Title:       "no placement zones",
			Description: "no candidate rectangle survived margin clipping inside the mask",
			Suggestion:  "mark a larger zone or reduce the edge margin",
		})
		return
	}

	min := reqs.LogoPlacement.MinLogoSize
	if min.Width <= 0 && min.Height <= 0 {
		return
	}
	for _, z := range res.Zones {
		if z.SuggestedLogoSize.Width >= min.Width && z.SuggestedLogoSize.Height >= min.Height {
			return
		}
	}
	res.Issues = append(res.Issues, Issue{
		ID:       IssueLogoInfeasible,
		Severity: SeverityError,
		Title:    "logo does not fit",
		Description: fmt.Sprintf("no zone can hold the minimum logo size of %gx%g px",
			min.Width, min.Height),
		Suggestion: "mark a larger zone, or allow a smaller logo rendering",
	})
}

// confidence folds the best zone quality with the issue tally.
func confidence(res *Result) float64 {
	best := 0.0
	if len(res.Zones) > 0 {
		best = res.Zones[0].Quality
	}
	c := best
	c *= math.Pow(0.5, float64(countBySeverity(res.Issues, SeverityError)))
	c *= math.Pow(0.85, float64(countBySeverity(res.Issues, SeverityWarning)))
	return math.Max(0, math.Min(1, c))
}
