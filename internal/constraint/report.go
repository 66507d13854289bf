package constraint

import (
	"fmt"
	"strings"
)

// Report renders the result as a human-readable text summary. The output is
// deterministic for a given result: issues grouped by severity in the order
// they were found, zones in ranked order.
func (r *Result) Report() string {
	var b strings.Builder

	verdict := "NOT USABLE"
	if r.IsUsable {
		verdict = "USABLE"
	} else if r.IsValid {
		verdict = "VALID, LOW QUALITY"
	}
	fmt.Fprintf(&b, "Placement validation: %s (confidence %.2f)\n", verdict, r.Confidence)
	fmt.Fprintf(&b, "Mask area: %.0f px²\n", r.MaskArea)

	for _, sev := range []Severity{SeverityError, SeverityWarning, SeverityInfo} {
		n := countBySeverity(r.Issues, sev)
		if n == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%ss (%d):\n", severityHeading(sev), n)
		for _, is := range r.Issues {
			if is.Severity != sev {
				continue
			}
			fmt.Fprintf(&b, "  - %s: %s\n", is.Title, is.Description)
			if is.Suggestion != "" {
				fmt.Fprintf(&b, "    suggestion: %s\n", is.Suggestion)
			}
		}
	}

	if len(r.Zones) > 0 {
		fmt.Fprintf(&b, "\nPlacement zones (%d):\n", len(r.Zones))
		for _, z := range r.Zones {
			fmt.Fprintf(&b, "  %s: %dx%d at (%d,%d), quality %.2f, logo %.0fx%.0f\n",
				z.ID, z.Region.Width, z.Region.Height, z.Region.X, z.Region.Y,
				z.Quality, z.SuggestedLogoSize.Width, z.SuggestedLogoSize.Height)
			for _, restr := range z.Restrictions {
				fmt.Fprintf(&b, "    restriction: %s\n", restr)
			}
		}
	}
	return b.String()
}

func severityHeading(s Severity) string {
	switch s {
	case SeverityError:
		return "Error"
	case SeverityWarning:
		return "Warning"
	default:
		return "Info"
	}
}
