package constraint

// Severity classifies a validation issue.
type Severity string

const (
	// SeverityError marks a requirement violation. Any error makes the
	// result invalid.
	SeverityError Severity = "error"

	// SeverityWarning marks a risk that does not block placement.
	SeverityWarning Severity = "warning"

	// SeverityInfo marks advisory notes.
	SeverityInfo Severity = "info"
)

// Issue is one validation finding. Feasibility problems are data, not
// exceptions: they are always reported through issues so a caller can still
// render whatever zones exist.
type Issue struct {
	ID          string   `json:"id"`
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Suggestion  string   `json:"suggestion,omitempty"`
}

// Issue identifiers produced by Validate.
const (
	IssueAreaTooSmall   = "area_too_small"
	IssueNotContiguous  = "not_contiguous"
	IssueEdgeMargin     = "edge_margin"
	IssueLogoInfeasible = "logo_infeasible"
	IssueNoZones        = "no_placement_zones"
)

// countBySeverity tallies issues at the given severity.
func countBySeverity(issues []Issue, s Severity) int {
	n := 0
	for _, i := range issues {
		if i.Severity == s {
			n++
		}
	}
	return n
}
